package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/beerbuddy/beerbuddy/internal/models"
	"gorm.io/gorm"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		return wrapWriteErr("create follow", err)
	}
	return nil
}

func (r *FollowRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Follow{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

func (r *FollowRepository) Get(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get follow: %w", err)
	}
	return &follow, nil
}

// FollowingIDs returns the ids followerID follows.
func (r *FollowRepository) FollowingIDs(ctx context.Context, followerID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get following ids: %w", err)
	}
	return ids, nil
}

// ListByFollower returns the edges out of userID, newest first, both ends loaded.
func (r *FollowRepository) ListByFollower(ctx context.Context, userID uint) ([]*models.Follow, error) {
	var follows []*models.Follow
	if err := r.db.WithContext(ctx).
		Preload("Follower").
		Preload("Following").
		Where("follower_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&follows).Error; err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return follows, nil
}

// ListByFollowing returns the edges into userID, newest first, both ends loaded.
func (r *FollowRepository) ListByFollowing(ctx context.Context, userID uint) ([]*models.Follow, error) {
	var follows []*models.Follow
	if err := r.db.WithContext(ctx).
		Preload("Follower").
		Preload("Following").
		Where("following_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&follows).Error; err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return follows, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}
