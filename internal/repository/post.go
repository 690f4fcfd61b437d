package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/beerbuddy/beerbuddy/internal/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return wrapWriteErr("create post", err)
	}
	if err := r.db.WithContext(ctx).First(&post.Author, "id = ?", post.AuthorID).Error; err != nil {
		return fmt.Errorf("failed to load post author: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// Delete removes the post; likes and comments go with it via ON DELETE CASCADE.
func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

func (r *PostRepository) DeleteByAuthor(ctx context.Context, authorID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&models.Post{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete posts by author: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListPage returns up to f.Limit posts with id below the cursor, newest id first.
func (r *PostRepository) ListPage(ctx context.Context, f PostFilter) ([]*models.Post, error) {
	db := r.db.WithContext(ctx).Preload("Author")
	if f.Cursor != nil {
		db = db.Where("id < ?", *f.Cursor)
	}
	if f.AuthorIDs != nil {
		db = db.Where("author_id IN ?", f.AuthorIDs)
	}

	var posts []*models.Post
	if err := db.Order("id DESC").Limit(f.Limit).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (r *PostRepository) SumBeersByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var sum int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("COALESCE(SUM(beers_count), 0)").
		Where("author_id = ?", authorID).
		Scan(&sum).Error; err != nil {
		return 0, fmt.Errorf("failed to sum beers: %w", err)
	}
	return sum, nil
}
