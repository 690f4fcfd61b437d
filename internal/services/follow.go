package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/beerbuddy/beerbuddy/internal/apperrors"
	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/repository"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
	"github.com/sirupsen/logrus"
)

const msgAlreadyFollowing = "Already following this user"

type FollowService struct {
	follows FollowStore
	users   UserStore
	agg     *Aggregator
	events  eventSink
	logger  *logger.Logger
}

func NewFollowService(follows FollowStore, users UserStore, agg *Aggregator, publisher EventPublisher, logger *logger.Logger) *FollowService {
	return &FollowService{
		follows: follows,
		users:   users,
		agg:     agg,
		events:  eventSink{publisher: publisher, logger: logger},
		logger:  logger,
	}
}

func (s *FollowService) Follow(ctx context.Context, viewer auth.Viewer, targetID uint) (bool, error) {
	if err := RequireViewer(viewer); err != nil {
		return false, err
	}
	if targetID == viewer.UserID {
		return false, apperrors.Validation("Cannot follow yourself")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return false, apperrors.NotFound(msgUserNotFound)
	}

	existing, err := s.follows.Get(ctx, viewer.UserID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow status: %w", err)
	}
	if existing != nil {
		return false, apperrors.Conflict(msgAlreadyFollowing)
	}

	follow := &models.Follow{FollowerID: viewer.UserID, FollowingID: targetID}
	if err := s.follows.Create(ctx, follow); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, apperrors.Wrap(apperrors.KindConflict, msgAlreadyFollowing, err)
		}
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	s.events.publish(ctx, viewer.UserID, queue.EventFollowCreated, queue.FollowEventData{FollowerID: viewer.UserID, FollowingID: targetID})
	s.logger.WithFields(logrus.Fields{
		"follower_id":  viewer.UserID,
		"following_id": targetID,
	}).Info("User followed successfully")
	return true, nil
}

func (s *FollowService) Unfollow(ctx context.Context, viewer auth.Viewer, targetID uint) (bool, error) {
	if err := RequireViewer(viewer); err != nil {
		return false, err
	}

	existing, err := s.follows.Get(ctx, viewer.UserID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow status: %w", err)
	}
	if existing == nil {
		return false, apperrors.Conflict("Not following this user")
	}

	if err := s.follows.Delete(ctx, existing.ID); err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	s.events.publish(ctx, viewer.UserID, queue.EventFollowDeleted, queue.FollowEventData{FollowerID: viewer.UserID, FollowingID: targetID})
	s.logger.WithFields(logrus.Fields{
		"follower_id":  viewer.UserID,
		"following_id": targetID,
	}).Info("User unfollowed successfully")
	return true, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, viewer auth.Viewer, followerID, followingID uint) (bool, error) {
	if err := RequireViewer(viewer); err != nil {
		return false, err
	}

	follow, err := s.follows.Get(ctx, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow status: %w", err)
	}
	return follow != nil, nil
}

// Followers lists the users following userID, most recent first.
func (s *FollowService) Followers(ctx context.Context, viewer auth.Viewer, userID uint) (*models.UserList, error) {
	if err := RequireViewer(viewer); err != nil {
		return nil, err
	}

	follows, err := s.follows.ListByFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}

	users := make([]*models.User, len(follows))
	for i, f := range follows {
		users[i] = &f.Follower
	}
	return s.userList(ctx, users)
}

// Following lists the users userID follows, most recent first.
func (s *FollowService) Following(ctx context.Context, viewer auth.Viewer, userID uint) (*models.UserList, error) {
	if err := RequireViewer(viewer); err != nil {
		return nil, err
	}

	follows, err := s.follows.ListByFollower(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}

	users := make([]*models.User, len(follows))
	for i, f := range follows {
		users[i] = &f.Following
	}
	return s.userList(ctx, users)
}

func (s *FollowService) userList(ctx context.Context, users []*models.User) (*models.UserList, error) {
	profiles, err := s.agg.Profiles(ctx, users)
	if err != nil {
		return nil, err
	}
	return &models.UserList{Users: profiles, TotalCount: len(profiles)}, nil
}

// Follows lists the outgoing edges of userID with both ends enriched.
func (s *FollowService) Follows(ctx context.Context, viewer auth.Viewer, userID uint) (*models.FollowList, error) {
	if err := RequireViewer(viewer); err != nil {
		return nil, err
	}

	follows, err := s.follows.ListByFollower(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get follows: %w", err)
	}

	users := make([]*models.User, 0, 2*len(follows))
	for _, f := range follows {
		users = append(users, &f.Follower, &f.Following)
	}
	profiles, err := s.agg.Profiles(ctx, users)
	if err != nil {
		return nil, err
	}

	views := make([]models.FollowView, len(follows))
	for i, f := range follows {
		views[i] = models.FollowView{
			ID:          f.ID,
			FollowerID:  f.FollowerID,
			FollowingID: f.FollowingID,
			CreatedAt:   f.CreatedAt,
			Follower:    profiles[2*i],
			Following:   profiles[2*i+1],
		}
	}
	return &models.FollowList{Follows: views, TotalCount: len(views)}, nil
}
