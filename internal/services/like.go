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

type LikeService struct {
	posts  PostStore
	likes  LikeStore
	agg    *Aggregator
	events eventSink
	logger *logger.Logger
}

func NewLikeService(posts PostStore, likes LikeStore, agg *Aggregator, publisher EventPublisher, logger *logger.Logger) *LikeService {
	return &LikeService{
		posts:  posts,
		likes:  likes,
		agg:    agg,
		events: eventSink{publisher: publisher, logger: logger},
		logger: logger,
	}
}

// ToggleLike flips the viewer's like on a post and returns the post with its
// refreshed like state. Losing a race to create the same like is not an error.
func (s *LikeService) ToggleLike(ctx context.Context, viewer auth.Viewer, postID uint) (*models.PostView, error) {
	if err := RequireViewer(viewer); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, apperrors.NotFound(msgPostNotFound)
	}

	existing, err := s.likes.Get(ctx, viewer.UserID, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to check like status: %w", err)
	}

	data := queue.LikeEventData{UserID: viewer.UserID, PostID: postID, PostAuthorID: post.AuthorID}
	fields := logrus.Fields{"user_id": viewer.UserID, "post_id": postID}

	if existing != nil {
		if err := s.likes.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to delete like: %w", err)
		}
		s.events.publish(ctx, viewer.UserID, queue.EventLikeDeleted, data)
		s.logger.WithFields(fields).Info("Post unliked successfully")
	} else {
		err := s.likes.Create(ctx, &models.Like{UserID: viewer.UserID, PostID: postID})
		switch {
		case err == nil:
			s.events.publish(ctx, viewer.UserID, queue.EventLikeCreated, data)
			s.logger.WithFields(fields).Info("Post liked successfully")
		case errors.Is(err, repository.ErrDuplicate):
			s.logger.WithFields(fields).Debug("Concurrent like already recorded")
		default:
			return nil, fmt.Errorf("failed to create like: %w", err)
		}
	}

	refreshed, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if refreshed == nil {
		return nil, apperrors.NotFound(msgPostNotFound)
	}

	views, err := s.agg.PostViews(ctx, viewer, []*models.Post{refreshed})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
