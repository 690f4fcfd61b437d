package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationService turns social events into inbox entries and lists them.
type NotificationService struct {
	store  NotificationStore
	users  UserStore
	logger *logger.Logger
}

func NewNotificationService(store NotificationStore, users UserStore, logger *logger.Logger) *NotificationService {
	return &NotificationService{store: store, users: users, logger: logger}
}

// List returns the viewer's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, viewer auth.Viewer, limit int) ([]*models.Notification, error) {
	if err := RequireViewer(viewer); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	out, err := s.store.List(ctx, viewer.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

// HandleEvent records a notification for the recipient of a like, comment or
// follow. Other event types and actions on one's own content are ignored.
func (s *NotificationService) HandleEvent(ctx context.Context, event queue.Event) error {
	var n *models.Notification

	switch event.Type {
	case queue.EventLikeCreated:
		var data queue.LikeEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("failed to decode like event: %w", err)
		}
		postID := data.PostID
		n = &models.Notification{
			UserID:  data.PostAuthorID,
			ActorID: data.UserID,
			Kind:    models.NotificationLike,
			PostID:  &postID,
		}
	case queue.EventCommentCreated:
		var data queue.CommentEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("failed to decode comment event: %w", err)
		}
		postID := data.PostID
		n = &models.Notification{
			UserID:  data.PostAuthorID,
			ActorID: data.UserID,
			Kind:    models.NotificationComment,
			PostID:  &postID,
		}
	case queue.EventFollowCreated:
		var data queue.FollowEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("failed to decode follow event: %w", err)
		}
		n = &models.Notification{
			UserID:  data.FollowingID,
			ActorID: data.FollowerID,
			Kind:    models.NotificationFollow,
		}
	default:
		return nil
	}

	if n.UserID == 0 || n.UserID == n.ActorID {
		return nil
	}

	actor, err := s.actorName(ctx, n.ActorID)
	if err != nil {
		return err
	}

	n.ID = uuid.NewString()
	n.CreatedAt = event.Timestamp
	n.Message = notificationMessage(n.Kind, actor)

	if err := s.store.Push(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  n.UserID,
		"actor_id": n.ActorID,
		"kind":     n.Kind,
	}).Info("Notification stored successfully")
	return nil
}

func (s *NotificationService) actorName(ctx context.Context, id uint) (string, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to get actor: %w", err)
	}
	switch {
	case user == nil:
		return "Someone", nil
	case user.Nickname != nil:
		return *user.Nickname, nil
	case user.Name != nil:
		return *user.Name, nil
	default:
		return "Someone", nil
	}
}

func notificationMessage(kind models.NotificationKind, actor string) string {
	switch kind {
	case models.NotificationLike:
		return actor + " liked your post"
	case models.NotificationComment:
		return actor + " commented on your post"
	default:
		return actor + " started following you"
	}
}
