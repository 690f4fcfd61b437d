package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/pkg/cache"
)

// NotificationRepository keeps a capped, expiring inbox per user in a Redis list.
type NotificationRepository struct {
	client   *cache.RedisClient
	maxItems int64
	ttl      time.Duration
}

func NewNotificationRepository(client *cache.RedisClient, maxItems int64, ttl time.Duration) *NotificationRepository {
	return &NotificationRepository{client: client, maxItems: maxItems, ttl: ttl}
}

func notificationKey(userID uint) string {
	return fmt.Sprintf("notifications:%d", userID)
}

func (r *NotificationRepository) Push(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := r.client.PushCapped(ctx, notificationKey(n.UserID), data, r.maxItems, r.ttl); err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	return nil
}

// List returns the newest notifications first. Undecodable entries are skipped.
func (r *NotificationRepository) List(ctx context.Context, userID uint, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = int(r.maxItems)
	}

	values, err := r.client.LRange(ctx, notificationKey(userID), 0, int64(limit)-1)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]*models.Notification, 0, len(values))
	for _, v := range values {
		var n models.Notification
		if err := json.Unmarshal([]byte(v), &n); err != nil {
			continue
		}
		out = append(out, &n)
	}
	return out, nil
}
