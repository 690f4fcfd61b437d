package memstore

import (
	"context"
	"sync"

	"github.com/beerbuddy/beerbuddy/internal/models"
)

// NotificationStore mirrors the Redis inbox: newest first, capped per user.
type NotificationStore struct {
	mu       sync.Mutex
	maxItems int
	inbox    map[uint][]models.Notification
}

func NewNotificationStore(maxItems int) *NotificationStore {
	return &NotificationStore{maxItems: maxItems, inbox: make(map[uint][]models.Notification)}
}

func (s *NotificationStore) Push(ctx context.Context, n *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([]models.Notification{*n}, s.inbox[n.UserID]...)
	if s.maxItems > 0 && len(list) > s.maxItems {
		list = list[:s.maxItems]
	}
	s.inbox[n.UserID] = list
	return nil
}

func (s *NotificationStore) List(ctx context.Context, userID uint, limit int) ([]*models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.inbox[userID]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	out := make([]*models.Notification, 0, len(list))
	for _, n := range list {
		n := n
		out = append(out, &n)
	}
	return out, nil
}
