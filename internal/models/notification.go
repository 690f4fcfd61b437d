package models

import "time"

type NotificationKind string

const (
	NotificationLike    NotificationKind = "like"
	NotificationComment NotificationKind = "comment"
	NotificationFollow  NotificationKind = "follow"
)

// Notification lives in the recipient's Redis inbox, not in the database.
type Notification struct {
	ID        string           `json:"id"`
	UserID    uint             `json:"user_id"`
	ActorID   uint             `json:"actor_id"`
	Kind      NotificationKind `json:"kind"`
	PostID    *uint            `json:"post_id,omitempty"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}
