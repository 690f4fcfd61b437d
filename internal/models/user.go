package models

import (
	"time"
)

// User never serializes its password hash.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	Password       string    `json:"-" gorm:"not null"`
	Name           *string   `json:"name"`
	Nickname       *string   `json:"nickname" gorm:"size:50"`
	Bio            *string   `json:"bio" gorm:"size:500"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"not null;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"not null;uniqueIndex:idx_follower_following;index"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following User `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

func (Follow) TableName() string {
	return "follows"
}

// UserStats are computed on every read, never stored.
type UserStats struct {
	FollowerCount   int64 `json:"follower_count"`
	FollowingCount  int64 `json:"following_count"`
	TotalPostsCount int64 `json:"total_posts_count"`
	TotalBeersCount int64 `json:"total_beers_count"`
}

// UserProfile is the client-facing user: the record plus its counters.
type UserProfile struct {
	User
	UserStats
}

type UserList struct {
	Users      []UserProfile `json:"users"`
	TotalCount int           `json:"total_count"`
}

type FollowView struct {
	ID          uint        `json:"id"`
	FollowerID  uint        `json:"follower_id"`
	FollowingID uint        `json:"following_id"`
	CreatedAt   time.Time   `json:"created_at"`
	Follower    UserProfile `json:"follower"`
	Following   UserProfile `json:"following"`
}

type FollowList struct {
	Follows    []FollowView `json:"follows"`
	TotalCount int          `json:"total_count"`
}

type AuthPayload struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// ProfileUpdate holds only the fields present in the request.
type ProfileUpdate struct {
	Nickname       *string `json:"nickname"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
}
