package services

import (
	"context"

	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/repository"
)

// Lookups return (nil, nil) for a missing row. Writes that hit a unique
// constraint return an error wrapping repository.ErrDuplicate.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, error)
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	DeleteByAuthor(ctx context.Context, authorID uint) (int64, error)
	ListPage(ctx context.Context, f repository.PostFilter) ([]*models.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	SumBeersByAuthor(ctx context.Context, authorID uint) (int64, error)
}

type LikeStore interface {
	Create(ctx context.Context, like *models.Like) error
	Get(ctx context.Context, userID, postID uint) (*models.Like, error)
	Delete(ctx context.Context, id uint) error
	CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type FollowStore interface {
	Create(ctx context.Context, follow *models.Follow) error
	Get(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	Delete(ctx context.Context, id uint) error
	FollowingIDs(ctx context.Context, followerID uint) ([]uint, error)
	ListByFollower(ctx context.Context, userID uint) ([]*models.Follow, error)
	ListByFollowing(ctx context.Context, userID uint) ([]*models.Follow, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type NotificationStore interface {
	Push(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID uint, limit int) ([]*models.Notification, error)
}

var (
	_ UserStore         = (*repository.UserRepository)(nil)
	_ PostStore         = (*repository.PostRepository)(nil)
	_ LikeStore         = (*repository.LikeRepository)(nil)
	_ CommentStore      = (*repository.CommentRepository)(nil)
	_ FollowStore       = (*repository.FollowRepository)(nil)
	_ NotificationStore = (*repository.NotificationRepository)(nil)
)

// PasswordHasher is satisfied by *auth.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) bool
}

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	Generate(userID uint) (string, error)
}
