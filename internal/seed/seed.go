// Package seed fills a development database with a demo account and posts.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/services"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	DemoEmail    = "test@example.com"
	DemoPassword = "Test123!@#"
	DemoPosts    = 50
)

type Result struct {
	UserID       uint
	UserCreated  bool
	PostsDeleted int64
	PostsCreated int
}

type Seeder struct {
	users  services.UserStore
	posts  services.PostStore
	hasher services.PasswordHasher
	rng    *rand.Rand
	logger *logger.Logger
}

func NewSeeder(users services.UserStore, posts services.PostStore, hasher services.PasswordHasher, logger *logger.Logger) *Seeder {
	return &Seeder{
		users:  users,
		posts:  posts,
		hasher: hasher,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

// Run makes sure the demo user exists and replaces its posts with a fresh
// batch. Running it twice leaves the same shape of data behind.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	user, created, err := s.ensureUser(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := s.posts.DeleteByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete existing posts: %w", err)
	}

	description := "Had an amazing time at the local pub with friends! 🍺"
	for i := 0; i < DemoPosts; i++ {
		post := &models.Post{
			Title:       "Great Beer Night",
			Description: &description,
			BeersCount:  s.rng.Intn(10) + 1,
			ImageURL:    fmt.Sprintf("https://picsum.photos/500/700?random=%d", 100+i),
			AuthorID:    user.ID,
		}
		if err := s.posts.Create(ctx, post); err != nil {
			return nil, fmt.Errorf("failed to create post %d: %w", i+1, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":       user.ID,
		"user_created":  created,
		"posts_deleted": deleted,
		"posts_created": DemoPosts,
	}).Info("Database seeded successfully")

	return &Result{
		UserID:       user.ID,
		UserCreated:  created,
		PostsDeleted: deleted,
		PostsCreated: DemoPosts,
	}, nil
}

func (s *Seeder) ensureUser(ctx context.Context) (*models.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, DemoEmail)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up demo user: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	hash, err := s.hasher.Hash(DemoPassword)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	name, nickname, bio := "Test User", "BeerLover", "Love trying new beers!"
	user := &models.User{
		Email:    DemoEmail,
		Password: hash,
		Name:     &name,
		Nickname: &nickname,
		Bio:      &bio,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create demo user: %w", err)
	}
	return user, true, nil
}
