package services

import (
	"context"
	"fmt"

	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/pkg/parallel"
)

// Aggregator computes the read-time counters attached to users and posts.
// Nothing is cached; every call hits the store.
type Aggregator struct {
	posts   PostStore
	likes   LikeStore
	follows FollowStore
}

func NewAggregator(posts PostStore, likes LikeStore, follows FollowStore) *Aggregator {
	return &Aggregator{posts: posts, likes: likes, follows: follows}
}

func (a *Aggregator) UserStats(ctx context.Context, userID uint) (models.UserStats, error) {
	var stats models.UserStats
	err := parallel.Join(ctx,
		func(ctx context.Context) (err error) {
			stats.FollowerCount, err = a.follows.CountFollowers(ctx, userID)
			return err
		},
		func(ctx context.Context) (err error) {
			stats.FollowingCount, err = a.follows.CountFollowing(ctx, userID)
			return err
		},
		func(ctx context.Context) (err error) {
			stats.TotalPostsCount, err = a.posts.CountByAuthor(ctx, userID)
			return err
		},
		func(ctx context.Context) (err error) {
			stats.TotalBeersCount, err = a.posts.SumBeersByAuthor(ctx, userID)
			return err
		},
	)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to aggregate user stats: %w", err)
	}
	return stats, nil
}

func (a *Aggregator) Profile(ctx context.Context, user *models.User) (models.UserProfile, error) {
	stats, err := a.UserStats(ctx, user.ID)
	if err != nil {
		return models.UserProfile{}, err
	}
	return models.UserProfile{User: *user, UserStats: stats}, nil
}

// Profiles keeps the input order. Each distinct user is aggregated once.
func (a *Aggregator) Profiles(ctx context.Context, users []*models.User) ([]models.UserProfile, error) {
	stats, err := a.statsByUser(ctx, users)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserProfile, len(users))
	for i, u := range users {
		out[i] = models.UserProfile{User: *u, UserStats: stats[u.ID]}
	}
	return out, nil
}

func (a *Aggregator) statsByUser(ctx context.Context, users []*models.User) (map[uint]models.UserStats, error) {
	var ids []uint
	seen := make(map[uint]bool, len(users))
	for _, u := range users {
		if !seen[u.ID] {
			seen[u.ID] = true
			ids = append(ids, u.ID)
		}
	}

	results := make([]models.UserStats, len(ids))
	fns := make([]func(context.Context) error, len(ids))
	for i, id := range ids {
		i, id := i, id
		fns[i] = func(ctx context.Context) (err error) {
			results[i], err = a.UserStats(ctx, id)
			return err
		}
	}
	if err := parallel.Join(ctx, fns...); err != nil {
		return nil, err
	}

	byID := make(map[uint]models.UserStats, len(ids))
	for i, id := range ids {
		byID[id] = results[i]
	}
	return byID, nil
}

// PostViews expects posts with their Author loaded.
func (a *Aggregator) PostViews(ctx context.Context, viewer auth.Viewer, posts []*models.Post) ([]models.PostView, error) {
	if len(posts) == 0 {
		return []models.PostView{}, nil
	}

	postIDs := make([]uint, len(posts))
	authors := make([]*models.User, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
		author := p.Author
		authors[i] = &author
	}

	var (
		likeCounts  map[uint]int64
		liked       map[uint]bool
		authorStats map[uint]models.UserStats
	)
	err := parallel.Join(ctx,
		func(ctx context.Context) (err error) {
			likeCounts, err = a.likes.CountByPostIDs(ctx, postIDs)
			return err
		},
		func(ctx context.Context) (err error) {
			if !viewer.Authenticated() {
				liked = map[uint]bool{}
				return nil
			}
			liked, err = a.likes.LikedPostIDs(ctx, viewer.UserID, postIDs)
			return err
		},
		func(ctx context.Context) (err error) {
			authorStats, err = a.statsByUser(ctx, authors)
			return err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate posts: %w", err)
	}

	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		views[i] = models.PostView{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			BeersCount:  p.BeersCount,
			ImageURL:    p.ImageURL,
			AuthorID:    p.AuthorID,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
			Author:      models.UserProfile{User: p.Author, UserStats: authorStats[p.AuthorID]},
			LikesCount:  likeCounts[p.ID],
			IsLiked:     liked[p.ID],
		}
	}
	return views, nil
}
