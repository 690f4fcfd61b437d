package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/beerbuddy/beerbuddy/internal/apperrors"
	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/repository"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
	"github.com/sirupsen/logrus"
)

// FeedOptions bounds page sizes and the accepted beer count of a post.
type FeedOptions struct {
	DefaultLimit int
	MaxLimit     int
	MinBeers     int
	MaxBeers     int
}

var DefaultFeedOptions = FeedOptions{DefaultLimit: 10, MaxLimit: 50, MinBeers: 1, MaxBeers: 12}

type FeedService struct {
	posts   PostStore
	follows FollowStore
	agg     *Aggregator
	opts    FeedOptions
	events  eventSink
	logger  *logger.Logger
}

func NewFeedService(posts PostStore, follows FollowStore, agg *Aggregator, opts FeedOptions, publisher EventPublisher, logger *logger.Logger) *FeedService {
	return &FeedService{
		posts:   posts,
		follows: follows,
		agg:     agg,
		opts:    opts,
		events:  eventSink{publisher: publisher, logger: logger},
		logger:  logger,
	}
}

// PostQuery selects a page. A nil or zero Cursor starts from the newest post.
// Feed restricts the page to authors the viewer follows.
type PostQuery struct {
	Limit  int
	Cursor *uint
	Feed   bool
}

func (s *FeedService) pageLimit(limit int) int {
	if limit <= 0 {
		return s.opts.DefaultLimit
	}
	if limit > s.opts.MaxLimit {
		return s.opts.MaxLimit
	}
	return limit
}

// ListPosts pages by descending id: it fetches one row more than asked to
// learn whether another page exists.
func (s *FeedService) ListPosts(ctx context.Context, viewer auth.Viewer, q PostQuery) (*models.PostsPage, error) {
	limit := s.pageLimit(q.Limit)
	filter := repository.PostFilter{Limit: limit + 1}

	if q.Cursor != nil && *q.Cursor != 0 {
		cursor := *q.Cursor
		filter.Cursor = &cursor
	}

	if q.Feed {
		if err := RequireViewer(viewer); err != nil {
			return nil, err
		}

		ids, err := s.follows.FollowingIDs(ctx, viewer.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get following ids: %w", err)
		}
		if len(ids) == 0 {
			return &models.PostsPage{Posts: []models.PostView{}}, nil
		}
		filter.AuthorIDs = ids
	}

	posts, err := s.posts.ListPage(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	page := &models.PostsPage{}
	if len(posts) > limit {
		posts = posts[:limit]
		page.HasMore = true
		next := posts[len(posts)-1].ID
		page.Cursor = &next
	}

	page.Posts, err = s.agg.PostViews(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *FeedService) CreatePost(ctx context.Context, viewer auth.Viewer, req *models.NewPost) (*models.PostView, error) {
	if err := RequireViewer(viewer); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.Validation("Title is required")
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		return nil, apperrors.Validation("Image URL is required")
	}
	if req.BeersCount < s.opts.MinBeers || req.BeersCount > s.opts.MaxBeers {
		return nil, apperrors.Validationf("Beer count must be between %d and %d", s.opts.MinBeers, s.opts.MaxBeers)
	}

	post := &models.Post{
		Title:       title,
		Description: trimToNull(req.Description),
		BeersCount:  req.BeersCount,
		ImageURL:    imageURL,
		AuthorID:    viewer.UserID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	views, err := s.agg.PostViews(ctx, viewer, []*models.Post{post})
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, viewer.UserID, queue.EventPostCreated, queue.PostEventData{
		PostID:     post.ID,
		AuthorID:   post.AuthorID,
		Title:      post.Title,
		BeersCount: post.BeersCount,
	})
	s.logger.WithFields(logrus.Fields{
		"post_id":   post.ID,
		"author_id": post.AuthorID,
	}).Info("Post created successfully")
	return &views[0], nil
}

// DeletePost reports "not found" before checking ownership.
func (s *FeedService) DeletePost(ctx context.Context, viewer auth.Viewer, postID uint) (bool, error) {
	if err := RequireViewer(viewer); err != nil {
		return false, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return false, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return false, apperrors.NotFound(msgPostNotFound)
	}
	if post.AuthorID != viewer.UserID {
		return false, apperrors.Unauthorized("You can only delete your own posts")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}

	s.events.publish(ctx, viewer.UserID, queue.EventPostDeleted, queue.PostEventData{PostID: postID, AuthorID: post.AuthorID})
	s.logger.WithField("post_id", postID).Info("Post deleted successfully")
	return true, nil
}
