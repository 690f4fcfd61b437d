package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/beerbuddy/beerbuddy/internal/apperrors"
	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
	"github.com/sirupsen/logrus"
)

type CommentService struct {
	posts    PostStore
	comments CommentStore
	agg      *Aggregator
	events   eventSink
	logger   *logger.Logger
}

func NewCommentService(posts PostStore, comments CommentStore, agg *Aggregator, publisher EventPublisher, logger *logger.Logger) *CommentService {
	return &CommentService{
		posts:    posts,
		comments: comments,
		agg:      agg,
		events:   eventSink{publisher: publisher, logger: logger},
		logger:   logger,
	}
}

// PostComments lists a post's comments oldest first. No authentication needed.
func (s *CommentService) PostComments(ctx context.Context, postID uint) (*models.PostComments, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, apperrors.NotFound(msgPostNotFound)
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	users := make([]*models.User, len(comments))
	for i, c := range comments {
		users[i] = &c.User
	}
	profiles, err := s.agg.Profiles(ctx, users)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = commentView(c, profiles[i])
	}
	return &models.PostComments{PostID: postID, Comments: views}, nil
}

func (s *CommentService) CreateComment(ctx context.Context, viewer auth.Viewer, postID uint, text string) (*models.CommentView, error) {
	if err := RequireViewer(viewer); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apperrors.Validation("Comment text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return nil, apperrors.Validation("Comment must be 500 characters or less")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, apperrors.NotFound(msgPostNotFound)
	}

	comment := &models.Comment{Text: trimmed, UserID: viewer.UserID, PostID: postID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	profile, err := s.agg.Profile(ctx, &comment.User)
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, viewer.UserID, queue.EventCommentCreated, queue.CommentEventData{
		CommentID:    comment.ID,
		UserID:       viewer.UserID,
		PostID:       postID,
		PostAuthorID: post.AuthorID,
		Text:         comment.Text,
	})
	s.logger.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"post_id":    postID,
	}).Info("Comment created successfully")

	view := commentView(comment, profile)
	return &view, nil
}

// DeleteComment reports "not found" before checking ownership.
func (s *CommentService) DeleteComment(ctx context.Context, viewer auth.Viewer, commentID uint) (bool, error) {
	if err := RequireViewer(viewer); err != nil {
		return false, err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return false, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return false, apperrors.NotFound("Comment not found")
	}
	if comment.UserID != viewer.UserID {
		return false, apperrors.Unauthorized("You can only delete your own comments")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return false, fmt.Errorf("failed to delete comment: %w", err)
	}

	s.events.publish(ctx, viewer.UserID, queue.EventCommentDeleted, queue.CommentEventData{
		CommentID: commentID,
		UserID:    viewer.UserID,
		PostID:    comment.PostID,
	})
	s.logger.WithField("comment_id", commentID).Info("Comment deleted successfully")
	return true, nil
}

func commentView(c *models.Comment, author models.UserProfile) models.CommentView {
	return models.CommentView{
		ID:        c.ID,
		Text:      c.Text,
		UserID:    c.UserID,
		PostID:    c.PostID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		User:      author,
	}
}
