package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beerbuddy/beerbuddy/internal/apperrors"
	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/repository/memstore"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ UserStore         = (*memstore.UserStore)(nil)
	_ PostStore         = (*memstore.PostStore)(nil)
	_ LikeStore         = (*memstore.LikeStore)(nil)
	_ CommentStore      = (*memstore.CommentStore)(nil)
	_ FollowStore       = (*memstore.FollowStore)(nil)
	_ NotificationStore = (*memstore.NotificationStore)(nil)
	_ PasswordHasher    = (*auth.PasswordHasher)(nil)
	_ TokenIssuer       = (*auth.TokenManager)(nil)
	_ EventPublisher    = (*queue.KafkaProducer)(nil)
)

var testArgon2 = auth.Argon2Params{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, value.(queue.Event))
	return nil
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	db            *memstore.DB
	inbox         *memstore.NotificationStore
	tokens        *auth.TokenManager
	pub           *recordingPublisher
	agg           *Aggregator
	users         *UserService
	follows       *FollowService
	feed          *FeedService
	likes         *LikeService
	comments      *CommentService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, DefaultFeedOptions)
}

func newTestEnvWith(t *testing.T, opts FeedOptions) *testEnv {
	t.Helper()

	db := memstore.New()
	inbox := memstore.NewNotificationStore(100)
	tokens, err := auth.NewTokenManager("test-secret", 15*time.Minute)
	require.NoError(t, err)
	pub := &recordingPublisher{}
	log := logger.NewNop()

	agg := NewAggregator(db.Posts(), db.Likes(), db.Follows())
	return &testEnv{
		db:            db,
		inbox:         inbox,
		tokens:        tokens,
		pub:           pub,
		agg:           agg,
		users:         NewUserService(db.Users(), agg, auth.NewPasswordHasher(testArgon2), tokens, pub, log),
		follows:       NewFollowService(db.Follows(), db.Users(), agg, pub, log),
		feed:          NewFeedService(db.Posts(), db.Follows(), agg, opts, pub, log),
		likes:         NewLikeService(db.Posts(), db.Likes(), agg, pub, log),
		comments:      NewCommentService(db.Posts(), db.Comments(), agg, pub, log),
		notifications: NewNotificationService(inbox, db.Users(), log),
	}
}

func (e *testEnv) signup(t *testing.T, email string) auth.Viewer {
	t.Helper()
	payload, err := e.users.Signup(context.Background(), &SignupRequest{Email: email, Password: "password1"})
	require.NoError(t, err)
	return auth.Viewer{UserID: payload.User.ID}
}

func (e *testEnv) post(t *testing.T, viewer auth.Viewer, title string, beers int) *models.PostView {
	t.Helper()
	view, err := e.feed.CreatePost(context.Background(), viewer, &models.NewPost{
		Title:      title,
		BeersCount: beers,
		ImageURL:   "http://img",
	})
	require.NoError(t, err)
	return view
}

func assertAppError(t *testing.T, err error, kind apperrors.Kind, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr), "expected *apperrors.Error, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind)
	assert.Equal(t, message, appErr.Message)
}

func strPtr(s string) *string { return &s }
