package services

import (
	"context"
	"testing"

	"github.com/beerbuddy/beerbuddy/internal/apperrors"
	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeIsInvolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.signup(t, "a@x.com")
	fan := env.signup(t, "b@x.com")
	other := env.signup(t, "c@x.com")
	post := env.post(t, author, "IPA", 2)

	_, err := env.likes.ToggleLike(ctx, other, post.ID)
	require.NoError(t, err)

	liked, err := env.likes.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.True(t, liked.IsLiked)
	assert.Equal(t, int64(2), liked.LikesCount)

	unliked, err := env.likes.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.False(t, unliked.IsLiked)
	assert.Equal(t, int64(1), unliked.LikesCount)
}

func TestIsLikedMatchesLikeRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.signup(t, "a@x.com")
	fan := env.signup(t, "b@x.com")
	p1 := env.post(t, author, "one", 1)
	p2 := env.post(t, author, "two", 1)
	p3 := env.post(t, author, "three", 1)

	_, err := env.likes.ToggleLike(ctx, fan, p1.ID)
	require.NoError(t, err)
	_, err = env.likes.ToggleLike(ctx, fan, p3.ID)
	require.NoError(t, err)

	page, err := env.feed.ListPosts(ctx, fan, PostQuery{})
	require.NoError(t, err)

	want := map[uint]bool{p1.ID: true, p2.ID: false, p3.ID: true}
	for _, p := range page.Posts {
		like, err := env.db.Likes().Get(ctx, fan.UserID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, like != nil, p.IsLiked)
		assert.Equal(t, want[p.ID], p.IsLiked)
	}

	anon, err := env.feed.ListPosts(ctx, auth.Anonymous, PostQuery{})
	require.NoError(t, err)
	for _, p := range anon.Posts {
		assert.False(t, p.IsLiked)
	}
}

func TestToggleLikeErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.signup(t, "a@x.com")

	_, err := env.likes.ToggleLike(ctx, auth.Anonymous, 1)
	assertAppError(t, err, apperrors.KindUnauthenticated, "Not authenticated")

	_, err = env.likes.ToggleLike(ctx, a, 31337)
	assertAppError(t, err, apperrors.KindNotFound, "Post not found")
}

// blindLikes never sees an existing like, which is what the loser of two
// concurrent toggles observes.
type blindLikes struct {
	LikeStore
}

func (blindLikes) Get(ctx context.Context, userID, postID uint) (*models.Like, error) {
	return nil, nil
}

func TestToggleLikeRaceIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.signup(t, "a@x.com")
	fan := env.signup(t, "b@x.com")
	post := env.post(t, author, "Lager", 1)

	svc := NewLikeService(env.db.Posts(), blindLikes{env.db.Likes()}, env.agg, env.pub, logger.NewNop())

	first, err := svc.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.True(t, first.IsLiked)

	second, err := svc.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.True(t, second.IsLiked)
	assert.Equal(t, int64(1), second.LikesCount)

	var likeEvents int
	for _, typ := range env.pub.types() {
		if typ == queue.EventLikeCreated {
			likeEvents++
		}
	}
	assert.Equal(t, 1, likeEvents)
}
