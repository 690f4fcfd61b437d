package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/beerbuddy/beerbuddy/internal/apperrors"
	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectPages(t *testing.T, env *testEnv, viewer auth.Viewer, q PostQuery) []uint {
	t.Helper()

	var ids []uint
	for pages := 0; ; pages++ {
		require.Less(t, pages, 100, "pagination did not terminate")

		page, err := env.feed.ListPosts(context.Background(), viewer, q)
		require.NoError(t, err)
		for _, p := range page.Posts {
			ids = append(ids, p.ID)
		}
		if !page.HasMore {
			assert.Nil(t, page.Cursor)
			return ids
		}
		require.NotNil(t, page.Cursor)
		assert.Equal(t, page.Posts[len(page.Posts)-1].ID, *page.Cursor)
		q.Cursor = page.Cursor
	}
}

func TestPaginationCoverage(t *testing.T) {
	env := newTestEnv(t)
	a := env.signup(t, "a@x.com")
	b := env.signup(t, "b@x.com")

	const n = 23
	created := make(map[uint]bool, n)
	for i := 0; i < n; i++ {
		author := a
		if i%3 == 0 {
			author = b
		}
		created[env.post(t, author, fmt.Sprintf("Post %d", i), 1+i%12).ID] = true
	}

	for _, limit := range []int{1, 5, 10, 23, 50} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			ids := collectPages(t, env, auth.Anonymous, PostQuery{Limit: limit})

			require.Len(t, ids, n)
			seen := make(map[uint]bool, n)
			for i, id := range ids {
				assert.True(t, created[id])
				assert.False(t, seen[id], "duplicate post %d", id)
				seen[id] = true
				if i > 0 {
					assert.Less(t, id, ids[i-1], "ids must strictly descend")
				}
			}
		})
	}
}

func TestPaginationExactMultiple(t *testing.T) {
	env := newTestEnv(t)
	a := env.signup(t, "a@x.com")
	for i := 0; i < 4; i++ {
		env.post(t, a, "p", 1)
	}

	page, err := env.feed.ListPosts(context.Background(), auth.Anonymous, PostQuery{Limit: 4})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 4)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.Cursor)
}

func TestPaginationLimitBounds(t *testing.T) {
	env := newTestEnvWith(t, FeedOptions{DefaultLimit: 3, MaxLimit: 5, MinBeers: 1, MaxBeers: 12})
	a := env.signup(t, "a@x.com")
	for i := 0; i < 10; i++ {
		env.post(t, a, "p", 1)
	}
	ctx := context.Background()

	page, err := env.feed.ListPosts(ctx, auth.Anonymous, PostQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 3)

	page, err = env.feed.ListPosts(ctx, auth.Anonymous, PostQuery{Limit: -4})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 3)

	page, err = env.feed.ListPosts(ctx, auth.Anonymous, PostQuery{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 5)
	assert.True(t, page.HasMore)
}

func TestCursorZeroMeansFirstPage(t *testing.T) {
	env := newTestEnv(t)
	a := env.signup(t, "a@x.com")
	env.post(t, a, "p1", 1)
	newest := env.post(t, a, "p2", 1)

	zero := uint(0)
	page, err := env.feed.ListPosts(context.Background(), auth.Anonymous, PostQuery{Cursor: &zero})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, newest.ID, page.Posts[0].ID)
}

func TestFeedMode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.signup(t, "a@x.com")
	b := env.signup(t, "b@x.com")
	c := env.signup(t, "c@x.com")
	env.post(t, a, "from a", 1)
	env.post(t, b, "from b", 2)

	_, err := env.feed.ListPosts(ctx, auth.Anonymous, PostQuery{Feed: true})
	assertAppError(t, err, apperrors.KindUnauthenticated, "Not authenticated")

	page, err := env.feed.ListPosts(ctx, c, PostQuery{Feed: true})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.NotNil(t, page.Posts)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.Cursor)

	_, err = env.follows.Follow(ctx, c, b.UserID)
	require.NoError(t, err)

	page, err = env.feed.ListPosts(ctx, c, PostQuery{Feed: true})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "from b", page.Posts[0].Title)

	all, err := env.feed.ListPosts(ctx, c, PostQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Posts, 2)
}

func TestEndToEndScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u1, err := env.users.Signup(ctx, &SignupRequest{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	viewer1 := env.tokens.ViewerFromHeader("Bearer " + u1.Token)
	require.True(t, viewer1.Authenticated())

	post, err := env.feed.CreatePost(ctx, viewer1, &models.NewPost{Title: "Night out", BeersCount: 3, ImageURL: "http://img"})
	require.NoError(t, err)

	_, err = env.users.Signup(ctx, &SignupRequest{Email: "b@x.com", Password: "password2"})
	require.NoError(t, err)
	u2, err := env.users.Login(ctx, &LoginRequest{Email: "b@x.com", Password: "password2"})
	require.NoError(t, err)
	viewer2 := env.tokens.ViewerFromHeader("Bearer " + u2.Token)

	ok, err := env.follows.Follow(ctx, viewer2, viewer1.UserID)
	require.NoError(t, err)
	require.True(t, ok)

	page, err := env.feed.ListPosts(ctx, viewer2, PostQuery{Feed: true})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	got := page.Posts[0]
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, "Night out", got.Title)
	assert.Equal(t, viewer1.UserID, got.Author.ID)
	assert.Equal(t, int64(1), got.Author.FollowerCount)
	assert.Equal(t, int64(1), got.Author.TotalPostsCount)
	assert.Equal(t, int64(3), got.Author.TotalBeersCount)
	assert.False(t, got.IsLiked)
	assert.False(t, page.HasMore)
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	a := env.signup(t, "a@x.com")

	tests := []struct {
		name    string
		req     models.NewPost
		message string
	}{
		{"blank title", models.NewPost{Title: "   ", BeersCount: 1, ImageURL: "http://img"}, "Title is required"},
		{"blank image", models.NewPost{Title: "t", BeersCount: 1, ImageURL: " "}, "Image URL is required"},
		{"zero beers", models.NewPost{Title: "t", BeersCount: 0, ImageURL: "http://img"}, "Beer count must be between 1 and 12"},
		{"too many beers", models.NewPost{Title: "t", BeersCount: 13, ImageURL: "http://img"}, "Beer count must be between 1 and 12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.feed.CreatePost(context.Background(), a, &tt.req)
			assertAppError(t, err, apperrors.KindValidation, tt.message)
		})
	}

	_, err := env.feed.CreatePost(context.Background(), auth.Anonymous, &models.NewPost{Title: "t", BeersCount: 1, ImageURL: "x"})
	assertAppError(t, err, apperrors.KindUnauthenticated, "Not authenticated")
}

func TestCreatePostTrimsFields(t *testing.T) {
	env := newTestEnv(t)
	a := env.signup(t, "a@x.com")

	view, err := env.feed.CreatePost(context.Background(), a, &models.NewPost{
		Title:       "  Friday  ",
		Description: strPtr("   "),
		BeersCount:  12,
		ImageURL:    " http://img ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Friday", view.Title)
	assert.Nil(t, view.Description)
	assert.Equal(t, "http://img", view.ImageURL)
	assert.Zero(t, view.LikesCount)
	assert.False(t, view.IsLiked)
	assert.Equal(t, int64(1), view.Author.TotalPostsCount)
	assert.Equal(t, int64(12), view.Author.TotalBeersCount)
}

func TestDeletePostPrecedence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signup(t, "a@x.com")
	other := env.signup(t, "b@x.com")
	post := env.post(t, owner, "mine", 2)

	_, err := env.feed.DeletePost(ctx, auth.Anonymous, post.ID)
	assertAppError(t, err, apperrors.KindUnauthenticated, "Not authenticated")

	_, err = env.feed.DeletePost(ctx, other, 424242)
	assertAppError(t, err, apperrors.KindNotFound, "Post not found")

	_, err = env.feed.DeletePost(ctx, other, post.ID)
	assertAppError(t, err, apperrors.KindUnauthorized, "You can only delete your own posts")

	ok, err := env.feed.DeletePost(ctx, owner, post.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.feed.DeletePost(ctx, owner, post.ID)
	assertAppError(t, err, apperrors.KindNotFound, "Post not found")
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	env := newTestEnv(t)
	a := env.signup(t, "a@x.com")
	env.pub.err = errors.New("broker unavailable")

	view, err := env.feed.CreatePost(context.Background(), a, &models.NewPost{Title: "t", BeersCount: 1, ImageURL: "x"})
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
}

func TestStoreFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	a := env.signup(t, "a@x.com")
	env.db.FailWith(errors.New("connection refused"))

	_, err := env.feed.ListPosts(context.Background(), a, PostQuery{})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Equal(t, "Internal server error", apperrors.PublicMessage(err))
}
