// Package storetest holds the behaviour every store backing the services must
// share. Both the gorm repositories and memstore run it.
package storetest

import (
	"context"
	"testing"

	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/repository"
	"github.com/beerbuddy/beerbuddy/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Stores struct {
	Users    services.UserStore
	Posts    services.PostStore
	Likes    services.LikeStore
	Comments services.CommentStore
	Follows  services.FollowStore
}

// Run executes every case as a subtest. newStores must hand back empty stores
// on each call.
func Run(t *testing.T, newStores func(t *testing.T) Stores) {
	cases := []struct {
		name string
		fn   func(t *testing.T, s Stores)
	}{
		{"UserUniqueEmail", testUserUniqueEmail},
		{"UserLookupMissing", testUserLookupMissing},
		{"UserUpdatePartial", testUserUpdatePartial},
		{"UserList", testUserList},
		{"PostListPage", testPostListPage},
		{"PostLookupMissing", testPostLookupMissing},
		{"PostDeleteCascades", testPostDeleteCascades},
		{"PostDeleteByAuthor", testPostDeleteByAuthor},
		{"Aggregates", testAggregates},
		{"LikeUnique", testLikeUnique},
		{"LikeCounts", testLikeCounts},
		{"CommentsOldestFirst", testCommentsOldestFirst},
		{"FollowListsNewestFirst", testFollowListsNewestFirst},
		{"FollowCountsAndDelete", testFollowCountsAndDelete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStores(t))
		})
	}
}

func newUser(t *testing.T, s Stores, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "hash"}
	require.NoError(t, s.Users.Create(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func newPost(t *testing.T, s Stores, authorID uint, beers int) *models.Post {
	t.Helper()
	p := &models.Post{Title: "t", BeersCount: beers, ImageURL: "http://img", AuthorID: authorID}
	require.NoError(t, s.Posts.Create(context.Background(), p))
	require.NotZero(t, p.ID)
	return p
}

func testUserUniqueEmail(t *testing.T, s Stores) {
	newUser(t, s, "a@x.com")

	err := s.Users.Create(context.Background(), &models.User{Email: "a@x.com", Password: "hash"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func testUserLookupMissing(t *testing.T, s Stores) {
	ctx := context.Background()

	u, err := s.Users.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = s.Users.GetByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func testUserUpdatePartial(t *testing.T, s Stores) {
	ctx := context.Background()
	bio := "old bio"
	u := &models.User{Email: "a@x.com", Password: "hash", Bio: &bio}
	require.NoError(t, s.Users.Create(ctx, u))
	nick := "Hoppy"

	updated, err := s.Users.Update(ctx, u.ID, map[string]interface{}{
		"nickname": &nick,
		"bio":      nil,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Nickname)
	assert.Equal(t, "Hoppy", *updated.Nickname)
	assert.Nil(t, updated.Bio)
	assert.Equal(t, "a@x.com", updated.Email)
	assert.True(t, updated.UpdatedAt.After(u.UpdatedAt))

	same, err := s.Users.Update(ctx, u.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "Hoppy", *same.Nickname)

	stored, err := s.Users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, u.ID, stored.ID)
	assert.Equal(t, "hash", stored.Password)
}

func testUserList(t *testing.T, s Stores) {
	ctx := context.Background()
	a := newUser(t, s, "a@x.com")
	b := newUser(t, s, "b@x.com")
	c := newUser(t, s, "c@x.com")

	all, err := s.Users.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{a.ID, b.ID, c.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})

	page, err := s.Users.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, b.ID, page[0].ID)
}

func testPostListPage(t *testing.T, s Stores) {
	ctx := context.Background()
	a := newUser(t, s, "a@x.com")
	b := newUser(t, s, "b@x.com")
	p1 := newPost(t, s, a.ID, 1)
	p2 := newPost(t, s, b.ID, 2)
	p3 := newPost(t, s, a.ID, 3)

	page, err := s.Posts.ListPage(ctx, repository.PostFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []uint{p3.ID, p2.ID, p1.ID}, []uint{page[0].ID, page[1].ID, page[2].ID})
	assert.Equal(t, "a@x.com", page[0].Author.Email)

	page, err = s.Posts.ListPage(ctx, repository.PostFilter{Cursor: &p3.ID, AuthorIDs: []uint{a.ID}, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, p1.ID, page[0].ID)

	page, err = s.Posts.ListPage(ctx, repository.PostFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = s.Posts.ListPage(ctx, repository.PostFilter{AuthorIDs: []uint{}, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func testPostLookupMissing(t *testing.T, s Stores) {
	ctx := context.Background()

	p, err := s.Posts.GetByID(ctx, 4242)
	require.NoError(t, err)
	assert.Nil(t, p)

	c, err := s.Comments.GetByID(ctx, 4242)
	require.NoError(t, err)
	assert.Nil(t, c)

	l, err := s.Likes.Get(ctx, 1, 4242)
	require.NoError(t, err)
	assert.Nil(t, l)

	f, err := s.Follows.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func testPostDeleteCascades(t *testing.T, s Stores) {
	ctx := context.Background()
	a := newUser(t, s, "a@x.com")
	p := newPost(t, s, a.ID, 4)
	kept := newPost(t, s, a.ID, 1)

	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: a.ID, PostID: p.ID}))
	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: a.ID, PostID: kept.ID}))
	comment := &models.Comment{UserID: a.ID, PostID: p.ID, Text: "hi"}
	require.NoError(t, s.Comments.Create(ctx, comment))

	require.NoError(t, s.Posts.Delete(ctx, p.ID))

	gone, err := s.Posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	counts, err := s.Likes.CountByPostIDs(ctx, []uint{p.ID, kept.ID})
	require.NoError(t, err)
	assert.Zero(t, counts[p.ID])
	assert.Equal(t, int64(1), counts[kept.ID])

	comments, err := s.Comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	c, err := s.Comments.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func testPostDeleteByAuthor(t *testing.T, s Stores) {
	ctx := context.Background()
	a := newUser(t, s, "a@x.com")
	b := newUser(t, s, "b@x.com")
	newPost(t, s, a.ID, 1)
	newPost(t, s, a.ID, 2)
	other := newPost(t, s, b.ID, 3)

	n, err := s.Posts.DeleteByAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	page, err := s.Posts.ListPage(ctx, repository.PostFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, other.ID, page[0].ID)
}

func testAggregates(t *testing.T, s Stores) {
	ctx := context.Background()
	a := newUser(t, s, "a@x.com")
	newPost(t, s, a.ID, 3)
	newPost(t, s, a.ID, 5)

	n, err := s.Posts.CountByAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	sum, err := s.Posts.SumBeersByAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), sum)

	n, err = s.Posts.CountByAuthor(ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, n)

	sum, err = s.Posts.SumBeersByAuthor(ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func testLikeUnique(t *testing.T, s Stores) {
	ctx := context.Background()
	a := newUser(t, s, "a@x.com")
	p := newPost(t, s, a.ID, 1)

	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: a.ID, PostID: p.ID}))
	err := s.Likes.Create(ctx, &models.Like{UserID: a.ID, PostID: p.ID})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	liked, err := s.Likes.LikedPostIDs(ctx, a.ID, []uint{p.ID})
	require.NoError(t, err)
	assert.True(t, liked[p.ID])

	like, err := s.Likes.Get(ctx, a.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, like)
	require.NoError(t, s.Likes.Delete(ctx, like.ID))

	liked, err = s.Likes.LikedPostIDs(ctx, a.ID, []uint{p.ID})
	require.NoError(t, err)
	assert.False(t, liked[p.ID])
}

func testLikeCounts(t *testing.T, s Stores) {
	ctx := context.Background()
	a := newUser(t, s, "a@x.com")
	b := newUser(t, s, "b@x.com")
	p1 := newPost(t, s, a.ID, 1)
	p2 := newPost(t, s, a.ID, 1)
	p3 := newPost(t, s, a.ID, 1)

	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: a.ID, PostID: p1.ID}))
	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: b.ID, PostID: p1.ID}))
	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: b.ID, PostID: p3.ID}))

	counts, err := s.Likes.CountByPostIDs(ctx, []uint{p1.ID, p2.ID, p3.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[p1.ID])
	assert.Equal(t, int64(1), counts[p3.ID])
	_, ok := counts[p2.ID]
	assert.False(t, ok)

	counts, err = s.Likes.CountByPostIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, counts)

	liked, err := s.Likes.LikedPostIDs(ctx, b.ID, []uint{p1.ID, p2.ID, p3.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{p1.ID: true, p3.ID: true}, liked)

	liked, err = s.Likes.LikedPostIDs(ctx, 0, []uint{p1.ID})
	require.NoError(t, err)
	assert.Empty(t, liked)
}

func testCommentsOldestFirst(t *testing.T, s Stores) {
	ctx := context.Background()
	a := newUser(t, s, "a@x.com")
	b := newUser(t, s, "b@x.com")
	p := newPost(t, s, a.ID, 1)

	first := &models.Comment{UserID: b.ID, PostID: p.ID, Text: "first"}
	require.NoError(t, s.Comments.Create(ctx, first))
	assert.Equal(t, "b@x.com", first.User.Email)
	second := &models.Comment{UserID: a.ID, PostID: p.ID, Text: "second"}
	require.NoError(t, s.Comments.Create(ctx, second))

	list, err := s.Comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Text)
	assert.Equal(t, "second", list[1].Text)
	assert.Equal(t, "a@x.com", list[1].User.Email)

	require.NoError(t, s.Comments.Delete(ctx, first.ID))
	list, err = s.Comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}

func testFollowListsNewestFirst(t *testing.T, s Stores) {
	ctx := context.Background()
	a := newUser(t, s, "a@x.com")
	b := newUser(t, s, "b@x.com")
	c := newUser(t, s, "c@x.com")

	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}))
	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: c.ID}))
	err := s.Follows.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	out, err := s.Follows.ListByFollower(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, c.ID, out[0].FollowingID)
	assert.Equal(t, "c@x.com", out[0].Following.Email)
	assert.Equal(t, "a@x.com", out[0].Follower.Email)

	in, err := s.Follows.ListByFollowing(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, a.ID, in[0].FollowerID)

	ids, err := s.Follows.FollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{b.ID, c.ID}, ids)

	ids, err = s.Follows.FollowingIDs(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func testFollowCountsAndDelete(t *testing.T, s Stores) {
	ctx := context.Background()
	a := newUser(t, s, "a@x.com")
	b := newUser(t, s, "b@x.com")
	c := newUser(t, s, "c@x.com")

	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: c.ID}))
	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: b.ID, FollowingID: c.ID}))

	n, err := s.Follows.CountFollowers(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Follows.CountFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	f, err := s.Follows.Get(ctx, a.ID, c.ID)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.NoError(t, s.Follows.Delete(ctx, f.ID))

	f, err = s.Follows.Get(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.Nil(t, f)

	n, err = s.Follows.CountFollowers(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
