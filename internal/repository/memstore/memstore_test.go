package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/repository/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Stores {
		db := New()
		return storetest.Stores{
			Users:    db.Users(),
			Posts:    db.Posts(),
			Likes:    db.Likes(),
			Comments: db.Comments(),
			Follows:  db.Follows(),
		}
	})
}

func TestCommentRequiresPost(t *testing.T) {
	db := New()
	u := &models.User{Email: "a@x.com", Password: "hash"}
	require.NoError(t, db.Users().Create(context.Background(), u))

	err := db.Comments().Create(context.Background(), &models.Comment{UserID: u.ID, PostID: 77, Text: "hi"})
	assert.ErrorIs(t, err, errForeignKey)
}

func TestFailWith(t *testing.T) {
	db := New()
	boom := errors.New("connection reset")
	db.FailWith(boom)

	_, err := db.Users().GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, boom)

	db.FailWith(nil)
	_, err = db.Users().GetByID(context.Background(), 1)
	assert.NoError(t, err)
}

func TestNotificationStoreCapped(t *testing.T) {
	ctx := context.Background()
	s := NewNotificationStore(2)

	for _, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, s.Push(ctx, &models.Notification{ID: id, UserID: 1}))
	}

	out, err := s.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "n3", out[0].ID)
	assert.Equal(t, "n2", out[1].ID)
}
