package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/beerbuddy/beerbuddy/internal/apperrors"
	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payload, err := env.users.Signup(ctx, &SignupRequest{
		Email:    "  A@X.com ",
		Password: "password1",
		Name:     strPtr("  Ann "),
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", payload.User.Email)
	assert.Equal(t, "Ann", *payload.User.Name)
	assert.Nil(t, payload.User.Nickname)

	claims, ok := env.tokens.Verify(payload.Token)
	require.True(t, ok)
	assert.Equal(t, payload.User.ID, claims.UserID)

	login, err := env.users.Login(ctx, &LoginRequest{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, payload.User.ID, login.User.ID)
	claims, ok = env.tokens.Verify(login.Token)
	require.True(t, ok)
	assert.Equal(t, payload.User.ID, claims.UserID)

	assert.Equal(t, []queue.EventType{queue.EventUserCreated}, env.pub.types())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com")

	_, wrongPassword := env.users.Login(ctx, &LoginRequest{Email: "a@x.com", Password: "password2"})
	_, unknownUser := env.users.Login(ctx, &LoginRequest{Email: "b@x.com", Password: "password1"})

	assertAppError(t, wrongPassword, apperrors.KindUnauthenticated, "Invalid email or password")
	assertAppError(t, unknownUser, apperrors.KindUnauthenticated, "Invalid email or password")
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

// flakyHasher fails its first failures calls to Hash and records what Verify
// was asked to check.
type flakyHasher struct {
	failures int
	hashes   int
	verified []string
}

func (h *flakyHasher) Hash(password string) (string, error) {
	h.hashes++
	if h.hashes <= h.failures {
		return "", errors.New("entropy source unavailable")
	}
	return "hashed:" + password, nil
}

func (h *flakyHasher) Verify(encoded, password string) bool {
	h.verified = append(h.verified, encoded)
	return encoded == "hashed:"+password
}

func TestLoginUnknownUserRetriesPlaceholderHash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hasher := &flakyHasher{failures: 1}
	users := NewUserService(env.db.Users(), env.agg, hasher, env.tokens, env.pub, logger.NewNop())

	_, err := users.Login(ctx, &LoginRequest{Email: "ghost@x.com", Password: "password1"})
	assertAppError(t, err, apperrors.KindUnauthenticated, "Invalid email or password")
	assert.Empty(t, hasher.verified, "no verify against an empty hash")

	for i := 0; i < 2; i++ {
		_, err = users.Login(ctx, &LoginRequest{Email: "ghost@x.com", Password: "password1"})
		assertAppError(t, err, apperrors.KindUnauthenticated, "Invalid email or password")
	}
	assert.Equal(t, []string{"hashed:placeholder-password", "hashed:placeholder-password"}, hasher.verified)
	assert.Equal(t, 2, hasher.hashes, "cached after the first success")
}

func TestLoginRejectsMalformedEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Login(context.Background(), &LoginRequest{Email: "nope", Password: "password1"})
	assertAppError(t, err, apperrors.KindValidation, "Invalid email format")
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "a@x.com")

	_, err := env.users.Signup(context.Background(), &SignupRequest{Email: " A@X.COM", Password: "password1"})
	assertAppError(t, err, apperrors.KindConflict, "Invalid email or password")
}

// emailBlindUsers never finds an existing email, forcing the insert to hit
// the unique constraint the way a concurrent signup would.
type emailBlindUsers struct {
	UserStore
}

func (emailBlindUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

func TestSignupRaceMapsToConflict(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "a@x.com")

	svc := NewUserService(emailBlindUsers{env.db.Users()}, env.agg, auth.NewPasswordHasher(testArgon2), env.tokens, nil, logger.NewNop())
	_, err := svc.Signup(context.Background(), &SignupRequest{Email: "a@x.com", Password: "password1"})
	assertAppError(t, err, apperrors.KindConflict, "Invalid email or password")
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		message string
	}{
		{"bad email", SignupRequest{Email: "not-an-email", Password: "password1"}, "Invalid email format"},
		{"email with space", SignupRequest{Email: "a b@x.com", Password: "password1"}, "Invalid email format"},
		{"missing password", SignupRequest{Email: "a@x.com"}, "Password is required"},
		{"short password", SignupRequest{Email: "a@x.com", Password: "1234567"}, "Password must be at least 8 characters long"},
		{"long nickname", SignupRequest{Email: "a@x.com", Password: "password1", Nickname: strPtr(strings.Repeat("n", 51))}, "Nickname must be 50 characters or less"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.users.Signup(context.Background(), &tt.req)
			assertAppError(t, err, apperrors.KindValidation, tt.message)
		})
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Me(ctx, auth.Anonymous)
	assertAppError(t, err, apperrors.KindUnauthenticated, "Not authenticated")

	viewer := env.signup(t, "a@x.com")
	env.post(t, viewer, "One", 3)
	env.post(t, viewer, "Two", 4)

	me, err := env.users.Me(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", me.Email)
	assert.Equal(t, int64(2), me.TotalPostsCount)
	assert.Equal(t, int64(7), me.TotalBeersCount)

	_, err = env.users.Me(ctx, auth.Viewer{UserID: 999})
	assertAppError(t, err, apperrors.KindNotFound, "User not found")
}

func TestUpdateProfilePartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	viewer := env.signup(t, "a@x.com")

	_, err := env.users.UpdateProfile(ctx, auth.Anonymous, &models.ProfileUpdate{Bio: strPtr("x")})
	assertAppError(t, err, apperrors.KindUnauthenticated, "Not authenticated")

	profile, err := env.users.UpdateProfile(ctx, viewer, &models.ProfileUpdate{
		Nickname: strPtr("  Hoppy  "),
		Bio:      strPtr("Stouts mostly"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hoppy", *profile.Nickname)
	assert.Equal(t, "Stouts mostly", *profile.Bio)

	// only bio is present: it becomes NULL, nickname is untouched
	profile, err = env.users.UpdateProfile(ctx, viewer, &models.ProfileUpdate{Bio: strPtr("   ")})
	require.NoError(t, err)
	assert.Nil(t, profile.Bio)
	require.NotNil(t, profile.Nickname)
	assert.Equal(t, "Hoppy", *profile.Nickname)

	_, err = env.users.UpdateProfile(ctx, viewer, &models.ProfileUpdate{Nickname: strPtr(strings.Repeat("é", 51))})
	assertAppError(t, err, apperrors.KindValidation, "Nickname must be 50 characters or less")

	_, err = env.users.UpdateProfile(ctx, viewer, &models.ProfileUpdate{Bio: strPtr(strings.Repeat("b", 501))})
	assertAppError(t, err, apperrors.KindValidation, "Bio must be 500 characters or less")

	me, err := env.users.Me(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, "Hoppy", *me.Nickname)
	assert.Nil(t, me.Bio)
}

func TestUserPayloadsOmitPasswordHash(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "a@x.com")
	env.signup(t, "b@x.com")

	list, err := env.users.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalCount)

	raw, err := json.Marshal(list)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "argon2id")
	assert.NotContains(t, string(raw), `"password"`)
	assert.Contains(t, string(raw), `"follower_count":0`)
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.signup(t, "a@x.com")

	profile, err := env.users.GetUser(context.Background(), viewer.UserID)
	require.NoError(t, err)
	assert.Equal(t, viewer.UserID, profile.ID)

	_, err = env.users.GetUser(context.Background(), 404)
	assertAppError(t, err, apperrors.KindNotFound, "User not found")
}
