package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub/internal/models"
	"github.com/learnhub/learnhub/internal/ratelimit"
)

func TestAuthService_RegisterThenLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db, ratelimit.NewMemoryStore())
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "password",
	})
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.Profile, "registration creates the profile alongside the account")

	claims, _, err := svc.Tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleStudent, claims.Role)

	// registration blocks the email, so login goes through a fresh limiter
	// only for a different identifier; the login key is independent
	_, loginPair, err := svc.Login(ctx, "alice@example.com", "password")
	require.NoError(t, err)
	require.NotNil(t, loginPair)
}

func TestAuthService_Register_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db, ratelimit.NewMemoryStore())
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{name: "empty username", in: RegisterInput{Email: "a@b.c", Password: "x"}},
		{name: "empty email", in: RegisterInput{Username: "a", Password: "x"}},
		{name: "empty password", in: RegisterInput{Username: "a", Email: "a@b.c"}},
		{name: "bad role", in: RegisterInput{Username: "a", Email: "a@b.c", Password: "x", Role: "superuser"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db, ratelimit.NewMemoryStore())
	ctx := context.Background()

	createUser(t, db, "alice", "alice@example.com", models.RoleStudent)

	_, _, err := svc.Register(ctx, RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "password",
	})
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestAuthService_Register_BlocksRepeatRegistration(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db, ratelimit.NewMemoryStore())
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "password",
	})
	require.NoError(t, err)

	// immediate retry with the same email is throttled before any
	// uniqueness check runs
	_, _, err = svc.Register(ctx, RegisterInput{
		Username: "bob2", Email: "bob@example.com", Password: "password",
	})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestAuthService_Login_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "carol", "carol@example.com", models.RoleStudent)
	ctx := context.Background()

	// separate limiters so the second attempt is not throttled
	svc1 := newTestAuthService(db, ratelimit.NewMemoryStore())
	_, _, errUnknown := svc1.Login(ctx, "nobody@example.com", "password")

	svc2 := newTestAuthService(db, ratelimit.NewMemoryStore())
	_, _, errWrongPw := svc2.Login(ctx, "carol@example.com", "wrong")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestAuthService_Login_FailedAttemptBlocksIdentifier(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db, ratelimit.NewMemoryStore())
	createUser(t, db, "dave", "dave@example.com", models.RoleStudent)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "dave@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// every following attempt in the window is rejected up front, even
	// with the correct password
	for i := 0; i < 5; i++ {
		_, _, err = svc.Login(ctx, "dave@example.com", "password")
		assert.ErrorIs(t, err, ErrRateLimited)
	}
}

func TestAuthService_Login_BlockExpiresAndClearsOnSuccess(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	store := ratelimit.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	svc := newTestAuthService(db, store)
	createUser(t, db, "erin", "erin@example.com", models.RoleStudent)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "erin@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "erin@example.com", "password")
	require.ErrorIs(t, err, ErrRateLimited)

	mr.FastForward(31 * time.Second)

	_, pair, err := svc.Login(ctx, "erin@example.com", "password")
	require.NoError(t, err)
	require.NotNil(t, pair)

	// successful login cleared the key, so a fresh attempt is allowed
	blocked, err := store.IsBlocked(ctx, ratelimit.LoginKey("erin@example.com"))
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db, ratelimit.NewMemoryStore())
	user := createUser(t, db, "frank", "frank@example.com", models.RoleStudent)
	ctx := context.Background()

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("is_active", false).Error)

	_, _, err := svc.Login(ctx, "frank@example.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db, ratelimit.NewMemoryStore())
	user := createUser(t, db, "grace", "grace@example.com", models.RoleStudent)
	ctx := context.Background()

	pair, err := svc.Tokens.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	_, err = svc.Tokens.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_Logout_InvalidToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db, ratelimit.NewMemoryStore())

	err := svc.Logout(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
