package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/logging"
	"github.com/bugtracker-api/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, dto.RegisterRequest{Username: "alice", Email: " Alice@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.Password)

	_, err = f.auth.Register(ctx, dto.RegisterRequest{Username: "other", Email: "alice@example.com", Password: "secret1"})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	_, err = f.auth.Register(ctx, dto.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "secret1"})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	_, err = f.auth.Register(ctx, dto.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "123"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.register(t, "alice")

	resp, err := f.auth.Login(ctx, dto.LoginRequest{Email: "ALICE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)

	claims, err := f.tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, err = f.auth.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))

	_, err = f.auth.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	created, err := f.auth.EnsureAdmin(ctx, "root@example.com", "root", "secret1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.auth.EnsureAdmin(ctx, "root@example.com", "root", "secret1")
	require.NoError(t, err)
	assert.False(t, created)

	user, err := f.users.FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	blacklist := NewTokenBlacklist(client)
	auth := NewAuthService(f.users, f.tokens, blacklist, logging.Discard())

	f.register(t, "alice")
	resp, err := auth.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, resp.Token))

	claims, err := f.tokens.Validate(resp.Token)
	require.NoError(t, err)
	revoked, err := blacklist.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// unusable tokens need no revocation
	assert.NoError(t, auth.Logout(ctx, "garbage"))
	assert.NoError(t, auth.Logout(ctx, ""))
}
