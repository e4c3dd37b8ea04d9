package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phimhub/phimhub/internal/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t)
	svc, err := NewService(db.Conn, "", db.Logger)
	require.NoError(t, err)
	return svc
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Viewer@Example.com", "hunter22", "Viewer")
	require.NoError(t, err)
	assert.Equal(t, "viewer@example.com", user.Email)
	assert.Equal(t, "Viewer", user.DisplayName)
	assert.NotEmpty(t, user.ID)

	// Login is case-insensitive on email.
	got, err := svc.ValidateCredentials(ctx, "VIEWER@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.ValidateCredentials(ctx, "viewer@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.ValidateCredentials(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "pass", "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, "a@b.c", "", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = svc.Register(ctx, "a@b.c", "pass", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@b.c", "other", "")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestService_RegisterDefaultsDisplayName(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(context.Background(), "a@b.c", "pass", "")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.DisplayName)
}

func TestService_TokenRoundTrip(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(context.Background(), "a@b.c", "pass", "A")
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, user.Email, claims.Email)

	_, err = svc.ValidateToken(token + "tampered")
	assert.Error(t, err)
}

func TestService_SecretPersistsAcrossRestarts(t *testing.T) {
	db := testutil.NewTestDB(t)

	first, err := NewService(db.Conn, "", db.Logger)
	require.NoError(t, err)

	user, err := first.Register(context.Background(), "a@b.c", "pass", "A")
	require.NoError(t, err)
	token, err := first.GenerateToken(user)
	require.NoError(t, err)

	// A second service over the same database loads the same secret.
	second, err := NewService(db.Conn, "", db.Logger)
	require.NoError(t, err)

	claims, err := second.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
}

func TestService_GetUser(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(context.Background(), "a@b.c", "pass", "A")
	require.NoError(t, err)

	got, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.GetUser(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
