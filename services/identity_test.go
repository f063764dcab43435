package services

import (
	"testing"
	"time"

	"github.com/smartcollab/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testIdentity(now *time.Time) *JWTIdentity {
	return NewJWTIdentity("test-secret", time.Hour, 30*time.Minute,
		WithBcryptCost(bcrypt.MinCost),
		WithClock(func() time.Time { return *now }))
}

func TestPasswordHashing(t *testing.T) {
	now := time.Now()
	id := testIdentity(&now)

	hash, err := id.HashPassword("Secret#123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret#123", hash)
	assert.True(t, id.VerifyPassword(hash, "Secret#123"))
	assert.False(t, id.VerifyPassword(hash, "secret#123"))
	assert.False(t, id.VerifyPassword("garbage", "Secret#123"))
}

func TestSessionTokenLifecycle(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	id := testIdentity(&now)
	user := models.User{ID: "u-1", Email: "alice@example.com"}

	token, expiresAt, err := id.IssueSession(user, true)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := id.ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.True(t, claims.Remember)

	now = now.Add(2 * time.Hour)
	_, err = id.ParseSession(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenRejectsOtherSecretsAndPurposes(t *testing.T) {
	now := time.Now()
	id := testIdentity(&now)
	user := models.User{ID: "u-1", Email: "alice@example.com", PasswordHash: "h"}

	other := NewJWTIdentity("another-secret", time.Hour, time.Hour)
	token, _, err := other.IssueSession(user, false)
	require.NoError(t, err)
	_, err = id.ParseSession(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	reset, err := id.IssueResetToken(user)
	require.NoError(t, err)
	_, err = id.ParseSession(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = id.ParseSession("not-a-jwt")
	assert.Error(t, err)
}

func TestResetTokenIsBoundToPasswordHash(t *testing.T) {
	now := time.Now()
	id := testIdentity(&now)
	user := models.User{ID: "u-1", Email: "alice@example.com", PasswordHash: "old-hash"}

	token, err := id.IssueResetToken(user)
	require.NoError(t, err)
	require.NoError(t, id.VerifyResetToken(user, token))

	someoneElse := user
	someoneElse.ID = "u-2"
	assert.ErrorIs(t, id.VerifyResetToken(someoneElse, token), ErrInvalidToken)

	user.PasswordHash = "new-hash"
	assert.ErrorIs(t, id.VerifyResetToken(user, token), ErrInvalidToken)

	user.PasswordHash = "old-hash"
	now = now.Add(time.Hour)
	assert.ErrorIs(t, id.VerifyResetToken(user, token), ErrInvalidToken)
}
