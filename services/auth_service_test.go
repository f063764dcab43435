package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/smartcollab/dto"
	"github.com/smartcollab/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type capturedLink struct {
	userID string
	link   string
}

type captureSender struct {
	sent []capturedLink
}

func (c *captureSender) SendResetLink(_ context.Context, user models.User, link string) error {
	c.sent = append(c.sent, capturedLink{userID: user.ID, link: link})
	return nil
}

func newAuthService(t *testing.T) (*AuthService, *captureSender, *fixture) {
	t.Helper()
	f := newFixture(t)
	sender := &captureSender{}
	verifier := NewJWTIdentity("test-secret", time.Hour, time.Hour, WithBcryptCost(bcrypt.MinCost))
	return NewAuthService(f.db, verifier, sender, "http://app.test/", quietLogger()), sender, f
}

func validRegistration() dto.RegisterRequest {
	return dto.RegisterRequest{
		FirstName:       " Alice ",
		LastName:        "Martin",
		Email:           "Alice@Example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		AcceptTerms:     true,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _, _ := newAuthService(t)

	user, err := auth.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.FirstName)
	assert.NotEqual(t, "Secret123", user.PasswordHash)

	logged, err := auth.Login(context.Background(), dto.LoginRequest{Email: "ALICE@example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = auth.Login(context.Background(), dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	auth, _, _ := newAuthService(t)
	_, err := auth.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	req := validRegistration()
	req.Email = "alice@example.com"
	req.Password = "short"
	req.ConfirmPassword = "different"
	req.AcceptTerms = false

	_, err = auth.Register(context.Background(), req)
	v, ok := AsValidationError(err)
	require.True(t, ok)

	joined := strings.Join(v.Messages, "\n")
	assert.Contains(t, joined, "do not match")
	assert.Contains(t, joined, "terms and conditions")
	assert.Contains(t, joined, "at least 8 characters")
	assert.Contains(t, joined, "uppercase")
	assert.Contains(t, joined, "Email 'alice@example.com' is already taken.")
}

func TestPasswordResetFlow(t *testing.T) {
	auth, sender, f := newAuthService(t)
	user, err := auth.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	require.NoError(t, auth.ForgotPassword(context.Background(), "unknown@example.com"))
	assert.Empty(t, sender.sent)

	require.NoError(t, auth.ForgotPassword(context.Background(), "alice@example.com"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, user.ID, sender.sent[0].userID)

	link, err := url.Parse(sender.sent[0].link)
	require.NoError(t, err)
	assert.Equal(t, "app.test", link.Host)
	assert.Equal(t, "/reset-password", link.Path)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	reset := dto.ResetPasswordRequest{
		Token:           token,
		Email:           link.Query().Get("email"),
		Password:        "Changed456",
		ConfirmPassword: "Changed456",
	}
	require.NoError(t, auth.ResetPassword(context.Background(), reset))

	_, err = auth.Login(context.Background(), dto.LoginRequest{Email: "alice@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(context.Background(), dto.LoginRequest{Email: "alice@example.com", Password: "Changed456"})
	assert.NoError(t, err)

	// the token dies with the old password
	reset.Password, reset.ConfirmPassword = "Another789", "Another789"
	err = auth.ResetPassword(context.Background(), reset)
	v, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Invalid token."}, v.Messages)

	var stored models.User
	require.NoError(t, f.db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, auth.Verifier().VerifyPassword(stored.PasswordHash, "Changed456"))
}

func TestResetPasswordUnknownEmailLooksSuccessful(t *testing.T) {
	auth, _, _ := newAuthService(t)
	err := auth.ResetPassword(context.Background(), dto.ResetPasswordRequest{
		Token: "whatever", Email: "ghost@example.com", Password: "Secret123", ConfirmPassword: "Secret123",
	})
	assert.NoError(t, err)

	err = auth.ResetPassword(context.Background(), dto.ResetPasswordRequest{
		Token: "whatever", Email: "ghost@example.com", Password: "weak", ConfirmPassword: "weak",
	})
	_, ok := AsValidationError(err)
	assert.True(t, ok)
}

type failingSender struct{}

func (failingSender) SendResetLink(context.Context, models.User, string) error {
	return errors.New("smtp unavailable")
}

func TestForgotPasswordSenderFailureLooksLikeUnknownEmail(t *testing.T) {
	f := newFixture(t)
	verifier := NewJWTIdentity("test-secret", time.Hour, time.Hour, WithBcryptCost(bcrypt.MinCost))
	auth := NewAuthService(f.db, verifier, failingSender{}, "http://app.test", quietLogger())

	_, err := auth.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	known := auth.ForgotPassword(context.Background(), "alice@example.com")
	unknown := auth.ForgotPassword(context.Background(), "nobody@example.com")
	assert.NoError(t, known)
	assert.NoError(t, unknown)
}

type countingVerifier struct {
	CredentialVerifier
	verified int
}

func (c *countingVerifier) VerifyPassword(hash, password string) bool {
	c.verified++
	return c.CredentialVerifier.VerifyPassword(hash, password)
}

func TestLoginUnknownEmailStillComparesPassword(t *testing.T) {
	f := newFixture(t)
	verifier := &countingVerifier{
		CredentialVerifier: NewJWTIdentity("test-secret", time.Hour, time.Hour, WithBcryptCost(bcrypt.MinCost)),
	}
	auth := NewAuthService(f.db, verifier, &captureSender{}, "http://app.test", quietLogger())

	_, err := auth.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, verifier.verified)

	_, err = auth.Login(context.Background(), dto.LoginRequest{Email: "ghost@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 2, verifier.verified)
}
