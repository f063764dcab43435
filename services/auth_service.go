package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/models"
	"github.com/smartcollab/repositories"
	"github.com/smartcollab/utils"
	"gorm.io/gorm"
)

// ResetLinkSender delivers password reset links to users
type ResetLinkSender interface {
	SendResetLink(ctx context.Context, user models.User, link string) error
}

// LogResetLinkSender writes reset links to the log instead of mailing them
type LogResetLinkSender struct {
	Log *logrus.Entry
}

// SendResetLink logs the link at info level with the user's ID
func (s LogResetLinkSender) SendResetLink(_ context.Context, user models.User, link string) error {
	s.Log.WithField("user_id", user.ID).Infof("Password reset link: %s", link)
	return nil
}

// AuthService handles registration, login and password recovery
type AuthService struct {
	users     *repositories.UserRepository
	verifier  CredentialVerifier
	sender    ResetLinkSender
	publicURL string
	log       *logrus.Entry

	dummyOnce sync.Once
	dummy     string
}

// NewAuthService creates a new auth service instance
func NewAuthService(db *gorm.DB, verifier CredentialVerifier, sender ResetLinkSender, publicURL string, log *logrus.Entry) *AuthService {
	return &AuthService{
		users:     repositories.NewUserRepository(db),
		verifier:  verifier,
		sender:    sender,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}
}

// dummyHash is compared against when the email is unknown
func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.verifier.HashPassword(uuid.NewString())
		if err != nil {
			s.log.WithError(err).Warn("failed to prepare dummy password hash")
			return
		}
		s.dummy = hash
	})
	return s.dummy
}

// Verifier exposes the credential verifier used to issue sessions
func (s *AuthService) Verifier() CredentialVerifier {
	return s.verifier
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	const op = "services.AuthService.Register"

	var messages []string
	if req.Password != req.ConfirmPassword {
		messages = append(messages, "The password and confirmation password do not match.")
	}
	if !req.AcceptTerms {
		messages = append(messages, "You must accept the terms and conditions.")
	}
	messages = append(messages, utils.PasswordPolicyViolations(req.Password)...)

	// Check if email already exists
	taken, err := s.users.EmailTaken(ctx, req.Email, "")
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if taken {
		messages = append(messages, fmt.Sprintf("Email '%s' is already taken.", models.NormalizeEmail(req.Email)))
	}

	if len(messages) > 0 {
		return nil, NewValidationError(messages...)
	}

	hash, err := s.verifier.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError(fmt.Sprintf("Email '%s' is already taken.", user.Email))
		}
		return nil, errors.Wrap(err, op)
	}

	s.log.WithField("operation", op).WithField("user_id", user.ID).Info("user registered")
	return &user, nil
}

// Login checks credentials; unknown email and wrong password look the same
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*models.User, error) {
	const op = "services.AuthService.Login"

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// spend the same bcrypt work as a wrong password
			s.verifier.VerifyPassword(s.dummyHash(), req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, op)
	}

	if !s.verifier.VerifyPassword(user.PasswordHash, req.Password) {
		s.log.WithField("operation", op).WithField("user_id", user.ID).Debug("wrong password")
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "services.AuthService.GetUser")
	}
	return &user, nil
}

// ForgotPassword issues a reset link when the account exists.
// The caller always shows the same confirmation.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const op = "services.AuthService.ForgotPassword"

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return errors.Wrap(err, op)
	}

	token, err := s.verifier.IssueResetToken(user)
	if err != nil {
		return errors.Wrap(err, op)
	}

	link := fmt.Sprintf("%s/reset-password?email=%s&token=%s",
		s.publicURL, url.QueryEscape(user.Email), url.QueryEscape(token))

	if err := s.sender.SendResetLink(ctx, user, link); err != nil {
		s.log.WithField("operation", op).WithError(err).Error("failed to send reset link")
	}
	return nil
}

// ResetPassword sets a new password when the token is valid.
// An unknown email is treated as success.
func (s *AuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	const op = "services.AuthService.ResetPassword"

	var messages []string
	if req.Password != req.ConfirmPassword {
		messages = append(messages, "The password and confirmation password do not match.")
	}
	messages = append(messages, utils.PasswordPolicyViolations(req.Password)...)
	if len(messages) > 0 {
		return NewValidationError(messages...)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return errors.Wrap(err, op)
	}

	if err := s.verifier.VerifyResetToken(user, req.Token); err != nil {
		s.log.WithField("operation", op).WithError(err).Debug("reset token rejected")
		return NewValidationError("Invalid token.")
	}

	hash, err := s.verifier.HashPassword(req.Password)
	if err != nil {
		return errors.Wrap(err, op)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return errors.Wrap(err, op)
	}

	s.log.WithField("operation", op).WithField("user_id", user.ID).Info("password reset")
	return nil
}
