package services

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/models"
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier hides password hashing and token mechanics from the services
type CredentialVerifier interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	IssueSession(user models.User, remember bool) (string, time.Time, error)
	ParseSession(token string) (*dto.TokenClaims, error)
	IssueResetToken(user models.User) (string, error)
	VerifyResetToken(user models.User, token string) error
}

var ErrInvalidToken = errors.New("invalid token")

// JWTIdentity implements CredentialVerifier with bcrypt and HS256 tokens
type JWTIdentity struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	cost       int
	now        func() time.Time
}

// IdentityOption customizes a JWTIdentity
type IdentityOption func(*JWTIdentity)

// WithBcryptCost overrides bcrypt.DefaultCost
func WithBcryptCost(cost int) IdentityOption {
	return func(i *JWTIdentity) { i.cost = cost }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) IdentityOption {
	return func(i *JWTIdentity) { i.now = now }
}

// NewJWTIdentity creates the default credential verifier
func NewJWTIdentity(secret string, sessionTTL, resetTTL time.Duration, opts ...IdentityOption) *JWTIdentity {
	i := &JWTIdentity{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		cost:       bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SessionTTL is the lifetime of a freshly issued session
func (i *JWTIdentity) SessionTTL() time.Duration {
	return i.sessionTTL
}

// HashPassword hashes the password with bcrypt at the configured cost
func (i *JWTIdentity) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), i.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the password matches the bcrypt hash
func (i *JWTIdentity) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueSession generates a new session token for a user
func (i *JWTIdentity) IssueSession(user models.User, remember bool) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.sessionTTL)

	claims := dto.TokenClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Purpose:  dto.PurposeSession,
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := i.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseSession validates a session token and returns its claims
func (i *JWTIdentity) ParseSession(tokenString string) (*dto.TokenClaims, error) {
	claims := &dto.TokenClaims{}
	if err := i.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != dto.PurposeSession || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueResetToken creates a token bound to the user's current password hash,
// so it stops working once the password changes.
func (i *JWTIdentity) IssueResetToken(user models.User) (string, error) {
	now := i.now()
	claims := dto.ResetClaims{
		Email:   user.Email,
		Purpose: dto.PurposePasswordReset,
		Stamp:   passwordStamp(user.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return i.sign(claims)
}

// VerifyResetToken checks the token belongs to the user and is still current
func (i *JWTIdentity) VerifyResetToken(user models.User, tokenString string) error {
	claims := &dto.ResetClaims{}
	if err := i.parse(tokenString, claims); err != nil {
		return err
	}
	if claims.Purpose != dto.PurposePasswordReset ||
		claims.Subject != user.ID ||
		claims.Email != user.Email ||
		claims.Stamp != passwordStamp(user.PasswordHash) {
		return ErrInvalidToken
	}
	return nil
}

func (i *JWTIdentity) sign(claims jwt.Claims) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func (i *JWTIdentity) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
