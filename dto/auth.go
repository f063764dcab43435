package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeSession       = "session"
	PurposePasswordReset = "password_reset"
)

// TokenClaims represents our session JWT claims
type TokenClaims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Purpose  string `json:"purpose"`
	Remember bool   `json:"remember,omitempty"`
	jwt.RegisteredClaims
}

// ResetClaims are carried by password reset tokens
type ResetClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	Stamp   string `json:"stamp"`
	jwt.RegisteredClaims
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	FirstName       string `json:"firstName" binding:"required,max=100"`
	LastName        string `json:"lastName" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"acceptTerms"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

// AuthResponse represents the response after authentication
type AuthResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}
