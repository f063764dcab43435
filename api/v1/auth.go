package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/middleware"
	"github.com/smartcollab/services"
)

const forgotPasswordMessage = "If an account exists for that email, a password reset link has been sent."

// AuthController handles registration, sign-in and password recovery
type AuthController struct {
	authService *services.AuthService
	session     *middleware.Session
	log         *logrus.Entry
}

// NewAuthController creates a new auth controller
func NewAuthController(authService *services.AuthService, session *middleware.Session, log *logrus.Entry) *AuthController {
	return &AuthController{
		authService: authService,
		session:     session,
		log:         log,
	}
}

// RegisterRoutes registers auth routes; /me requires a session
func (c *AuthController) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", c.Register)
		authGroup.POST("/login", c.Login)
		authGroup.POST("/logout", c.Logout)
		authGroup.POST("/forgot-password", c.ForgotPassword)
		authGroup.POST("/reset-password", c.ResetPassword)
		authGroup.GET("/me", requireAuth, c.GetCurrentUser)
	}
}

// Register handles user registration and signs the new user in
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, c.log, "v1.Register", err)
		return
	}

	expiresAt, err := c.session.Issue(ctx, *user, false)
	if err != nil {
		respondError(ctx, c.log, "v1.Register", err)
		return
	}

	respondData(ctx, http.StatusCreated, dto.AuthResponse{
		User:      dto.NewUserResponse(*user),
		ExpiresAt: expiresAt,
	})
}

// Login handles user authentication
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, c.log, "v1.Login", err)
		return
	}

	expiresAt, err := c.session.Issue(ctx, *user, req.RememberMe)
	if err != nil {
		respondError(ctx, c.log, "v1.Login", err)
		return
	}

	respondData(ctx, http.StatusOK, dto.AuthResponse{
		User:      dto.NewUserResponse(*user),
		ExpiresAt: expiresAt,
	})
}

// Logout clears the session cookie
func (c *AuthController) Logout(ctx *gin.Context) {
	c.session.Clear(ctx)
	respondMessage(ctx, http.StatusOK, "Logged out successfully")
}

// ForgotPassword always answers with the same message
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	if err := c.authService.ForgotPassword(ctx.Request.Context(), req.Email); err != nil {
		respondError(ctx, c.log, "v1.ForgotPassword", err)
		return
	}
	respondMessage(ctx, http.StatusOK, forgotPasswordMessage)
}

// ResetPassword sets a new password from a reset link
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	if err := c.authService.ResetPassword(ctx.Request.Context(), req); err != nil {
		respondError(ctx, c.log, "v1.ResetPassword", err)
		return
	}
	respondMessage(ctx, http.StatusOK, "Your password has been reset.")
}

// GetCurrentUser returns the currently authenticated user
func (c *AuthController) GetCurrentUser(ctx *gin.Context) {
	user, err := c.authService.GetUser(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		respondError(ctx, c.log, "v1.GetCurrentUser", err)
		return
	}
	respondData(ctx, http.StatusOK, dto.NewUserResponse(*user))
}
