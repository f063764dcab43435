package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/middleware"
	"github.com/smartcollab/services"
	"github.com/smartcollab/storage"
	"gorm.io/gorm"
)

// Dependencies are shared by every v1 controller
type Dependencies struct {
	DB           *gorm.DB
	Store        storage.Store
	Verifier     services.CredentialVerifier
	ResetSender  services.ResetLinkSender
	SessionTTL   time.Duration
	CookieSecure bool
	PublicURL    string
	Log          *logrus.Logger
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, deps Dependencies) {
	log := logrus.NewEntry(deps.Log)
	session := &middleware.Session{
		Verifier: deps.Verifier,
		TTL:      deps.SessionTTL,
		Secure:   deps.CookieSecure,
		Log:      log.WithField("component", "session"),
	}
	requireAuth := middleware.AuthMiddleware(session)

	// Health check endpoint
	router.GET("/health", HealthCheck(deps.DB))

	authService := services.NewAuthService(deps.DB, deps.Verifier, deps.ResetSender, deps.PublicURL,
		log.WithField("service", "auth"))
	NewAuthController(authService, session, log).RegisterRoutes(router, requireAuth)

	// Everything below requires a session
	authRouter := router.Group("")
	authRouter.Use(requireAuth)

	NewDashboardController(
		services.NewDashboardService(deps.DB, log.WithField("service", "dashboard")), log,
	).RegisterRoutes(authRouter)

	NewProjectController(
		services.NewProjectService(deps.DB, log.WithField("service", "project")), log,
	).RegisterRoutes(authRouter)

	NewTaskController(
		services.NewTaskService(deps.DB, deps.Store, log.WithField("service", "task")), log,
	).RegisterRoutes(authRouter)

	NewProfileController(
		services.NewProfileService(deps.DB, deps.Store, log.WithField("service", "profile")), session, log,
	).RegisterRoutes(authRouter)
}
