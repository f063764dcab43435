package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	v1 "github.com/smartcollab/api/v1"
	"github.com/smartcollab/config"
	"github.com/smartcollab/middleware"
	"github.com/smartcollab/services"
	"github.com/smartcollab/storage"
	"gorm.io/gorm"
)

// Options carries what the router needs from main
type Options struct {
	Config      *config.Config
	DB          *gorm.DB
	Store       *storage.LocalStore
	Verifier    services.CredentialVerifier
	ResetSender services.ResetLinkSender
	Log         *logrus.Logger
}

// SetupRoutes builds the engine with middleware, static uploads, error pages and the v1 API
func SetupRoutes(opts Options) (*gin.Engine, error) {
	if err := v1.RegisterValidators(); err != nil {
		return nil, err
	}

	cfg := opts.Config
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(middleware.Recovery(opts.Log, cfg.IsProduction()))
	router.Use(middleware.RequestLogger(opts.Log))

	// CORS configuration
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return !cfg.IsProduction() }
	}
	router.Use(cors.New(corsConfig))

	router.Static("/uploads", opts.Store.Root())
	v1.RegisterErrorRoutes(router)
	router.NoRoute(v1.NotFound)

	api := router.Group("/api/v1")
	v1.RegisterRoutes(api, v1.Dependencies{
		DB:           opts.DB,
		Store:        opts.Store,
		Verifier:     opts.Verifier,
		ResetSender:  opts.ResetSender,
		SessionTTL:   cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
		PublicURL:    cfg.PublicURL,
		Log:          opts.Log,
	})

	return router, nil
}
