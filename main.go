package main

import (
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/config"
	"github.com/smartcollab/database"
	"github.com/smartcollab/routes"
	"github.com/smartcollab/services"
	"github.com/smartcollab/storage"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	log := newLogger(cfg)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	if err := database.Initialize(cfg, log); err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}

	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare upload directory")
	}

	verifier := services.NewJWTIdentity(cfg.JWTSecret, cfg.SessionTTL, cfg.ResetTokenTTL)

	router, err := routes.SetupRoutes(routes.Options{
		Config:      cfg,
		DB:          database.DB,
		Store:       store,
		Verifier:    verifier,
		ResetSender: services.LogResetLinkSender{Log: log.WithField("component", "mailer")},
		Log:         log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to set up routes")
	}

	// Start server
	log.WithFields(logrus.Fields{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("SmartCollab API starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

// newLogger configures logrus for the environment
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	switch cfg.Env {
	case config.EnvProd:
		log.SetLevel(logrus.WarnLevel)
		log.SetFormatter(&logrus.JSONFormatter{})
	case config.EnvDev:
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true})
	}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.WithError(err).Warn("Cannot open log file, logging to stdout only")
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	} else {
		log.SetOutput(os.Stdout)
	}

	return log
}
