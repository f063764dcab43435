package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/smartcollab/config"
	"github.com/smartcollab/database"
)

// Copies every table from SOURCE_DATABASE_URL to TARGET_DATABASE_URL, e.g. sqlite to postgres.
func main() {
	config.LoadEnv()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.Info("Starting database migration...")

	sourceDriver := config.GetEnv("SOURCE_DB_DRIVER", "postgres")
	sourceDBURL := os.Getenv("SOURCE_DATABASE_URL")
	targetDriver := config.GetEnv("TARGET_DB_DRIVER", "postgres")
	targetDBURL := os.Getenv("TARGET_DATABASE_URL")

	if sourceDBURL == "" || targetDBURL == "" {
		log.Fatal("SOURCE_DATABASE_URL and TARGET_DATABASE_URL must both be set")
	}

	// Connect to source database
	sourceDB, err := database.NewDBConnection("source", sourceDriver, sourceDBURL, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to source database")
	}

	// Connect to target database
	targetDB, err := database.NewDBConnection("target", targetDriver, targetDBURL, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to target database")
	}

	// Ensure target database schema is migrated
	if err := targetDB.Migrate(); err != nil {
		log.WithError(err).Fatal("Failed to migrate target database schema")
	}

	if err := database.MigrateDataBetweenDatabases(sourceDB, targetDB); err != nil {
		log.WithError(err).Fatal("Data migration failed")
	}

	log.Info("Database migration completed successfully!")
}
