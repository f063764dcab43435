package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/config"
	"github.com/smartcollab/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Options tunes how a connection is opened
type Options struct {
	Driver   string
	DSN      string
	LogLevel logger.LogLevel
	Colorful bool
}

// Initialize sets up the global GORM connection and migrates the schema
func Initialize(cfg *config.Config, log *logrus.Logger) error {
	opts := Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DatabaseURL,
		LogLevel: logger.Warn,
		Colorful: cfg.Env == config.EnvLocal,
	}
	if cfg.Env == config.EnvLocal {
		opts.LogLevel = logger.Info
	}

	db, err := Open(opts, log.WithField("component", "gorm"))
	if err != nil {
		return err
	}

	if err := AutoMigrate(db); err != nil {
		return err
	}

	DB = db
	log.WithField("driver", cfg.DBDriver).Info("Connected to database")
	logVersion(db, cfg.DBDriver, log)
	return nil
}

// Open connects with the requested driver and applies pool settings
func Open(opts Options, log *logrus.Entry) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	// GORM writes through logrus
	newLogger := logger.New(
		log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  opts.Colorful,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s database", opts.Driver)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get SQL DB")
	}

	if opts.Driver == "sqlite" {
		// a single writer keeps sqlite from reporting "database is locked"
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// OpenInMemory opens a private in-memory sqlite database with the schema migrated
func OpenInMemory(name string) (*gorm.DB, error) {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	db, err := Open(Options{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name),
		LogLevel: logger.Silent,
	}, logrus.NewEntry(log))
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates or updates every table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "failed to auto migrate")
	}
	return nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	if dsn == "" {
		return nil, errors.New("database URL cannot be empty")
	}
	switch driver {
	case "postgres", "":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
}

func logVersion(db *gorm.DB, driver string, log *logrus.Logger) {
	query := "SELECT version()"
	if driver == "sqlite" {
		query = "SELECT sqlite_version()"
	}

	var version string
	if err := db.Raw(query).Scan(&version).Error; err == nil {
		log.Debugf("Database: %s", version)
	}
}
