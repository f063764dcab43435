package database

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const copyBatchSize = 500

// DBConnection represents a named database connection used by maintenance scripts
type DBConnection struct {
	DB     *gorm.DB
	Name   string
	Driver string
	Models []interface{}
	log    *logrus.Entry
}

// NewDBConnection creates a new database connection
func NewDBConnection(name, driver, dsn string, log *logrus.Logger) (*DBConnection, error) {
	entry := log.WithField("database", name)

	db, err := Open(Options{Driver: driver, DSN: dsn, LogLevel: logger.Warn}, entry)
	if err != nil {
		return nil, errors.Wrapf(err, "%s database", name)
	}

	entry.Info("Connected")

	return &DBConnection{
		DB:     db,
		Name:   name,
		Driver: driver,
		Models: models.All(),
		log:    entry,
	}, nil
}

// Migrate migrates the database schema
func (c *DBConnection) Migrate() error {
	c.log.Info("Migrating database schema...")
	if err := c.DB.AutoMigrate(c.Models...); err != nil {
		return errors.Wrapf(err, "failed to migrate %s database", c.Name)
	}
	c.log.Info("Database schema migrated")
	return nil
}

// MigrateDataBetweenDatabases copies every table from source to target.
// Tables are copied parents first so foreign keys resolve.
func MigrateDataBetweenDatabases(source, target *DBConnection) error {
	source.log.Info("Starting data migration from source to target...")

	return target.DB.Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name string
			copy func() (int, error)
		}{
			{"users", func() (int, error) { return copyTable[models.User](source.DB, tx, "id") }},
			{"projects", func() (int, error) { return copyTable[models.Project](source.DB, tx, "id") }},
			{"project members", func() (int, error) { return copyTable[models.ProjectMember](source.DB, tx, "id") }},
			{"tasks", func() (int, error) { return copyTable[models.ProjectTask](source.DB, tx, "id") }},
			{"task assignments", func() (int, error) { return copyTable[models.TaskAssignment](source.DB, tx, "task_id, user_id") }},
			{"comments", func() (int, error) { return copyTable[models.Comment](source.DB, tx, "id") }},
			{"comment mentions", func() (int, error) {
				return copyTable[models.CommentMention](source.DB, tx, "comment_id, project_member_id")
			}},
			{"project files", func() (int, error) { return copyTable[models.ProjectFile](source.DB, tx, "id") }},
		}

		for _, step := range steps {
			n, err := step.copy()
			if err != nil {
				return errors.Wrapf(err, "failed to migrate %s", step.name)
			}
			target.log.WithField("table", step.name).Infof("Migrated %d rows", n)
		}
		return nil
	})
}

// copyTable pages through the source by primary key; associations are
// omitted so only the table itself is written
func copyTable[T any](source, target *gorm.DB, orderBy string) (int, error) {
	total := 0
	for offset := 0; ; offset += copyBatchSize {
		var batch []T
		if err := source.Order(orderBy).Limit(copyBatchSize).Offset(offset).Find(&batch).Error; err != nil {
			return total, err
		}
		if len(batch) == 0 {
			return total, nil
		}
		if err := target.Omit(clause.Associations).Create(&batch).Error; err != nil {
			return total, err
		}
		total += len(batch)
		if len(batch) < copyBatchSize {
			return total, nil
		}
	}
}
