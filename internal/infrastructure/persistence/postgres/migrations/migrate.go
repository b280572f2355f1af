package migrations

import (
	"errors"
	"fmt"
	"time"

	"github.com/Youngermaster/taskhub/internal/domain/activity"
	"github.com/Youngermaster/taskhub/internal/domain/project"
	"github.com/Youngermaster/taskhub/internal/domain/task"
	"github.com/Youngermaster/taskhub/internal/domain/user"
	"github.com/Youngermaster/taskhub/internal/infrastructure/persistence/postgres/connection"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrationRecord tracks the migration history
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"not null;unique"`
	Version   int       `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for migration records
func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *connection.Database, logger *zap.Logger) error {
	logger.Info("Starting automatic database migration...")

	// Enable UUID extension for PostgreSQL
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		logger.Error("Failed to create UUID extension", zap.Error(err))
		return fmt.Errorf("failed to create UUID extension: %v", err)
	}

	// Create migrations table if it doesn't exist
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		logger.Error("Failed to create migrations table", zap.Error(err))
		return fmt.Errorf("failed to create migrations table: %v", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		txDB := &connection.Database{DB: tx}

		var lastVersion int
		if err := txDB.Model(&MigrationRecord{}).Select("COALESCE(MAX(version), 0)").Scan(&lastVersion).Error; err != nil {
			return fmt.Errorf("failed to get last version: %v", err)
		}

		// Order matters due to foreign key relationships: users are
		// referenced by projects and tasks, projects by tasks.
		models := []interface{}{
			&user.User{},
			&project.Project{},
			&task.Task{},
			&activity.Entry{},
		}

		for i, model := range models {
			modelName := fmt.Sprintf("%T", model)

			var record MigrationRecord
			err := txDB.Where("name = ?", modelName).First(&record).Error
			if err == nil {
				logger.Debug("Migration already applied", zap.String("model", modelName))
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check migration record for %s: %v", modelName, err)
			}

			logger.Info("Migrating model", zap.String("model", modelName))
			if err := txDB.AutoMigrate(model); err != nil {
				return fmt.Errorf("failed to migrate %s: %v", modelName, err)
			}

			record = MigrationRecord{
				Name:      modelName,
				Version:   lastVersion + i + 1,
				AppliedAt: time.Now().UTC(),
			}
			if err := txDB.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to record migration for %s: %v", modelName, err)
			}
		}

		logger.Info("Database migration completed successfully")
		return nil
	})
}
