package pkg

import (
	"fmt"

	"github.com/binhtph/quiz-app/internal/config"
	"github.com/binhtph/quiz-app/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.IsProduction() {
		logLevel = logger.Error
	} else {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the exams, questions and results tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Exam{}, &models.Question{}, &models.Result{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
