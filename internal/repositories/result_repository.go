package repositories

import (
	"context"

	"github.com/binhtph/quiz-app/internal/models"
	"gorm.io/gorm"
)

// ResultRepository stores completed attempts. Results are append-only apart
// from RenameUser.
type ResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.Result) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error)

	// Query operations
	ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.Result, error)
	ListByExams(ctx context.Context, tx *gorm.DB, examIDs []uint) ([]models.Result, error)
	History(ctx context.Context, tx *gorm.DB, filters HistoryFilters) ([]models.Result, error) // Newest first, exam preloaded

	// Maintenance
	RenameUser(ctx context.Context, tx *gorm.DB, oldName, newName string) (int64, error)
}
