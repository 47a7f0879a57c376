package repositories

import (
	"context"

	"github.com/binhtph/quiz-app/internal/models"
	"gorm.io/gorm"
)

// ExamRepository interface for exam operations
type ExamRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error // Cascades to questions and results

	// LockForUpdate holds the exam row until tx ends, serializing writers
	// that read and then append the exam's results.
	LockForUpdate(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters ExamFilters) ([]*models.Exam, int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}
