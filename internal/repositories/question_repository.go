package repositories

import (
	"context"

	"github.com/binhtph/quiz-app/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for question operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Exam-scoped queries, ordered by order_num then id
	GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.Question, error)
	DeleteByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error)

	// Ordering
	GetNextOrder(ctx context.Context, tx *gorm.DB, examID uint) (int, error)
	UpdateOrder(ctx context.Context, tx *gorm.DB, orders []QuestionOrder) error
}
