package postgres

import (
	"context"
	"fmt"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// ===== BASIC OPERATIONS =====

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if err := q.helpers.DB(ctx, tx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.helpers.DB(ctx, tx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// Update rewrites content columns; exam_id is never moved.
func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	result := q.helpers.DB(ctx, tx).
		Model(question).
		Select("type", "question", "options", "correct_answer", "notes", "order_num").
		Updates(question)
	if result.Error != nil {
		return fmt.Errorf("failed to update question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := q.helpers.DB(ctx, tx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ===== EXAM QUERIES =====

func (q *QuestionPostgreSQL) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.Question, error) {
	var questions []models.Question
	err := q.helpers.DB(ctx, tx).
		Where("exam_id = ?", examID).
		Order("order_num ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get questions for exam %d: %w", examID, err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) DeleteByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error) {
	result := q.helpers.DB(ctx, tx).Where("exam_id = ?", examID).Delete(&models.Question{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete questions for exam %d: %w", examID, result.Error)
	}
	return result.RowsAffected, nil
}

// ===== ORDERING =====

func (q *QuestionPostgreSQL) GetNextOrder(ctx context.Context, tx *gorm.DB, examID uint) (int, error) {
	var maxOrder int
	err := q.helpers.DB(ctx, tx).
		Model(&models.Question{}).
		Where("exam_id = ?", examID).
		Select("COALESCE(MAX(order_num), 0)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max order: %w", err)
	}
	return maxOrder + 1, nil
}

// UpdateOrder applies every new position or none.
func (q *QuestionPostgreSQL) UpdateOrder(ctx context.Context, tx *gorm.DB, orders []repositories.QuestionOrder) error {
	if len(orders) == 0 {
		return nil
	}

	return q.helpers.DB(ctx, tx).Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			result := tx.Model(&models.Question{}).
				Where("id = ?", o.QuestionID).
				Update("order_num", o.OrderNum)
			if result.Error != nil {
				return fmt.Errorf("failed to update order for question %d: %w", o.QuestionID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("question %d: %w", o.QuestionID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}
