package postgres

import (
	"context"
	"fmt"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"gorm.io/gorm"
)

type ResultPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *ResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	if err := r.helpers.DB(ctx, tx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}
	return nil
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	var result models.Result
	if err := r.helpers.DB(ctx, tx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByExam returns every result of an exam in completion order.
func (r *ResultPostgreSQL) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.Result, error) {
	var results []models.Result
	err := r.helpers.DB(ctx, tx).
		Where("exam_id = ?", examID).
		Order("completed_at ASC, id ASC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list results for exam %d: %w", examID, err)
	}
	return results, nil
}

func (r *ResultPostgreSQL) ListByExams(ctx context.Context, tx *gorm.DB, examIDs []uint) ([]models.Result, error) {
	results := make([]models.Result, 0)
	if len(examIDs) == 0 {
		return results, nil
	}

	err := r.helpers.DB(ctx, tx).
		Where("exam_id IN ?", examIDs).
		Order("completed_at ASC, id ASC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

func (r *ResultPostgreSQL) History(ctx context.Context, tx *gorm.DB, filters repositories.HistoryFilters) ([]models.Result, error) {
	query := r.helpers.DB(ctx, tx).Preload("Exam")
	if filters.ExamID != nil {
		query = query.Where("exam_id = ?", *filters.ExamID)
	}
	if filters.UserName != "" {
		query = query.Where("user_name = ?", filters.UserName)
	}
	query = r.helpers.ApplyPaginationAndSort(query, "completed_at", "desc", filters.Limit, filters.Offset, "completed_at")

	var results []models.Result
	if err := query.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return results, nil
}

// RenameUser moves every result of oldName to newName and reports how many
// rows changed.
func (r *ResultPostgreSQL) RenameUser(ctx context.Context, tx *gorm.DB, oldName, newName string) (int64, error) {
	result := r.helpers.DB(ctx, tx).
		Model(&models.Result{}).
		Where("user_name = ?", oldName).
		Update("user_name", newName)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to rename results: %w", result.Error)
	}
	return result.RowsAffected, nil
}
