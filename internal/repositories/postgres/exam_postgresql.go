package postgres

import (
	"context"
	"fmt"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (e *ExamPostgreSQL) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	if err := e.helpers.DB(ctx, tx).Create(exam).Error; err != nil {
		return fmt.Errorf("failed to create exam: %w", err)
	}
	return nil
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.helpers.DB(ctx, tx).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

// GetByIDWithQuestions loads the exam with its questions in play order.
func (e *ExamPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	var exam models.Exam
	err := e.helpers.DB(ctx, tx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC, id ASC")
		}).
		First(&exam, id).Error
	if err != nil {
		return nil, err
	}

	exam.QuestionCount = len(exam.Questions)
	return &exam, nil
}

// Update writes every column, including zero values such as cleared flags.
func (e *ExamPostgreSQL) Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	result := e.helpers.DB(ctx, tx).
		Model(exam).
		Select("title", "description", "time_limit", "learn_mode", "shuffle_questions", "shuffle_answers", "logo", "pin_code").
		Updates(exam)
	if result.Error != nil {
		return fmt.Errorf("failed to update exam: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (e *ExamPostgreSQL) LockForUpdate(ctx context.Context, tx *gorm.DB, id uint) error {
	var exam models.Exam
	return e.helpers.DB(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&exam, id).Error
}

// Delete removes the exam and everything hanging off it in one transaction.
func (e *ExamPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return e.helpers.DB(ctx, tx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&models.Result{}).Error; err != nil {
			return fmt.Errorf("failed to delete results: %w", err)
		}
		if err := tx.Where("exam_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}

		result := tx.Delete(&models.Exam{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete exam: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List returns exams newest first by default, with question counts filled in.
func (e *ExamPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	db := e.helpers.DB(ctx, tx)

	var total int64
	if err := db.Model(&models.Exam{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exams: %w", err)
	}

	var exams []*models.Exam
	query := e.helpers.ApplyPaginationAndSort(db.Model(&models.Exam{}),
		filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		"created_at", "title", "id")
	if err := query.Find(&exams).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list exams: %w", err)
	}

	if len(exams) == 0 {
		return exams, total, nil
	}

	ids := make([]uint, len(exams))
	for i, exam := range exams {
		ids[i] = exam.ID
	}

	type countRow struct {
		ExamID uint
		Count  int
	}
	var rows []countRow
	err := db.Model(&models.Question{}).
		Select("exam_id, COUNT(*) AS count").
		Where("exam_id IN ?", ids).
		Group("exam_id").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.ExamID] = row.Count
	}
	for _, exam := range exams {
		exam.QuestionCount = counts[exam.ID]
	}

	return exams, total, nil
}

func (e *ExamPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := e.helpers.DB(ctx, tx).Model(&models.Exam{}).Count(&count).Error
	return count, err
}
