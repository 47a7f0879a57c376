package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository groups the per-table repositories. Every method takes an
// optional tx; nil runs against the default connection.
type Repository interface {
	Exam() ExamRepository
	Question() QuestionRepository
	Result() ResultRepository

	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "created_at", "title"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

type HistoryFilters struct {
	ExamID   *uint  `json:"exam_id"`
	UserName string `json:"user_name"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

// ===== SHARED HELPER STRUCTS =====

type QuestionOrder struct {
	QuestionID uint `json:"id" validate:"required"`
	OrderNum   int  `json:"order_num" validate:"min=0"`
}

// IsNotFoundError reports whether err wraps gorm.ErrRecordNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
