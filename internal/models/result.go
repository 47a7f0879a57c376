package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// Result is one completed attempt. Rows are only ever appended; the rename
// operation is the single exception and touches UserName only.
type Result struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ExamID      uint           `json:"exam_id" gorm:"not null;index"`
	UserName    *string        `json:"user_name" gorm:"size:100;index"`
	Score       int            `json:"score" gorm:"not null"`
	Total       int            `json:"total" gorm:"not null"`
	Answers     datatypes.JSON `json:"answers,omitempty" gorm:"type:jsonb"`
	TimeTaken   int            `json:"time_taken" gorm:"default:0"` // seconds
	CompletedAt time.Time      `json:"completed_at" gorm:"autoCreateTime;index"`

	Exam *Exam `json:"-" gorm:"foreignKey:ExamID"`
}

// Name returns the learner name or "" for anonymous results.
func (r *Result) Name() string {
	if r.UserName == nil {
		return ""
	}
	return *r.UserName
}

func (r *Result) Percentage() int {
	return Percentage(r.Score, r.Total)
}

// Percentage rounds score/total to a whole percent. A zero total yields 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

func (Result) TableName() string {
	return "results"
}
