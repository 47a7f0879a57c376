package models

import (
	"time"
)

const (
	DefaultTimeLimitMinutes = 30
	DefaultPIN              = "1234"
)

type Exam struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Title            string    `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description      string    `json:"description" gorm:"type:text"`
	TimeLimit        int       `json:"time_limit" gorm:"not null;default:30"` // minutes
	LearnMode        bool      `json:"learn_mode" gorm:"default:false"`
	ShuffleQuestions bool      `json:"shuffle_questions" gorm:"default:false"`
	ShuffleAnswers   bool      `json:"shuffle_answers" gorm:"default:false"`
	Logo             *string   `json:"logo"`
	PinCode          *string   `json:"-" gorm:"size:32"`
	CreatedAt        time.Time `json:"created_at"`

	Questions []Question `json:"-" gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE"`
	Results   []Result   `json:"-" gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	QuestionCount int `json:"question_count" gorm:"-"`
}

// HasPIN reports whether edit and delete are gated.
func (e *Exam) HasPIN() bool {
	return e.PinCode != nil && *e.PinCode != ""
}

// CheckPIN accepts any pin when none is configured.
func (e *Exam) CheckPIN(pin string) bool {
	if !e.HasPIN() {
		return true
	}
	return *e.PinCode == pin
}

// TimeLimitSeconds is the session countdown length.
func (e *Exam) TimeLimitSeconds() int {
	if e.TimeLimit <= 0 {
		return DefaultTimeLimitMinutes * 60
	}
	return e.TimeLimit * 60
}

func (Exam) TableName() string {
	return "exams"
}
