package services

import (
	"time"

	"github.com/binhtph/quiz-app/internal/grading"
	"github.com/binhtph/quiz-app/internal/leaderboard"
	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"github.com/binhtph/quiz-app/internal/session"
	"gorm.io/datatypes"
)

// ===== EXAM =====

type CreateExamRequest struct {
	Title            string  `json:"title" validate:"required,min=1,max=200"`
	Description      string  `json:"description" validate:"max=5000"`
	TimeLimit        *int    `json:"time_limit" validate:"omitempty,time_limit"`
	LearnMode        bool    `json:"learn_mode"`
	ShuffleQuestions bool    `json:"shuffle_questions"`
	ShuffleAnswers   bool    `json:"shuffle_answers"`
	Logo             *string `json:"logo" validate:"omitempty,max=2048"`
	PinCode          *string `json:"pin_code" validate:"omitempty,pin_code"`
}

// UpdateExamRequest is a partial update; nil fields are left alone. An empty
// PinCode removes the PIN.
type UpdateExamRequest struct {
	PIN              string  `json:"pin"`
	Title            *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string `json:"description" validate:"omitempty,max=5000"`
	TimeLimit        *int    `json:"time_limit" validate:"omitempty,time_limit"`
	LearnMode        *bool   `json:"learn_mode"`
	ShuffleQuestions *bool   `json:"shuffle_questions"`
	ShuffleAnswers   *bool   `json:"shuffle_answers"`
	Logo             *string `json:"logo" validate:"omitempty,max=2048"`
	PinCode          *string `json:"pin_code" validate:"omitempty,pin_code"`
}

type ExamResponse struct {
	*models.Exam
	HasPIN    bool                `json:"has_pin"`
	TopScores []leaderboard.Entry `json:"top_scores,omitempty"`
}

type ExamListResponse struct {
	Exams []*ExamResponse `json:"exams"`
	Total int64           `json:"total"`
}

type VerifyPINResponse struct {
	Success bool    `json:"success"`
	PinCode *string `json:"pin_code"`
}

// ===== QUESTION =====

type QuestionRequest struct {
	ExamID        uint                `json:"exam_id" validate:"required"`
	Type          models.QuestionType `json:"type" validate:"required,question_type"`
	Question      string              `json:"question" validate:"required,min=1,max=2000"`
	Options       datatypes.JSON      `json:"options" validate:"required"`
	CorrectAnswer datatypes.JSON      `json:"correct_answer" validate:"required"`
	Notes         *string             `json:"notes" validate:"omitempty,max=5000"`
	OrderNum      *int                `json:"order_num" validate:"omitempty,min=0"`
}

type ReorderRequest struct {
	Orders []repositories.QuestionOrder `json:"orders" validate:"required,min=1,dive"`
}

// ===== RESULT =====

type SubmitRequest struct {
	Answers   models.AnswerSheet `json:"answers"`
	TimeTaken int                `json:"time_taken" validate:"min=0"`
	UserName  *string            `json:"user_name" validate:"omitempty,user_name"`
}

type SubmitResponse struct {
	grading.Summary
	IsNewRecord bool `json:"is_new_record"`
	ResultID    uint `json:"result_id"`
}

type HistoryEntry struct {
	ID          uint      `json:"id"`
	ExamID      uint      `json:"exam_id"`
	ExamTitle   string    `json:"exam_title,omitempty"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  int       `json:"percentage"`
	TimeTaken   int       `json:"time_taken"`
	CompletedAt time.Time `json:"completed_at"`
}

type ExamHistoryResponse struct {
	UserName      string         `json:"user_name"`
	TotalAttempts int            `json:"total_attempts"`
	BestScore     int            `json:"best_score"`
	History       []HistoryEntry `json:"history"`
}

type UserHistoryResponse struct {
	UserName string         `json:"user_name"`
	History  []HistoryEntry `json:"history"`
}

type RenameRequest struct {
	OldName string `json:"old_name" validate:"required,user_name"`
	NewName string `json:"new_name" validate:"required,user_name"`
}

type RenameResponse struct {
	Success      bool  `json:"success"`
	UpdatedCount int64 `json:"updated_count"`
}

// ===== SESSION =====

type StartSessionRequest struct {
	UserName         string `json:"user_name" validate:"omitempty,user_name"`
	LearnMode        *bool  `json:"learn_mode"`
	ShuffleQuestions *bool  `json:"shuffle_questions"`
	ShuffleAnswers   *bool  `json:"shuffle_answers"`
}

// AnswerRequest carries a raw answer; its shape must match the question type.
// A null answer clears the question.
type AnswerRequest struct {
	Answer any `json:"answer"`
}

// Answer edit actions applied to the current answer of one question.
const (
	EditToggleOption = "toggle"
	EditMatch        = "match"
	EditUnmatch      = "unmatch"
	EditMoveItem     = "move"
)

// EditAnswerRequest changes an answer in place instead of replacing it.
// toggle uses Option, match and unmatch use Left/Right, move uses From/To.
type EditAnswerRequest struct {
	Action string `json:"action" validate:"required,oneof=toggle match unmatch move"`
	Option string `json:"option"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	From   int    `json:"from" validate:"min=0"`
	To     int    `json:"to" validate:"min=0"`
}

type StepResponse struct {
	Step     session.Step     `json:"step"`
	Snapshot session.Snapshot `json:"session"`
}
