package services

import (
	"bytes"
	"context"

	"github.com/binhtph/quiz-app/internal/events"
	"github.com/binhtph/quiz-app/internal/leaderboard"
	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/session"
)

type ExamService interface {
	List(ctx context.Context) (*ExamListResponse, error)
	Get(ctx context.Context, id uint) (*ExamResponse, error)
	Create(ctx context.Context, req *CreateExamRequest) (*ExamResponse, error)
	Update(ctx context.Context, id uint, req *UpdateExamRequest) (*ExamResponse, error)
	Delete(ctx context.Context, id uint, pin string) error
	VerifyPIN(ctx context.Context, id uint, pin string) (*VerifyPINResponse, error)

	// FetchQuestions returns questions in play order. Correct answers are
	// only included in learn mode, requested or configured on the exam.
	FetchQuestions(ctx context.Context, id uint, learnMode bool) ([]models.Question, error)
	EditQuestions(ctx context.Context, id uint, pin string) ([]models.Question, error)
	DeleteAllQuestions(ctx context.Context, id uint, pin string) (int64, error)
}

type QuestionService interface {
	Create(ctx context.Context, req *QuestionRequest) (*models.Question, error)
	Update(ctx context.Context, id uint, req *QuestionRequest) (*models.Question, error)
	Delete(ctx context.Context, id uint) error
	Reorder(ctx context.Context, req *ReorderRequest) error
}

type ResultService interface {
	Submit(ctx context.Context, examID uint, req *SubmitRequest) (*SubmitResponse, error)
	Leaderboard(ctx context.Context, examID uint, limit int) ([]leaderboard.Entry, error)
	ExamHistory(ctx context.Context, examID uint, userName string) (*ExamHistoryResponse, error)
	UserHistory(ctx context.Context, userName string) (*UserHistoryResponse, error)
	Rename(ctx context.Context, req *RenameRequest) (*RenameResponse, error)

	// Submitter lets exam sessions hand their completed answers to Submit.
	Submitter() session.Submitter
}

type ExportService interface {
	ExportResults(ctx context.Context, examID uint) (*bytes.Buffer, string, error)
}

type SessionService interface {
	Start(ctx context.Context, examID uint, req *StartSessionRequest) (*session.Snapshot, error)
	Get(ctx context.Context, id string) (*session.Snapshot, error)
	Answer(ctx context.Context, id string, questionID uint, answer any) (*session.Snapshot, error)
	EditAnswer(ctx context.Context, id string, questionID uint, req *EditAnswerRequest) (*session.Snapshot, error)
	ToggleMark(ctx context.Context, id string, index int) (*session.Snapshot, error)
	Jump(ctx context.Context, id string, index int) (*session.Snapshot, error)
	Next(ctx context.Context, id string) (*StepResponse, error)
	Back(ctx context.Context, id string) (*session.Snapshot, error)
	Abandon(ctx context.Context, id string) error
	ActiveSessions() int
}

// RecordNotifier announces new exam records.
type RecordNotifier interface {
	NotifyNewRecord(ctx context.Context, record events.NewRecordEvent)
}
