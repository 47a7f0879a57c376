package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/binhtph/quiz-app/internal/events"
	"github.com/binhtph/quiz-app/internal/leaderboard"
	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/services"
	"github.com/binhtph/quiz-app/internal/session"
	"github.com/binhtph/quiz-app/internal/utils"
	"github.com/stretchr/testify/mock"
)

type MockExamService struct{ mock.Mock }

func (m *MockExamService) List(ctx context.Context) (*services.ExamListResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExamListResponse), args.Error(1)
}

func (m *MockExamService) Get(ctx context.Context, id uint) (*services.ExamResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExamResponse), args.Error(1)
}

func (m *MockExamService) Create(ctx context.Context, req *services.CreateExamRequest) (*services.ExamResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExamResponse), args.Error(1)
}

func (m *MockExamService) Update(ctx context.Context, id uint, req *services.UpdateExamRequest) (*services.ExamResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExamResponse), args.Error(1)
}

func (m *MockExamService) Delete(ctx context.Context, id uint, pin string) error {
	args := m.Called(ctx, id, pin)
	return args.Error(0)
}

func (m *MockExamService) VerifyPIN(ctx context.Context, id uint, pin string) (*services.VerifyPINResponse, error) {
	args := m.Called(ctx, id, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.VerifyPINResponse), args.Error(1)
}

func (m *MockExamService) FetchQuestions(ctx context.Context, id uint, learnMode bool) ([]models.Question, error) {
	args := m.Called(ctx, id, learnMode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockExamService) EditQuestions(ctx context.Context, id uint, pin string) ([]models.Question, error) {
	args := m.Called(ctx, id, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockExamService) DeleteAllQuestions(ctx context.Context, id uint, pin string) (int64, error) {
	args := m.Called(ctx, id, pin)
	return args.Get(0).(int64), args.Error(1)
}

type MockQuestionService struct{ mock.Mock }

func (m *MockQuestionService) Create(ctx context.Context, req *services.QuestionRequest) (*models.Question, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionService) Update(ctx context.Context, id uint, req *services.QuestionRequest) (*models.Question, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockQuestionService) Reorder(ctx context.Context, req *services.ReorderRequest) error {
	return m.Called(ctx, req).Error(0)
}

type MockResultService struct{ mock.Mock }

func (m *MockResultService) Submit(ctx context.Context, examID uint, req *services.SubmitRequest) (*services.SubmitResponse, error) {
	args := m.Called(ctx, examID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmitResponse), args.Error(1)
}

func (m *MockResultService) Leaderboard(ctx context.Context, examID uint, limit int) ([]leaderboard.Entry, error) {
	args := m.Called(ctx, examID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leaderboard.Entry), args.Error(1)
}

func (m *MockResultService) ExamHistory(ctx context.Context, examID uint, userName string) (*services.ExamHistoryResponse, error) {
	args := m.Called(ctx, examID, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExamHistoryResponse), args.Error(1)
}

func (m *MockResultService) UserHistory(ctx context.Context, userName string) (*services.UserHistoryResponse, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UserHistoryResponse), args.Error(1)
}

func (m *MockResultService) Rename(ctx context.Context, req *services.RenameRequest) (*services.RenameResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RenameResponse), args.Error(1)
}

func (m *MockResultService) Submitter() session.Submitter {
	return nil
}

type MockExportService struct{ mock.Mock }

func (m *MockExportService) ExportResults(ctx context.Context, examID uint) (*bytes.Buffer, string, error) {
	args := m.Called(ctx, examID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*bytes.Buffer), args.String(1), args.Error(2)
}

type MockSessionService struct{ mock.Mock }

func (m *MockSessionService) snapshot(args mock.Arguments) (*session.Snapshot, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Snapshot), args.Error(1)
}

func (m *MockSessionService) Start(ctx context.Context, examID uint, req *services.StartSessionRequest) (*session.Snapshot, error) {
	return m.snapshot(m.Called(ctx, examID, req))
}

func (m *MockSessionService) Get(ctx context.Context, id string) (*session.Snapshot, error) {
	return m.snapshot(m.Called(ctx, id))
}

func (m *MockSessionService) Answer(ctx context.Context, id string, questionID uint, answer any) (*session.Snapshot, error) {
	return m.snapshot(m.Called(ctx, id, questionID, answer))
}

func (m *MockSessionService) EditAnswer(ctx context.Context, id string, questionID uint, req *services.EditAnswerRequest) (*session.Snapshot, error) {
	return m.snapshot(m.Called(ctx, id, questionID, req))
}

func (m *MockSessionService) ToggleMark(ctx context.Context, id string, index int) (*session.Snapshot, error) {
	return m.snapshot(m.Called(ctx, id, index))
}

func (m *MockSessionService) Jump(ctx context.Context, id string, index int) (*session.Snapshot, error) {
	return m.snapshot(m.Called(ctx, id, index))
}

func (m *MockSessionService) Next(ctx context.Context, id string) (*services.StepResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.StepResponse), args.Error(1)
}

func (m *MockSessionService) Back(ctx context.Context, id string) (*session.Snapshot, error) {
	return m.snapshot(m.Called(ctx, id))
}

func (m *MockSessionService) Abandon(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionService) ActiveSessions() int {
	return m.Called().Int(0)
}

type mockServiceManager struct {
	exam     *MockExamService
	question *MockQuestionService
	result   *MockResultService
	export   *MockExportService
	session  *MockSessionService
}

func newMockServiceManager() *mockServiceManager {
	return &mockServiceManager{
		exam:     &MockExamService{},
		question: &MockQuestionService{},
		result:   &MockResultService{},
		export:   &MockExportService{},
		session:  &MockSessionService{},
	}
}

func (m *mockServiceManager) Exam() services.ExamService         { return m.exam }
func (m *mockServiceManager) Question() services.QuestionService { return m.question }
func (m *mockServiceManager) Result() services.ResultService     { return m.result }
func (m *mockServiceManager) Export() services.ExportService     { return m.export }
func (m *mockServiceManager) Session() services.SessionService   { return m.session }

// stubSubscriber hands out a channel the test controls.
type stubSubscriber struct {
	ch chan events.NotificationEvent
}

func (s *stubSubscriber) Subscribe(ctx context.Context) (<-chan events.NotificationEvent, error) {
	return s.ch, nil
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
