package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MockRepository runs transactions inline with a nil tx.
type MockRepository struct {
	exam     *MockExamRepository
	question *MockQuestionRepository
	result   *MockResultRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		exam:     &MockExamRepository{},
		question: &MockQuestionRepository{},
		result:   &MockResultRepository{},
	}
}

func (m *MockRepository) Exam() repositories.ExamRepository         { return m.exam }
func (m *MockRepository) Question() repositories.QuestionRepository { return m.question }
func (m *MockRepository) Result() repositories.ResultRepository     { return m.result }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// MockExamRepository is a mock implementation of ExamRepository
type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	args := m.Called(ctx, tx, exam)
	return args.Error(0)
}

func (m *MockExamRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}

func (m *MockExamRepository) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}

func (m *MockExamRepository) Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	args := m.Called(ctx, tx, exam)
	return args.Error(0)
}

func (m *MockExamRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockExamRepository) LockForUpdate(ctx context.Context, tx *gorm.DB, id uint) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockExamRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.Exam), args.Get(1).(int64), args.Error(2)
}

func (m *MockExamRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(int64), args.Error(1)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	args := m.Called(ctx, tx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	args := m.Called(ctx, tx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.Question, error) {
	args := m.Called(ctx, tx, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuestionRepository) DeleteByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error) {
	args := m.Called(ctx, tx, examID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) GetNextOrder(ctx context.Context, tx *gorm.DB, examID uint) (int, error) {
	args := m.Called(ctx, tx, examID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionRepository) UpdateOrder(ctx context.Context, tx *gorm.DB, orders []repositories.QuestionOrder) error {
	args := m.Called(ctx, tx, orders)
	return args.Error(0)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	args := m.Called(ctx, tx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockResultRepository) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.Result, error) {
	args := m.Called(ctx, tx, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Result), args.Error(1)
}

func (m *MockResultRepository) ListByExams(ctx context.Context, tx *gorm.DB, examIDs []uint) ([]models.Result, error) {
	args := m.Called(ctx, tx, examIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Result), args.Error(1)
}

func (m *MockResultRepository) History(ctx context.Context, tx *gorm.DB, filters repositories.HistoryFilters) ([]models.Result, error) {
	args := m.Called(ctx, tx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Result), args.Error(1)
}

func (m *MockResultRepository) RenameUser(ctx context.Context, tx *gorm.DB, oldName, newName string) (int64, error) {
	args := m.Called(ctx, tx, oldName, newName)
	return args.Get(0).(int64), args.Error(1)
}

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func singleChoice(id, examID uint, order int, correct string, options ...string) models.Question {
	q, err := models.NewQuestion(examID, "Pick one", models.SingleChoiceContent{Options: options, Correct: correct}, nil, order)
	if err != nil {
		panic(err)
	}
	q.ID = id
	return *q
}

func named(examID uint, name string, score, total, timeTaken int) models.Result {
	return models.Result{ExamID: examID, UserName: &name, Score: score, Total: total, TimeTaken: timeTaken}
}

func rawJSON(s string) datatypes.JSON {
	return datatypes.JSON(s)
}
