package services

import (
	"context"
	"testing"
	"time"

	"github.com/binhtph/quiz-app/internal/cache"
	"github.com/binhtph/quiz-app/internal/events"
	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"github.com/binhtph/quiz-app/internal/session"
	"github.com/binhtph/quiz-app/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type resultFixture struct {
	repo      *MockRepository
	cache     cache.CacheService
	publisher *events.MockEventPublisher
	service   ResultService
}

func newResultFixture() *resultFixture {
	repo := newMockRepository()
	c := cache.NewMemoryCache()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewResultService(repo, c, NewRecordNotifier(publisher, testLogger()), testLogger(), validator.New(), nil,
		ResultServiceConfig{LeaderboardLimit: 10, CacheTTL: time.Minute})
	return &resultFixture{repo: repo, cache: c, publisher: publisher, service: svc}
}

func (f *resultFixture) expectExam(ctx context.Context, exam *models.Exam, questions []models.Question) {
	f.repo.exam.On("GetByID", ctx, mock.Anything, exam.ID).Return(exam, nil)
	f.repo.exam.On("LockForUpdate", ctx, mock.Anything, exam.ID).Return(nil)
	f.repo.question.On("GetByExam", ctx, mock.Anything, exam.ID).Return(questions, nil)
}

func TestResultService_Submit(t *testing.T) {
	ctx := context.Background()
	exam := &models.Exam{ID: 1, Title: "Capitals"}
	questions := []models.Question{
		singleChoice(11, 1, 0, "Paris", "Paris", "Rome"),
		singleChoice(12, 1, 1, "Tokyo", "Tokyo", "Seoul"),
	}

	t.Run("first named result is a record", func(t *testing.T) {
		f := newResultFixture()
		f.expectExam(ctx, exam, questions)
		f.repo.result.On("ListByExam", ctx, mock.Anything, uint(1)).Return([]models.Result{}, nil)
		f.repo.result.On("Create", ctx, mock.Anything, mock.AnythingOfType("*models.Result")).
			Run(func(args mock.Arguments) { args.Get(2).(*models.Result).ID = 77 }).
			Return(nil)

		resp, err := f.service.Submit(ctx, 1, &SubmitRequest{
			Answers:   models.AnswerSheet{11: "Paris", 12: "Seoul"},
			TimeTaken: 42,
			UserName:  strPtr("ann"),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Score)
		assert.Equal(t, 2, resp.Total)
		assert.Equal(t, 50, resp.Percentage)
		assert.True(t, resp.IsNewRecord)
		assert.Equal(t, uint(77), resp.ResultID)
		require.Len(t, resp.Results, 2)
		assert.True(t, resp.Results[0].IsCorrect)
		assert.False(t, resp.Results[1].IsCorrect)

		assert.Eventually(t, func() bool {
			return len(f.publisher.GetPublishedEvents()) == 1
		}, time.Second, 10*time.Millisecond)
		event := f.publisher.GetPublishedEvents()[0]
		assert.Equal(t, events.EventNewRecord, event.Type)
		record := event.Data.(events.NewRecordEvent)
		assert.Equal(t, "ann", record.UserName)
		assert.Equal(t, "Capitals", record.ExamTitle)
		assert.Equal(t, 42, record.TimeTaken)
	})

	t.Run("anonymous never sets a record", func(t *testing.T) {
		f := newResultFixture()
		f.expectExam(ctx, exam, questions)
		f.repo.result.On("ListByExam", ctx, mock.Anything, uint(1)).Return([]models.Result{}, nil)
		var stored *models.Result
		f.repo.result.On("Create", ctx, mock.Anything, mock.AnythingOfType("*models.Result")).
			Run(func(args mock.Arguments) { stored = args.Get(2).(*models.Result) }).
			Return(nil)

		resp, err := f.service.Submit(ctx, 1, &SubmitRequest{
			Answers:  models.AnswerSheet{11: "Paris", 12: "Tokyo"},
			UserName: strPtr(""),
		})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Score)
		assert.False(t, resp.IsNewRecord)
		require.NotNil(t, stored)
		assert.Nil(t, stored.UserName)
		assert.JSONEq(t, `{"11":"Paris","12":"Tokyo"}`, string(stored.Answers))
		assert.Never(t, func() bool { return len(f.publisher.GetPublishedEvents()) > 0 }, 50*time.Millisecond, 10*time.Millisecond)
	})

	t.Run("blank name is anonymous", func(t *testing.T) {
		f := newResultFixture()
		f.expectExam(ctx, exam, questions)
		f.repo.result.On("ListByExam", ctx, mock.Anything, uint(1)).Return([]models.Result{}, nil)
		var stored *models.Result
		f.repo.result.On("Create", ctx, mock.Anything, mock.AnythingOfType("*models.Result")).
			Run(func(args mock.Arguments) { stored = args.Get(2).(*models.Result) }).
			Return(nil)

		resp, err := f.service.Submit(ctx, 1, &SubmitRequest{
			Answers:  models.AnswerSheet{11: "Paris"},
			UserName: strPtr("   "),
		})

		require.NoError(t, err)
		assert.False(t, resp.IsNewRecord)
		require.NotNil(t, stored)
		assert.Nil(t, stored.UserName)
	})

	t.Run("padded name is rejected", func(t *testing.T) {
		f := newResultFixture()

		_, err := f.service.Submit(ctx, 1, &SubmitRequest{UserName: strPtr(" ann ")})

		assert.True(t, IsValidation(err))
		f.repo.result.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("exam row locked before reading prior results", func(t *testing.T) {
		f := newResultFixture()
		var calls []string
		f.repo.exam.On("GetByID", ctx, mock.Anything, uint(1)).Return(exam, nil)
		f.repo.question.On("GetByExam", ctx, mock.Anything, uint(1)).Return(questions, nil)
		f.repo.exam.On("LockForUpdate", ctx, mock.Anything, uint(1)).
			Run(func(mock.Arguments) { calls = append(calls, "lock") }).
			Return(nil)
		f.repo.result.On("ListByExam", ctx, mock.Anything, uint(1)).
			Run(func(mock.Arguments) { calls = append(calls, "list") }).
			Return([]models.Result{}, nil)
		f.repo.result.On("Create", ctx, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { calls = append(calls, "create") }).
			Return(nil)

		_, err := f.service.Submit(ctx, 1, &SubmitRequest{Answers: models.AnswerSheet{11: "Paris"}, UserName: strPtr("ann")})

		require.NoError(t, err)
		assert.Equal(t, []string{"lock", "list", "create"}, calls)
	})

	t.Run("exam deleted before lock", func(t *testing.T) {
		f := newResultFixture()
		f.repo.exam.On("GetByID", ctx, mock.Anything, uint(1)).Return(exam, nil)
		f.repo.question.On("GetByExam", ctx, mock.Anything, uint(1)).Return(questions, nil)
		f.repo.exam.On("LockForUpdate", ctx, mock.Anything, uint(1)).Return(gorm.ErrRecordNotFound)

		_, err := f.service.Submit(ctx, 1, &SubmitRequest{Answers: models.AnswerSheet{}})

		assert.ErrorIs(t, err, ErrExamNotFound)
		f.repo.result.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lower score than record", func(t *testing.T) {
		f := newResultFixture()
		f.expectExam(ctx, exam, questions)
		f.repo.result.On("ListByExam", ctx, mock.Anything, uint(1)).Return([]models.Result{named(1, "bob", 2, 2, 30)}, nil)
		f.repo.result.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Submit(ctx, 1, &SubmitRequest{
			Answers:  models.AnswerSheet{11: "Paris"},
			UserName: strPtr("ann"),
		})

		require.NoError(t, err)
		assert.False(t, resp.IsNewRecord)
	})

	t.Run("unknown exam", func(t *testing.T) {
		f := newResultFixture()
		f.repo.exam.On("GetByID", ctx, mock.Anything, uint(5)).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.service.Submit(ctx, 5, &SubmitRequest{})

		assert.ErrorIs(t, err, ErrExamNotFound)
	})

	t.Run("negative time", func(t *testing.T) {
		f := newResultFixture()

		_, err := f.service.Submit(ctx, 1, &SubmitRequest{TimeTaken: -1})

		assert.True(t, IsValidation(err))
	})

	t.Run("invalidates cached leaderboard", func(t *testing.T) {
		f := newResultFixture()
		require.NoError(t, f.cache.Set(ctx, cache.LeaderboardKey(1, 10), []int{1}, time.Minute))
		f.expectExam(ctx, exam, questions)
		f.repo.result.On("ListByExam", ctx, mock.Anything, uint(1)).Return([]models.Result{}, nil)
		f.repo.result.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.Submit(ctx, 1, &SubmitRequest{Answers: models.AnswerSheet{}})

		require.NoError(t, err)
		var cached []int
		assert.ErrorIs(t, f.cache.Get(ctx, cache.LeaderboardKey(1, 10), &cached), cache.ErrCacheMiss)
	})
}

func TestResultService_Submitter(t *testing.T) {
	ctx := context.Background()
	f := newResultFixture()
	f.expectExam(ctx, &models.Exam{ID: 1, Title: "Capitals"}, []models.Question{singleChoice(11, 1, 0, "Paris", "Paris", "Rome")})
	f.repo.result.On("ListByExam", ctx, mock.Anything, uint(1)).Return([]models.Result{}, nil)
	var stored *models.Result
	f.repo.result.On("Create", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(2).(*models.Result) }).
		Return(nil)

	outcome, err := f.service.Submitter().Submit(ctx, session.Submission{
		ExamID:         1,
		Answers:        models.AnswerSheet{11: "Paris"},
		ElapsedSeconds: 12,
		UserName:       "cat",
		Reason:         session.ReasonTimeout,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Score)
	assert.True(t, outcome.IsNewRecord)
	assert.Equal(t, "cat", stored.Name())
	assert.Equal(t, 12, stored.TimeTaken)
}

func TestResultService_Leaderboard(t *testing.T) {
	ctx := context.Background()
	f := newResultFixture()
	f.repo.exam.On("GetByID", ctx, mock.Anything, uint(1)).Return(&models.Exam{ID: 1}, nil).Once()
	f.repo.result.On("ListByExam", ctx, mock.Anything, uint(1)).Return([]models.Result{
		named(1, "ann", 3, 5, 40),
		named(1, "ann", 4, 5, 50),
		named(1, "bob", 4, 5, 20),
		{ExamID: 1, Score: 5, Total: 5},
	}, nil).Once()

	first, err := f.service.Leaderboard(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "bob", first[0].UserName)
	assert.Equal(t, "ann", first[1].UserName)
	assert.Equal(t, 2, first[1].Attempts)

	second, err := f.service.Leaderboard(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	f.repo.result.AssertNumberOfCalls(t, "ListByExam", 1)
}

func TestResultService_History(t *testing.T) {
	ctx := context.Background()
	f := newResultFixture()
	examID := uint(1)
	f.repo.exam.On("GetByID", ctx, mock.Anything, examID).Return(&models.Exam{ID: examID}, nil)
	f.repo.result.On("History", ctx, mock.Anything, repositories.HistoryFilters{ExamID: &examID, UserName: "ann"}).Return([]models.Result{
		named(1, "ann", 2, 5, 10),
		named(1, "ann", 4, 5, 10),
	}, nil)
	f.repo.result.On("History", ctx, mock.Anything, repositories.HistoryFilters{UserName: "ann"}).Return([]models.Result{
		{ExamID: 2, Score: 1, Total: 1, Exam: &models.Exam{ID: 2, Title: "Rivers"}},
	}, nil)

	exam, err := f.service.ExamHistory(ctx, examID, "ann")
	require.NoError(t, err)
	assert.Equal(t, 2, exam.TotalAttempts)
	assert.Equal(t, 4, exam.BestScore)
	assert.Equal(t, 80, exam.History[1].Percentage)

	user, err := f.service.UserHistory(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, user.History, 1)
	assert.Equal(t, "Rivers", user.History[0].ExamTitle)
}

func TestResultService_Rename(t *testing.T) {
	ctx := context.Background()

	t.Run("same name", func(t *testing.T) {
		f := newResultFixture()

		_, err := f.service.Rename(ctx, &RenameRequest{OldName: "ann", NewName: "ann"})

		assert.ErrorIs(t, err, ErrRenameSameName)
		assert.True(t, IsValidation(err))
	})

	t.Run("renames and drops cached boards", func(t *testing.T) {
		f := newResultFixture()
		require.NoError(t, f.cache.Set(ctx, cache.LeaderboardKey(3, 10), []int{1}, time.Minute))
		f.repo.result.On("RenameUser", ctx, mock.Anything, "ann", "anna").Return(int64(3), nil)

		resp, err := f.service.Rename(ctx, &RenameRequest{OldName: "ann", NewName: "anna"})

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(3), resp.UpdatedCount)
		var cached []int
		assert.ErrorIs(t, f.cache.Get(ctx, cache.LeaderboardKey(3, 10), &cached), cache.ErrCacheMiss)
	})
}
