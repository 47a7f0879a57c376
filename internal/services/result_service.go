package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/binhtph/quiz-app/internal/cache"
	"github.com/binhtph/quiz-app/internal/events"
	"github.com/binhtph/quiz-app/internal/grading"
	"github.com/binhtph/quiz-app/internal/leaderboard"
	"github.com/binhtph/quiz-app/internal/metrics"
	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"github.com/binhtph/quiz-app/internal/session"
	"github.com/binhtph/quiz-app/internal/validator"
	"gorm.io/gorm"
)

const (
	maxLeaderboardLimit = 100

	submissionSourceAPI     = "api"
	submissionSourceSession = "session"
)

type ResultServiceConfig struct {
	LeaderboardLimit int
	CacheTTL         time.Duration
}

type resultService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	notifier  RecordNotifier
	logger    *slog.Logger
	log       *ServiceLogger
	validator *validator.Validator
	metrics   *metrics.Metrics
	config    ResultServiceConfig
}

func NewResultService(
	repo repositories.Repository,
	cache cache.CacheService,
	notifier RecordNotifier,
	logger *slog.Logger,
	validator *validator.Validator,
	m *metrics.Metrics,
	config ResultServiceConfig,
) ResultService {
	if config.LeaderboardLimit <= 0 {
		config.LeaderboardLimit = 10
	}
	return &resultService{
		repo:      repo,
		cache:     cache,
		notifier:  notifier,
		logger:    logger,
		log:       NewServiceLogger(logger, LogConfig{Service: "quiz-app", Component: "result"}),
		validator: validator,
		metrics:   m,
		config:    config,
	}
}

// ===== SUBMISSION =====

// Submit grades the answers against the stored questions, appends the result
// and announces a new record when the submission sets one.
func (s *resultService) Submit(ctx context.Context, examID uint, req *SubmitRequest) (*SubmitResponse, error) {
	return s.submit(ctx, examID, req, submissionSourceAPI)
}

func (s *resultService) Submitter() session.Submitter {
	return session.SubmitterFunc(func(ctx context.Context, sub session.Submission) (*session.Outcome, error) {
		req := &SubmitRequest{
			Answers:   sub.Answers,
			TimeTaken: sub.ElapsedSeconds,
		}
		if sub.UserName != "" {
			name := sub.UserName
			req.UserName = &name
		}

		resp, err := s.submit(ctx, sub.ExamID, req, submissionSourceSession)
		if err != nil {
			return nil, err
		}
		return &session.Outcome{Summary: resp.Summary, IsNewRecord: resp.IsNewRecord}, nil
	})
}

func (s *resultService) submit(ctx context.Context, examID uint, req *SubmitRequest, source string) (*SubmitResponse, error) {
	op := s.log.WithOperation(ctx, "submit_result")

	req.UserName = anonymousIfBlank(req.UserName)
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(examID, "exam", err)
		return nil, err
	}
	if req.Answers == nil {
		req.Answers = models.AnswerSheet{}
	}

	exam, err := s.getExam(ctx, examID)
	if err != nil {
		op.LogResult(examID, "exam", err)
		return nil, err
	}

	questions, err := s.repo.Question().GetByExam(ctx, nil, examID)
	if err != nil {
		op.LogResult(examID, "exam", err)
		return nil, err
	}

	summary := grading.Grade(questions, req.Answers)

	answers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	result := &models.Result{
		ExamID:    examID,
		UserName:  req.UserName,
		Score:     summary.Score,
		Total:     summary.Total,
		Answers:   answers,
		TimeTaken: req.TimeTaken,
	}

	var isNewRecord bool
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		// Concurrent submissions to one exam must not both see the old record.
		if err := s.repo.Exam().LockForUpdate(ctx, tx, examID); err != nil {
			return err
		}
		prior, err := s.repo.Result().ListByExam(ctx, tx, examID)
		if err != nil {
			return err
		}
		isNewRecord = leaderboard.IsNewRecord(prior, leaderboard.Candidate{
			UserName:  result.Name(),
			Score:     result.Score,
			TimeTaken: result.TimeTaken,
		})
		return s.repo.Result().Create(ctx, tx, result)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			err = ErrExamNotFound
		}
		op.LogResult(examID, "exam", err)
		return nil, err
	}

	s.invalidateLeaderboard(ctx, cache.LeaderboardPattern(examID))
	s.metrics.ObserveSubmission(source, isNewRecord)

	if isNewRecord {
		s.notifier.NotifyNewRecord(ctx, events.NewRecordEvent{
			ExamID:     examID,
			ExamTitle:  exam.Title,
			UserName:   result.Name(),
			Score:      summary.Score,
			Total:      summary.Total,
			Percentage: summary.Percentage,
			TimeTaken:  result.TimeTaken,
		})
	}

	op.LogResult(result.ID, "result", nil)
	return &SubmitResponse{
		Summary:     summary,
		IsNewRecord: isNewRecord,
		ResultID:    result.ID,
	}, nil
}

// ===== QUERIES =====

// Leaderboard ranks each learner's best attempt. Pages are cached until the
// next submission or rename.
func (s *resultService) Leaderboard(ctx context.Context, examID uint, limit int) ([]leaderboard.Entry, error) {
	if limit <= 0 {
		limit = s.config.LeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	key := cache.LeaderboardKey(examID, limit)
	var entries []leaderboard.Entry
	err := s.cache.Get(ctx, key, &entries)
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Leaderboard cache unavailable", "exam_id", examID, "error", err)
	}

	if _, err := s.getExam(ctx, examID); err != nil {
		return nil, err
	}

	results, err := s.repo.Result().ListByExam(ctx, nil, examID)
	if err != nil {
		return nil, err
	}
	entries = leaderboard.BestPerUser(results, limit)

	if err := s.cache.Set(ctx, key, entries, s.config.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache leaderboard", "exam_id", examID, "error", err)
	}
	return entries, nil
}

func (s *resultService) ExamHistory(ctx context.Context, examID uint, userName string) (*ExamHistoryResponse, error) {
	if _, err := s.getExam(ctx, examID); err != nil {
		return nil, err
	}

	results, err := s.repo.Result().History(ctx, nil, repositories.HistoryFilters{
		ExamID:   &examID,
		UserName: userName,
	})
	if err != nil {
		return nil, err
	}

	resp := &ExamHistoryResponse{
		UserName:      userName,
		TotalAttempts: len(results),
		History:       make([]HistoryEntry, 0, len(results)),
	}
	for i := range results {
		if results[i].Score > resp.BestScore {
			resp.BestScore = results[i].Score
		}
		resp.History = append(resp.History, toHistoryEntry(&results[i]))
	}
	return resp, nil
}

func (s *resultService) UserHistory(ctx context.Context, userName string) (*UserHistoryResponse, error) {
	results, err := s.repo.Result().History(ctx, nil, repositories.HistoryFilters{UserName: userName})
	if err != nil {
		return nil, err
	}

	resp := &UserHistoryResponse{
		UserName: userName,
		History:  make([]HistoryEntry, 0, len(results)),
	}
	for i := range results {
		resp.History = append(resp.History, toHistoryEntry(&results[i]))
	}
	return resp, nil
}

// Rename moves every result of old_name to new_name across all exams.
func (s *resultService) Rename(ctx context.Context, req *RenameRequest) (*RenameResponse, error) {
	op := s.log.WithOperation(ctx, "rename_user")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult(0, "result", err)
		return nil, err
	}
	if req.OldName == req.NewName {
		op.LogResult(0, "result", ErrRenameSameName)
		return nil, ErrRenameSameName
	}

	updated, err := s.repo.Result().RenameUser(ctx, nil, req.OldName, req.NewName)
	if err != nil {
		op.LogResult(0, "result", err)
		return nil, err
	}
	if updated > 0 {
		s.invalidateLeaderboard(ctx, cache.AllLeaderboardsPattern())
	}

	op.LogResult(0, "result", nil)
	op.LogAudit(AuditEventUpdate, 0, "result", map[string]any{"updated_count": updated})
	return &RenameResponse{Success: true, UpdatedCount: updated}, nil
}

// ===== HELPERS =====

func (s *resultService) getExam(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

func (s *resultService) invalidateLeaderboard(ctx context.Context, pattern string) {
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "pattern", pattern, "error", err)
	}
}

func toHistoryEntry(r *models.Result) HistoryEntry {
	entry := HistoryEntry{
		ID:          r.ID,
		ExamID:      r.ExamID,
		Score:       r.Score,
		Total:       r.Total,
		Percentage:  r.Percentage(),
		TimeTaken:   r.TimeTaken,
		CompletedAt: r.CompletedAt,
	}
	if r.Exam != nil {
		entry.ExamTitle = r.Exam.Title
	}
	return entry
}

// anonymousIfBlank maps a missing or blank player name to an anonymous
// submission.
func anonymousIfBlank(name *string) *string {
	if name == nil || strings.TrimSpace(*name) == "" {
		return nil
	}
	return name
}
