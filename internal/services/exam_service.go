package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/binhtph/quiz-app/internal/cache"
	"github.com/binhtph/quiz-app/internal/leaderboard"
	"github.com/binhtph/quiz-app/internal/metrics"
	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"github.com/binhtph/quiz-app/internal/validator"
)

const topScoresPerExam = 3

type examService struct {
	repo       repositories.Repository
	cache      cache.CacheService
	logger     *slog.Logger
	log        *ServiceLogger
	validator  *validator.Validator
	metrics    *metrics.Metrics
	defaultPIN string
}

func NewExamService(repo repositories.Repository, cache cache.CacheService, logger *slog.Logger, validator *validator.Validator, m *metrics.Metrics, defaultPIN string) ExamService {
	return &examService{
		repo:       repo,
		cache:      cache,
		logger:     logger,
		log:        NewServiceLogger(logger, LogConfig{Service: "quiz-app", Component: "exam"}),
		validator:  validator,
		metrics:    m,
		defaultPIN: defaultPIN,
	}
}

// ===== CORE CRUD OPERATIONS =====

// List returns every exam newest first with its top three learners.
func (s *examService) List(ctx context.Context) (*ExamListResponse, error) {
	exams, total, err := s.repo.Exam().List(ctx, nil, repositories.ExamFilters{SortBy: "created_at", SortOrder: "desc"})
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}

	ids := make([]uint, len(exams))
	for i, exam := range exams {
		ids[i] = exam.ID
	}
	results, err := s.repo.Result().ListByExams(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	byExam := make(map[uint][]models.Result, len(exams))
	for _, r := range results {
		byExam[r.ExamID] = append(byExam[r.ExamID], r)
	}

	resp := &ExamListResponse{
		Exams: make([]*ExamResponse, 0, len(exams)),
		Total: total,
	}
	for _, exam := range exams {
		item := toExamResponse(exam)
		item.TopScores = leaderboard.BestPerUser(byExam[exam.ID], topScoresPerExam)
		resp.Exams = append(resp.Exams, item)
	}
	return resp, nil
}

func (s *examService) Get(ctx context.Context, id uint) (*ExamResponse, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return toExamResponse(exam), nil
}

func (s *examService) Create(ctx context.Context, req *CreateExamRequest) (*ExamResponse, error) {
	op := s.log.WithOperation(ctx, "create_exam")

	if req.PinCode != nil && *req.PinCode == "" {
		req.PinCode = nil
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(0, "exam", err)
		return nil, err
	}

	exam := &models.Exam{
		Title:            req.Title,
		Description:      req.Description,
		TimeLimit:        models.DefaultTimeLimitMinutes,
		LearnMode:        req.LearnMode,
		ShuffleQuestions: req.ShuffleQuestions,
		ShuffleAnswers:   req.ShuffleAnswers,
		Logo:             req.Logo,
		PinCode:          req.PinCode,
	}
	if req.TimeLimit != nil {
		exam.TimeLimit = *req.TimeLimit
	}
	if !exam.HasPIN() && s.defaultPIN != "" {
		pin := s.defaultPIN
		exam.PinCode = &pin
	}

	if err := s.repo.Exam().Create(ctx, nil, exam); err != nil {
		op.LogResult(0, "exam", err)
		return nil, err
	}

	op.LogResult(exam.ID, "exam", nil)
	op.LogAudit(AuditEventCreate, exam.ID, "exam", map[string]any{"title": exam.Title})
	return toExamResponse(exam), nil
}

func (s *examService) Update(ctx context.Context, id uint, req *UpdateExamRequest) (*ExamResponse, error) {
	op := s.log.WithOperation(ctx, "update_exam")

	// An empty PinCode clears the PIN and is not itself a PIN to check.
	check := *req
	if check.PinCode != nil && *check.PinCode == "" {
		check.PinCode = nil
	}
	if err := s.validator.Validate(&check); err != nil {
		op.LogResult(id, "exam", err)
		return nil, err
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		err := ValidationErrors{*NewValidationError("title", "is required", *req.Title)}
		op.LogResult(id, "exam", err)
		return nil, err
	}

	exam, err := s.authorize(ctx, "update_exam", id, req.PIN)
	if err != nil {
		op.LogResult(id, "exam", err)
		return nil, err
	}

	applyExamUpdates(exam, req)
	if err := s.repo.Exam().Update(ctx, nil, exam); err != nil {
		op.LogResult(id, "exam", err)
		return nil, err
	}

	op.LogResult(id, "exam", nil)
	op.LogAudit(AuditEventUpdate, id, "exam", nil)
	return s.Get(ctx, id)
}

func (s *examService) Delete(ctx context.Context, id uint, pin string) error {
	op := s.log.WithOperation(ctx, "delete_exam")

	if _, err := s.authorize(ctx, "delete_exam", id, pin); err != nil {
		op.LogResult(id, "exam", err)
		return err
	}

	if err := s.repo.Exam().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			err = ErrExamNotFound
		}
		op.LogResult(id, "exam", err)
		return err
	}

	if err := s.cache.DeletePattern(ctx, cache.LeaderboardPattern(id)); err != nil {
		s.logger.Warn("Failed to drop cached leaderboard", "exam_id", id, "error", err)
	}

	op.LogResult(id, "exam", nil)
	op.LogAudit(AuditEventDelete, id, "exam", nil)
	return nil
}

// VerifyPIN succeeds for exams without a PIN and echoes the PIN on a match so
// the editor can reuse it for later calls.
func (s *examService) VerifyPIN(ctx context.Context, id uint, pin string) (*VerifyPINResponse, error) {
	exam, err := s.authorize(ctx, "verify_pin", id, pin)
	if err != nil {
		return nil, err
	}
	if !exam.HasPIN() {
		return &VerifyPINResponse{Success: true}, nil
	}
	return &VerifyPINResponse{Success: true, PinCode: exam.PinCode}, nil
}

// ===== QUESTIONS =====

func (s *examService) FetchQuestions(ctx context.Context, id uint, learnMode bool) ([]models.Question, error) {
	exam, err := s.getExam(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetByExam(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if learnMode || exam.LearnMode {
		return questions, nil
	}
	for i := range questions {
		questions[i] = questions[i].WithoutAnswer()
	}
	return questions, nil
}

func (s *examService) EditQuestions(ctx context.Context, id uint, pin string) ([]models.Question, error) {
	if _, err := s.authorize(ctx, "edit_questions", id, pin); err != nil {
		return nil, err
	}
	return s.repo.Question().GetByExam(ctx, nil, id)
}

func (s *examService) DeleteAllQuestions(ctx context.Context, id uint, pin string) (int64, error) {
	op := s.log.WithOperation(ctx, "delete_all_questions")

	if _, err := s.authorize(ctx, "delete_all_questions", id, pin); err != nil {
		op.LogResult(id, "exam", err)
		return 0, err
	}

	deleted, err := s.repo.Question().DeleteByExam(ctx, nil, id)
	op.LogResult(id, "exam", err)
	if err != nil {
		return 0, err
	}

	op.LogAudit(AuditEventDelete, id, "questions", map[string]any{"deleted": deleted})
	return deleted, nil
}

// ===== HELPERS =====

func (s *examService) getExam(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

// authorize loads the exam and checks pin against it.
func (s *examService) authorize(ctx context.Context, operation string, id uint, pin string) (*models.Exam, error) {
	exam, err := s.getExam(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exam.CheckPIN(pin) {
		s.log.LogPINRejected(ctx, operation, id)
		s.metrics.PINRejected()
		return nil, ErrInvalidPIN
	}
	return exam, nil
}

func applyExamUpdates(exam *models.Exam, req *UpdateExamRequest) {
	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.TimeLimit != nil {
		exam.TimeLimit = *req.TimeLimit
	}
	if req.LearnMode != nil {
		exam.LearnMode = *req.LearnMode
	}
	if req.ShuffleQuestions != nil {
		exam.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleAnswers != nil {
		exam.ShuffleAnswers = *req.ShuffleAnswers
	}
	if req.Logo != nil {
		exam.Logo = req.Logo
		if *req.Logo == "" {
			exam.Logo = nil
		}
	}
	if req.PinCode != nil {
		exam.PinCode = req.PinCode
		if *req.PinCode == "" {
			exam.PinCode = nil
		}
	}
}

func toExamResponse(exam *models.Exam) *ExamResponse {
	return &ExamResponse{
		Exam:   exam,
		HasPIN: exam.HasPIN(),
	}
}
