package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/binhtph/quiz-app/internal/metrics"
	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"github.com/binhtph/quiz-app/internal/session"
	"github.com/binhtph/quiz-app/internal/validator"
)

type sessionService struct {
	repo      repositories.Repository
	manager   *session.Manager
	submitter session.Submitter
	logger    *slog.Logger
	log       *ServiceLogger
	validator *validator.Validator
	metrics   *metrics.Metrics
}

func NewSessionService(
	repo repositories.Repository,
	manager *session.Manager,
	submitter session.Submitter,
	logger *slog.Logger,
	validator *validator.Validator,
	m *metrics.Metrics,
) SessionService {
	return &sessionService{
		repo:      repo,
		manager:   manager,
		submitter: submitter,
		logger:    logger,
		log:       NewServiceLogger(logger, LogConfig{Service: "quiz-app", Component: "session"}),
		validator: validator,
		metrics:   m,
	}
}

// Start opens a session on the exam. Options not set in req fall back to the
// exam's own settings.
func (s *sessionService) Start(ctx context.Context, examID uint, req *StartSessionRequest) (*session.Snapshot, error) {
	op := s.log.WithOperation(ctx, "start_session")

	if strings.TrimSpace(req.UserName) == "" {
		req.UserName = ""
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(examID, "exam", err)
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			err = ErrExamNotFound
		}
		op.LogResult(examID, "exam", err)
		return nil, err
	}

	questions, err := s.repo.Question().GetByExam(ctx, nil, examID)
	if err != nil {
		op.LogResult(examID, "exam", err)
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	sess, err := s.manager.Create(*exam, questions, s.submitter, req.UserName, startOptions(exam, req))
	if err != nil {
		if errors.Is(err, session.ErrNoQuestions) {
			err = ErrNoQuestions
		}
		op.LogResult(examID, "exam", err)
		return nil, err
	}
	s.metrics.SetActiveSessions(s.manager.Len())

	op.LogResult(examID, "exam", nil)
	snap := sess.Snapshot()
	return &snap, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*session.Snapshot, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return nil, err
	}
	snap := sess.Snapshot()
	return &snap, nil
}

func (s *sessionService) Answer(ctx context.Context, id string, questionID uint, answer any) (*session.Snapshot, error) {
	return s.apply(id, func(sess *session.Session) error {
		return sess.SelectAnswer(questionID, answer)
	})
}

func (s *sessionService) EditAnswer(ctx context.Context, id string, questionID uint, req *EditAnswerRequest) (*session.Snapshot, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	return s.apply(id, func(sess *session.Session) error {
		switch req.Action {
		case EditToggleOption:
			return sess.ToggleOption(questionID, req.Option)
		case EditMatch:
			return sess.Match(questionID, req.Left, req.Right)
		case EditUnmatch:
			return sess.Unmatch(questionID, req.Left)
		case EditMoveItem:
			return sess.MoveItem(questionID, req.From, req.To)
		}
		return fmt.Errorf("%w: unknown action %q", ErrBadRequest, req.Action)
	})
}

func (s *sessionService) ToggleMark(ctx context.Context, id string, index int) (*session.Snapshot, error) {
	return s.apply(id, func(sess *session.Session) error {
		return sess.ToggleMark(index)
	})
}

func (s *sessionService) Jump(ctx context.Context, id string, index int) (*session.Snapshot, error) {
	return s.apply(id, func(sess *session.Session) error {
		return sess.JumpTo(index)
	})
}

// Next advances the session. Completing the last question submits before
// returning, so the snapshot already carries the result.
func (s *sessionService) Next(ctx context.Context, id string) (*StepResponse, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return nil, err
	}

	step, err := sess.Advance(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	if step == session.StepCompleted {
		s.logger.InfoContext(ctx, "Session completed", "session_id", id, "exam_id", sess.ExamID())
	}
	return &StepResponse{Step: step, Snapshot: sess.Snapshot()}, nil
}

func (s *sessionService) Back(ctx context.Context, id string) (*session.Snapshot, error) {
	return s.apply(id, func(sess *session.Session) error {
		return sess.GoBack()
	})
}

// Abandon closes the session without submitting anything.
func (s *sessionService) Abandon(ctx context.Context, id string) error {
	if err := s.manager.Discard(id); err != nil {
		return err
	}
	s.metrics.SetActiveSessions(s.manager.Len())
	s.logger.InfoContext(ctx, "Session discarded", "session_id", id)
	return nil
}

func (s *sessionService) ActiveSessions() int {
	return s.manager.Len()
}

func (s *sessionService) apply(id string, fn func(*session.Session) error) (*session.Snapshot, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	snap := sess.Snapshot()
	return &snap, nil
}

func startOptions(exam *models.Exam, req *StartSessionRequest) session.StartOptions {
	opts := session.StartOptions{
		LearnMode:        exam.LearnMode,
		ShuffleQuestions: exam.ShuffleQuestions,
		ShuffleAnswers:   exam.ShuffleAnswers,
	}
	if req.LearnMode != nil {
		opts.LearnMode = *req.LearnMode
	}
	if req.ShuffleQuestions != nil {
		opts.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleAnswers != nil {
		opts.ShuffleAnswers = *req.ShuffleAnswers
	}
	return opts
}
