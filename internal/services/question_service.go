package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"github.com/binhtph/quiz-app/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	log       *ServiceLogger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		log:       NewServiceLogger(logger, LogConfig{Service: "quiz-app", Component: "question"}),
		validator: validator,
	}
}

// Create appends the question at the end of its exam unless order_num is set.
func (s *questionService) Create(ctx context.Context, req *QuestionRequest) (*models.Question, error) {
	op := s.log.WithOperation(ctx, "create_question")

	question, err := s.build(ctx, req)
	if err != nil {
		op.LogResult(0, "question", err)
		return nil, err
	}

	if req.OrderNum == nil {
		next, err := s.repo.Question().GetNextOrder(ctx, nil, req.ExamID)
		if err != nil {
			op.LogResult(0, "question", err)
			return nil, err
		}
		question.OrderNum = next
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		op.LogResult(0, "question", err)
		return nil, err
	}

	op.LogResult(question.ID, "question", nil)
	return question, nil
}

// Update replaces the question's content. The exam it belongs to never
// changes; order_num is kept when omitted.
func (s *questionService) Update(ctx context.Context, id uint, req *QuestionRequest) (*models.Question, error) {
	op := s.log.WithOperation(ctx, "update_question")

	existing, err := s.getQuestion(ctx, id)
	if err != nil {
		op.LogResult(id, "question", err)
		return nil, err
	}
	if req.ExamID == 0 {
		req.ExamID = existing.ExamID
	}
	if req.ExamID != existing.ExamID {
		op.LogResult(id, "question", ErrQuestionWrongExam)
		return nil, ErrQuestionWrongExam
	}

	question, err := s.build(ctx, req)
	if err != nil {
		op.LogResult(id, "question", err)
		return nil, err
	}
	question.ID = existing.ID
	if req.OrderNum == nil {
		question.OrderNum = existing.OrderNum
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		if repositories.IsNotFoundError(err) {
			err = ErrQuestionNotFound
		}
		op.LogResult(id, "question", err)
		return nil, err
	}

	op.LogResult(id, "question", nil)
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	op := s.log.WithOperation(ctx, "delete_question")

	err := s.repo.Question().Delete(ctx, nil, id)
	if repositories.IsNotFoundError(err) {
		err = ErrQuestionNotFound
	}
	op.LogResult(id, "question", err)
	return err
}

// Reorder applies all positions in one transaction.
func (s *questionService) Reorder(ctx context.Context, req *ReorderRequest) error {
	op := s.log.WithOperation(ctx, "reorder_questions")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult(0, "question", err)
		return err
	}

	err := s.repo.Question().UpdateOrder(ctx, nil, req.Orders)
	if repositories.IsNotFoundError(err) {
		err = fmt.Errorf("%w: %v", ErrQuestionNotFound, err)
	}
	op.LogResult(0, "question", err)
	return err
}

// ===== HELPERS =====

// build validates req and returns the normalized question it describes.
func (s *questionService) build(ctx context.Context, req *QuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, ValidationErrors{*NewValidationError("question", "is required", req.Question)}
	}

	if _, err := s.repo.Exam().GetByID(ctx, nil, req.ExamID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	content, err := s.validator.Question().ValidateContent(req.Type, req.Options, req.CorrectAnswer)
	if err != nil {
		return nil, err
	}

	orderNum := 0
	if req.OrderNum != nil {
		orderNum = *req.OrderNum
	}
	return models.NewQuestion(req.ExamID, strings.TrimSpace(req.Question), content, req.Notes, orderNum)
}

func (s *questionService) getQuestion(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}
