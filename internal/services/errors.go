package services

import (
	"errors"
	"fmt"

	apperrors "github.com/binhtph/quiz-app/internal/errors"
	"github.com/binhtph/quiz-app/internal/session"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Exam specific errors
	ErrExamNotFound = errors.New("exam not found")
	ErrInvalidPIN   = errors.New("invalid PIN")
	ErrNoQuestions  = errors.New("exam has no questions")

	// Question specific errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionInvalidType    = errors.New("invalid question type")
	ErrQuestionInvalidContent = errors.New("invalid question content for type")
	ErrQuestionWrongExam      = errors.New("question belongs to another exam")

	// Result specific errors
	ErrResultNotFound = errors.New("result not found")
	ErrRenameSameName = errors.New("new name must differ from old name")

	// Session specific errors
	ErrSessionNotFound = errors.New("session not found")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string         `json:"rule"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value any) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]any) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, session.ErrSessionNotFound) ||
		errors.Is(err, session.ErrUnknownQuestion)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidPIN)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrQuestionInvalidType) ||
		errors.Is(err, ErrQuestionInvalidContent) ||
		errors.Is(err, ErrRenameSameName) ||
		errors.Is(err, session.ErrMalformedAnswer) ||
		errors.Is(err, session.ErrIndexOutOfRange) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre) ||
		errors.Is(err, ErrNoQuestions) ||
		errors.Is(err, ErrQuestionWrongExam)
}

// IsConflict covers operations that are not allowed in the session's current
// state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, session.ErrSessionCompleted) ||
		errors.Is(err, session.ErrSessionClosed) ||
		errors.Is(err, session.ErrNotStarted) ||
		errors.Is(err, session.ErrAlreadyStarted) ||
		errors.Is(err, session.ErrFeedbackLocked) ||
		errors.Is(err, session.ErrSubmissionPending)
}
