package validator

import (
	"strings"

	"github.com/binhtph/quiz-app/internal/errors"
	"github.com/binhtph/quiz-app/internal/models"
)

const maxItems = 40

// QuestionValidator checks that a question's options and correct answer fit its type.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateContent decodes and checks the raw options/correct_answer pair.
func (v *QuestionValidator) ValidateContent(questionType models.QuestionType, options, correct []byte) (models.QuestionContent, error) {
	if !questionType.IsValid() {
		return nil, ValidationErrors{*errors.NewValidationErrorWithRule("type", "must be a valid question type (single_choice, multiple_choice, drag_drop, matching)", "question_type", questionType)}
	}

	content, err := models.DecodeContent(questionType, options, correct)
	if err != nil {
		return nil, ValidationErrors{*errors.NewValidationError("correct_answer", err.Error(), nil)}
	}

	if errs := v.checkLimits(content); len(errs) > 0 {
		return nil, errs
	}
	return content, nil
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if strings.TrimSpace(question.Text) == "" {
		return ValidationErrors{*errors.NewValidationError("question", "is required", question.Text)}
	}
	_, err := v.ValidateContent(question.Type, question.Options, question.CorrectAnswer)
	return err
}

func (v *QuestionValidator) checkLimits(content models.QuestionContent) ValidationErrors {
	var errs ValidationErrors

	var items []string
	switch c := content.(type) {
	case models.SingleChoiceContent:
		items = c.Options
	case models.MultipleChoiceContent:
		items = c.Options
	case models.DragDropContent:
		items = c.Items
	case models.MatchingContent:
		items = append(append([]string(nil), c.Left...), c.Right...)
	}

	if len(items) > maxItems {
		errs = append(errs, *errors.NewValidationError("options", "has too many items", len(items)))
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			errs = append(errs, *errors.NewValidationError("options", "must not contain blank items", item))
			break
		}
	}
	return errs
}
