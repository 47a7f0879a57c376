package grading

import (
	"github.com/binhtph/quiz-app/internal/models"
	"gorm.io/datatypes"
)

// QuestionResult is the per-question breakdown returned after a submission.
type QuestionResult struct {
	QuestionID    uint                `json:"question_id"`
	Question      string              `json:"question"`
	Type          models.QuestionType `json:"type"`
	Options       datatypes.JSON      `json:"options"`
	UserAnswer    any                 `json:"user_answer"`
	CorrectAnswer datatypes.JSON      `json:"correct_answer"`
	IsCorrect     bool                `json:"is_correct"`
	Notes         *string             `json:"notes"`
}

// Summary is the aggregate outcome of grading a full answer sheet.
type Summary struct {
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
	Results    []QuestionResult `json:"results"`
}

// Strategy decides correctness for one question variant.
type Strategy func(content models.QuestionContent, answer any) bool

var strategies = map[models.QuestionType]Strategy{
	models.SingleChoice:   gradeSingleChoice,
	models.MultipleChoice: gradeMultipleChoice,
	models.DragDrop:       gradeDragDrop,
	models.Matching:       gradeMatching,
}

// IsCorrect grades answer against content. Missing or malformed answers are
// incorrect.
func IsCorrect(content models.QuestionContent, answer any) bool {
	if content == nil || answer == nil {
		return false
	}
	strategy, ok := strategies[content.Type()]
	if !ok {
		return false
	}
	return strategy(content, answer)
}

// GradeQuestion decodes q and grades answer. A question whose stored content
// cannot be decoded never grades correct.
func GradeQuestion(q *models.Question, answer any) bool {
	content, err := q.Content()
	if err != nil {
		return false
	}
	return IsCorrect(content, answer)
}

// Grade scores every question in order against the answer sheet.
func Grade(questions []models.Question, answers models.AnswerSheet) Summary {
	summary := Summary{
		Total:   len(questions),
		Results: make([]QuestionResult, 0, len(questions)),
	}

	for i := range questions {
		q := &questions[i]
		answer := answers[q.ID]
		correct := GradeQuestion(q, answer)
		if correct {
			summary.Score++
		}

		summary.Results = append(summary.Results, QuestionResult{
			QuestionID:    q.ID,
			Question:      q.Text,
			Type:          q.Type,
			Options:       q.Options,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
			Notes:         q.Notes,
		})
	}

	summary.Percentage = models.Percentage(summary.Score, summary.Total)
	return summary
}

// ===== STRATEGIES =====

func gradeSingleChoice(content models.QuestionContent, answer any) bool {
	c, ok := content.(models.SingleChoiceContent)
	if !ok {
		return false
	}
	got, ok := models.AsString(answer)
	return ok && got == c.Correct
}

func gradeMultipleChoice(content models.QuestionContent, answer any) bool {
	c, ok := content.(models.MultipleChoiceContent)
	if !ok {
		return false
	}
	got, ok := models.AsStringSlice(answer)
	if !ok {
		return false
	}
	return setEqual(toSet(got), toSet(c.Correct))
}

func gradeDragDrop(content models.QuestionContent, answer any) bool {
	c, ok := content.(models.DragDropContent)
	if !ok {
		return false
	}
	got, ok := models.AsStringSlice(answer)
	if !ok || len(got) != len(c.Order) {
		return false
	}
	for i := range got {
		if got[i] != c.Order[i] {
			return false
		}
	}
	return true
}

// gradeMatching only checks the keys of the correct mapping; extra submitted
// keys are ignored whatever their value.
func gradeMatching(content models.QuestionContent, answer any) bool {
	c, ok := content.(models.MatchingContent)
	if !ok || len(c.Pairs) == 0 {
		return false
	}
	got, ok := models.AsMap(answer)
	if !ok {
		return false
	}
	for left, right := range c.Pairs {
		v, ok := got[left].(string)
		if !ok || v != right {
			return false
		}
	}
	return true
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
