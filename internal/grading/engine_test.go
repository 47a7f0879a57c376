package grading

import (
	"encoding/json"
	"testing"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestion(t *testing.T, id uint, content models.QuestionContent) models.Question {
	t.Helper()
	q, err := models.NewQuestion(1, "question", content, nil, int(id))
	require.NoError(t, err)
	q.ID = id
	return *q
}

func TestSingleChoice(t *testing.T) {
	content := models.SingleChoiceContent{Options: []string{"London", "Paris", "Berlin"}, Correct: "Paris"}

	assert.True(t, IsCorrect(content, "Paris"))
	for _, option := range content.Options {
		if option != content.Correct {
			assert.False(t, IsCorrect(content, option), option)
		}
	}
	assert.False(t, IsCorrect(content, "paris"), "comparison is case sensitive")
	assert.False(t, IsCorrect(content, " Paris"), "no trimming")
	assert.False(t, IsCorrect(content, []any{"Paris"}))
	assert.False(t, IsCorrect(content, nil))
}

func TestMultipleChoice(t *testing.T) {
	content := models.MultipleChoiceContent{
		Options: []string{"Python", "HTML", "JavaScript", "Photoshop"},
		Correct: []string{"Python", "JavaScript"},
	}

	assert.True(t, IsCorrect(content, []any{"Python", "JavaScript"}))
	assert.True(t, IsCorrect(content, []any{"JavaScript", "Python"}), "order independent")
	assert.True(t, IsCorrect(content, []any{"Python", "JavaScript", "Python"}), "duplicates ignored")
	assert.False(t, IsCorrect(content, []any{"Python"}), "missing selection")
	assert.False(t, IsCorrect(content, []any{"Python", "JavaScript", "HTML"}), "extra selection")
	assert.False(t, IsCorrect(content, []any{}))
	assert.False(t, IsCorrect(content, "Python"))
	assert.False(t, IsCorrect(content, map[string]any{"Python": "JavaScript"}))
}

func TestDragDrop(t *testing.T) {
	content := models.DragDropContent{
		Items: []string{"Elephant", "Mouse", "Cat", "Dog"},
		Order: []string{"Mouse", "Cat", "Dog", "Elephant"},
	}

	assert.True(t, IsCorrect(content, []string{"Mouse", "Cat", "Dog", "Elephant"}))
	for i := 0; i+1 < len(content.Order); i++ {
		swapped := append([]string(nil), content.Order...)
		swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
		assert.False(t, IsCorrect(content, swapped), "transposition at %d", i)
	}
	assert.False(t, IsCorrect(content, []string{"Mouse", "Cat", "Dog"}))
	assert.False(t, IsCorrect(content, "Mouse,Cat,Dog,Elephant"))
}

func TestDragDrop_EqualAdjacentItems(t *testing.T) {
	content := models.DragDropContent{Items: []string{"a", "a", "b"}, Order: []string{"a", "a", "b"}}
	assert.True(t, IsCorrect(content, []string{"a", "a", "b"}))
}

func TestMatching(t *testing.T) {
	content := models.MatchingContent{
		Left:  []string{"France", "Germany", "Japan"},
		Right: []string{"Paris", "Berlin", "Tokyo"},
		Pairs: map[string]string{"France": "Paris", "Germany": "Berlin", "Japan": "Tokyo"},
	}
	correct := map[string]any{"France": "Paris", "Germany": "Berlin", "Japan": "Tokyo"}

	assert.True(t, IsCorrect(content, correct))

	swapped := map[string]any{"France": "Berlin", "Germany": "Berlin", "Japan": "Tokyo"}
	assert.False(t, IsCorrect(content, swapped))

	extra := map[string]any{"France": "Paris", "Germany": "Berlin", "Japan": "Tokyo", "Italy": "Rome"}
	assert.True(t, IsCorrect(content, extra), "extra keys are ignored")

	extraNull := map[string]any{"France": "Paris", "Germany": "Berlin", "Japan": "Tokyo", "Italy": nil}
	assert.True(t, IsCorrect(content, extraNull), "extra null value is ignored")

	extraNumber := map[string]any{"France": "Paris", "Germany": "Berlin", "Japan": "Tokyo", "Italy": 3}
	assert.True(t, IsCorrect(content, extraNumber), "extra numeric value is ignored")

	rawExtra := json.RawMessage(`{"France":"Paris","Germany":"Berlin","Japan":"Tokyo","Italy":3}`)
	assert.True(t, IsCorrect(content, rawExtra))

	wrongType := map[string]any{"France": "Paris", "Germany": "Berlin", "Japan": 3}
	assert.False(t, IsCorrect(content, wrongType))

	missing := map[string]any{"France": "Paris", "Germany": "Berlin"}
	assert.False(t, IsCorrect(content, missing))

	assert.False(t, IsCorrect(content, "Paris"))
	assert.False(t, IsCorrect(content, []any{"Paris", "Berlin", "Tokyo"}))
}

func TestMatching_EmptyPairsNeverCorrect(t *testing.T) {
	content := models.MatchingContent{Pairs: map[string]string{}}
	assert.False(t, IsCorrect(content, map[string]any{}))
}

func TestIsCorrect_RawJSONAnswers(t *testing.T) {
	content := models.SingleChoiceContent{Options: []string{"A", "B"}, Correct: "B"}
	assert.True(t, IsCorrect(content, json.RawMessage(`"B"`)))
	assert.False(t, IsCorrect(content, json.RawMessage(`{"B":true}`)))
	assert.False(t, IsCorrect(content, json.RawMessage(`not json`)))
}

func TestGradeQuestion_CorruptStoredContent(t *testing.T) {
	q := models.Question{ID: 1, Type: models.SingleChoice, Options: []byte(`["A"]`), CorrectAnswer: []byte(`"Z"`)}
	assert.False(t, GradeQuestion(&q, "Z"))
}

func TestGrade_SingleQuestionScenario(t *testing.T) {
	questions := []models.Question{
		newQuestion(t, 1, models.SingleChoiceContent{Options: []string{"A", "B"}, Correct: "B"}),
	}

	summary := Grade(questions, models.AnswerSheet{1: "B"})

	assert.Equal(t, 1, summary.Score)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 100, summary.Percentage)
	require.Len(t, summary.Results, 1)
	assert.True(t, summary.Results[0].IsCorrect)
	assert.Equal(t, "B", summary.Results[0].UserAnswer)
}

func TestGrade_Aggregate(t *testing.T) {
	questions := []models.Question{
		newQuestion(t, 1, models.SingleChoiceContent{Options: []string{"A", "B"}, Correct: "B"}),
		newQuestion(t, 2, models.MultipleChoiceContent{Options: []string{"A", "B"}, Correct: []string{"A", "B"}}),
		newQuestion(t, 3, models.DragDropContent{Items: []string{"y", "x"}, Order: []string{"x", "y"}}),
		newQuestion(t, 4, models.MatchingContent{
			Left:  []string{"k"},
			Right: []string{"v", "w"},
			Pairs: map[string]string{"k": "v"},
		}),
	}
	answers := models.AnswerSheet{
		1: "B",
		2: []any{"B", "A"},
		3: []any{"y", "x"},
		4: map[string]any{"k": "v"},
	}

	summary := Grade(questions, answers)

	assert.Equal(t, 3, summary.Score)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 75, summary.Percentage)
	assert.False(t, summary.Results[2].IsCorrect)
}

func TestGrade_UnansweredAndEmpty(t *testing.T) {
	questions := []models.Question{
		newQuestion(t, 1, models.SingleChoiceContent{Options: []string{"A"}, Correct: "A"}),
	}
	summary := Grade(questions, nil)
	assert.Equal(t, 0, summary.Score)
	assert.Nil(t, summary.Results[0].UserAnswer)

	empty := Grade(nil, models.AnswerSheet{1: "A"})
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0, empty.Percentage)
	assert.Empty(t, empty.Results)
}
