// Package seed loads the sample quiz into an empty database.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"gorm.io/gorm"
)

const (
	SampleExamTitle = "Sample Quiz"
	SamplePIN       = models.DefaultPIN
	sampleTimeLimit = 10
)

type sampleQuestion struct {
	text    string
	content models.QuestionContent
	notes   string
}

func sampleQuestions() []sampleQuestion {
	return []sampleQuestion{
		{
			text: "What is the capital of France?",
			content: models.SingleChoiceContent{
				Options: []string{"London", "Paris", "Berlin", "Madrid"},
				Correct: "Paris",
			},
			notes: "Paris is the capital and largest city of France.",
		},
		{
			text: "Which of the following are programming languages?",
			content: models.MultipleChoiceContent{
				Options: []string{"Python", "HTML", "JavaScript", "Photoshop"},
				Correct: []string{"Python", "JavaScript"},
			},
			notes: "Python and JavaScript are programming languages. HTML is a markup language.",
		},
		{
			text: "What is 2 + 2?",
			content: models.SingleChoiceContent{
				Options: []string{"3", "4", "5", "6"},
				Correct: "4",
			},
		},
		{
			text: "Arrange in order: smallest to largest",
			content: models.DragDropContent{
				Items: []string{"Elephant", "Mouse", "Cat", "Dog"},
				Order: []string{"Mouse", "Cat", "Dog", "Elephant"},
			},
		},
		{
			text: "Match the countries with their capitals",
			content: models.MatchingContent{
				Left:  []string{"France", "Germany", "Japan"},
				Right: []string{"Paris", "Berlin", "Tokyo"},
				Pairs: map[string]string{"France": "Paris", "Germany": "Berlin", "Japan": "Tokyo"},
			},
			notes: "Capital cities quiz!",
		},
	}
}

// SampleData creates the sample quiz when no exam exists yet. It reports
// whether anything was inserted.
func SampleData(ctx context.Context, repo repositories.Repository, logger *slog.Logger) (bool, error) {
	count, err := repo.Exam().Count(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("count exams: %w", err)
	}
	if count > 0 {
		logger.Debug("Skipping sample data, exams already present", "exams", count)
		return false, nil
	}

	pin := SamplePIN
	exam := &models.Exam{
		Title:       SampleExamTitle,
		Description: "A sample quiz to test the application",
		TimeLimit:   sampleTimeLimit,
		PinCode:     &pin,
	}

	err = repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := repo.Exam().Create(ctx, tx, exam); err != nil {
			return fmt.Errorf("create sample exam: %w", err)
		}
		for i, sq := range sampleQuestions() {
			var notes *string
			if sq.notes != "" {
				n := sq.notes
				notes = &n
			}
			q, err := models.NewQuestion(exam.ID, sq.text, sq.content, notes, i+1)
			if err != nil {
				return fmt.Errorf("build sample question %d: %w", i+1, err)
			}
			if err := repo.Question().Create(ctx, tx, q); err != nil {
				return fmt.Errorf("create sample question %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	logger.Info("Sample data created", "exam_id", exam.ID, "title", exam.Title)
	return true, nil
}
