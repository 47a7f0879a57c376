package postgres

import (
	"context"

	"github.com/binhtph/quiz-app/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db       *gorm.DB
	exam     repositories.ExamRepository
	question repositories.QuestionRepository
	result   repositories.ResultRepository
}

// NewRepository wires the gorm-backed repositories onto one connection.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		exam:     NewExamPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		result:   NewResultPostgreSQL(db),
	}
}

func (r *repository) Exam() repositories.ExamRepository         { return r.exam }
func (r *repository) Question() repositories.QuestionRepository { return r.question }
func (r *repository) Result() repositories.ResultRepository     { return r.result }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
