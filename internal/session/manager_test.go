package session

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) *Manager {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewManager(logger, ttl, WithTickInterval(0))
}

func TestManager_CreateGetDiscard(t *testing.T) {
	m := newTestManager(time.Minute)
	defer m.Shutdown()

	questions := []models.Question{single(t, 1, 1)}
	s, err := m.Create(models.Exam{ID: 5, Title: "Quiz", TimeLimit: 5}, questions, &recordingSubmitter{}, "bob", StartOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, uint(5), s.ExamID())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, "bob", got.Snapshot().UserName)
	assert.Equal(t, StateInProgress, got.Snapshot().State)

	require.NoError(t, m.Discard(s.ID()))
	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Discard(s.ID()), ErrSessionNotFound)
}

func TestManager_CreateWithoutQuestions(t *testing.T) {
	m := newTestManager(time.Minute)
	defer m.Shutdown()

	_, err := m.Create(models.Exam{ID: 1}, nil, &recordingSubmitter{}, "", StartOptions{})
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, 0, m.Len())
}

func TestManager_Sweep(t *testing.T) {
	m := newTestManager(time.Minute)
	defer m.Shutdown()

	questions := []models.Question{single(t, 1, 1)}
	finished, err := m.Create(models.Exam{ID: 1, TimeLimit: 5}, questions, &recordingSubmitter{questions: questions}, "", StartOptions{})
	require.NoError(t, err)
	running, err := m.Create(models.Exam{ID: 1, TimeLimit: 5}, questions, &recordingSubmitter{questions: questions}, "", StartOptions{})
	require.NoError(t, err)

	_, err = finished.Advance(context.Background())
	require.NoError(t, err)
	endedAt, ended := finished.EndedAt()
	require.True(t, ended)

	assert.Equal(t, 0, m.Sweep(endedAt.Add(30*time.Second)))
	assert.Equal(t, 1, m.Sweep(endedAt.Add(2*time.Minute)))
	assert.Equal(t, 1, m.Len())

	_, err = m.Get(running.ID())
	assert.NoError(t, err)
}

func TestManager_Shutdown(t *testing.T) {
	m := newTestManager(time.Minute)
	questions := []models.Question{single(t, 1, 1)}
	sub := &recordingSubmitter{questions: questions}
	s, err := m.Create(models.Exam{ID: 1, TimeLimit: 5}, questions, sub, "", StartOptions{})
	require.NoError(t, err)

	m.Shutdown()

	assert.Equal(t, 0, m.Len())
	s.Tick(context.Background())
	assert.Empty(t, sub.Calls())
	assert.Error(t, m.Context().Err())
}

func TestManager_RunReportsActiveSessions(t *testing.T) {
	m := newTestManager(time.Minute)
	defer m.Shutdown()

	questions := []models.Question{single(t, 1, 1)}
	_, err := m.Create(models.Exam{ID: 1, TimeLimit: 5}, questions, &recordingSubmitter{questions: questions}, "", StartOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	active := make(chan int, 1)
	go m.Run(ctx, 5*time.Millisecond, func(n int) {
		select {
		case active <- n:
		default:
		}
	})

	select {
	case n := <-active:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("sweep did not run")
	}
}
