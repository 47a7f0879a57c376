package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager hosts live sessions in memory. Nothing is persisted; a restart drops
// every session in flight.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *slog.Logger
	opts     []Option

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager keeps finished sessions around for ttl so their result can still
// be read. Extra options are applied to every session created.
func NewManager(logger *slog.Logger, ttl time.Duration, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Create builds and starts a session. The countdown runs under the manager's
// lifetime, not the caller's request.
func (m *Manager) Create(exam models.Exam, questions []models.Question, submitter Submitter, userName string, start StartOptions) (*Session, error) {
	id := uuid.NewString()
	opts := append([]Option{WithID(id), WithUserName(userName), WithLogger(m.logger)}, m.opts...)

	s, err := New(exam, questions, submitter, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Start(m.ctx, start); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Discard closes the session and forgets it. Closing a completed session is
// harmless.
func (m *Manager) Discard(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

// Context is the lifetime context handed to background submissions.
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions that ended more than ttl before now.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		endedAt, ended := s.EndedAt()
		if !ended {
			continue
		}
		if endedAt.IsZero() || now.Sub(endedAt) >= m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("Swept finished sessions", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}

// Run sweeps every interval until ctx ends. afterSweep, when set, receives the
// number of sessions still held.
func (m *Manager) Run(ctx context.Context, interval time.Duration, afterSweep func(active int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
			if afterSweep != nil {
				afterSweep(m.Len())
			}
		}
	}
}

// Shutdown stops every timer. Sessions still in progress are not submitted.
func (m *Manager) Shutdown() {
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}
