package session

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/binhtph/quiz-app/internal/grading"
	"github.com/binhtph/quiz-app/internal/models"
	"gorm.io/datatypes"
)

type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

type QuestionState string

const (
	QuestionUnanswered       QuestionState = "unanswered"
	QuestionAnswered         QuestionState = "answered"
	QuestionFeedbackRevealed QuestionState = "feedback_revealed"
)

// CompletionReason records which path closed the session.
type CompletionReason string

const (
	ReasonFinished CompletionReason = "finished"
	ReasonTimeout  CompletionReason = "timeout"
)

// Step is the visible effect of an Advance call.
type Step string

const (
	StepMoved            Step = "moved"
	StepFeedbackRevealed Step = "feedback_revealed"
	StepCompleted        Step = "completed"
	StepIgnored          Step = "ignored"
)

var (
	ErrNoQuestions       = errors.New("exam has no questions")
	ErrInvalidQuestion   = errors.New("question content is invalid")
	ErrAlreadyStarted    = errors.New("session already started")
	ErrNotStarted        = errors.New("session not started")
	ErrSessionCompleted  = errors.New("session already completed")
	ErrSessionClosed     = errors.New("session closed")
	ErrUnknownQuestion   = errors.New("question is not part of this session")
	ErrFeedbackLocked    = errors.New("answer is locked after feedback")
	ErrMalformedAnswer   = errors.New("answer does not match question type")
	ErrIndexOutOfRange   = errors.New("question index out of range")
	ErrSubmissionPending = errors.New("submission not finished")
)

// StartOptions are chosen by the learner on the start screen.
type StartOptions struct {
	LearnMode        bool `json:"learn_mode"`
	ShuffleQuestions bool `json:"shuffle_questions"`
	ShuffleAnswers   bool `json:"shuffle_answers"`
}

// Submission is handed to the Submitter exactly once per session.
type Submission struct {
	SessionID      string
	ExamID         uint
	Answers        models.AnswerSheet
	ElapsedSeconds int
	UserName       string
	Reason         CompletionReason
}

// Outcome is what the Submitter reports back for a graded submission.
type Outcome struct {
	grading.Summary
	IsNewRecord bool `json:"is_new_record"`
}

type Submitter interface {
	Submit(ctx context.Context, sub Submission) (*Outcome, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, sub Submission) (*Outcome, error)

func (f SubmitterFunc) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	return f(ctx, sub)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type entry struct {
	question models.Question
	content  models.QuestionContent
	options  []string // display order for choice questions
	right    []string // display order of the matching right column
}

// Session is one learner's run through an exam. All methods are safe for
// concurrent use; transitions are serialized.
type Session struct {
	mu sync.Mutex

	id        string
	exam      models.Exam
	userName  string
	entries   []*entry
	submitter Submitter
	clock     Clock
	rng       *rand.Rand
	logger    *slog.Logger
	tick      time.Duration

	state     State
	opts      StartOptions
	index     int
	answers   models.AnswerSheet
	marked    map[int]struct{}
	feedback  map[uint]struct{}
	remaining int
	startedAt time.Time
	endedAt   time.Time
	reason    CompletionReason
	closed    bool

	done      chan struct{} // closed when the completed gate is passed or the session is closed
	submitted chan struct{} // closed once the submitter returned
	outcome   *Outcome
	submitErr error
}

type Option func(*Session)

func WithID(id string) Option { return func(s *Session) { s.id = id } }

func WithUserName(name string) Option { return func(s *Session) { s.userName = name } }

func WithClock(c Clock) Option { return func(s *Session) { s.clock = c } }

func WithRand(r *rand.Rand) Option { return func(s *Session) { s.rng = r } }

func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.logger = l } }

// WithTickInterval sets the countdown period. Zero disables the background
// timer; callers then drive the countdown with Tick.
func WithTickInterval(d time.Duration) Option { return func(s *Session) { s.tick = d } }

// New prepares a session over questions in order_num order. It fails when the
// exam has no questions or one of them carries invalid content.
func New(exam models.Exam, questions []models.Question, submitter Submitter, opts ...Option) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	ordered := append([]models.Question(nil), questions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderNum < ordered[j].OrderNum
	})

	entries := make([]*entry, 0, len(ordered))
	for _, q := range ordered {
		content, err := q.Content()
		if err != nil {
			return nil, errors.Join(ErrInvalidQuestion, err)
		}
		e := &entry{question: q, content: content}
		switch c := content.(type) {
		case models.SingleChoiceContent:
			e.options = append([]string(nil), c.Options...)
		case models.MultipleChoiceContent:
			e.options = append([]string(nil), c.Options...)
		case models.MatchingContent:
			e.right = append([]string(nil), c.Right...)
		}
		entries = append(entries, e)
	}

	s := &Session{
		exam:      exam,
		entries:   entries,
		submitter: submitter,
		clock:     realClock{},
		logger:    slog.Default(),
		tick:      time.Second,
		state:     StateNotStarted,
		answers:   make(models.AnswerSheet),
		marked:    make(map[int]struct{}),
		feedback:  make(map[uint]struct{}),
		done:      make(chan struct{}),
		submitted: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	s.logger = s.logger.With("session_id", s.id, "exam_id", exam.ID)
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) ExamID() uint { return s.exam.ID }

// Start shuffles, arms the countdown and shows the first question. ctx bounds
// the background timer and the submission it may trigger.
func (s *Session) Start(ctx context.Context, opts StartOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateNotStarted {
		return ErrAlreadyStarted
	}

	s.opts = opts
	s.shuffleLocked()
	s.remaining = s.exam.TimeLimitSeconds()
	s.startedAt = s.clock.Now()
	s.state = StateInProgress
	s.showLocked(0)

	if s.tick > 0 {
		go s.runTimer(ctx, s.tick)
	}

	s.logger.Info("Session started",
		"learn_mode", opts.LearnMode,
		"shuffle_questions", opts.ShuffleQuestions,
		"shuffle_answers", opts.ShuffleAnswers,
		"questions", len(s.entries),
		"time_limit_seconds", s.remaining)
	return nil
}

// SelectAnswer records value for questionID, replacing any earlier answer. A
// nil value clears the answer.
func (s *Session) SelectAnswer(questionID uint, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.editableLocked(questionID)
	if err != nil {
		return err
	}
	if value == nil {
		delete(s.answers, questionID)
		return nil
	}
	if !models.IsAnswerWellFormed(e.question.Type, value) {
		return ErrMalformedAnswer
	}
	s.answers[questionID] = value
	return nil
}

// ToggleOption flips one option of a multiple choice answer. An empty
// selection clears the answer.
func (s *Session) ToggleOption(questionID uint, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.editableLocked(questionID)
	if err != nil {
		return err
	}
	if e.question.Type != models.MultipleChoice {
		return ErrMalformedAnswer
	}

	current, _ := models.AsStringSlice(s.answers[questionID])
	next := make([]string, 0, len(current)+1)
	removed := false
	for _, o := range current {
		if o == option {
			removed = true
			continue
		}
		next = append(next, o)
	}
	if !removed {
		next = append(next, option)
	}

	if len(next) == 0 {
		delete(s.answers, questionID)
	} else {
		s.answers[questionID] = next
	}
	return nil
}

// Match pairs left with right in a matching answer. Any other left item that
// pointed at right is unpaired first.
func (s *Session) Match(questionID uint, left, right string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.editableLocked(questionID)
	if err != nil {
		return err
	}
	if e.question.Type != models.Matching {
		return ErrMalformedAnswer
	}

	pairs := s.matchPairsLocked(questionID)
	for k, v := range pairs {
		if v == right {
			delete(pairs, k)
		}
	}
	pairs[left] = right
	s.answers[questionID] = pairs
	return nil
}

// Unmatch removes the pairing of left, if any.
func (s *Session) Unmatch(questionID uint, left string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.editableLocked(questionID)
	if err != nil {
		return err
	}
	if e.question.Type != models.Matching {
		return ErrMalformedAnswer
	}

	pairs := s.matchPairsLocked(questionID)
	delete(pairs, left)
	s.answers[questionID] = pairs
	return nil
}

// MoveItem moves one drag and drop item from position from to position to.
func (s *Session) MoveItem(questionID uint, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.editableLocked(questionID)
	if err != nil {
		return err
	}
	if e.question.Type != models.DragDrop {
		return ErrMalformedAnswer
	}

	order := s.dragDropOrderLocked(e)
	if from < 0 || from >= len(order) || to < 0 || to >= len(order) {
		return ErrIndexOutOfRange
	}

	next := append([]string(nil), order...)
	item := next[from]
	next = append(next[:from], next[from+1:]...)
	next = append(next[:to], append([]string{item}, next[to:]...)...)
	s.answers[questionID] = next
	return nil
}

// ToggleMark flags or unflags the question at index for review.
func (s *Session) ToggleMark(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inProgressLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	if _, ok := s.marked[index]; ok {
		delete(s.marked, index)
	} else {
		s.marked[index] = struct{}{}
	}
	return nil
}

// Advance moves forward. In learn mode an incorrect or missing answer first
// reveals feedback and keeps the learner on the question; the next call moves
// on. Advancing past the last question completes the session and submits.
func (s *Session) Advance(ctx context.Context) (Step, error) {
	s.mu.Lock()

	if s.state == StateCompleted {
		s.mu.Unlock()
		return StepIgnored, nil
	}
	if err := s.inProgressLocked(); err != nil {
		s.mu.Unlock()
		return StepIgnored, err
	}

	e := s.entries[s.index]
	id := e.question.ID
	if s.opts.LearnMode {
		if _, revealed := s.feedback[id]; !revealed {
			answer, answered := s.answers[id]
			if !answered || !grading.IsCorrect(e.content, answer) {
				s.feedback[id] = struct{}{}
				s.mu.Unlock()
				return StepFeedbackRevealed, nil
			}
		}
	}

	if s.index < len(s.entries)-1 {
		s.showLocked(s.index + 1)
		s.mu.Unlock()
		return StepMoved, nil
	}

	sub, ok := s.completeLocked(ReasonFinished)
	s.mu.Unlock()
	if ok {
		s.submit(ctx, sub)
	}
	return StepCompleted, nil
}

// GoBack returns to the previous question; a no-op on the first one.
func (s *Session) GoBack() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inProgressLocked(); err != nil {
		return err
	}
	if s.index > 0 {
		s.showLocked(s.index - 1)
	}
	return nil
}

// JumpTo shows the question at index, as the question navigator does.
func (s *Session) JumpTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inProgressLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	s.showLocked(index)
	return nil
}

// Tick counts down one second. Reaching zero completes the session with the
// answers recorded so far.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateInProgress || s.closed {
		s.mu.Unlock()
		return
	}

	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}
	s.remaining = 0

	sub, ok := s.completeLocked(ReasonTimeout)
	s.mu.Unlock()
	if ok {
		s.submit(ctx, sub)
	}
}

// Close stops the countdown without submitting. Used when the learner
// abandons the exam.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.state != StateCompleted {
		close(s.done)
		s.logger.Info("Session abandoned", "answered", len(s.answers))
	}
}

// Done is closed once the session completes or is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the submission outcome once the submitter has returned.
func (s *Session) Result() (*Outcome, error) {
	select {
	case <-s.submitted:
	default:
		return nil, ErrSubmissionPending
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, s.submitErr
}

// Wait blocks until the submission finished or ctx ends.
func (s *Session) Wait(ctx context.Context) (*Outcome, error) {
	select {
	case <-s.submitted:
		return s.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EndedAt reports when the session completed and whether it has.
func (s *Session) EndedAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt, s.state == StateCompleted || s.closed
}

// Feedback describes a revealed question in learn mode.
type Feedback struct {
	IsCorrect     bool           `json:"is_correct"`
	CorrectAnswer datatypes.JSON `json:"correct_answer"`
	Notes         *string        `json:"notes,omitempty"`
}

// Feedback returns the revealed feedback for questionID, if any.
func (s *Session) Feedback(questionID uint) (*Feedback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.feedback[questionID]; !ok {
		return nil, false
	}
	e := s.entryLocked(questionID)
	if e == nil {
		return nil, false
	}
	return s.feedbackLocked(e), true
}

// ===== INTERNALS =====

func (s *Session) runTimer(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// completeLocked passes the one-way completed gate. Only the first caller gets
// ok == true and must submit.
func (s *Session) completeLocked(reason CompletionReason) (Submission, bool) {
	if s.state != StateInProgress || s.closed {
		return Submission{}, false
	}

	s.state = StateCompleted
	s.reason = reason
	s.endedAt = s.clock.Now()
	close(s.done)

	answers := make(models.AnswerSheet, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}

	return Submission{
		SessionID:      s.id,
		ExamID:         s.exam.ID,
		Answers:        answers,
		ElapsedSeconds: int(s.endedAt.Sub(s.startedAt) / time.Second),
		UserName:       s.userName,
		Reason:         reason,
	}, true
}

func (s *Session) submit(ctx context.Context, sub Submission) {
	defer close(s.submitted)

	var (
		outcome *Outcome
		err     error
	)
	if s.submitter != nil {
		outcome, err = s.submitter.Submit(ctx, sub)
	}

	s.mu.Lock()
	s.outcome, s.submitErr = outcome, err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Session submission failed", "reason", sub.Reason, "error", err)
		return
	}
	s.logger.Info("Session submitted",
		"reason", sub.Reason,
		"answered", len(sub.Answers),
		"elapsed_seconds", sub.ElapsedSeconds)
}

func (s *Session) shuffleLocked() {
	if s.opts.ShuffleQuestions {
		s.rng.Shuffle(len(s.entries), func(i, j int) {
			s.entries[i], s.entries[j] = s.entries[j], s.entries[i]
		})
	}

	for _, e := range s.entries {
		switch e.question.Type {
		case models.SingleChoice, models.MultipleChoice:
			if s.opts.ShuffleAnswers {
				s.shuffleStrings(e.options)
			}
		case models.Matching:
			s.shuffleStrings(e.right)
		}
	}
}

func (s *Session) shuffleStrings(items []string) {
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// showLocked makes index current. A drag and drop question shown for the first
// time gets a random order recorded as its answer.
func (s *Session) showLocked(index int) {
	s.index = index
	e := s.entries[index]
	if e.question.Type != models.DragDrop {
		return
	}
	s.dragDropOrderLocked(e)
}

// dragDropOrderLocked returns the current order of a drag and drop question,
// recording a random one first if the question has none yet.
func (s *Session) dragDropOrderLocked(e *entry) []string {
	if order, ok := models.AsStringSlice(s.answers[e.question.ID]); ok {
		return order
	}
	order := append([]string(nil), e.content.(models.DragDropContent).Items...)
	s.shuffleStrings(order)
	s.answers[e.question.ID] = order
	return order
}

func (s *Session) inProgressLocked() error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case s.state == StateNotStarted:
		return ErrNotStarted
	case s.state == StateCompleted:
		return ErrSessionCompleted
	}
	return nil
}

func (s *Session) editableLocked(questionID uint) (*entry, error) {
	if err := s.inProgressLocked(); err != nil {
		return nil, err
	}
	e := s.entryLocked(questionID)
	if e == nil {
		return nil, ErrUnknownQuestion
	}
	if _, revealed := s.feedback[questionID]; revealed {
		return nil, ErrFeedbackLocked
	}
	return e, nil
}

func (s *Session) entryLocked(questionID uint) *entry {
	for _, e := range s.entries {
		if e.question.ID == questionID {
			return e
		}
	}
	return nil
}

func (s *Session) matchPairsLocked(questionID uint) map[string]string {
	pairs := make(map[string]string)
	if current, ok := models.AsStringMap(s.answers[questionID]); ok {
		for k, v := range current {
			pairs[k] = v
		}
	}
	return pairs
}

func (s *Session) feedbackLocked(e *entry) *Feedback {
	return &Feedback{
		IsCorrect:     grading.IsCorrect(e.content, s.answers[e.question.ID]),
		CorrectAnswer: e.question.CorrectAnswer,
		Notes:         e.question.Notes,
	}
}
