package session

import (
	"sort"

	"github.com/binhtph/quiz-app/internal/models"
)

// QuestionView is the renderable state of one question. Correct answers only
// appear through Feedback once revealed.
type QuestionView struct {
	ID       uint                `json:"id"`
	Index    int                 `json:"index"`
	Type     models.QuestionType `json:"type"`
	Text     string              `json:"question"`
	Options  []string            `json:"options,omitempty"`
	Left     []string            `json:"left,omitempty"`
	Right    []string            `json:"right,omitempty"`
	Answer   any                 `json:"answer,omitempty"`
	Marked   bool                `json:"marked"`
	State    QuestionState       `json:"state"`
	Feedback *Feedback           `json:"feedback,omitempty"`
}

type Snapshot struct {
	ID            string           `json:"id"`
	ExamID        uint             `json:"exam_id"`
	ExamTitle     string           `json:"exam_title"`
	UserName      string           `json:"user_name,omitempty"`
	State         State            `json:"state"`
	Options       StartOptions     `json:"options"`
	CurrentIndex  int              `json:"current_index"`
	TimeLimit     int              `json:"time_limit_seconds"`
	TimeRemaining int              `json:"time_remaining_seconds"`
	Answered      int              `json:"answered"`
	Marked        []int            `json:"marked"`
	Questions     []QuestionView   `json:"questions"`
	Reason        CompletionReason `json:"completion_reason,omitempty"`
	Result        *Outcome         `json:"result,omitempty"`
}

// Snapshot copies the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:            s.id,
		ExamID:        s.exam.ID,
		ExamTitle:     s.exam.Title,
		UserName:      s.userName,
		State:         s.state,
		Options:       s.opts,
		CurrentIndex:  s.index,
		TimeLimit:     s.exam.TimeLimitSeconds(),
		TimeRemaining: s.remaining,
		Answered:      len(s.answers),
		Marked:        make([]int, 0, len(s.marked)),
		Questions:     make([]QuestionView, 0, len(s.entries)),
		Reason:        s.reason,
		Result:        s.outcome,
	}
	if s.state == StateNotStarted {
		snap.TimeRemaining = snap.TimeLimit
	}

	for idx := range s.marked {
		snap.Marked = append(snap.Marked, idx)
	}
	sort.Ints(snap.Marked)

	for i, e := range s.entries {
		view := QuestionView{
			ID:     e.question.ID,
			Index:  i,
			Type:   e.question.Type,
			Text:   e.question.Text,
			Answer: s.answers[e.question.ID],
			State:  s.questionStateLocked(e.question.ID),
		}
		_, view.Marked = s.marked[i]

		switch c := e.content.(type) {
		case models.SingleChoiceContent, models.MultipleChoiceContent:
			view.Options = append([]string(nil), e.options...)
		case models.DragDropContent:
			if order, ok := models.AsStringSlice(s.answers[e.question.ID]); ok {
				view.Options = append([]string(nil), order...)
			} else {
				view.Options = append([]string(nil), c.Items...)
			}
		case models.MatchingContent:
			view.Left = append([]string(nil), c.Left...)
			view.Right = append([]string(nil), e.right...)
		}

		if view.State == QuestionFeedbackRevealed {
			view.Feedback = s.feedbackLocked(e)
		}
		snap.Questions = append(snap.Questions, view)
	}

	return snap
}

// QuestionState reports the per-question sub-state.
func (s *Session) QuestionState(questionID uint) QuestionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionStateLocked(questionID)
}

func (s *Session) questionStateLocked(questionID uint) QuestionState {
	if _, ok := s.feedback[questionID]; ok {
		return QuestionFeedbackRevealed
	}
	if _, ok := s.answers[questionID]; ok {
		return QuestionAnswered
	}
	return QuestionUnanswered
}
