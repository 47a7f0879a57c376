package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	DragDrop       QuestionType = "drag_drop"
	Matching       QuestionType = "matching"
)

// AllQuestionTypes lists every supported variant in display order.
func AllQuestionTypes() []QuestionType {
	return []QuestionType{SingleChoice, MultipleChoice, DragDrop, Matching}
}

func (t QuestionType) IsValid() bool {
	switch t {
	case SingleChoice, MultipleChoice, DragDrop, Matching:
		return true
	}
	return false
}

var ErrUnknownQuestionType = errors.New("unknown question type")

type Question struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ExamID        uint           `json:"exam_id" gorm:"not null;index"`
	Type          QuestionType   `json:"type" gorm:"type:varchar(32);not null"`
	Text          string         `json:"question" gorm:"column:question;type:text;not null"`
	Options       datatypes.JSON `json:"options" gorm:"type:jsonb"`
	CorrectAnswer datatypes.JSON `json:"correct_answer,omitempty" gorm:"type:jsonb;not null"`
	Notes         *string        `json:"notes" gorm:"type:text"`
	OrderNum      int            `json:"order_num" gorm:"default:0;index"`
}

// Content decodes the stored options and correct answer into the variant for q.Type.
func (q *Question) Content() (QuestionContent, error) {
	return DecodeContent(q.Type, q.Options, q.CorrectAnswer)
}

// WithoutAnswer returns a copy of q with the correct answer stripped.
func (q Question) WithoutAnswer() Question {
	q.CorrectAnswer = nil
	return q
}

// NewQuestion builds a storable question from a validated content variant.
func NewQuestion(examID uint, text string, content QuestionContent, notes *string, orderNum int) (*Question, error) {
	if err := content.Validate(); err != nil {
		return nil, err
	}
	options, correct, err := EncodeContent(content)
	if err != nil {
		return nil, err
	}
	return &Question{
		ExamID:        examID,
		Type:          content.Type(),
		Text:          text,
		Options:       options,
		CorrectAnswer: correct,
		Notes:         notes,
		OrderNum:      orderNum,
	}, nil
}

// ===== CONTENT VARIANTS =====

// QuestionContent is the typed view of a question's options and correct answer.
// Exactly one implementation exists per QuestionType.
type QuestionContent interface {
	Type() QuestionType
	Validate() error
	isQuestionContent()
}

type SingleChoiceContent struct {
	Options []string
	Correct string
}

type MultipleChoiceContent struct {
	Options []string
	Correct []string
}

// DragDropContent holds the items to order; Order is the correct sequence.
type DragDropContent struct {
	Items []string
	Order []string
}

type MatchingOptions struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

type MatchingContent struct {
	Left  []string
	Right []string
	Pairs map[string]string
}

func (SingleChoiceContent) Type() QuestionType   { return SingleChoice }
func (MultipleChoiceContent) Type() QuestionType { return MultipleChoice }
func (DragDropContent) Type() QuestionType       { return DragDrop }
func (MatchingContent) Type() QuestionType       { return Matching }

func (SingleChoiceContent) isQuestionContent()   {}
func (MultipleChoiceContent) isQuestionContent() {}
func (DragDropContent) isQuestionContent()       {}
func (MatchingContent) isQuestionContent()       {}

func (c SingleChoiceContent) Validate() error {
	if len(c.Options) == 0 {
		return fmt.Errorf("single choice question needs at least one option")
	}
	if !containsString(c.Options, c.Correct) {
		return fmt.Errorf("correct answer %q is not one of the options", c.Correct)
	}
	return nil
}

func (c MultipleChoiceContent) Validate() error {
	if len(c.Options) == 0 {
		return fmt.Errorf("multiple choice question needs at least one option")
	}
	if len(c.Correct) == 0 {
		return fmt.Errorf("multiple choice question needs at least one correct answer")
	}
	seen := make(map[string]struct{}, len(c.Correct))
	for _, answer := range c.Correct {
		if !containsString(c.Options, answer) {
			return fmt.Errorf("correct answer %q is not one of the options", answer)
		}
		if _, dup := seen[answer]; dup {
			return fmt.Errorf("correct answer %q listed twice", answer)
		}
		seen[answer] = struct{}{}
	}
	return nil
}

func (c DragDropContent) Validate() error {
	if len(c.Items) == 0 {
		return fmt.Errorf("drag and drop question needs at least one item")
	}
	if !sameMultiset(c.Items, c.Order) {
		return fmt.Errorf("correct order must contain exactly the option items")
	}
	return nil
}

func (c MatchingContent) Validate() error {
	if len(c.Left) == 0 {
		return fmt.Errorf("matching question needs at least one left item")
	}
	if len(c.Pairs) != len(c.Left) {
		return fmt.Errorf("correct answer must map every left item exactly once")
	}
	for _, left := range c.Left {
		right, ok := c.Pairs[left]
		if !ok {
			return fmt.Errorf("left item %q has no match", left)
		}
		if !containsString(c.Right, right) {
			return fmt.Errorf("match %q for %q is not a right item", right, left)
		}
	}
	return nil
}

// DecodeContent parses raw options and correct answer for the declared type and
// rejects any shape mismatch.
func DecodeContent(t QuestionType, options, correct []byte) (QuestionContent, error) {
	var content QuestionContent

	switch t {
	case SingleChoice:
		var c SingleChoiceContent
		if err := decodeField("options", options, &c.Options); err != nil {
			return nil, err
		}
		if err := decodeField("correct_answer", correct, &c.Correct); err != nil {
			return nil, err
		}
		content = c
	case MultipleChoice:
		var c MultipleChoiceContent
		if err := decodeField("options", options, &c.Options); err != nil {
			return nil, err
		}
		if err := decodeField("correct_answer", correct, &c.Correct); err != nil {
			return nil, err
		}
		content = c
	case DragDrop:
		var c DragDropContent
		if err := decodeField("options", options, &c.Items); err != nil {
			return nil, err
		}
		if err := decodeField("correct_answer", correct, &c.Order); err != nil {
			return nil, err
		}
		content = c
	case Matching:
		var opts MatchingOptions
		c := MatchingContent{}
		if err := decodeField("options", options, &opts); err != nil {
			return nil, err
		}
		if err := decodeField("correct_answer", correct, &c.Pairs); err != nil {
			return nil, err
		}
		c.Left, c.Right = opts.Left, opts.Right
		content = c
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, t)
	}

	if err := content.Validate(); err != nil {
		return nil, err
	}
	return content, nil
}

// EncodeContent is the inverse of DecodeContent.
func EncodeContent(content QuestionContent) (options, correct datatypes.JSON, err error) {
	var o, a any
	switch c := content.(type) {
	case SingleChoiceContent:
		o, a = c.Options, c.Correct
	case MultipleChoiceContent:
		o, a = c.Options, c.Correct
	case DragDropContent:
		o, a = c.Items, c.Order
	case MatchingContent:
		o, a = MatchingOptions{Left: c.Left, Right: c.Right}, c.Pairs
	default:
		return nil, nil, ErrUnknownQuestionType
	}

	if options, err = json.Marshal(o); err != nil {
		return nil, nil, err
	}
	if correct, err = json.Marshal(a); err != nil {
		return nil, nil, err
	}
	return options, correct, nil
}

func decodeField(field string, raw []byte, dest any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%s is required", field)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%s has the wrong shape: %w", field, err)
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
		if counts[s] < 0 {
			return false
		}
	}
	return true
}
