package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	EventNewRecord EventType = "exam.new_record"
)

const (
	eventSource  = "quiz-app"
	eventVersion = "1.0"
)

// NotificationEvent is the envelope shared by every publisher.
type NotificationEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Data      any            `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewRecordEvent is sent when a submission beats the best named result of an
// exam.
type NewRecordEvent struct {
	ExamID     uint   `json:"exam_id"`
	ExamTitle  string `json:"exam_title"`
	UserName   string `json:"user_name"`
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	TimeTaken  int    `json:"time_taken_seconds"`
}

func newEvent(eventType EventType, data any) *NotificationEvent {
	return &NotificationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
		Metadata:  make(map[string]any),
	}
}

func NewNewRecordEvent(data NewRecordEvent) *NotificationEvent {
	event := newEvent(EventNewRecord, data)
	event.Metadata["exam_id"] = data.ExamID
	return event
}
