package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/binhtph/quiz-app/internal/events"
)

const notifyTimeout = 5 * time.Second

type recordNotifier struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

// NewRecordNotifier publishes new-record events in the background. Failures
// are logged and never reach the submitter.
func NewRecordNotifier(publisher events.EventPublisher, logger *slog.Logger) RecordNotifier {
	return &recordNotifier{
		publisher: publisher,
		logger:    logger,
	}
}

func (n *recordNotifier) NotifyNewRecord(ctx context.Context, record events.NewRecordEvent) {
	event := events.NewNewRecordEvent(record)

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		if err := n.publisher.PublishNotificationEvent(ctx, event); err != nil {
			n.logger.Warn("Failed to publish new record event",
				"event_id", event.ID,
				"exam_id", record.ExamID,
				"error", err)
			return
		}
		n.logger.Info("New record announced",
			"event_id", event.ID,
			"exam_id", record.ExamID,
			"user_name", record.UserName,
			"score", record.Score)
	}()
}
