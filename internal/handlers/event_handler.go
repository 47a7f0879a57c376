package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/binhtph/quiz-app/internal/events"
	"github.com/binhtph/quiz-app/internal/metrics"
	"github.com/binhtph/quiz-app/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	sseEventConnected = "connected"
	sseEventNewRecord = "new_record"

	defaultHeartbeat = 25 * time.Second
)

// RecordSubscriber is satisfied by events.Broadcaster.
type RecordSubscriber interface {
	Subscribe(ctx context.Context) (<-chan events.NotificationEvent, error)
}

type EventHandler struct {
	BaseHandler
	subscriber RecordSubscriber
	metrics    *metrics.Metrics
	heartbeat  time.Duration
}

func NewEventHandler(subscriber RecordSubscriber, m *metrics.Metrics, logger utils.Logger) *EventHandler {
	return &EventHandler{
		BaseHandler: NewBaseHandler(logger),
		subscriber:  subscriber,
		metrics:     m,
		heartbeat:   defaultHeartbeat,
	}
}

// Stream is a server-sent events feed. The first frame is "connected"; every
// new exam record follows as a "new_record" frame carrying a flat payload.
// @Router /events [get]
func (h *EventHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	stream, err := h.subscriber.Subscribe(ctx)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Event stream unavailable", err)
		return
	}

	h.metrics.SSEClientConnected()
	defer h.metrics.SSEClientDisconnected()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent(sseEventConnected, gin.H{"type": sseEventConnected})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-stream:
			if !ok {
				return
			}
			if event.Type != events.EventNewRecord {
				continue
			}
			c.SSEvent(sseEventNewRecord, recordPayload(event))
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := c.Writer.WriteString(": keepalive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

func recordPayload(event events.NotificationEvent) gin.H {
	payload := gin.H{}
	if data, ok := event.Data.(map[string]any); ok {
		for k, v := range data {
			payload[k] = v
		}
	}
	payload["type"] = sseEventNewRecord
	return payload
}
