package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const broadcastTopic = "records"

// Broadcaster fans events out to in-process subscribers such as open SSE
// streams. Events published while nobody listens are dropped.
type Broadcaster struct {
	pubsub      *gochannel.GoChannel
	logger      *slog.Logger
	subscribers atomic.Int64
}

func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 16,
		}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

func (b *Broadcaster) PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error {
	msg, err := toMessage(ctx, event)
	if err != nil {
		return err
	}
	if err := b.pubsub.Publish(broadcastTopic, msg); err != nil {
		return fmt.Errorf("failed to broadcast notification event: %w", err)
	}
	return nil
}

// Subscribe streams events until ctx ends. The returned channel is closed
// afterwards.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan NotificationEvent, error) {
	messages, err := b.pubsub.Subscribe(ctx, broadcastTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to broadcasts: %w", err)
	}

	out := make(chan NotificationEvent)
	b.subscribers.Add(1)

	go func() {
		defer close(out)
		defer b.subscribers.Add(-1)

		for msg := range messages {
			var event NotificationEvent
			err := json.Unmarshal(msg.Payload, &event)
			msg.Ack()
			if err != nil {
				b.logger.Warn("Dropping undecodable broadcast", "message_id", msg.UUID, "error", err)
				continue
			}

			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Subscribers is the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	return int(b.subscribers.Load())
}

func (b *Broadcaster) Close() error {
	return b.pubsub.Close()
}
