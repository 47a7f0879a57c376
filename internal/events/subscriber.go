package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// KafkaEventSubscriber reads notification events back from the record topic.
// It is what an external consumer such as the record watcher runs.
type KafkaEventSubscriber struct {
	subscriber message.Subscriber
	logger     *slog.Logger
	topicName  string
}

type SubscriberConfig struct {
	KafkaBrokers  []string
	TopicName     string
	ConsumerGroup string
	Logger        *slog.Logger
}

func NewKafkaEventSubscriber(config SubscriberConfig) (*KafkaEventSubscriber, error) {
	if len(config.KafkaBrokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       config.KafkaBrokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: config.ConsumerGroup,
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}

	return newEventSubscriber(subscriber, config.TopicName, config.Logger), nil
}

func newEventSubscriber(subscriber message.Subscriber, topic string, logger *slog.Logger) *KafkaEventSubscriber {
	return &KafkaEventSubscriber{
		subscriber: subscriber,
		logger:     logger,
		topicName:  topic,
	}
}

// Subscribe streams decoded events until ctx ends. A message is acked once
// the event has been handed over; undecodable messages are acked and skipped.
func (s *KafkaEventSubscriber) Subscribe(ctx context.Context) (<-chan NotificationEvent, error) {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.topicName, err)
	}

	out := make(chan NotificationEvent)
	go func() {
		defer close(out)

		for msg := range messages {
			event, err := fromMessage(msg)
			if err != nil {
				s.logger.Warn("Skipping undecodable notification event",
					"message_id", msg.UUID,
					"error", err)
				msg.Ack()
				continue
			}

			select {
			case out <- event:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()

	return out, nil
}

func (s *KafkaEventSubscriber) Close() error {
	return s.subscriber.Close()
}

func fromMessage(msg *message.Message) (NotificationEvent, error) {
	var event NotificationEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return NotificationEvent{}, fmt.Errorf("failed to unmarshal notification event: %w", err)
	}
	if event.Type == "" {
		event.Type = EventType(msg.Metadata.Get("event_type"))
	}
	return event, nil
}
