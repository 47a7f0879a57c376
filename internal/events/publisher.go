package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher defines the interface for publishing notification events
type EventPublisher interface {
	PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Watermill with Kafka
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds configuration for the event publisher
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

func NewKafkaEventPublisher(config PublisherConfig) (*KafkaEventPublisher, error) {
	if len(config.KafkaBrokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}, nil
}

func (p *KafkaEventPublisher) PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error {
	msg, err := toMessage(ctx, event)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("Failed to publish notification event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	p.logger.Info("Published notification event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topicName)
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

func toMessage(ctx context.Context, event *NotificationEvent) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))
	msg.SetContext(ctx)
	return msg, nil
}

// MultiPublisher sends each event to every wrapped publisher and joins their
// errors.
type MultiPublisher struct {
	publishers []EventPublisher
}

func NewMultiPublisher(publishers ...EventPublisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers}
}

func (m *MultiPublisher) PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.PublishNotificationEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MockEventPublisher keeps published events in memory.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []NotificationEvent
	Logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]NotificationEvent, 0),
		Logger: logger,
	}
}

func (m *MockEventPublisher) PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, *event)
	m.mu.Unlock()

	m.Logger.Info("Mock: Published notification event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}

func (m *MockEventPublisher) GetPublishedEvents() []NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NotificationEvent(nil), m.Events...)
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = make([]NotificationEvent, 0)
}
