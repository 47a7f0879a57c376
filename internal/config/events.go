package config

import (
	"log/slog"
	"strings"

	"github.com/binhtph/quiz-app/internal/events"
)

// EventConfig controls where new-record notifications go besides the
// in-process broadcaster.
type EventConfig struct {
	Enabled      bool
	Publisher    string // kafka or mock
	KafkaBrokers  string
	RecordTopic   string
	ConsumerGroup string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	brokers := make([]string, 0)
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher creates the external publisher. Disabled or unknown
// configurations get the mock publisher.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("External event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.RecordTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.RecordTopic,
			Logger:       logger,
		})
	case "mock":
		logger.Info("Using mock event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}

// CreateEventSubscriber creates a Kafka consumer for the record topic.
func (c *EventConfig) CreateEventSubscriber(logger *slog.Logger) (*events.KafkaEventSubscriber, error) {
	return events.NewKafkaEventSubscriber(events.SubscriberConfig{
		KafkaBrokers:  c.GetKafkaBrokers(),
		TopicName:     c.RecordTopic,
		ConsumerGroup: c.ConsumerGroup,
		Logger:        logger,
	})
}
