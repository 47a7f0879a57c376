// Command record-watcher follows the Kafka record topic and logs every new
// exam record. It is a minimal external consumer of the events the quiz
// server publishes when EVENTS_PUBLISHER=kafka.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/binhtph/quiz-app/internal/config"
	"github.com/binhtph/quiz-app/internal/events"
	"github.com/binhtph/quiz-app/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.Environment)

	subscriber, err := cfg.Events.CreateEventSubscriber(logger)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer subscriber.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream, err := subscriber.Subscribe(ctx)
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	logger.Info("Watching records", "topic", cfg.Events.RecordTopic, "group", cfg.Events.ConsumerGroup)

	for event := range stream {
		if event.Type != events.EventNewRecord {
			continue
		}
		data, _ := event.Data.(map[string]any)
		logger.Info("New record",
			"exam_id", data["exam_id"],
			"exam_title", data["exam_title"],
			"user_name", data["user_name"],
			"score", data["score"],
			"total", data["total"],
			"time_taken", data["time_taken"])
	}
}
