package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/carhive/service-rental/internal/common/kafka"
)

const eventSource = "service-rental"

// EventPublisher publishes booking lifecycle events. Satisfied by the
// Kafka producer; tests substitute a capturing fake.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

// PublishEvent discards the event.
func (NopPublisher) PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error {
	return nil
}

// publishEvent wraps data in a CloudEvent and publishes it. Publish
// failures are logged, never surfaced: the write that triggered the event
// has already committed.
func publishEvent(ctx context.Context, pub EventPublisher, log *zap.Logger, topic, eventType, key string, data interface{}) {
	evt, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		log.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := pub.PublishEvent(ctx, topic, key, evt); err != nil {
		log.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
