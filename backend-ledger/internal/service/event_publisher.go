package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/pkg/kafka"
	"github.com/AlTattoo/top-challenges/pkg/logger"
	"go.uber.org/zap"
)

// EventPublisher defines the interface for publishing ledger events
type EventPublisher interface {
	// Publish publishes one ledger event
	Publish(ctx context.Context, event *domain.LedgerEvent) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "ledger-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ledger-service"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = serviceName + "-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// Publish publishes a ledger event keyed by participant
func (p *KafkaEventPublisher) Publish(ctx context.Context, event *domain.LedgerEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   eventHeaders(event, p.serviceName),
		Timestamp: event.OccurredAt,
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}

	return nil
}

// HealthCheck pings the brokers
func (p *KafkaEventPublisher) HealthCheck(ctx context.Context) error {
	return p.producer.HealthCheck(ctx)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func eventHeaders(event *domain.LedgerEvent, source string) map[string]string {
	return map[string]string{
		"event_type":   string(event.EventType),
		"event_id":     event.EventID,
		"source":       source,
		"content_type": "application/json",
	}
}

// NoOpEventPublisher is a no-op implementation of EventPublisher, used when Kafka is disabled
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// Publish is a no-op
func (p *NoOpEventPublisher) Publish(ctx context.Context, event *domain.LedgerEvent) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}

// publishBestEffort publishes events after the ledger change is durable.
// Failures are logged and never reach the caller.
func publishBestEffort(ctx context.Context, publisher EventPublisher, events ...*domain.LedgerEvent) {
	for _, event := range events {
		if err := publisher.Publish(ctx, event); err != nil {
			logger.Get().WithContext(ctx).Warn("failed to publish ledger event",
				zap.String("event_type", string(event.EventType)),
				zap.String("participant_id", event.ParticipantID),
				zap.Error(err),
			)
		}
	}
}
