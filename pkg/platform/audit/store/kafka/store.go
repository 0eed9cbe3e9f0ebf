// Package kafka streams audit events to a Kafka topic as JSON, keyed by subject so
// that all events for one citizen land on the same partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"vaxreg/internal/platform/kafka/producer"
	"vaxreg/pkg/platform/audit"
)

// DefaultTopic receives registration audit events unless configured otherwise.
const DefaultTopic = "registration-events"

// Producer is satisfied by *producer.Producer.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Store is an audit.Store that publishes each event synchronously.
type Store struct {
	producer Producer
	topic    string
}

func New(p Producer, topic string) *Store {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Store{producer: p, topic: topic}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: payload,
		Headers: map[string]string{
			"event_type": event.Action,
			"request_id": event.RequestID,
		},
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
