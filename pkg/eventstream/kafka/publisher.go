// Package kafka implements the eventstream Publisher on a Kafka topic.
// Events are keyed by thread id so per-thread ordering survives partitioning.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/counterware/clerk/pkg/eventstream"
)

// DefaultTopic is the topic turn events are published to.
const DefaultTopic = "clerk.turns"

// Publisher writes turn events to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of broker addresses. Required.
	Brokers []string

	// Topic overrides DefaultTopic.
	Topic string
}

// NewPublisher creates a Kafka-backed turn event publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafkago.RequireOne,
		},
	}, nil
}

// PublishTurn publishes the event keyed by its thread id.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling turn event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.ThreadID),
		Value: payload,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
