// Package kafka provides a Kafka-backed eventstream publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	segmentio "github.com/segmentio/kafka-go"

	"github.com/braidhq/braid/pkg/eventstream"
)

// DefaultTopic is the topic persisted-event notifications land on.
const DefaultTopic = "braid.events"

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string

	// Topic overrides the notification topic. Defaults to DefaultTopic.
	Topic string
}

// Publisher writes persisted-event notifications to a Kafka topic.
// Messages are keyed by event id so per-event ordering is preserved.
type Publisher struct {
	writer *segmentio.Writer
}

// NewPublisher creates a Kafka-backed publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &segmentio.Writer{
		Addr:     segmentio.TCP(cfg.Brokers...),
		Topic:    topic,
		Balancer: &segmentio.Hash{},
	}

	return &Publisher{writer: writer}, nil
}

// PublishEvent serializes the notification and writes it to the topic.
func (p *Publisher) PublishEvent(ctx context.Context, ev *eventstream.EventPersisted) error {
	if ev == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling event notification: %w", err)
	}

	msg := segmentio.Message{
		Key:   []byte(strconv.FormatInt(ev.EventID, 10)),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event notification: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Ensure Publisher implements eventstream.Publisher
var _ eventstream.Publisher = (*Publisher)(nil)
