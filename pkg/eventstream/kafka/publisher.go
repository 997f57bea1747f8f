// Package kafka publishes capture events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/eventstream"
)

// Publisher writes capture events to a Kafka topic, keyed by session ID so
// one session's events land on one partition in order.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishRequest marshals the event and writes it to the topic.
func (p *Publisher) PublishRequest(ctx context.Context, event *eventstream.RequestPersistedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", event.EventID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Session.ID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing event %s: %w", event.EventID, err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
