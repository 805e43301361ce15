// Package events publishes outbox messages to a message broker.
package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"saldo/internal/infrastructure/storage/postgres"
)

// Compile-time check that KafkaPublisher implements postgres.OutboxHandler.
var _ postgres.OutboxHandler = (*KafkaPublisher)(nil)

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher relays outbox messages to a Kafka topic. Messages are keyed
// by aggregate ID, so all events of one account or document land in the same
// partition and keep their order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a Kafka-backed outbox handler.
func NewKafkaPublisher(cfg KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 100 * time.Millisecond,
		},
	}
}

// Handle implements postgres.OutboxHandler.
func (p *KafkaPublisher) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.AggregateID.String()),
		Value: msg.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(msg.EventType)},
			{Key: "aggregate_type", Value: []byte(msg.AggregateType)},
		},
	})
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
