package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Notifier hands progress records to the event pipeline. Implementations are
// best-effort: callers must treat a returned error as non-fatal to their own
// operation, telemetry is never allowed to fail the business workflow.
type Notifier interface {
	Publish(ctx context.Context, r Record) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends progress records to the Kafka topic. The underlying writer
// connects lazily on the first publish and handles reconnects itself; Close
// must be called once at shutdown.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Publish sends a single record, keyed by workflow id so that all records of
// one workflow land on the same partition. A missing timestamp is filled in
// with the current time.
func (p *Publisher) Publish(ctx context.Context, r Record) error {
	if r.Timestamp == "" {
		r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	value, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.WorkflowID),
		Value: value,
	}); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}

	p.logger.Debug("published progress record",
		"workflowId", r.WorkflowID, "event", r.Event, "step", r.Step)

	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
