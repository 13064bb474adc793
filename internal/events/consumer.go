package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultConnectAttempts = 10
	defaultConnectDelay    = 3 * time.Second
)

// Consumer reads all retained progress records from the topic and appends
// them into the store. The store is memory-only and wiped on restart, so the
// consumer always joins as a brand-new group and replays the topic from the
// earliest retained offset instead of resuming from a committed position.
type Consumer struct {
	brokers []string
	topic   string
	store   *Store
	logger  *slog.Logger

	connectAttempts int
	connectDelay    time.Duration
}

func NewConsumer(brokers []string, topic string, store *Store, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		brokers:         brokers,
		topic:           topic,
		store:           store,
		logger:          logger,
		connectAttempts: defaultConnectAttempts,
		connectDelay:    defaultConnectDelay,
	}
}

// Run blocks until ctx is canceled or the read loop fails. Connection
// establishment is retried a bounded number of times to tolerate the broker
// not being ready at process start; exhausting those retries is fatal, since
// without a consumer the status surface can never show any progress.
func (c *Consumer) Run(ctx context.Context) error {
	if err := WaitForBroker(ctx, c.brokers, c.connectAttempts, c.connectDelay, c.logger); err != nil {
		return err
	}

	cfg := c.readerConfig()

	reader := kafka.NewReader(cfg)
	defer reader.Close()

	c.logger.Info("worker events consumer connected",
		"brokers", c.brokers, "topic", c.topic, "groupId", cfg.GroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading message: %w", err)
		}

		c.handle(msg.Value)
	}
}

// readerConfig builds the reader configuration for one Run. The group id is
// unique per call: a restart must not inherit committed offsets, or the wiped
// store would silently miss history. Combined with StartOffset=FirstOffset the
// reader always replays the full retained topic.
func (c *Consumer) readerConfig() kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     c.brokers,
		GroupID:     fmt.Sprintf("resume-publisher-api-%d", time.Now().UnixNano()),
		Topic:       c.topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	}
}

// handle decodes one message and appends it to the store. Malformed payloads
// are logged and skipped; one bad message must not stop delivery of the rest.
func (c *Consumer) handle(value []byte) {
	if len(value) == 0 {
		return
	}

	var r Record
	if err := json.Unmarshal(value, &r); err != nil {
		raw := string(value)
		if len(raw) > 200 {
			raw = raw[:200]
		}
		c.logger.Error("skipping malformed worker event", "err", err, "raw", raw)
		return
	}

	if r.Timestamp == "" {
		r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	c.store.Append(r)

	c.logger.Debug("worker event received",
		"workflowId", r.WorkflowID, "event", r.Event, "step", r.Step)
}
