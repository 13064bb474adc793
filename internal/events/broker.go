package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// WaitForBroker dials the brokers until one answers a metadata request,
// retrying up to attempts times with a fixed delay in between. It tolerates
// the broker or group coordinator not being ready yet at process start.
func WaitForBroker(ctx context.Context, brokers []string, attempts int, delay time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := kafka.DialContext(ctx, "tcp", brokers[(attempt-1)%len(brokers)])
		if err == nil {
			_, err = conn.Brokers()
			conn.Close()
		}
		if err == nil {
			return nil
		}

		lastErr = err
		logger.Warn("broker connect failed", "attempt", attempt, "maxAttempts", attempts, "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("connecting to broker after %d attempts: %w", attempts, lastErr)
}
