package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-feed-publisher/internal/domain"
)

// dialAny succeeds once any broker in brokers accepts a connection.
func dialAny(ctx context.Context, brokers []string, timeout time.Duration, logger *slog.Logger) error {
	if len(brokers) == 0 {
		return fmt.Errorf("%w: no kafka brokers configured", domain.ErrConnect)
	}
	dialer := &kafkago.Dialer{Timeout: timeout}

	var errs []error
	for _, addr := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_ = conn.Close()
		logger.Info("connected to kafka", "broker", addr)
		return nil
	}
	return fmt.Errorf("%w: kafka %v: %w", domain.ErrConnect, brokers, errors.Join(errs...))
}
