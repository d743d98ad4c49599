package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-feed-publisher/internal/config"
)

// messageReader is the subset of *kafkago.Reader used by Reader.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// Reader consumes published events for the subscriber process.
type Reader struct {
	reader  messageReader
	brokers []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewReader creates a consumer-group reader on the configured topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic,
		GroupID:     cfg.KafkaGroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		StartOffset: kafkago.FirstOffset,
		Dialer:      &kafkago.Dialer{Timeout: cfg.ConnectTimeout},
	})
	return &Reader{reader: r, brokers: cfg.KafkaBrokers, timeout: cfg.ConnectTimeout, logger: logger}
}

// Connect verifies that at least one broker accepts connections.
func (r *Reader) Connect(ctx context.Context) error {
	return dialAny(ctx, r.brokers, r.timeout, r.logger)
}

// Subscribe delivers every message to handler until ctx is cancelled.
// Offsets are committed as messages are read.
func (r *Reader) Subscribe(ctx context.Context, handler func(topic string, payload []byte)) error {
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		r.logger.Debug("kafka message received",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
		handler(msg.Topic, msg.Value)
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}
