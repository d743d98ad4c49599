package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-feed-publisher/internal/config"
	"github.com/couchcryptid/quake-feed-publisher/internal/domain"
	"github.com/couchcryptid/quake-feed-publisher/internal/observability"
)

const contentTypeJSON = "application/json"

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes payloads to Kafka. It implements pipeline.Publisher.
//
// Event payloads are keyed by their event identifier and tagged with a
// magnitude_scale header. Any other payload is written unkeyed with only the
// content_type header.
type Writer struct {
	writer  messageWriter
	brokers []string
	timeout time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer. The topic is set per message.
// metrics may be nil.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Writer{
		writer:  w,
		brokers: cfg.KafkaBrokers,
		timeout: cfg.ConnectTimeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Connect verifies that at least one broker accepts connections.
func (w *Writer) Connect(ctx context.Context) error {
	if err := dialAny(ctx, w.brokers, w.timeout, w.logger); err != nil {
		w.setConnected(false)
		return err
	}
	w.setConnected(true)
	return nil
}

// Publish writes one payload to topic. The broker_connected gauge follows
// the outcome of the latest write.
func (w *Writer) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := w.writer.WriteMessages(ctx, buildMessage(topic, payload)); err != nil {
		w.setConnected(false)
		return fmt.Errorf("%w: kafka topic %s: %w", domain.ErrPublish, topic, err)
	}
	w.setConnected(true)
	return nil
}

func (w *Writer) Close() error {
	w.setConnected(false)
	return w.writer.Close()
}

func (w *Writer) setConnected(up bool) {
	if w.metrics == nil {
		return
	}
	if up {
		w.metrics.BrokerConnected.Set(1)
	} else {
		w.metrics.BrokerConnected.Set(0)
	}
}

// buildMessage wraps a payload in a Kafka message, adding the event key and
// scale header when the payload is an event.
func buildMessage(topic string, payload []byte) kafkago.Message {
	msg := kafkago.Message{
		Topic: topic,
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "content_type", Value: []byte(contentTypeJSON)},
		},
	}
	event, err := domain.ParsePayload(payload)
	if err != nil || event.DateTime == "" {
		return msg
	}
	msg.Key = []byte(domain.EventID(event))
	msg.Headers = append(msg.Headers, kafkago.Header{Key: "magnitude_scale", Value: []byte(event.MagnitudeScale)})
	return msg
}
