package mqtt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/quake-feed-publisher/internal/config"
	"github.com/couchcryptid/quake-feed-publisher/internal/domain"
	"github.com/couchcryptid/quake-feed-publisher/internal/observability"
)

// Publisher publishes payloads with QoS 1. It implements pipeline.Publisher.
type Publisher struct {
	*connection
}

// NewPublisher creates an unconnected MQTT publisher. metrics may be nil.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	clientID := newClientID(cfg.MQTTClientIDPrefix)
	conn := newConnection(logger.With("client_id", clientID), metrics, brokerURL(cfg))
	conn.dial(clientOptions(cfg, clientID))
	return &Publisher{connection: conn}
}

// Publish sends payload to topic and waits for the broker acknowledgement,
// bounded by ctx. Publishing while disconnected fails immediately.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("%w: not connected to %s", domain.ErrPublish, p.broker)
	}
	tok := p.client.Publish(topic, qosAtLeastOnce, false, payload)
	if err := waitToken(ctx, tok); err != nil {
		return fmt.Errorf("%w: topic %s: %w", domain.ErrPublish, topic, err)
	}
	return nil
}
