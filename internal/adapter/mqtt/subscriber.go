package mqtt

import (
	"context"
	"log/slog"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/couchcryptid/quake-feed-publisher/internal/config"
	"github.com/couchcryptid/quake-feed-publisher/internal/observability"
)

// Subscriber receives messages from one topic and re-subscribes after every
// reconnect.
type Subscriber struct {
	*connection
	topic string

	mu      sync.Mutex
	handler func(topic string, payload []byte)
}

// NewSubscriber creates an unconnected MQTT subscriber for the configured topic.
func NewSubscriber(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Subscriber {
	clientID := newClientID(cfg.MQTTClientIDPrefix + "-sub")
	conn := newConnection(logger.With("client_id", clientID), metrics, brokerURL(cfg))
	s := &Subscriber{connection: conn, topic: cfg.MQTTTopic}
	conn.afterConnect = s.resubscribe
	conn.dial(clientOptions(cfg, clientID))
	return s
}

// Subscribe delivers every message on the topic to handler until ctx is
// cancelled.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(topic string, payload []byte)) error {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()

	if s.client.IsConnected() {
		if err := s.subscribe(ctx); err != nil {
			return err
		}
	}

	<-ctx.Done()
	return nil
}

func (s *Subscriber) resubscribe() {
	s.mu.Lock()
	ready := s.handler != nil
	s.mu.Unlock()
	if !ready {
		return
	}
	// paho callbacks must not block on tokens.
	go func() {
		if err := waitToken(context.Background(), s.client.Subscribe(s.topic, qosAtLeastOnce, s.onMessage)); err != nil {
			s.logger.Error("mqtt resubscribe failed", "topic", s.topic, "error", err)
		}
	}()
}

func (s *Subscriber) subscribe(ctx context.Context) error {
	if err := waitToken(ctx, s.client.Subscribe(s.topic, qosAtLeastOnce, s.onMessage)); err != nil {
		return err
	}
	s.logger.Info("subscribed", "topic", s.topic)
	return nil
}

func (s *Subscriber) onMessage(_ paho.Client, msg paho.Message) {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()
	if handler != nil {
		handler(msg.Topic(), msg.Payload())
	}
}
