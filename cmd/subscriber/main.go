// Command subscriber prints every earthquake event published on the
// configured topic. It is a debugging aid for the publisher.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-feed-publisher/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/quake-feed-publisher/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/quake-feed-publisher/internal/adapter/mqtt"
	"github.com/couchcryptid/quake-feed-publisher/internal/config"
	"github.com/couchcryptid/quake-feed-publisher/internal/domain"
	"github.com/couchcryptid/quake-feed-publisher/internal/observability"
)

type subscriber interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, handler func(topic string, payload []byte)) error
	Close() error
}

// connected reports ready once the broker connection has been verified.
type connected struct {
	ready chan struct{}
}

func (c connected) CheckReadiness(_ context.Context) error {
	select {
	case <-c.ready:
		return nil
	default:
		return errors.New("subscriber is not connected")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sub subscriber
	switch cfg.BrokerType {
	case config.BrokerKafka:
		sub = kafkaadapter.NewReader(cfg, logger)
	default:
		sub = mqttadapter.NewSubscriber(cfg, logger, metrics)
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, cfg.ConnectTimeout)
	err = sub.Connect(connectCtx)
	cancelConnect()
	if err != nil {
		logger.Error("broker connect failed", "broker_type", cfg.BrokerType, "error", err)
		os.Exit(1)
	}

	ready := connected{ready: make(chan struct{})}
	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, nil, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("listening for events", "broker_type", cfg.BrokerType, "topic", cfg.Topic())
	close(ready.ready)

	err = sub.Subscribe(ctx, func(topic string, payload []byte) {
		metrics.MessagesReceived.WithLabelValues(topic).Inc()
		logEvent(logger, topic, payload)
	})
	if err != nil {
		logger.Error("subscribe failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := sub.Close(); err != nil {
		logger.Error("subscriber close error", "error", err)
	}
	logger.Info("shutdown complete")
}

// logEvent logs the event fields when payload is a valid event and the raw
// payload otherwise.
func logEvent(logger *slog.Logger, topic string, payload []byte) {
	event, err := domain.ParsePayload(payload)
	if err != nil {
		logger.Warn("received undecodable message", "topic", topic, "payload", string(payload), "error", err)
		return
	}
	logger.Info("received event",
		"topic", topic,
		"event_id", domain.EventID(event),
		"magnitude", event.Magnitude,
		"scale", event.MagnitudeScale,
		"region", event.Region,
		"date_time", event.DateTime,
		"depth", event.Depth,
	)
}
