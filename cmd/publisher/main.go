package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/quake-feed-publisher/internal/adapter/emsc"
	"github.com/couchcryptid/quake-feed-publisher/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/quake-feed-publisher/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/quake-feed-publisher/internal/adapter/mqtt"
	"github.com/couchcryptid/quake-feed-publisher/internal/config"
	"github.com/couchcryptid/quake-feed-publisher/internal/observability"
	"github.com/couchcryptid/quake-feed-publisher/internal/pipeline"
)

// broker is a publisher with a connection lifecycle.
type broker interface {
	pipeline.Publisher
	Connect(ctx context.Context) error
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var pub broker
	switch cfg.BrokerType {
	case config.BrokerKafka:
		pub = kafkaadapter.NewWriter(cfg, logger, metrics)
	default:
		pub = mqttadapter.NewPublisher(cfg, logger, metrics)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(ctx, cfg.ConnectTimeout)
	err = pub.Connect(connectCtx)
	cancelConnect()
	if err != nil {
		logger.Error("broker connect failed", "broker_type", cfg.BrokerType, "error", err)
		os.Exit(1)
	}

	feed := emsc.NewClient(cfg.FeedURL, cfg.FeedTimeout, metrics, logger)
	p := pipeline.New(feed, pipeline.NewNormalizer(cfg.FeedLocation), pub, logger, metrics, pipeline.Options{
		Topic:          cfg.Topic(),
		Interval:       cfg.PollInterval,
		PublishTimeout: cfg.PublishTimeout,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	stopAll(done, srv, pub, cfg.ShutdownTimeout, logger)

	logger.Info("shutdown complete")
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

type closer interface {
	Close() error
}

// stopAll waits up to timeout for the poll loop to finish its cycle, then
// drains the HTTP server with a fresh timeout and closes the broker.
func stopAll(done <-chan struct{}, srv shutdowner, pub closer, timeout time.Duration, logger *slog.Logger) {
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), timeout)
	select {
	case <-done:
	case <-drainCtx.Done():
		logger.Warn("poll cycle still running at shutdown deadline")
	}
	cancelDrain()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := pub.Close(); err != nil {
		logger.Error("broker close error", "error", err)
	}
}
