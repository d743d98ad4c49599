package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/eclipse/paho.mqtt.golang/packets"
	"github.com/google/uuid"

	"github.com/couchcryptid/quake-feed-publisher/internal/config"
	"github.com/couchcryptid/quake-feed-publisher/internal/domain"
	"github.com/couchcryptid/quake-feed-publisher/internal/observability"
)

// qosAtLeastOnce is used for every publish and subscription.
const qosAtLeastOnce byte = 1

// disconnectQuiesce is how long Disconnect waits for in-flight work, in ms.
const disconnectQuiesce = 250

// Client is the subset of paho.Client used by this package.
type Client interface {
	Connect() paho.Token
	Publish(topic string, qos byte, retained bool, payload any) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// connection owns a paho client and signals readiness once the broker has
// accepted the first CONNECT.
type connection struct {
	client  Client
	broker  string
	logger  *slog.Logger
	metrics *observability.Metrics

	ready     chan struct{}
	readyOnce sync.Once

	// afterConnect runs on every (re)connect, after readiness is signalled.
	afterConnect func()
}

func newConnection(logger *slog.Logger, metrics *observability.Metrics, broker string) *connection {
	return &connection{
		broker:  broker,
		logger:  logger,
		metrics: metrics,
		ready:   make(chan struct{}),
	}
}

// brokerURL returns the paho server URL for the configured host and port.
func brokerURL(cfg *config.Config) string {
	return fmt.Sprintf("tcp://%s:%d", cfg.MQTTHost, cfg.MQTTPort)
}

// clientOptions builds paho options for cfg. Credentials are only set when
// both username and password are present.
func clientOptions(cfg *config.Config, clientID string) *paho.ClientOptions {
	opts := paho.NewClientOptions().
		AddBroker(brokerURL(cfg)).
		SetClientID(clientID).
		SetKeepAlive(cfg.MQTTKeepAlive).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if cfg.HasCredentials() {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}
	return opts
}

func newClientID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// dial wires the connection callbacks into opts and creates the paho client.
func (c *connection) dial(opts *paho.ClientOptions) {
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		c.logger.Info("reconnecting to mqtt broker", "broker", c.broker)
	})
	c.client = paho.NewClient(opts)
}

func (c *connection) onConnect(_ paho.Client) {
	c.logger.Info("connected to mqtt broker",
		"broker", c.broker,
		"reason", describeConnack(packets.Accepted),
	)
	c.setConnected(true)
	c.readyOnce.Do(func() { close(c.ready) })
	if c.afterConnect != nil {
		c.afterConnect()
	}
}

func (c *connection) onConnectionLost(_ paho.Client, err error) {
	c.logger.Warn("mqtt connection lost", "broker", c.broker, "error", err)
	c.setConnected(false)
}

func (c *connection) setConnected(up bool) {
	if c.metrics == nil {
		return
	}
	if up {
		c.metrics.BrokerConnected.Set(1)
	} else {
		c.metrics.BrokerConnected.Set(0)
	}
}

// Ready is closed once the broker has accepted the connection.
func (c *connection) Ready() <-chan struct{} {
	return c.ready
}

// Connect starts the connection and waits until the broker has accepted it
// or ctx expires.
func (c *connection) Connect(ctx context.Context) error {
	tok := c.client.Connect()
	select {
	case <-tok.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", domain.ErrConnect, c.broker, ctx.Err())
	}

	if err := tok.Error(); err != nil {
		attrs := []any{"broker", c.broker, "error", err}
		if ct, ok := tok.(*paho.ConnectToken); ok {
			code := ct.ReturnCode()
			attrs = append(attrs, "return_code", code, "reason", describeConnack(code))
		}
		c.logger.Error("mqtt connect failed", attrs...)
		return fmt.Errorf("%w: %s: %w", domain.ErrConnect, c.broker, err)
	}

	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", domain.ErrConnect, c.broker, ctx.Err())
	}
}

// Close disconnects from the broker.
func (c *connection) Close() error {
	c.client.Disconnect(disconnectQuiesce)
	c.setConnected(false)
	c.logger.Info("disconnected from mqtt broker", "broker", c.broker)
	return nil
}

// describeConnack returns the human-readable meaning of a CONNACK return code.
func describeConnack(code byte) string {
	if desc, ok := packets.ConnackReturnCodes[code]; ok {
		return desc
	}
	return fmt.Sprintf("Unknown return code %d", code)
}

// waitToken waits for tok to complete or ctx to expire.
func waitToken(ctx context.Context, tok paho.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
