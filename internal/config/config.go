package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Broker types selectable with BROKER_TYPE.
const (
	BrokerMQTT  = "mqtt"
	BrokerKafka = "kafka"
)

// DefaultFeedURL is the EMSC RSS feed of recent earthquakes.
const DefaultFeedURL = "https://www.emsc-csem.org/service/rss/rss.php?typ=emsc"

// Config holds all service settings, populated from environment variables.
type Config struct {
	BrokerType string

	// MQTT broker connection.
	MQTTHost           string
	MQTTPort           int
	MQTTTopic          string
	MQTTUsername       string
	MQTTPassword       string
	MQTTClientIDPrefix string
	MQTTKeepAlive      time.Duration

	// Kafka broker connection.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Feed polling.
	FeedURL        string
	FeedTimeout    time.Duration
	FeedTimezone   string
	FeedLocation   *time.Location
	PollInterval   time.Duration
	PublishTimeout time.Duration
	ConnectTimeout time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Topic returns the publish/subscribe topic of the selected broker.
func (c *Config) Topic() string {
	if c.BrokerType == BrokerKafka {
		return c.KafkaTopic
	}
	return c.MQTTTopic
}

// HasCredentials reports whether both MQTT username and password are set.
// Otherwise the connection is anonymous.
func (c *Config) HasCredentials() bool {
	return c.MQTTUsername != "" && c.MQTTPassword != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BrokerType:         strings.ToLower(sharedcfg.EnvOrDefault("BROKER_TYPE", BrokerMQTT)),
		MQTTHost:           os.Getenv("MQTT_HOST"),
		MQTTTopic:          os.Getenv("MQTT_TOPIC"),
		MQTTUsername:       os.Getenv("MQTT_USERNAME"),
		MQTTPassword:       os.Getenv("API_KEY"),
		MQTTClientIDPrefix: sharedcfg.EnvOrDefault("MQTT_CLIENT_ID_PREFIX", "quake-publisher"),
		KafkaTopic:         os.Getenv("KAFKA_TOPIC"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "quake-subscriber"),
		FeedURL:            sharedcfg.EnvOrDefault("FEED_URL", DefaultFeedURL),
		FeedTimezone:       sharedcfg.EnvOrDefault("FEED_TIMEZONE", "America/New_York"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
	}

	if cfg.MQTTKeepAlive, err = parseDuration("MQTT_KEEPALIVE", "60s"); err != nil {
		return nil, err
	}
	if cfg.FeedTimeout, err = parseDuration("FEED_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = parseDuration("POLL_INTERVAL", "30s"); err != nil {
		return nil, err
	}
	if cfg.PublishTimeout, err = parseDuration("PUBLISH_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout, err = parseDuration("CONNECT_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	loc, err := time.LoadLocation(cfg.FeedTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_TIMEZONE %q: %w", cfg.FeedTimezone, err)
	}
	cfg.FeedLocation = loc

	switch cfg.BrokerType {
	case BrokerMQTT:
		if err := loadMQTT(cfg); err != nil {
			return nil, err
		}
	case BrokerKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required")
		}
	default:
		return nil, fmt.Errorf("invalid BROKER_TYPE %q: want mqtt or kafka", cfg.BrokerType)
	}

	return cfg, nil
}

func loadMQTT(cfg *Config) error {
	if cfg.MQTTHost == "" {
		return errors.New("MQTT_HOST is required")
	}
	if cfg.MQTTTopic == "" {
		return errors.New("MQTT_TOPIC is required")
	}

	portStr := os.Getenv("MQTT_PORT")
	if portStr == "" {
		return errors.New("MQTT_PORT is required")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid MQTT_PORT %q", portStr)
	}
	cfg.MQTTPort = port
	return nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
