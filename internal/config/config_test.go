package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testHost  = "broker.example.com"
	testTopic = "earthquakes"
)

func setMQTTEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MQTT_HOST", testHost)
	t.Setenv("MQTT_PORT", "1883")
	t.Setenv("MQTT_TOPIC", testTopic)
}

func TestLoad_Defaults(t *testing.T) {
	setMQTTEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BrokerMQTT, cfg.BrokerType)
	assert.Equal(t, testHost, cfg.MQTTHost)
	assert.Equal(t, 1883, cfg.MQTTPort)
	assert.Equal(t, testTopic, cfg.MQTTTopic)
	assert.Equal(t, testTopic, cfg.Topic())
	assert.Empty(t, cfg.MQTTUsername)
	assert.Empty(t, cfg.MQTTPassword)
	assert.False(t, cfg.HasCredentials())
	assert.Equal(t, "quake-publisher", cfg.MQTTClientIDPrefix)
	assert.Equal(t, 60*time.Second, cfg.MQTTKeepAlive)
	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout)
	assert.Equal(t, "America/New_York", cfg.FeedTimezone)
	require.NotNil(t, cfg.FeedLocation)
	assert.Equal(t, "America/New_York", cfg.FeedLocation.String())
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.PublishTimeout)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_CustomEnv(t *testing.T) {
	setMQTTEnv(t)
	t.Setenv("MQTT_USERNAME", "quakes")
	t.Setenv("API_KEY", "secret")
	t.Setenv("MQTT_CLIENT_ID_PREFIX", "edge")
	t.Setenv("MQTT_KEEPALIVE", "15s")
	t.Setenv("FEED_URL", "http://localhost:9000/rss")
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("FEED_TIMEZONE", "Europe/Athens")
	t.Setenv("POLL_INTERVAL", "1m")
	t.Setenv("PUBLISH_TIMEOUT", "2s")
	t.Setenv("CONNECT_TIMEOUT", "5s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, "quakes", cfg.MQTTUsername)
	assert.Equal(t, "secret", cfg.MQTTPassword)
	assert.Equal(t, "edge", cfg.MQTTClientIDPrefix)
	assert.Equal(t, 15*time.Second, cfg.MQTTKeepAlive)
	assert.Equal(t, "http://localhost:9000/rss", cfg.FeedURL)
	assert.Equal(t, 3*time.Second, cfg.FeedTimeout)
	assert.Equal(t, "Europe/Athens", cfg.FeedLocation.String())
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.PublishTimeout)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_UsernameWithoutPasswordIsAnonymous(t *testing.T) {
	setMQTTEnv(t)
	t.Setenv("MQTT_USERNAME", "quakes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.HasCredentials())
}

func TestLoad_MissingRequiredMQTT(t *testing.T) {
	for _, key := range []string{"MQTT_HOST", "MQTT_PORT", "MQTT_TOPIC"} {
		t.Run(key, func(t *testing.T) {
			setMQTTEnv(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	for _, port := range []string{"abc", "0", "70000"} {
		t.Run(port, func(t *testing.T) {
			setMQTTEnv(t)
			t.Setenv("MQTT_PORT", port)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "MQTT_PORT")
		})
	}
}

func TestLoad_Kafka(t *testing.T) {
	t.Setenv("BROKER_TYPE", "kafka")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "quakes")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BrokerKafka, cfg.BrokerType)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "quakes", cfg.Topic())
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
}

func TestLoad_KafkaMissingBrokers(t *testing.T) {
	t.Setenv("BROKER_TYPE", "kafka")
	t.Setenv("KAFKA_TOPIC", "quakes")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaMissingTopic(t *testing.T) {
	t.Setenv("BROKER_TYPE", "kafka")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_TOPIC")
}

func TestLoad_InvalidBrokerType(t *testing.T) {
	t.Setenv("BROKER_TYPE", "amqp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BROKER_TYPE")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setMQTTEnv(t)
	t.Setenv("FEED_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_TIMEZONE")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"POLL_INTERVAL", "FEED_TIMEOUT", "PUBLISH_TIMEOUT", "CONNECT_TIMEOUT", "MQTT_KEEPALIVE"} {
		t.Run(key, func(t *testing.T) {
			setMQTTEnv(t)
			t.Setenv(key, "-1s")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	setMQTTEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}
