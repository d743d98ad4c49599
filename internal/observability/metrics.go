package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_publisher"

// Metrics holds the Prometheus counters, histograms, and gauges for the publisher.
type Metrics struct {
	Ticks            prometheus.Counter
	FetchErrors      prometheus.Counter
	ParseErrors      prometheus.Counter
	EventsFetched    prometheus.Counter
	EventsPublished  prometheus.Counter
	PublishErrors    prometheus.Counter
	DuplicateEvents  prometheus.Counter
	TrackedEvents    prometheus.Gauge
	PipelineRunning  prometheus.Gauge
	BrokerConnected  prometheus.Gauge
	TickDuration     prometheus.Histogram
	FetchDuration    prometheus.Histogram
	MessagesReceived *prometheus.CounterVec // subscriber; labels: topic
}

func newMetrics() *Metrics {
	return &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total poll cycles started.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Poll cycles abandoned because the feed could not be fetched.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Feed items skipped because they could not be normalized.",
		}),
		EventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_fetched_total",
			Help:      "Total feed items returned by the feed.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total new events accepted by the broker.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Publish attempts that failed and will be retried next cycle.",
		}),
		DuplicateEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_events_total",
			Help:      "Feed items skipped because their identifier was already published.",
		}),
		TrackedEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_events",
			Help:      "Event identifiers held by the in-memory dedup tracker.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the poll loop is active, 0 when shut down.",
		}),
		BrokerConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "broker_connected",
			Help:      "1 while the broker connection is up.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of a complete fetch-filter-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Feed request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Messages received by the subscriber, by topic.",
		}, []string{"topic"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Ticks,
		m.FetchErrors,
		m.ParseErrors,
		m.EventsFetched,
		m.EventsPublished,
		m.PublishErrors,
		m.DuplicateEvents,
		m.TrackedEvents,
		m.PipelineRunning,
		m.BrokerConnected,
		m.TickDuration,
		m.FetchDuration,
		m.MessagesReceived,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
