package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-feed-publisher/internal/domain"
	"github.com/couchcryptid/quake-feed-publisher/internal/observability"
)

// FeedReader returns the current contents of the earthquake feed.
type FeedReader interface {
	Fetch(ctx context.Context) ([]domain.RawItem, error)
}

// Normalizer converts a raw feed item into an event.
type Normalizer interface {
	Normalize(raw domain.RawItem) (domain.EarthquakeEvent, error)
}

// Publisher delivers a payload to a broker topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Options configures the poll loop.
type Options struct {
	Topic          string
	Interval       time.Duration
	PublishTimeout time.Duration

	// Clock drives the ticker. Defaults to the real clock.
	Clock clockwork.Clock
}

// TickSummary reports the outcome of one poll cycle.
type TickSummary struct {
	Fetched    int
	Malformed  int
	Duplicates int
	Published  int
	Failed     int
	FetchErr   error
}

// Status is a snapshot of the most recent poll cycle.
type Status struct {
	Ready         bool      `json:"ready"`
	LastTickAt    time.Time `json:"last_tick_at,omitzero"`
	Fetched       int       `json:"fetched"`
	Malformed     int       `json:"malformed"`
	Duplicates    int       `json:"duplicates"`
	Published     int       `json:"published"`
	Failed        int       `json:"failed"`
	FetchError    string    `json:"fetch_error,omitempty"`
	TrackedEvents int       `json:"tracked_events"`
}

// Pipeline polls the feed and publishes events it has not published before.
type Pipeline struct {
	feed       FeedReader
	normalizer Normalizer
	publisher  Publisher
	tracker    *Tracker
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	opts       Options
	ready      atomic.Bool

	mu         sync.Mutex
	lastTickAt time.Time
	last       TickSummary
}

// New creates a Pipeline with an empty tracker.
func New(f FeedReader, n Normalizer, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		feed:       f,
		normalizer: n,
		publisher:  pub,
		tracker:    NewTracker(),
		logger:     logger,
		metrics:    metrics,
		clock:      clock,
		opts:       opts,
	}
}

// Tracker exposes the dedup set, mainly for tests and diagnostics.
func (p *Pipeline) Tracker() *Tracker {
	return p.tracker
}

// CheckReadiness returns nil once a poll cycle has fetched the feed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("feed has not been fetched yet")
	}
	return nil
}

// Status reports the outcome of the most recent cycle.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	at, last := p.lastTickAt, p.last
	p.mu.Unlock()

	st := Status{
		Ready:         p.ready.Load(),
		LastTickAt:    at,
		Fetched:       last.Fetched,
		Malformed:     last.Malformed,
		Duplicates:    last.Duplicates,
		Published:     last.Published,
		Failed:        last.Failed,
		TrackedEvents: p.tracker.Len(),
	}
	if last.FetchErr != nil {
		st.FetchError = last.FetchErr.Error()
	}
	return st
}

// Run polls immediately and then once per interval until ctx is cancelled.
// Cycles run one at a time on the calling goroutine; a cycle in progress
// when ctx is cancelled runs to completion, and no cycle starts after that.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.opts.Interval <= 0 {
		return fmt.Errorf("invalid poll interval %s", p.opts.Interval)
	}

	p.logger.Info("pipeline started", "interval", p.opts.Interval, "topic", p.opts.Topic)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := p.clock.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	if ctx.Err() != nil {
		p.logger.Info("pipeline stopping", "reason", ctx.Err())
		return nil
	}
	p.Tick(context.WithoutCancel(ctx))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if ctx.Err() != nil {
				continue
			}
			p.Tick(context.WithoutCancel(ctx))
		}
	}
}

// Tick runs a single fetch-filter-publish cycle. A fetch failure abandons
// the cycle; malformed items and failed publishes are skipped individually.
// Failed events stay untracked and are retried on the next cycle.
func (p *Pipeline) Tick(ctx context.Context) TickSummary {
	start := p.clock.Now()
	p.metrics.Ticks.Inc()
	defer func() {
		p.metrics.TickDuration.Observe(p.clock.Since(start).Seconds())
	}()

	var summary TickSummary
	defer func() {
		p.mu.Lock()
		p.lastTickAt, p.last = start, summary
		p.mu.Unlock()
	}()

	raws, err := p.feed.Fetch(ctx)
	if err != nil {
		summary.FetchErr = err
		p.metrics.FetchErrors.Inc()
		p.logger.Error("fetch feed failed", "error", err, "status", fetchStatus(err))
		return summary
	}
	p.ready.Store(true)

	summary.Fetched = len(raws)
	p.metrics.EventsFetched.Add(float64(len(raws)))

	batch := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		event, err := p.normalizer.Normalize(raw)
		if err != nil {
			summary.Malformed++
			p.metrics.ParseErrors.Inc()
			p.logger.Warn("malformed feed item, skipping", "error", err, "raw", raw.Raw)
			continue
		}

		id := domain.EventID(event)
		if _, inBatch := batch[id]; inBatch || !p.tracker.IsNew(id) {
			summary.Duplicates++
			p.metrics.DuplicateEvents.Inc()
			continue
		}
		batch[id] = struct{}{}

		if err := p.publish(ctx, event); err != nil {
			summary.Failed++
			p.metrics.PublishErrors.Inc()
			p.logger.Error("publish failed, will retry next cycle", "error", err, "event_id", id)
			continue
		}

		p.tracker.MarkSeen(id)
		summary.Published++
		p.metrics.EventsPublished.Inc()
		p.logger.Debug("event published", "event_id", id, "magnitude", event.Magnitude)
	}

	p.metrics.TrackedEvents.Set(float64(p.tracker.Len()))

	if summary.Published == 0 {
		p.logger.Info("no new events", "fetched", summary.Fetched, "failed", summary.Failed)
	} else {
		p.logger.Info("published new events",
			"count", summary.Published,
			"fetched", summary.Fetched,
			"duplicates", summary.Duplicates,
			"malformed", summary.Malformed,
			"failed", summary.Failed,
		)
	}
	return summary
}

func (p *Pipeline) publish(ctx context.Context, event domain.EarthquakeEvent) error {
	payload, err := domain.MarshalPayload(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", domain.ErrPublish, err)
	}

	if p.opts.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.PublishTimeout)
		defer cancel()
	}
	return p.publisher.Publish(ctx, p.opts.Topic, payload)
}

func fetchStatus(err error) int {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
