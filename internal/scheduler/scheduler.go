// Package scheduler drives the recurring update loop: one engine tick per
// iteration, snapshot fan-out to the registered sinks, then a randomized
// wait before the next tick.
package scheduler

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/astrosignal/astroalert/internal/domain"
)

// Default real-time bounds for the inter-tick wait. The jitter avoids
// synchronized load spikes across simulated clusters; it is cosmetic, not a
// correctness requirement.
const (
	DefaultMinInterval = 2 * time.Second
	DefaultMaxInterval = 5 * time.Second
)

// Ticker runs one simulation tick and returns the refreshed snapshot plus
// any alerts emitted during that tick.
type Ticker interface {
	Update() (domain.Snapshot, []domain.Alert)
}

// Sink receives the snapshot produced by each tick. Implementations must
// not block the scheduler on slow subscribers; delivery failures are theirs
// to contain.
type Sink interface {
	PushUpdate(ctx context.Context, snap domain.Snapshot)
}

// AlertSink receives each newly emitted alert.
type AlertSink interface {
	HandleAlert(ctx context.Context, alert domain.Alert)
}

// Config holds the scheduler timing parameters.
type Config struct {
	MinInterval time.Duration
	MaxInterval time.Duration
	Rand        *rand.Rand
}

// Scheduler owns the tick lifecycle. A failure inside a single tick is
// logged and the loop continues at the next interval; only context
// cancellation stops it, and the in-flight tick always finishes first.
type Scheduler struct {
	engine     Ticker
	sinks      []Sink
	alertSinks []AlertSink
	min        time.Duration
	max        time.Duration
	rng        *rand.Rand
	logger     *slog.Logger
}

// New creates a scheduler around the given engine. Zero intervals fall back
// to the 2–5 s defaults.
func New(engine Ticker, cfg Config, logger *slog.Logger) *Scheduler {
	min := cfg.MinInterval
	if min <= 0 {
		min = DefaultMinInterval
	}
	max := cfg.MaxInterval
	if max < min {
		max = min
	}
	rng := cfg.Rand
	if rng == nil {
		t := time.Now()
		rng = rand.New(rand.NewPCG(uint64(t.UnixNano()), uint64(t.Unix())))
	}
	return &Scheduler{
		engine: engine,
		min:    min,
		max:    max,
		rng:    rng,
		logger: logger.With(slog.String("component", "scheduler")),
	}
}

// AddSink registers a snapshot sink. Not safe to call after Run starts.
func (s *Scheduler) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// AddAlertSink registers an alert sink. Not safe to call after Run starts.
func (s *Scheduler) AddAlertSink(sink AlertSink) {
	s.alertSinks = append(s.alertSinks, sink)
}

// Run executes ticks until the context is cancelled. The first tick runs
// immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "scheduler starting",
		slog.Duration("min_interval", s.min),
		slog.Duration("max_interval", s.max),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
			s.tick(ctx)
			timer.Reset(s.nextInterval())
		}
	}
}

// tick runs one engine update and fans the result out. Panics are contained
// here so a transient tick failure never terminates the loop.
func (s *Scheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "tick failed",
				slog.Any("panic", r),
			)
		}
	}()

	snap, alerts := s.engine.Update()

	for _, sink := range s.sinks {
		sink.PushUpdate(ctx, snap)
	}
	for _, alert := range alerts {
		for _, sink := range s.alertSinks {
			sink.HandleAlert(ctx, alert)
		}
	}
}

// nextInterval picks a uniform random wait within [min, max].
func (s *Scheduler) nextInterval() time.Duration {
	if s.max == s.min {
		return s.min
	}
	return s.min + time.Duration(s.rng.Float64()*float64(s.max-s.min))
}
