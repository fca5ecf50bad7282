package engine

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/astrosignal/astroalert/internal/catalog"
	"github.com/astrosignal/astroalert/internal/domain"
)

// DefaultStepSeconds is the simulated time advanced per tick. It is
// deliberately decoupled from the real wall-clock tick interval: the
// simulation runs faster than real time.
const DefaultStepSeconds = 60.0

// Config holds the engine construction parameters. Zero values fall back to
// the documented defaults; Rand and Now are injectable for tests.
type Config struct {
	Seeds             []catalog.Seed
	StepSeconds       float64
	PerturbationSigma float64
	AlertLogCap       int
	AlertCooldown     time.Duration
	Rand              *rand.Rand
	Now               func() time.Time
}

// Engine owns the catalog, propagator, detector, and alerter, and is the
// sole writer of their state. Update runs one full tick under a lock (the
// scheduler and the manual API trigger serialize here) and publishes the
// result as an atomically swapped immutable snapshot, so readers never
// block the tick and never observe live mutable state.
type Engine struct {
	mu      sync.Mutex
	cat     *catalog.Catalog
	prop    *Propagator
	det     *Detector
	alerter *Alerter
	log     *catalog.AlertLog
	step    float64
	now     func() time.Time
	snap    atomic.Pointer[domain.Snapshot]
	logger  *slog.Logger
}

// New constructs an engine, seeds the catalog, and publishes the initial
// snapshot.
func New(cfg Config, logger *slog.Logger) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	rng := cfg.Rand
	if rng == nil {
		t := time.Now()
		rng = rand.New(rand.NewPCG(uint64(t.UnixNano()), uint64(t.Unix())))
	}
	step := cfg.StepSeconds
	if step <= 0 {
		step = DefaultStepSeconds
	}

	log := catalog.NewAlertLog(cfg.AlertLogCap)
	e := &Engine{
		cat:     catalog.New(cfg.Seeds, rng, now()),
		prop:    NewPropagator(cfg.PerturbationSigma, rng),
		det:     NewDetector(),
		alerter: NewAlerter(log, cfg.AlertCooldown, now),
		log:     log,
		step:    step,
		now:     now,
		logger:  logger.With(slog.String("component", "engine")),
	}
	e.publish()
	return e
}

// Update runs one propagate-then-detect tick and returns the refreshed
// snapshot together with any alerts emitted during this tick. The detector
// only ever observes post-propagation positions.
func (e *Engine) Update() (domain.Snapshot, []domain.Alert) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	objects := e.cat.Objects()

	e.prop.Advance(objects, e.step, now)
	highPairs := e.det.Detect(objects)

	var emitted []domain.Alert
	for _, pair := range highPairs {
		alert, ok := e.alerter.MaybeAlert(pair.A, pair.B, pair.DistanceKm, pair.TimeToConjunction)
		if !ok {
			continue
		}
		emitted = append(emitted, alert)
		e.logger.Info("conjunction alert emitted",
			slog.Int64("alert_id", alert.ID),
			slog.String("object_a", pair.A.ID),
			slog.String("object_b", pair.B.ID),
			slog.Float64("distance_km", pair.DistanceKm),
		)
	}

	snap := e.publish()
	return snap, emitted
}

// publish rebuilds the snapshot from current catalog/alert state and swaps
// it in. Caller must hold e.mu (or be the constructor).
func (e *Engine) publish() domain.Snapshot {
	snap := domain.Snapshot{
		Objects: e.cat.SnapshotObjects(),
		Alerts:  e.log.Alerts(),
	}
	e.snap.Store(&snap)
	return snap
}

// Snapshot returns the most recently published snapshot.
func (e *Engine) Snapshot() domain.Snapshot {
	return *e.snap.Load()
}

// Objects returns snapshots of all tracked objects.
func (e *Engine) Objects() []domain.SpaceObject {
	return e.Snapshot().Objects
}

// ObjectByID returns the snapshot of one object, or domain.ErrNotFound.
func (e *Engine) ObjectByID(id string) (domain.SpaceObject, error) {
	return e.Snapshot().Object(id)
}

// Alerts returns all retained alert records, oldest first.
func (e *Engine) Alerts() []domain.Alert {
	return e.Snapshot().Alerts
}
