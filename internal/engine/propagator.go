// Package engine implements the propagation and conjunction-detection core:
// a circular-orbit propagator, the pairwise conjunction detector, the
// rate-limited alert generator, and the Engine that runs one
// propagate-then-detect tick and publishes immutable snapshots.
package engine

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/astrosignal/astroalert/internal/domain"
)

// DefaultPerturbationSigma is the standard deviation of the Gaussian polar
// jitter applied on every step. It models sensor/ephemeris noise, not a
// physical force.
const DefaultPerturbationSigma = 0.001

// Propagator advances object positions using a circular-orbit angular-rate
// model. Orbits are modelled as circular and non-decaying: the orbital
// radius is held constant across steps.
type Propagator struct {
	sigma float64
	rng   *rand.Rand
}

// NewPropagator creates a propagator with the given perturbation sigma and
// random source. A nil rng gets a time-seeded source; a non-positive sigma
// falls back to the default.
func NewPropagator(sigma float64, rng *rand.Rand) *Propagator {
	if sigma <= 0 {
		sigma = DefaultPerturbationSigma
	}
	if rng == nil {
		now := time.Now()
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix())))
	}
	return &Propagator{sigma: sigma, rng: rng}
}

// Advance moves every object forward by dt simulated seconds and stamps
// LastUpdate with now. There are no failure modes: all catalog records are
// well-formed by construction.
func (p *Propagator) Advance(objects []*domain.SpaceObject, dtSeconds float64, now time.Time) {
	for _, obj := range objects {
		sph := obj.Position.ToSpherical()

		// Circular-orbit period from vis-viva at the current radius.
		period := 2 * math.Pi * math.Sqrt(math.Pow(sph.R, 3)/domain.MuEarth)

		sph.Theta += (2 * math.Pi / period) * dtSeconds
		sph.Phi += p.rng.NormFloat64() * p.sigma

		// Convert back at the original radius.
		obj.Position = sph.ToCartesian()
		obj.LastUpdate = now
	}
}
