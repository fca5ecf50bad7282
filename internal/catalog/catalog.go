// Package catalog holds the in-memory set of tracked space objects and the
// bounded alert log. The catalog is owned by the engine tick: only the tick
// mutates it, and readers are served deep copies.
package catalog

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/astrosignal/astroalert/internal/domain"
)

// Seed describes one object to place in the catalog at startup. Position is
// not part of the seed; objects start at a random point on the sphere at
// their configured altitude.
type Seed struct {
	ID             string
	Name           string
	Kind           domain.ObjectKind
	OrbitClass     domain.OrbitClass
	AltitudeKm     float64
	InclinationDeg float64
	SpeedKmps      float64
}

// Catalog is the mutable set of tracked objects. It is not internally
// synchronized: the engine serializes all access through its tick lock.
type Catalog struct {
	objects []*domain.SpaceObject
	index   map[string]*domain.SpaceObject
}

// New builds a catalog from the given seeds, placing each object at a random
// position on its altitude shell. The rng is injectable so tests can seed it.
func New(seeds []Seed, rng *rand.Rand, now time.Time) *Catalog {
	c := &Catalog{
		index: make(map[string]*domain.SpaceObject, len(seeds)),
	}
	for _, s := range seeds {
		obj := &domain.SpaceObject{
			ID:             s.ID,
			Name:           s.Name,
			Kind:           s.Kind,
			OrbitClass:     s.OrbitClass,
			AltitudeKm:     s.AltitudeKm,
			InclinationDeg: s.InclinationDeg,
			Position:       randomPosition(s.AltitudeKm, rng),
			SpeedKmps:      s.SpeedKmps,
			LastUpdate:     now,
			RiskPeers:      []domain.RiskPeer{},
		}
		c.objects = append(c.objects, obj)
		c.index[obj.ID] = obj
	}
	return c
}

// randomPosition picks a uniform random azimuth and polar angle on the
// sphere of radius EarthRadius + altitude.
func randomPosition(altitudeKm float64, rng *rand.Rand) domain.Vec3 {
	s := domain.Spherical{
		R:     domain.EarthRadiusKm + altitudeKm,
		Theta: rng.Float64() * 2 * math.Pi,
		Phi:   rng.Float64() * math.Pi,
	}
	return s.ToCartesian()
}

// Objects returns the live object records for the tick to mutate in place.
func (c *Catalog) Objects() []*domain.SpaceObject {
	return c.objects
}

// Get returns the live record for id, or false when absent.
func (c *Catalog) Get(id string) (*domain.SpaceObject, bool) {
	obj, ok := c.index[id]
	return obj, ok
}

// Len returns the number of tracked objects.
func (c *Catalog) Len() int {
	return len(c.objects)
}

// SnapshotObjects returns deep copies of every object, safe to hand to
// readers outside the tick.
func (c *Catalog) SnapshotObjects() []domain.SpaceObject {
	out := make([]domain.SpaceObject, 0, len(c.objects))
	for _, obj := range c.objects {
		out = append(out, obj.Clone())
	}
	return out
}
