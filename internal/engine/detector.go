package engine

import (
	"math"

	"github.com/astrosignal/astroalert/internal/domain"
)

// ConjunctionThresholdKm is the separation below which a pair is considered
// a conjunction and annotated on both objects.
const ConjunctionThresholdKm = 100.0

// ttcFloorHours and relSpeedEpsilon keep the time-to-conjunction estimate
// positive and finite for co-orbital pairs.
const (
	ttcFloorHours   = 0.1
	relSpeedEpsilon = 0.001
)

// HighRiskPair is a conjunction classified at the highest severity tier,
// handed to the alert generator.
type HighRiskPair struct {
	A                 *domain.SpaceObject
	B                 *domain.SpaceObject
	DistanceKm        float64
	TimeToConjunction float64
}

// Detector performs pairwise proximity analysis over the catalog. Every
// unordered pair is evaluated exactly once per pass; there is no spatial
// index, which is acceptable only while the catalog stays small.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect replaces every object's risk-peer list with the current pass's
// findings and returns the pairs classified High.
func (d *Detector) Detect(objects []*domain.SpaceObject) []HighRiskPair {
	for _, obj := range objects {
		obj.RiskPeers = obj.RiskPeers[:0]
	}

	var high []HighRiskPair
	for i, a := range objects {
		for _, b := range objects[i+1:] {
			distance := a.Position.DistanceTo(b.Position)
			relSpeed := math.Abs(a.SpeedKmps - b.SpeedKmps)
			ttc := math.Max(ttcFloorHours, distance/(relSpeed+relSpeedEpsilon))

			if distance >= ConjunctionThresholdKm {
				continue
			}

			level := ClassifyRisk(distance, ttc)
			a.RiskPeers = append(a.RiskPeers, domain.RiskPeer{
				ObjectID:          b.ID,
				DistanceKm:        distance,
				VelocityKmps:      relSpeed,
				TimeToConjunction: ttc,
				RiskLevel:         level,
			})
			b.RiskPeers = append(b.RiskPeers, domain.RiskPeer{
				ObjectID:          a.ID,
				DistanceKm:        distance,
				VelocityKmps:      relSpeed,
				TimeToConjunction: ttc,
				RiskLevel:         level,
			})

			if level == domain.RiskHigh {
				high = append(high, HighRiskPair{
					A:                 a,
					B:                 b,
					DistanceKm:        distance,
					TimeToConjunction: ttc,
				})
			}
		}
	}
	return high
}

// ClassifyRisk maps separation (km) and time-to-conjunction (hours) to a
// severity tier. Evaluated in priority order; first match wins.
func ClassifyRisk(distanceKm, timeToConjunction float64) domain.RiskLevel {
	switch {
	case distanceKm < 20 && timeToConjunction < 2:
		return domain.RiskHigh
	case distanceKm < 50 && timeToConjunction < 12:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
