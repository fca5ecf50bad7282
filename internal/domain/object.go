// Package domain defines the core data types shared across the AstroAlert
// service: tracked space objects, conjunction risk annotations, alerts, and
// the snapshot handed to API and WebSocket readers.
package domain

import "time"

// ObjectKind classifies a tracked object.
type ObjectKind string

const (
	KindSatellite ObjectKind = "satellite"
	KindDebris    ObjectKind = "debris"
)

// OrbitClass is the broad orbital regime of an object.
type OrbitClass string

const (
	OrbitLEO OrbitClass = "LEO"
	OrbitMEO OrbitClass = "MEO"
	OrbitGEO OrbitClass = "GEO"
)

// RiskLevel is the discretized conjunction severity tier.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskPeer annotates one object with a close-approach relation to another.
// The full list is replaced on every detection pass.
type RiskPeer struct {
	ObjectID         string    `json:"object_id"`
	DistanceKm       float64   `json:"distance_km"`
	VelocityKmps     float64   `json:"velocity_kmps"`
	TimeToConjunction float64  `json:"time_to_conjunction"`
	RiskLevel        RiskLevel `json:"risk_level"`
}

// SpaceObject is one tracked catalog entry. ID, Name, Kind, OrbitClass,
// AltitudeKm, InclinationDeg and SpeedKmps are immutable after creation;
// Position, LastUpdate and RiskPeers are mutated by the tick.
type SpaceObject struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Kind           ObjectKind `json:"kind"`
	OrbitClass     OrbitClass `json:"orbit_class"`
	AltitudeKm     float64    `json:"altitude_km"`
	InclinationDeg float64    `json:"inclination_deg"`
	Position       Vec3       `json:"position"`
	SpeedKmps      float64    `json:"speed_kmps"`
	LastUpdate     time.Time  `json:"last_update"`
	RiskPeers      []RiskPeer `json:"risk_peers"`
}

// Clone returns a deep copy safe to hand to readers.
func (o SpaceObject) Clone() SpaceObject {
	c := o
	if o.RiskPeers != nil {
		c.RiskPeers = make([]RiskPeer, len(o.RiskPeers))
		copy(c.RiskPeers, o.RiskPeers)
	}
	return c
}
