// Package risk implements the stateless collision-risk scoring model used
// for one-off maneuver suggestions. It is a closed-form heuristic with no
// internal state; the periodic tick never calls it.
package risk

import (
	"fmt"
	"math"

	"github.com/astrosignal/astroalert/internal/domain"
)

// Features are the inputs to one risk assessment.
type Features struct {
	DistanceKm        float64 `json:"distance_km"`
	VelocityKmps      float64 `json:"velocity_kmps"`
	Altitude          float64 `json:"altitude"`
	Inclination       float64 `json:"inclination"`
	TimeToConjunction float64 `json:"time_to_conjunction"`
}

// FeatureImportance reports the fixed weight of one input feature.
type FeatureImportance struct {
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// Assessment is the result of scoring one conjunction geometry.
type Assessment struct {
	Probability        float64             `json:"probability"`
	RiskLevel          domain.RiskLevel    `json:"risk_level"`
	ManeuverSuggestion string              `json:"maneuver_suggestion"`
	Explanation        string              `json:"explanation"`
	FeatureImportance  []FeatureImportance `json:"feature_importance"`
}

// Model is the collision-risk scorer. It is safe for concurrent use.
type Model struct{}

// NewModel creates a Model.
func NewModel() *Model {
	return &Model{}
}

// Score computes the normalised risk score in [0, 1]. Close distance, high
// relative velocity, and short time to conjunction all push the score up.
func (m *Model) Score(f Features) float64 {
	raw := (1 / (f.DistanceKm + 1)) * f.VelocityKmps * (1 / (f.TimeToConjunction + 1))
	return math.Min(math.Max(raw*10, 0), 1)
}

// Assess scores the features and derives the discrete risk level, collision
// probability, maneuver suggestion, and a human-readable explanation.
func (m *Model) Assess(f Features) Assessment {
	score := m.Score(f)

	level := domain.RiskLow
	switch {
	case score > 0.6:
		level = domain.RiskHigh
	case score > 0.2:
		level = domain.RiskMedium
	}

	var probability float64
	switch level {
	case domain.RiskHigh:
		probability = score
	case domain.RiskMedium:
		probability = 0.5 + score/2
	default:
		probability = 1 - score
	}

	return Assessment{
		Probability:        probability,
		RiskLevel:          level,
		ManeuverSuggestion: suggestion(level, f),
		Explanation:        explanation(level, f),
		FeatureImportance:  featureImportance(),
	}
}

// suggestion picks a maneuver recommendation scaled by the conjunction
// geometry.
func suggestion(level domain.RiskLevel, f Features) string {
	switch level {
	case domain.RiskLow:
		return "No maneuver required. Continue monitoring."
	case domain.RiskMedium:
		if f.TimeToConjunction < 12 {
			return fmt.Sprintf("Consider altitude adjustment of +%.1fkm within 12 hours.", f.DistanceKm/20)
		}
		return fmt.Sprintf("Consider altitude adjustment of +%.1fkm within 48 hours.", f.DistanceKm/40)
	default:
		if f.TimeToConjunction < 6 {
			return fmt.Sprintf("URGENT: Immediate evasive maneuver required: +%.1fkm altitude change.", f.DistanceKm/10)
		}
		return fmt.Sprintf(
			"Critical: Execute evasive maneuver of +%.1fkm within %.1f hours.",
			f.DistanceKm/15, math.Min(24, f.TimeToConjunction/2),
		)
	}
}

// explanation summarises the dominant factors behind the assessment.
func explanation(level domain.RiskLevel, f Features) string {
	switch level {
	case domain.RiskLow:
		return fmt.Sprintf(
			"Low collision risk detected. The distance of %.1fkm and time to conjunction of %.1f hours indicate minimal risk.",
			f.DistanceKm, f.TimeToConjunction,
		)
	case domain.RiskMedium:
		return fmt.Sprintf(
			"Medium collision risk detected. Pay attention to the distance of %.1fkm and relative velocity of %.1fkm/s.",
			f.DistanceKm, f.VelocityKmps,
		)
	default:
		return fmt.Sprintf(
			"High collision risk detected. Critical factors are the close distance of %.1fkm and short time to conjunction of %.1f hours. Immediate action recommended.",
			f.DistanceKm, f.TimeToConjunction,
		)
	}
}

// featureImportance returns the fixed importance weights reported alongside
// every assessment.
func featureImportance() []FeatureImportance {
	return []FeatureImportance{
		{Name: "distance_km", Importance: 0.4},
		{Name: "velocity_kmps", Importance: 0.3},
		{Name: "time_to_conjunction", Importance: 0.2},
		{Name: "altitude", Importance: 0.05},
		{Name: "inclination", Importance: 0.05},
	}
}
