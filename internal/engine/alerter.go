package engine

import (
	"fmt"
	"time"

	"github.com/astrosignal/astroalert/internal/catalog"
	"github.com/astrosignal/astroalert/internal/domain"
)

// DefaultAlertCooldown is the minimum interval between any two emitted
// alerts. The cooldown is global across the whole catalog, not per-pair.
const DefaultAlertCooldown = 10 * time.Second

// throttleHeadstart backdates the initial last-alert time so the first
// genuine high-risk conjunction after startup is never suppressed.
const throttleHeadstart = 5 * time.Minute

// Alerter emits rate-limited alert records for High-tier conjunctions into
// the catalog's bounded alert log.
type Alerter struct {
	log       *catalog.AlertLog
	cooldown  time.Duration
	lastAlert time.Time
	now       func() time.Time
}

// NewAlerter creates an Alerter writing to the given log. A nil now func
// uses time.Now; a non-positive cooldown falls back to the default.
func NewAlerter(log *catalog.AlertLog, cooldown time.Duration, now func() time.Time) *Alerter {
	if cooldown <= 0 {
		cooldown = DefaultAlertCooldown
	}
	if now == nil {
		now = time.Now
	}
	return &Alerter{
		log:       log,
		cooldown:  cooldown,
		lastAlert: now().Add(-throttleHeadstart),
		now:       now,
	}
}

// MaybeAlert emits an alert for the pair iff the global cooldown has
// elapsed. A High pair evaluated while the cooldown is active is silently
// dropped for alerting purposes; it still appears in risk_peers.
func (a *Alerter) MaybeAlert(objA, objB *domain.SpaceObject, distanceKm, timeToConjunction float64) (domain.Alert, bool) {
	now := a.now()
	if now.Sub(a.lastAlert) <= a.cooldown {
		return domain.Alert{}, false
	}
	a.lastAlert = now

	msg := fmt.Sprintf(
		"Potential collision between %s and %s. Distance: %.2f km, Time to conjunction: %.2f hours.",
		objA.Name, objB.Name, distanceKm, timeToConjunction,
	)
	alert := a.log.Append(now, msg, []string{objA.ID, objB.ID})
	return alert, true
}
