package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/astrosignal/astroalert/internal/catalog"
	"github.com/astrosignal/astroalert/internal/domain"
)

// fakeClock returns a now func backed by a mutable time value.
func fakeClock(start time.Time) (func() time.Time, *time.Time) {
	curr := start
	return func() time.Time { return curr }, &curr
}

func alertPair() (*domain.SpaceObject, *domain.SpaceObject) {
	a := &domain.SpaceObject{ID: "25544", Name: "ISS (ZARYA)"}
	b := &domain.SpaceObject{ID: "48274", Name: "COSMOS 2251 DEB"}
	return a, b
}

func TestMaybeAlertFirstEmissionNotSuppressed(t *testing.T) {
	now, _ := fakeClock(time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC))
	alerter := NewAlerter(catalog.NewAlertLog(100), 10*time.Second, now)
	a, b := alertPair()

	alert, ok := alerter.MaybeAlert(a, b, 15.0, 1.5)
	if !ok {
		t.Fatal("first high-risk pair after startup was suppressed")
	}
	if alert.ID != 1 {
		t.Errorf("id = %d, want 1", alert.ID)
	}
	if len(alert.ObjectIDs) != 2 || alert.ObjectIDs[0] != "25544" || alert.ObjectIDs[1] != "48274" {
		t.Errorf("object ids = %v", alert.ObjectIDs)
	}
	want := "Potential collision between ISS (ZARYA) and COSMOS 2251 DEB. Distance: 15.00 km, Time to conjunction: 1.50 hours."
	if alert.Message != want {
		t.Errorf("message = %q, want %q", alert.Message, want)
	}
}

func TestMaybeAlertGlobalCooldown(t *testing.T) {
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	now, curr := fakeClock(start)
	alerter := NewAlerter(catalog.NewAlertLog(100), 10*time.Second, now)
	a, b := alertPair()

	if _, ok := alerter.MaybeAlert(a, b, 15, 1.5); !ok {
		t.Fatal("first alert suppressed")
	}

	// Within the window, and at exactly the boundary: suppressed.
	*curr = start.Add(5 * time.Second)
	if _, ok := alerter.MaybeAlert(a, b, 14, 1.4); ok {
		t.Error("alert emitted 5s after previous, want suppressed")
	}
	*curr = start.Add(10 * time.Second)
	if _, ok := alerter.MaybeAlert(a, b, 14, 1.4); ok {
		t.Error("alert emitted exactly 10s after previous, want suppressed")
	}

	// Past the window: emitted, with the next id.
	*curr = start.Add(10*time.Second + time.Millisecond)
	alert, ok := alerter.MaybeAlert(a, b, 14, 1.4)
	if !ok {
		t.Fatal("alert suppressed after cooldown elapsed")
	}
	if alert.ID != 2 {
		t.Errorf("id = %d, want 2", alert.ID)
	}
}

func TestMaybeAlertOnePerTickAcrossPairs(t *testing.T) {
	now, _ := fakeClock(time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC))
	alerter := NewAlerter(catalog.NewAlertLog(100), 10*time.Second, now)
	a, b := alertPair()
	c := &domain.SpaceObject{ID: "33692", Name: "FENGYUN 1C DEB"}

	// Three qualifying pairs evaluated at the same instant: only the first
	// emits, the rest hit the cooldown immediately.
	if _, ok := alerter.MaybeAlert(a, b, 5, 0.5); !ok {
		t.Fatal("first pair suppressed")
	}
	if _, ok := alerter.MaybeAlert(a, c, 10, 0.5); ok {
		t.Error("second pair in the same tick emitted an alert")
	}
	if _, ok := alerter.MaybeAlert(b, c, 5, 0.5); ok {
		t.Error("third pair in the same tick emitted an alert")
	}
}

func TestMaybeAlertSuppressedPairLeavesNoTrace(t *testing.T) {
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	now, curr := fakeClock(start)
	log := catalog.NewAlertLog(100)
	alerter := NewAlerter(log, 10*time.Second, now)
	a, b := alertPair()

	alerter.MaybeAlert(a, b, 15, 1.5)
	*curr = start.Add(2 * time.Second)
	alerter.MaybeAlert(a, b, 15, 1.5)

	if log.Len() != 1 {
		t.Errorf("log len = %d, want 1", log.Len())
	}
}

func TestMaybeAlertMessageFormatsValues(t *testing.T) {
	now, _ := fakeClock(time.Now())
	alerter := NewAlerter(catalog.NewAlertLog(100), 10*time.Second, now)
	a, b := alertPair()

	alert, _ := alerter.MaybeAlert(a, b, 7.125, 0.1)
	if !strings.Contains(alert.Message, "Distance: 7.13 km") {
		t.Errorf("message = %q", alert.Message)
	}
	if !strings.Contains(alert.Message, "Time to conjunction: 0.10 hours") {
		t.Errorf("message = %q", alert.Message)
	}
}
