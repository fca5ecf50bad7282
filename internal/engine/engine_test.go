package engine

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/astrosignal/astroalert/internal/catalog"
	"github.com/astrosignal/astroalert/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newConjunctionEngine builds an engine with two objects on nearby shells and
// then places them 15 km apart radially, so the first tick detects a High
// conjunction (relative speed 10 km/s gives ttc just under 1.6 hours).
func newConjunctionEngine(t *testing.T, now func() time.Time) *Engine {
	t.Helper()

	e := New(Config{
		Seeds: []catalog.Seed{
			{
				ID: "sat-1", Name: "SAT ONE", Kind: domain.KindSatellite,
				OrbitClass: domain.OrbitLEO, AltitudeKm: 415.0, InclinationDeg: 51.6, SpeedKmps: 7.5,
			},
			{
				ID: "deb-1", Name: "DEB ONE", Kind: domain.KindDebris,
				OrbitClass: domain.OrbitLEO, AltitudeKm: 430.0, InclinationDeg: 74.2, SpeedKmps: 17.5,
			},
		},
		StepSeconds:       60,
		PerturbationSigma: 1e-12,
		AlertLogCap:       100,
		AlertCooldown:     10 * time.Second,
		Rand:              rand.New(rand.NewPCG(1, 2)),
		Now:               now,
	}, discardLogger())

	sat, _ := e.cat.Get("sat-1")
	deb, _ := e.cat.Get("deb-1")
	sat.Position = domain.Vec3{X: domain.EarthRadiusKm + 415.0}
	deb.Position = domain.Vec3{X: domain.EarthRadiusKm + 430.0}

	return e
}

func TestUpdateDetectsHighConjunctionAndAlertsOnce(t *testing.T) {
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	curr := start
	e := newConjunctionEngine(t, func() time.Time { return curr })

	snap, emitted := e.Update()

	if len(emitted) != 1 {
		t.Fatalf("emitted = %d alerts, want 1", len(emitted))
	}
	alert := emitted[0]
	if alert.ID != 1 {
		t.Errorf("alert id = %d, want 1", alert.ID)
	}
	if len(alert.ObjectIDs) != 2 {
		t.Fatalf("alert object ids = %v", alert.ObjectIDs)
	}
	refs := map[string]bool{alert.ObjectIDs[0]: true, alert.ObjectIDs[1]: true}
	if !refs["sat-1"] || !refs["deb-1"] {
		t.Errorf("alert references %v, want both sat-1 and deb-1", alert.ObjectIDs)
	}

	// Both sides carry the High annotation.
	for _, obj := range snap.Objects {
		if len(obj.RiskPeers) != 1 {
			t.Fatalf("object %s peers = %d, want 1", obj.ID, len(obj.RiskPeers))
		}
		if obj.RiskPeers[0].RiskLevel != domain.RiskHigh {
			t.Errorf("object %s risk = %v, want High", obj.ID, obj.RiskPeers[0].RiskLevel)
		}
	}

	if len(snap.Alerts) != 1 {
		t.Errorf("snapshot alerts = %d, want 1", len(snap.Alerts))
	}
}

func TestUpdateWithinCooldownShowsRiskButNoNewAlert(t *testing.T) {
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	curr := start
	e := newConjunctionEngine(t, func() time.Time { return curr })

	_, first := e.Update()
	if len(first) != 1 {
		t.Fatalf("first tick emitted %d alerts, want 1", len(first))
	}

	curr = start.Add(5 * time.Second)
	snap, second := e.Update()

	if len(second) != 0 {
		t.Errorf("second tick within cooldown emitted %d alerts, want 0", len(second))
	}
	for _, obj := range snap.Objects {
		if len(obj.RiskPeers) != 1 || obj.RiskPeers[0].RiskLevel != domain.RiskHigh {
			t.Errorf("object %s lost its High annotation during cooldown", obj.ID)
		}
	}
	if len(snap.Alerts) != 1 {
		t.Errorf("snapshot alerts = %d, want 1", len(snap.Alerts))
	}

	// Once the cooldown lapses the next High tick alerts again, with a
	// fresh id.
	curr = start.Add(16 * time.Second)
	_, third := e.Update()
	if len(third) != 1 {
		t.Fatalf("third tick emitted %d alerts, want 1", len(third))
	}
	if third[0].ID != 2 {
		t.Errorf("alert id = %d, want 2", third[0].ID)
	}
}

func TestSingleAlertPerTickAcrossMultipleHighPairs(t *testing.T) {
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	curr := start

	// Three objects on shells 5 km apart with pairwise relative speeds of
	// 10 and 20 km/s: all three pairs classify High in the same pass.
	e := New(Config{
		Seeds: []catalog.Seed{
			{
				ID: "sat-1", Name: "SAT ONE", Kind: domain.KindSatellite,
				OrbitClass: domain.OrbitLEO, AltitudeKm: 415.0, InclinationDeg: 51.6, SpeedKmps: 7.5,
			},
			{
				ID: "deb-1", Name: "DEB ONE", Kind: domain.KindDebris,
				OrbitClass: domain.OrbitLEO, AltitudeKm: 420.0, InclinationDeg: 74.2, SpeedKmps: 17.5,
			},
			{
				ID: "deb-2", Name: "DEB TWO", Kind: domain.KindDebris,
				OrbitClass: domain.OrbitLEO, AltitudeKm: 425.0, InclinationDeg: 98.5, SpeedKmps: 27.5,
			},
		},
		StepSeconds:       60,
		PerturbationSigma: 1e-12,
		AlertLogCap:       100,
		AlertCooldown:     10 * time.Second,
		Rand:              rand.New(rand.NewPCG(3, 4)),
		Now:               func() time.Time { return curr },
	}, discardLogger())

	for _, s := range []struct {
		id  string
		alt float64
	}{
		{"sat-1", 415.0},
		{"deb-1", 420.0},
		{"deb-2", 425.0},
	} {
		obj, _ := e.cat.Get(s.id)
		obj.Position = domain.Vec3{X: domain.EarthRadiusKm + s.alt}
	}

	snap, emitted := e.Update()

	if len(emitted) != 1 {
		t.Fatalf("tick with three High pairs emitted %d alerts, want exactly 1", len(emitted))
	}
	if len(snap.Alerts) != 1 {
		t.Errorf("snapshot alerts = %d, want 1", len(snap.Alerts))
	}

	// Suppression is for alerting only; every pair still annotates both
	// sides as High.
	for _, obj := range snap.Objects {
		if len(obj.RiskPeers) != 2 {
			t.Fatalf("object %s peers = %d, want 2", obj.ID, len(obj.RiskPeers))
		}
		for _, peer := range obj.RiskPeers {
			if peer.RiskLevel != domain.RiskHigh {
				t.Errorf("object %s peer %s risk = %v, want High", obj.ID, peer.ObjectID, peer.RiskLevel)
			}
		}
	}
}

func TestSnapshotMutationDoesNotReachEngineState(t *testing.T) {
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	curr := start
	e := newConjunctionEngine(t, func() time.Time { return curr })

	snap, _ := e.Update()
	snap.Objects[0].Name = "TAMPERED"
	snap.Objects[0].Position = domain.Vec3{X: 1}
	snap.Alerts[0].Message = "TAMPERED"

	curr = start.Add(3 * time.Second)
	next, _ := e.Update()

	obj, err := next.Object("sat-1")
	if err != nil {
		t.Fatalf("Object(sat-1): %v", err)
	}
	if obj.Name != "SAT ONE" {
		t.Errorf("name = %q after snapshot tampering, want SAT ONE", obj.Name)
	}
	wantRadius := domain.EarthRadiusKm + 415.0
	if got := obj.Position.Norm(); got < wantRadius-1 || got > wantRadius+1 {
		t.Errorf("radius = %v after snapshot tampering, want ~%v", got, wantRadius)
	}
	if next.Alerts[0].Message == "TAMPERED" {
		t.Error("alert tampering leaked into the retained log")
	}
}

func TestObjectByID(t *testing.T) {
	e := newConjunctionEngine(t, time.Now)

	for i := 0; i < 3; i++ {
		e.Update()
	}

	obj, err := e.ObjectByID("deb-1")
	if err != nil {
		t.Fatalf("ObjectByID(deb-1): %v", err)
	}
	if obj.Name != "DEB ONE" || obj.Kind != domain.KindDebris || obj.OrbitClass != domain.OrbitLEO {
		t.Errorf("immutable fields drifted: %+v", obj)
	}

	if _, err := e.ObjectByID("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ObjectByID(nope) err = %v, want ErrNotFound", err)
	}
}

func TestReadersSeeInitialSnapshotBeforeFirstTick(t *testing.T) {
	e := newConjunctionEngine(t, time.Now)

	objs := e.Objects()
	if len(objs) != 2 {
		t.Fatalf("initial objects = %d, want 2", len(objs))
	}
	if len(e.Alerts()) != 0 {
		t.Errorf("initial alerts = %d, want 0", len(e.Alerts()))
	}
}
