package catalog

import (
	"fmt"
	"testing"
	"time"
)

func TestAlertLogMonotonicIDs(t *testing.T) {
	l := NewAlertLog(10)
	ts := time.Now()

	a1 := l.Append(ts, "first", []string{"a", "b"})
	a2 := l.Append(ts, "second", []string{"a", "b"})

	if a1.ID != 1 || a2.ID != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", a1.ID, a2.ID)
	}
	if a1.Severity != "high" {
		t.Errorf("severity = %q, want high", a1.Severity)
	}
}

func TestAlertLogEvictsOldestAndNeverReusesIDs(t *testing.T) {
	l := NewAlertLog(100)
	ts := time.Now()

	for i := 0; i < 105; i++ {
		l.Append(ts, fmt.Sprintf("alert %d", i), []string{"a", "b"})
	}

	alerts := l.Alerts()
	if len(alerts) != 100 {
		t.Fatalf("len = %d, want 100", len(alerts))
	}
	if alerts[0].ID != 6 {
		t.Errorf("oldest retained id = %d, want 6", alerts[0].ID)
	}
	if alerts[99].ID != 105 {
		t.Errorf("newest id = %d, want 105", alerts[99].ID)
	}
}

func TestAlertLogCopiesObjectIDs(t *testing.T) {
	l := NewAlertLog(10)
	ids := []string{"a", "b"}
	alert := l.Append(time.Now(), "msg", ids)

	ids[0] = "mutated"
	if alert.ObjectIDs[0] != "a" {
		t.Error("alert shares object id slice with caller")
	}

	got := l.Alerts()
	got[0].ObjectIDs[0] = "mutated"
	if l.Alerts()[0].ObjectIDs[0] != "a" {
		t.Error("Alerts() exposes internal object id slice")
	}
}

func TestAlertLogZeroCapFallsBack(t *testing.T) {
	l := NewAlertLog(0)
	for i := 0; i < DefaultAlertCap+1; i++ {
		l.Append(time.Now(), "m", nil)
	}
	if l.Len() != DefaultAlertCap {
		t.Errorf("Len = %d, want %d", l.Len(), DefaultAlertCap)
	}
}
