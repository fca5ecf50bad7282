package catalog

import (
	"time"

	"github.com/astrosignal/astroalert/internal/domain"
)

// DefaultAlertCap is the number of alerts retained in memory.
const DefaultAlertCap = 100

// AlertLog is an append-only log of emitted alerts capped at a fixed number
// of entries; once full, the oldest entry is evicted first. IDs come from a
// monotonic counter and are never reused after eviction.
type AlertLog struct {
	cap    int
	nextID int64
	alerts []domain.Alert
}

// NewAlertLog creates an empty log retaining at most capacity entries.
// A non-positive capacity falls back to DefaultAlertCap.
func NewAlertLog(capacity int) *AlertLog {
	if capacity <= 0 {
		capacity = DefaultAlertCap
	}
	return &AlertLog{cap: capacity}
}

// Append creates the next alert record, stores it, and returns it. The
// oldest entry is evicted once the log would exceed its capacity.
func (l *AlertLog) Append(ts time.Time, message string, objectIDs []string) domain.Alert {
	l.nextID++
	alert := domain.Alert{
		ID:        l.nextID,
		Timestamp: ts,
		Severity:  domain.SeverityHigh,
		Message:   message,
		ObjectIDs: append([]string(nil), objectIDs...),
	}
	l.alerts = append(l.alerts, alert)
	if len(l.alerts) > l.cap {
		l.alerts = l.alerts[len(l.alerts)-l.cap:]
	}
	return alert
}

// Alerts returns deep copies of all retained alerts, oldest first.
func (l *AlertLog) Alerts() []domain.Alert {
	out := make([]domain.Alert, 0, len(l.alerts))
	for _, a := range l.alerts {
		out = append(out, a.Clone())
	}
	return out
}

// Len returns the number of retained alerts.
func (l *AlertLog) Len() int {
	return len(l.alerts)
}
