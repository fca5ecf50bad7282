package domain

import "time"

// AlertSeverity is the severity attached to an emitted alert. The detector
// only escalates High-tier conjunctions, so every alert carries "high".
type AlertSeverity string

const SeverityHigh AlertSeverity = "high"

// Alert is one high-risk conjunction notification. IDs increase
// monotonically and are never reused, even after the bounded log evicts the
// originating entry.
type Alert struct {
	ID        int64         `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Severity  AlertSeverity `json:"severity"`
	Message   string        `json:"message"`
	ObjectIDs []string      `json:"object_ids"`
}

// Clone returns a deep copy of the alert.
func (a Alert) Clone() Alert {
	c := a
	c.ObjectIDs = make([]string, len(a.ObjectIDs))
	copy(c.ObjectIDs, a.ObjectIDs)
	return c
}
