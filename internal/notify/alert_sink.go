package notify

import (
	"context"
	"fmt"

	"github.com/astrosignal/astroalert/internal/domain"
)

// EventHighRiskAlert is the event type under which conjunction alerts are
// dispatched. Operators can filter on it in the notifier's event list.
const EventHighRiskAlert = "alert.high"

// AlertSink adapts a Notifier to the scheduler's alert fan-out, pushing each
// emitted conjunction alert to the configured notification channels.
type AlertSink struct {
	notifier *Notifier
}

// NewAlertSink creates an AlertSink around the given Notifier.
func NewAlertSink(n *Notifier) *AlertSink {
	return &AlertSink{notifier: n}
}

// HandleAlert forwards a single alert. Delivery errors are already logged by
// the Notifier per sender, so they are not propagated here.
func (s *AlertSink) HandleAlert(ctx context.Context, alert domain.Alert) {
	title := fmt.Sprintf("Conjunction alert #%d", alert.ID)
	_ = s.notifier.Notify(ctx, EventHighRiskAlert, title, alert.Message)
}
