package handler

import (
	"log/slog"
	"net/http"

	"github.com/astrosignal/astroalert/internal/domain"
)

// AlertService provides read access to the retained alert log.
type AlertService interface {
	Alerts() []domain.Alert
}

// AlertHandler serves the alert-log endpoint.
type AlertHandler struct {
	alerts AlertService
	logger *slog.Logger
}

// NewAlertHandler creates an AlertHandler with the given service and logger.
func NewAlertHandler(alerts AlertService, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
		logger: logger,
	}
}

// ListAlerts returns all retained alert records, oldest first.
// GET /api/alerts
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.alerts.Alerts())
}
