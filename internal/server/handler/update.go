package handler

import (
	"log/slog"
	"net/http"

	"github.com/astrosignal/astroalert/internal/domain"
)

// UpdateService runs one manual simulation tick.
type UpdateService interface {
	Update() (domain.Snapshot, []domain.Alert)
}

// UpdateHandler serves the manual tick trigger.
type UpdateHandler struct {
	updater UpdateService
	logger  *slog.Logger
}

// NewUpdateHandler creates an UpdateHandler with the given service and logger.
func NewUpdateHandler(updater UpdateService, logger *slog.Logger) *UpdateHandler {
	return &UpdateHandler{
		updater: updater,
		logger:  logger,
	}
}

// TriggerUpdate performs one propagate-then-detect tick and returns the
// refreshed snapshot. The same path the scheduler drives internally.
// POST /api/update
func (h *UpdateHandler) TriggerUpdate(w http.ResponseWriter, r *http.Request) {
	snap, emitted := h.updater.Update()
	if len(emitted) > 0 {
		h.logger.InfoContext(r.Context(), "manual update emitted alerts",
			slog.Int("count", len(emitted)),
		)
	}
	writeJSON(w, http.StatusOK, snap)
}
