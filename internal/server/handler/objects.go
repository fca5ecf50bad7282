package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/astrosignal/astroalert/internal/domain"
)

// ObjectService defines what the object handler needs from the engine. It is
// declared locally so the handler package does not depend on the concrete
// engine implementation.
type ObjectService interface {
	Objects() []domain.SpaceObject
	ObjectByID(id string) (domain.SpaceObject, error)
}

// ObjectHandler serves the tracked-object endpoints.
type ObjectHandler struct {
	objects ObjectService
	logger  *slog.Logger
}

// NewObjectHandler creates an ObjectHandler with the given service and logger.
func NewObjectHandler(objects ObjectService, logger *slog.Logger) *ObjectHandler {
	return &ObjectHandler{
		objects: objects,
		logger:  logger,
	}
}

// ListObjects returns snapshots of all tracked objects.
// GET /api/objects
func (h *ObjectHandler) ListObjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.objects.Objects())
}

// GetObject returns a single object snapshot by its catalog id.
// GET /api/objects/{id}
func (h *ObjectHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing object id")
		return
	}

	obj, err := h.objects.ObjectByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "object not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get object failed",
			slog.String("object_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get object")
		return
	}

	writeJSON(w, http.StatusOK, obj)
}
