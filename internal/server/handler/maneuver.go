package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/astrosignal/astroalert/internal/domain"
	"github.com/astrosignal/astroalert/internal/risk"
)

// Assessor scores a conjunction geometry and suggests a maneuver.
type Assessor interface {
	Assess(f risk.Features) risk.Assessment
}

// ManeuverHandler serves the one-off maneuver suggestion endpoint backed by
// the stateless risk model.
type ManeuverHandler struct {
	objects ObjectService
	model   Assessor
	logger  *slog.Logger
}

// NewManeuverHandler creates a ManeuverHandler.
func NewManeuverHandler(objects ObjectService, model Assessor, logger *slog.Logger) *ManeuverHandler {
	return &ManeuverHandler{
		objects: objects,
		model:   model,
		logger:  logger,
	}
}

// maneuverRequest is the request payload for a maneuver suggestion.
type maneuverRequest struct {
	ObjectID          string  `json:"object_id"`
	DistanceKm        float64 `json:"distance_km"`
	VelocityKmps      float64 `json:"velocity_kmps"`
	Altitude          float64 `json:"altitude"`
	Inclination       float64 `json:"inclination"`
	TimeToConjunction float64 `json:"time_to_conjunction"`
}

// SuggestManeuver assesses the submitted conjunction geometry for a known
// object and returns the model's recommendation.
// POST /api/objects/{id}/suggest_maneuver
func (h *ManeuverHandler) SuggestManeuver(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing object id")
		return
	}

	if _, err := h.objects.ObjectByID(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "object not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: suggest maneuver lookup failed",
			slog.String("object_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to look up object")
		return
	}

	var req maneuverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DistanceKm < 0 || req.TimeToConjunction < 0 {
		writeError(w, http.StatusBadRequest, "distance_km and time_to_conjunction must be non-negative")
		return
	}

	assessment := h.model.Assess(risk.Features{
		DistanceKm:        req.DistanceKm,
		VelocityKmps:      req.VelocityKmps,
		Altitude:          req.Altitude,
		Inclination:       req.Inclination,
		TimeToConjunction: req.TimeToConjunction,
	})

	writeJSON(w, http.StatusOK, assessment)
}
