package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/astrosignal/astroalert/internal/domain"
)

// Redis Pub/Sub channels for out-of-process consumers.
const (
	channelUpdates = "orbits.updates"
	channelAlerts  = "orbits.alerts"
)

// busSink mirrors every tick snapshot and every emitted alert to Redis
// Pub/Sub. Publish failures are logged and dropped; the mirror is best
// effort and must never stall the tick.
type busSink struct {
	bus    domain.SignalBus
	logger *slog.Logger
}

func newBusSink(bus domain.SignalBus, logger *slog.Logger) *busSink {
	return &busSink{
		bus:    bus,
		logger: logger.With(slog.String("component", "bus_sink")),
	}
}

// updateEnvelope matches the WebSocket update payload so out-of-process
// consumers see the same shape as direct subscribers.
type updateEnvelope struct {
	Type    string               `json:"type"`
	Objects []domain.SpaceObject `json:"objects"`
	Alerts  []domain.Alert       `json:"alerts"`
}

func (s *busSink) PushUpdate(ctx context.Context, snap domain.Snapshot) {
	payload, err := json.Marshal(updateEnvelope{
		Type:    "update",
		Objects: snap.Objects,
		Alerts:  snap.Alerts,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal update failed", slog.String("error", err.Error()))
		return
	}
	if err := s.bus.Publish(ctx, channelUpdates, payload); err != nil {
		s.logger.WarnContext(ctx, "mirror update failed", slog.String("error", err.Error()))
	}
}

func (s *busSink) HandleAlert(ctx context.Context, alert domain.Alert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal alert failed", slog.String("error", err.Error()))
		return
	}
	if err := s.bus.Publish(ctx, channelAlerts, payload); err != nil {
		s.logger.WarnContext(ctx, "mirror alert failed", slog.String("error", err.Error()))
	}
}

// storeSink writes each emitted alert through to the durable store. The
// in-memory log is authoritative for API reads; a failed insert is logged
// and the alert is simply absent from the archive.
type storeSink struct {
	store  domain.AlertStore
	logger *slog.Logger
}

func newStoreSink(store domain.AlertStore, logger *slog.Logger) *storeSink {
	return &storeSink{
		store:  store,
		logger: logger.With(slog.String("component", "store_sink")),
	}
}

func (s *storeSink) HandleAlert(ctx context.Context, alert domain.Alert) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.store.Insert(ctx, alert); err != nil {
		s.logger.ErrorContext(ctx, "persist alert failed",
			slog.Int64("alert_id", alert.ID),
			slog.String("error", err.Error()),
		)
	}
}
