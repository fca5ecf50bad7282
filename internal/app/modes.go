package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/astrosignal/astroalert/internal/domain"
	"github.com/astrosignal/astroalert/internal/notify"
	"github.com/astrosignal/astroalert/internal/scheduler"
	"github.com/astrosignal/astroalert/internal/server"
	"github.com/astrosignal/astroalert/internal/server/handler"
	"github.com/astrosignal/astroalert/internal/server/ws"
)

// ServeMode runs the update scheduler together with the HTTP + WebSocket API.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(deps.Engine, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	sched := a.buildScheduler(deps)
	sched.AddSink(hub)
	g.Go(func() error {
		return sched.Run(ctx)
	})

	if deps.Archiver != nil {
		g.Go(func() error {
			return a.runArchiver(ctx, deps)
		})
	}

	if a.cfg.Server.Enabled {
		srv := server.NewServer(server.Config{
			Port:            a.cfg.Server.Port,
			CORSOrigins:     a.cfg.Server.CORSOrigins,
			RateLimiter:     a.rateLimiter(deps),
			RateLimitMax:    a.cfg.Server.RateLimitMax,
			RateLimitWindow: a.cfg.Server.RateLimitWindow.Duration,
		}, server.Handlers{
			Health:   handler.NewHealthHandler(a.logger),
			Objects:  handler.NewObjectHandler(deps.Engine, a.logger),
			Alerts:   handler.NewAlertHandler(deps.Engine, a.logger),
			Update:   handler.NewUpdateHandler(deps.Engine, a.logger),
			Maneuver: handler.NewManeuverHandler(deps.Engine, deps.Model, a.logger),
		}, hub, a.logger)

		g.Go(func() error {
			return srv.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// HeadlessMode runs the update scheduler without the HTTP surface. Ticks
// still reach the Redis mirror, the durable store, and the notification
// channels when those are configured.
func (a *App) HeadlessMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting headless mode")

	g, ctx := errgroup.WithContext(ctx)

	sched := a.buildScheduler(deps)
	g.Go(func() error {
		return sched.Run(ctx)
	})

	if deps.Archiver != nil {
		g.Go(func() error {
			return a.runArchiver(ctx, deps)
		})
	}

	return g.Wait()
}

// buildScheduler creates the tick loop and attaches every optional sink that
// the wired dependencies support.
func (a *App) buildScheduler(deps *Dependencies) *scheduler.Scheduler {
	sched := scheduler.New(deps.Engine, scheduler.Config{
		MinInterval: a.cfg.Simulation.MinTickInterval.Duration,
		MaxInterval: a.cfg.Simulation.MaxTickInterval.Duration,
	}, a.logger)

	if deps.SignalBus != nil {
		mirror := newBusSink(deps.SignalBus, a.logger)
		sched.AddSink(mirror)
		sched.AddAlertSink(mirror)
	}
	if deps.AlertStore != nil {
		sched.AddAlertSink(newStoreSink(deps.AlertStore, a.logger))
	}
	if deps.Notifier != nil {
		sched.AddAlertSink(notify.NewAlertSink(deps.Notifier))
	}

	return sched
}

// rateLimiter returns the wired limiter only when rate limiting is enabled.
func (a *App) rateLimiter(deps *Dependencies) domain.RateLimiter {
	if !a.cfg.Server.RateLimitEnabled {
		return nil
	}
	return deps.RateLimiter
}

// runArchiver periodically moves alert rows older than the retention window
// from the durable store to blob storage.
func (a *App) runArchiver(ctx context.Context, deps *Dependencies) error {
	interval := a.cfg.Archive.Interval.Duration
	retention := time.Duration(a.cfg.Archive.RetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().Add(-retention)
			if _, err := deps.Archiver.ArchiveAlerts(ctx, cutoff); err != nil {
				a.logger.ErrorContext(ctx, "alert archival failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
