package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/astrosignal/astroalert/internal/blob/s3"
	"github.com/astrosignal/astroalert/internal/cache/redis"
	"github.com/astrosignal/astroalert/internal/catalog"
	"github.com/astrosignal/astroalert/internal/config"
	"github.com/astrosignal/astroalert/internal/domain"
	"github.com/astrosignal/astroalert/internal/engine"
	"github.com/astrosignal/astroalert/internal/notify"
	"github.com/astrosignal/astroalert/internal/risk"
	"github.com/astrosignal/astroalert/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
// Optional backends (Redis, Postgres, S3, notifications) are nil when
// disabled in the configuration.
type Dependencies struct {
	Engine *engine.Engine
	Model  *risk.Model

	// Redis
	SignalBus   domain.SignalBus
	RateLimiter domain.RateLimiter

	// Postgres
	AlertStore domain.AlertStore

	// Blob storage
	BlobWriter domain.BlobWriter
	Archiver   *s3blob.Archiver

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Engine ---
	seeds := make([]catalog.Seed, 0, len(cfg.Catalog.Objects))
	for _, o := range cfg.Catalog.Objects {
		seeds = append(seeds, catalog.Seed{
			ID:             o.ID,
			Name:           o.Name,
			Kind:           domain.ObjectKind(o.Kind),
			OrbitClass:     domain.OrbitClass(o.OrbitClass),
			AltitudeKm:     o.AltitudeKm,
			InclinationDeg: o.InclinationDeg,
			SpeedKmps:      o.SpeedKmps,
		})
	}
	deps.Engine = engine.New(engine.Config{
		Seeds:             seeds,
		StepSeconds:       cfg.Simulation.StepSeconds,
		PerturbationSigma: cfg.Simulation.PerturbationSigma,
		AlertLogCap:       cfg.Simulation.AlertLogCap,
		AlertCooldown:     cfg.Simulation.AlertCooldown.Duration,
	}, logger)

	deps.Model = risk.NewModel()

	// --- Redis (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.SignalBus = redis.NewSignalBus(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- PostgreSQL (optional) ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.AlertStore = postgres.NewAlertStore(pgClient.Pool())
	}

	// --- S3 (optional; archival needs the alert store) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		if deps.AlertStore != nil {
			deps.Archiver = s3blob.NewArchiver(deps.BlobWriter, deps.AlertStore, logger)
		}
	}

	// --- Notifications (optional) ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	return deps, cleanup, nil
}
