// Package config defines the top-level configuration for the conjunction
// engine and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ASTRO_* environment variables.
type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Server     ServerConfig     `toml:"server"`
	Redis      RedisConfig      `toml:"redis"`
	Postgres   PostgresConfig   `toml:"postgres"`
	S3         S3Config         `toml:"s3"`
	Archive    ArchiveConfig    `toml:"archive"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// SimulationConfig holds the propagation and alerting parameters.
type SimulationConfig struct {
	// StepSeconds is the simulated time advanced per tick, in seconds.
	StepSeconds float64 `toml:"step_seconds"`
	// PerturbationSigma is the standard deviation of the per-tick random
	// walk applied to each object's polar angle.
	PerturbationSigma float64  `toml:"perturbation_sigma"`
	MinTickInterval   duration `toml:"min_tick_interval"`
	MaxTickInterval   duration `toml:"max_tick_interval"`
	AlertCooldown     duration `toml:"alert_cooldown"`
	AlertLogCap       int      `toml:"alert_log_cap"`
}

// CatalogConfig lists the objects tracked by the simulation.
type CatalogConfig struct {
	Objects []SeedConfig `toml:"objects"`
}

// SeedConfig describes one tracked object. Initial position is randomized at
// startup, so only the orbital parameters are configured.
type SeedConfig struct {
	ID             string  `toml:"id"`
	Name           string  `toml:"name"`
	Kind           string  `toml:"kind"`
	OrbitClass     string  `toml:"orbit_class"`
	AltitudeKm     float64 `toml:"altitude_km"`
	InclinationDeg float64 `toml:"inclination_deg"`
	SpeedKmps      float64 `toml:"speed_kmps"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled          bool     `toml:"enabled"`
	Port             int      `toml:"port"`
	CORSOrigins      []string `toml:"cors_origins"`
	RateLimitEnabled bool     `toml:"rate_limit_enabled"`
	RateLimitMax     int      `toml:"rate_limit_max"`
	RateLimitWindow  duration `toml:"rate_limit_window"`
}

// RedisConfig holds Redis connection parameters. Redis is optional; when
// disabled the pub/sub mirror and the rate limiter are simply not wired.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters for the optional
// durable alert store.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters for alert archival.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArchiveConfig controls when aged alert rows are moved from Postgres to
// blob storage. It only takes effect when both Postgres and S3 are enabled.
type ArchiveConfig struct {
	RetentionDays int      `toml:"retention_days"`
	Interval      duration `toml:"interval"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5s", "10m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5s" or "10m".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Simulation: SimulationConfig{
			StepSeconds:       60.0,
			PerturbationSigma: 0.001,
			MinTickInterval:   duration{2 * time.Second},
			MaxTickInterval:   duration{5 * time.Second},
			AlertCooldown:     duration{10 * time.Second},
			AlertLogCap:       100,
		},
		Catalog: CatalogConfig{
			Objects: []SeedConfig{
				{
					ID:             "25544",
					Name:           "ISS (ZARYA)",
					Kind:           "satellite",
					OrbitClass:     "LEO",
					AltitudeKm:     408.0,
					InclinationDeg: 51.6,
					SpeedKmps:      7.66,
				},
				{
					ID:             "48274",
					Name:           "COSMOS 2251 DEB",
					Kind:           "debris",
					OrbitClass:     "LEO",
					AltitudeKm:     385.0,
					InclinationDeg: 74.2,
					SpeedKmps:      7.7,
				},
				{
					ID:             "33692",
					Name:           "FENGYUN 1C DEB",
					Kind:           "debris",
					OrbitClass:     "LEO",
					AltitudeKm:     420.0,
					InclinationDeg: 98.5,
					SpeedKmps:      7.62,
				},
			},
		},
		Server: ServerConfig{
			Enabled:          true,
			Port:             8000,
			CORSOrigins:      []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimitEnabled: false,
			RateLimitMax:     60,
			RateLimitWindow:  duration{time.Minute},
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "astroalert",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "astroalert-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Archive: ArchiveConfig{
			RetentionDays: 90,
			Interval:      duration{24 * time.Hour},
		},
		Notify: NotifyConfig{
			Events: []string{"alert.high"},
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve":    true,
	"headless": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validKinds enumerates the accepted seed object kinds.
var validKinds = map[string]bool{
	"satellite": true,
	"debris":    true,
}

// validOrbitClasses enumerates the accepted seed orbit classes.
var validOrbitClasses = map[string]bool{
	"LEO": true,
	"MEO": true,
	"GEO": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, headless)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Simulation
	if c.Simulation.StepSeconds <= 0 {
		errs = append(errs, "simulation: step_seconds must be > 0")
	}
	if c.Simulation.PerturbationSigma < 0 {
		errs = append(errs, "simulation: perturbation_sigma must be >= 0")
	}
	if c.Simulation.MinTickInterval.Duration <= 0 {
		errs = append(errs, "simulation: min_tick_interval must be > 0")
	}
	if c.Simulation.MaxTickInterval.Duration < c.Simulation.MinTickInterval.Duration {
		errs = append(errs, "simulation: max_tick_interval must be >= min_tick_interval")
	}
	if c.Simulation.AlertCooldown.Duration <= 0 {
		errs = append(errs, "simulation: alert_cooldown must be > 0")
	}
	if c.Simulation.AlertLogCap < 1 {
		errs = append(errs, "simulation: alert_log_cap must be >= 1")
	}

	// Catalog
	if len(c.Catalog.Objects) == 0 {
		errs = append(errs, "catalog: at least one object must be configured")
	}
	seen := make(map[string]bool, len(c.Catalog.Objects))
	for i, o := range c.Catalog.Objects {
		where := fmt.Sprintf("catalog.objects[%d]", i)
		if o.ID == "" {
			errs = append(errs, where+": id must not be empty")
		} else if seen[o.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate id %q", where, o.ID))
		}
		seen[o.ID] = true
		if o.Name == "" {
			errs = append(errs, where+": name must not be empty")
		}
		if !validKinds[o.Kind] {
			errs = append(errs, fmt.Sprintf("%s: unknown kind %q (valid: satellite, debris)", where, o.Kind))
		}
		if !validOrbitClasses[o.OrbitClass] {
			errs = append(errs, fmt.Sprintf("%s: unknown orbit_class %q (valid: LEO, MEO, GEO)", where, o.OrbitClass))
		}
		if o.AltitudeKm <= 0 {
			errs = append(errs, where+": altitude_km must be > 0")
		}
		if o.SpeedKmps <= 0 {
			errs = append(errs, where+": speed_kmps must be > 0")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimitEnabled {
			if !c.Redis.Enabled {
				errs = append(errs, "server: rate_limit_enabled requires redis.enabled")
			}
			if c.Server.RateLimitMax < 1 {
				errs = append(errs, "server: rate_limit_max must be >= 1")
			}
			if c.Server.RateLimitWindow.Duration <= 0 {
				errs = append(errs, "server: rate_limit_window must be > 0")
			}
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if !c.Postgres.Enabled {
			errs = append(errs, "s3: archival requires postgres.enabled")
		}
	}

	// Archive
	if c.S3.Enabled {
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be > 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
