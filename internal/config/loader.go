package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ASTRO_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. An empty path skips the
// file and uses defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ASTRO_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Simulation ──
	setFloat64(&cfg.Simulation.StepSeconds, "ASTRO_SIMULATION_STEP_SECONDS")
	setFloat64(&cfg.Simulation.PerturbationSigma, "ASTRO_SIMULATION_PERTURBATION_SIGMA")
	setDuration(&cfg.Simulation.MinTickInterval, "ASTRO_SIMULATION_MIN_TICK_INTERVAL")
	setDuration(&cfg.Simulation.MaxTickInterval, "ASTRO_SIMULATION_MAX_TICK_INTERVAL")
	setDuration(&cfg.Simulation.AlertCooldown, "ASTRO_SIMULATION_ALERT_COOLDOWN")
	setInt(&cfg.Simulation.AlertLogCap, "ASTRO_SIMULATION_ALERT_LOG_CAP")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ASTRO_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ASTRO_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ASTRO_SERVER_CORS_ORIGINS")
	setBool(&cfg.Server.RateLimitEnabled, "ASTRO_SERVER_RATE_LIMIT_ENABLED")
	setInt(&cfg.Server.RateLimitMax, "ASTRO_SERVER_RATE_LIMIT_MAX")
	setDuration(&cfg.Server.RateLimitWindow, "ASTRO_SERVER_RATE_LIMIT_WINDOW")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "ASTRO_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "ASTRO_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ASTRO_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ASTRO_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ASTRO_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ASTRO_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ASTRO_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "ASTRO_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "ASTRO_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ASTRO_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ASTRO_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ASTRO_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ASTRO_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ASTRO_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ASTRO_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ASTRO_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ASTRO_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ASTRO_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "ASTRO_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "ASTRO_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ASTRO_S3_REGION")
	setStr(&cfg.S3.Bucket, "ASTRO_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "ASTRO_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ASTRO_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ASTRO_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ASTRO_S3_FORCE_PATH_STYLE")

	// ── Archive ──
	setInt(&cfg.Archive.RetentionDays, "ASTRO_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "ASTRO_ARCHIVE_INTERVAL")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ASTRO_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ASTRO_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ASTRO_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "ASTRO_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "ASTRO_MODE")
	setStr(&cfg.LogLevel, "ASTRO_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
