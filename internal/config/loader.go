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
// built-in defaults, applies SNEAKARB_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
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

// applyEnvOverrides reads well-known SNEAKARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Mode, "SNEAKARB_MODE")
	setStr(&cfg.LogLevel, "SNEAKARB_LOG_LEVEL")

	setStr(&cfg.Sources.StockXPath, "SNEAKARB_SOURCES_STOCKX_PATH")
	setStr(&cfg.Sources.FlightClubPath, "SNEAKARB_SOURCES_FLIGHTCLUB_PATH")
	setStr(&cfg.Sources.DuPath, "SNEAKARB_SOURCES_DU_PATH")
	setStr(&cfg.Sources.TransactionsDir, "SNEAKARB_SOURCES_TRANSACTIONS_DIR")

	setStr(&cfg.Run.Strategy, "SNEAKARB_RUN_STRATEGY")
	setStr(&cfg.Run.OutputPath, "SNEAKARB_RUN_OUTPUT_PATH")
	setInt(&cfg.Run.Workers, "SNEAKARB_RUN_WORKERS")

	setFloat64(&cfg.Report.MinCrossingRate, "SNEAKARB_REPORT_MIN_CROSSING_RATE")
	setFloat64(&cfg.Report.MinCrossingMargin, "SNEAKARB_REPORT_MIN_CROSSING_MARGIN")
	setInt(&cfg.Report.Limit, "SNEAKARB_REPORT_LIMIT")

	setStr(&cfg.FX.BaseURL, "SNEAKARB_FX_BASE_URL")
	setDuration(&cfg.FX.Timeout, "SNEAKARB_FX_TIMEOUT")

	setStr(&cfg.TimeSeries.Dir, "SNEAKARB_TIMESERIES_DIR")

	setStr(&cfg.Schedule.Path, "SNEAKARB_SCHEDULE_PATH")
	setDuration(&cfg.Schedule.MinInterval, "SNEAKARB_SCHEDULE_MIN_INTERVAL")

	setBool(&cfg.Postgres.Enabled, "SNEAKARB_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "SNEAKARB_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SNEAKARB_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SNEAKARB_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SNEAKARB_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SNEAKARB_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SNEAKARB_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SNEAKARB_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SNEAKARB_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SNEAKARB_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SNEAKARB_POSTGRES_RUN_MIGRATIONS")

	setBool(&cfg.Redis.Enabled, "SNEAKARB_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SNEAKARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SNEAKARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SNEAKARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SNEAKARB_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SNEAKARB_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SNEAKARB_REDIS_TLS_ENABLED")

	setBool(&cfg.S3.Enabled, "SNEAKARB_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SNEAKARB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SNEAKARB_S3_REGION")
	setStr(&cfg.S3.Bucket, "SNEAKARB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SNEAKARB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SNEAKARB_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SNEAKARB_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SNEAKARB_S3_FORCE_PATH_STYLE")

	setStr(&cfg.Notify.SMTPHost, "SNEAKARB_NOTIFY_SMTP_HOST")
	setInt(&cfg.Notify.SMTPPort, "SNEAKARB_NOTIFY_SMTP_PORT")
	setStr(&cfg.Notify.SMTPUsername, "SNEAKARB_NOTIFY_SMTP_USERNAME")
	setStr(&cfg.Notify.SMTPPassword, "SNEAKARB_NOTIFY_SMTP_PASSWORD")
	setStr(&cfg.Notify.From, "SNEAKARB_NOTIFY_FROM")
	setStringSlice(&cfg.Notify.To, "SNEAKARB_NOTIFY_TO")
	setStringSlice(&cfg.Notify.Events, "SNEAKARB_NOTIFY_EVENTS")
}

// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.

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
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
