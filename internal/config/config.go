// Package config defines the top-level configuration for sneakarb and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sneakarb/sneakarb/internal/margin"
	"github.com/sneakarb/sneakarb/internal/report"
	"github.com/sneakarb/sneakarb/internal/scoring"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SNEAKARB_* environment
// variables.
type Config struct {
	Mode     string `toml:"mode"`
	LogLevel string `toml:"log_level"`

	Sources    SourcesConfig     `toml:"sources"`
	Run        RunConfig         `toml:"run"`
	Fees       margin.Fees       `toml:"fees"`
	Scoring    scoring.Config    `toml:"scoring"`
	Report     report.Thresholds `toml:"report"`
	FX         FXConfig          `toml:"fx"`
	TimeSeries TimeSeriesConfig  `toml:"timeseries"`
	Schedule   ScheduleConfig    `toml:"schedule"`
	Postgres   PostgresConfig    `toml:"postgres"`
	Redis      RedisConfig       `toml:"redis"`
	S3         S3Config          `toml:"s3"`
	Notify     NotifyConfig      `toml:"notify"`
}

// SourcesConfig locates the venue snapshot files.
type SourcesConfig struct {
	StockXPath      string `toml:"stockx_path"`
	FlightClubPath  string `toml:"flightclub_path"`
	DuPath          string `toml:"du_path"`
	TransactionsDir string `toml:"transactions_dir"`
}

// RunConfig holds per-run parameters shared by the modes.
type RunConfig struct {
	Strategy   string `toml:"strategy"`
	OutputPath string `toml:"output_path"`
	Workers    int    `toml:"workers"`
}

// FXConfig holds the rate service endpoint.
type FXConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout duration `toml:"timeout"`
}

// TimeSeriesConfig holds the on-disk history location.
type TimeSeriesConfig struct {
	Dir string `toml:"dir"`
}

// ScheduleConfig holds the last-updated tracker parameters.
type ScheduleConfig struct {
	Path        string   `toml:"path"`
	MinInterval duration `toml:"min_interval"`
}

// PostgresConfig holds PostgreSQL connection parameters. Disabled unless
// enabled is set; the pipelines run fine without run persistence.
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

// RedisConfig holds Redis connection parameters for the cross-process lock
// manager. Optional; without it merges are only serialized in-process.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for report and
// snapshot archival. Optional.
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

// NotifyConfig holds notification channel parameters. Optional.
type NotifyConfig struct {
	SMTPHost     string   `toml:"smtp_host"`
	SMTPPort     int      `toml:"smtp_port"`
	SMTPUsername string   `toml:"smtp_username"`
	SMTPPassword string   `toml:"smtp_password"`
	From         string   `toml:"from"`
	To           []string `toml:"to"`
	Events       []string `toml:"events"`
}

// duration wraps time.Duration for TOML text decoding.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
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
func Defaults() Config {
	return Config{
		Mode:     "report",
		LogLevel: "info",
		Run: RunConfig{
			Strategy:   "naive",
			OutputPath: "report.html",
			Workers:    4,
		},
		Fees:    margin.DefaultFees(),
		Scoring: scoring.DefaultConfig(),
		Report: report.Thresholds{
			MinCrossingRate:   0.0,
			MinCrossingMargin: 0.0,
			Limit:             0,
		},
		FX: FXConfig{
			BaseURL: "http://localhost:8080",
			Timeout: duration{10 * time.Second},
		},
		TimeSeries: TimeSeriesConfig{
			Dir: "data/timeseries",
		},
		Schedule: ScheduleConfig{
			Path:        "data/last_updated.csv",
			MinInterval: duration{12 * time.Hour},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "sneakarb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "sneakarb-data",
			ForcePathStyle: true,
		},
		Notify: NotifyConfig{
			SMTPPort: 587,
		},
	}
}

var validModes = map[string]bool{
	"report": true,
	"update": true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validStrategies = map[string]bool{
	"naive":                true,
	"multi":                true,
	"du_volume_volatility": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: report, update)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if !validStrategies[c.Run.Strategy] {
		errs = append(errs, fmt.Sprintf("unknown strategy %q (valid: naive, multi, du_volume_volatility)", c.Run.Strategy))
	}
	if c.Run.Workers < 1 {
		errs = append(errs, "run: workers must be >= 1")
	}

	switch strings.ToLower(c.Mode) {
	case "report":
		if c.Sources.StockXPath == "" {
			errs = append(errs, "sources: stockx_path must not be empty in report mode")
		}
		if c.Sources.FlightClubPath == "" {
			errs = append(errs, "sources: flightclub_path must not be empty in report mode")
		}
		if c.Sources.DuPath == "" {
			errs = append(errs, "sources: du_path must not be empty in report mode")
		}
		if c.FX.BaseURL == "" {
			errs = append(errs, "fx: base_url must not be empty in report mode")
		}
	case "update":
		if c.Sources.DuPath == "" {
			errs = append(errs, "sources: du_path must not be empty in update mode")
		}
		if c.TimeSeries.Dir == "" {
			errs = append(errs, "timeseries: dir must not be empty in update mode")
		}
		if c.Schedule.Path == "" {
			errs = append(errs, "schedule: path must not be empty in update mode")
		}
	}

	if c.Fees.FlightClub.CommissionRate < 0 || c.Fees.FlightClub.CommissionRate >= 1 {
		errs = append(errs, "fees: flightclub commission_rate must be in [0, 1)")
	}
	if pct := c.Fees.Du.CommissionRate + c.Fees.Du.TechServiceRate + c.Fees.Du.TransferRate; pct < 0 || pct >= 1 {
		errs = append(errs, "fees: du percentage rates must sum to [0, 1)")
	}
	if c.Fees.TickSize <= 0 {
		errs = append(errs, "fees: tick_size must be positive")
	}

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
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty when enabled")
	}
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}
	if c.Notify.SMTPHost != "" {
		if c.Notify.From == "" {
			errs = append(errs, "notify: from must not be empty when smtp_host is set")
		}
		if len(c.Notify.To) == 0 {
			errs = append(errs, "notify: to must not be empty when smtp_host is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
