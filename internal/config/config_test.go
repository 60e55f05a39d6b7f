package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMergesFileOverDefaults(t *testing.T) {
	blob := `
mode = "update"
log_level = "debug"

[sources]
du_path = "/data/du.20190728-110632.txt"

[run]
strategy = "multi"
workers = 8

[fees]
bid_commission = 10.0

[schedule]
min_interval = "6h"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(blob), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "update", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "multi", cfg.Run.Strategy)
	assert.Equal(t, 8, cfg.Run.Workers)
	assert.Equal(t, 10.0, cfg.Fees.BidCommission)
	assert.Equal(t, 6*time.Hour, cfg.Schedule.MinInterval.Duration)

	// Untouched sections keep their defaults.
	assert.Equal(t, 0.2, cfg.Fees.FlightClub.CommissionRate)
	assert.Equal(t, "data/timeseries", cfg.TimeSeries.Dir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SNEAKARB_MODE", "update")
	t.Setenv("SNEAKARB_RUN_STRATEGY", "du_volume_volatility")
	t.Setenv("SNEAKARB_REDIS_ENABLED", "true")
	t.Setenv("SNEAKARB_SCHEDULE_MIN_INTERVAL", "90m")
	t.Setenv("SNEAKARB_NOTIFY_TO", "a@example.com, b@example.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "update", cfg.Mode)
	assert.Equal(t, "du_volume_volatility", cfg.Run.Strategy)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 90*time.Minute, cfg.Schedule.MinInterval.Duration)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Notify.To)
}

func TestValidateReportMode(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "report"
	cfg.Sources.StockXPath = "sx.txt"
	cfg.Sources.FlightClubPath = "fc.txt"
	cfg.Sources.DuPath = "du.txt"
	require.NoError(t, cfg.Validate())

	cfg.Sources.FlightClubPath = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flightclub_path")
}

func TestValidateRejectsUnknownEnums(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "serve"
	cfg.Run.Strategy = "alchemy"
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mode "serve"`)
	assert.Contains(t, err.Error(), `unknown strategy "alchemy"`)
	assert.Contains(t, err.Error(), `unknown log_level "loud"`)
}

func TestValidateFeeBounds(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "update"
	cfg.Fees.Du.CommissionRate = 0.9
	cfg.Fees.Du.TechServiceRate = 0.2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "du percentage rates")
}
