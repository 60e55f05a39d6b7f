package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/sneakarb/sneakarb/internal/blob/s3"
	"github.com/sneakarb/sneakarb/internal/cache/redis"
	"github.com/sneakarb/sneakarb/internal/config"
	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/fx"
	"github.com/sneakarb/sneakarb/internal/notify"
	"github.com/sneakarb/sneakarb/internal/platform/fxrates"
	"github.com/sneakarb/sneakarb/internal/store/postgres"
	"github.com/sneakarb/sneakarb/internal/timeseries"
)

// Dependencies bundles the concrete implementations the modes operate on.
// Optional members are nil when their backing service is not configured.
type Dependencies struct {
	Converter        *fx.Converter
	TimeSeriesStore  domain.TimeSeriesStore
	OpportunityStore domain.OpportunityStore
	LockManager      domain.LockManager
	Archiver         *s3blob.Archiver
	Notifier         *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that must
// be called on shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}
	mode := strings.ToLower(cfg.Mode)

	if mode == "report" {
		rates := fxrates.New(cfg.FX.BaseURL, cfg.FX.Timeout.Duration)
		deps.Converter = fx.NewConverter(rates)
	}

	if cfg.Postgres.Enabled && mode == "report" {
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
		deps.OpportunityStore = postgres.NewOpportunityStore(pgClient.Pool())
	}

	if cfg.Redis.Enabled {
		rdb, err := redis.New(ctx, redis.ClientConfig{
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
		closers = append(closers, func() { _ = rdb.Close() })
		deps.LockManager = redis.NewLockManager(rdb)
	}

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
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client))
	}

	var tsOpts []timeseries.Option
	if deps.LockManager != nil {
		tsOpts = append(tsOpts, timeseries.WithLockManager(deps.LockManager))
	}
	deps.TimeSeriesStore = timeseries.New(cfg.TimeSeries.Dir, logger, tsOpts...)

	if cfg.Notify.SMTPHost != "" {
		sender := notify.NewEmailSender(
			cfg.Notify.SMTPHost, cfg.Notify.SMTPPort,
			cfg.Notify.SMTPUsername, cfg.Notify.SMTPPassword,
			cfg.Notify.From, cfg.Notify.To,
		)
		deps.Notifier = notify.NewNotifier([]notify.Sender{sender}, cfg.Notify.Events, logger)
	}

	return deps, cleanup, nil
}
