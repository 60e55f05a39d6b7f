package app

import (
	"context"
	"fmt"

	"github.com/sneakarb/sneakarb/internal/margin"
	"github.com/sneakarb/sneakarb/internal/matcher"
	"github.com/sneakarb/sneakarb/internal/pipeline"
	"github.com/sneakarb/sneakarb/internal/schedule"
	"github.com/sneakarb/sneakarb/internal/scoring"
	"github.com/sneakarb/sneakarb/internal/sizing"
)

// ReportMode runs one full report pass over the configured snapshots.
func (a *App) ReportMode(ctx context.Context, deps *Dependencies) error {
	m := matcher.New(sizing.NewNormalizer(), a.logger)
	model := margin.NewModel(a.cfg.Fees, deps.Converter, a.logger)
	registry := scoring.NewRegistry(a.cfg.Scoring)

	var archiver pipeline.ReportArchiver
	if deps.Archiver != nil {
		archiver = deps.Archiver
	}

	p := pipeline.NewReportPipeline(
		pipeline.ReportConfig{
			StockXPath:      a.cfg.Sources.StockXPath,
			FlightClubPath:  a.cfg.Sources.FlightClubPath,
			DuPath:          a.cfg.Sources.DuPath,
			TransactionsDir: a.cfg.Sources.TransactionsDir,
			Strategy:        a.cfg.Run.Strategy,
			OutputPath:      a.cfg.Run.OutputPath,
		},
		m, model, registry, a.cfg.Report,
		deps.OpportunityStore, archiver, deps.Notifier,
		a.logger,
	)
	return p.Run(ctx)
}

// UpdateMode folds the configured snapshot into the time-series store.
func (a *App) UpdateMode(ctx context.Context, deps *Dependencies) error {
	tracker, err := schedule.NewTracker(a.cfg.Schedule.Path, a.cfg.Schedule.MinInterval.Duration)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	var archiver pipeline.SnapshotArchiver
	if deps.Archiver != nil {
		archiver = deps.Archiver
	}

	p := pipeline.NewUpdatePipeline(
		pipeline.UpdateConfig{
			DuPath:  a.cfg.Sources.DuPath,
			Workers: a.cfg.Run.Workers,
		},
		deps.TimeSeriesStore, tracker, archiver, deps.Notifier,
		a.logger,
	)
	return p.Run(ctx)
}
