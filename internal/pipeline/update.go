package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/ingest"
	"github.com/sneakarb/sneakarb/internal/notify"
	"github.com/sneakarb/sneakarb/internal/schedule"
)

// SnapshotArchiver uploads a raw venue snapshot file to cold storage.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, venue domain.Venue, observedAt time.Time, path string) (string, error)
}

// UpdateConfig locates the snapshot and bounds the merge fan-out.
type UpdateConfig struct {
	DuPath  string
	Workers int
}

// UpdatePipeline folds one venue snapshot into the time-series store. Styles
// merge independently; a failed style stays due in the tracker and is retried
// on the next run.
type UpdatePipeline struct {
	cfg     UpdateConfig
	store   domain.TimeSeriesStore
	tracker *schedule.Tracker

	// Optional sinks; nil disables the step.
	archiver SnapshotArchiver
	notifier *notify.Notifier

	logger *slog.Logger
}

// NewUpdatePipeline creates an UpdatePipeline. archiver and notifier may be
// nil.
func NewUpdatePipeline(
	cfg UpdateConfig,
	store domain.TimeSeriesStore,
	tracker *schedule.Tracker,
	archiver SnapshotArchiver,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *UpdatePipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &UpdatePipeline{
		cfg:      cfg,
		store:    store,
		tracker:  tracker,
		archiver: archiver,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "update_pipeline")),
	}
}

// Run merges every due style from the snapshot. The tracker is only marked
// for styles whose merge persisted, then saved regardless of failures so
// successful styles are not re-merged next run.
func (p *UpdatePipeline) Run(ctx context.Context) error {
	observedAt := ingest.ObservationTimeFromPath(p.cfg.DuPath)

	snapshot, err := ingest.LoadDu(p.cfg.DuPath)
	if err != nil {
		return fmt.Errorf("pipeline: load snapshot: %w", err)
	}

	var (
		mu        sync.Mutex
		succeeded []string
		failures  []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	skipped := 0
	for styleID, sizes := range snapshot {
		if !p.tracker.ShouldUpdate(styleID, domain.VenueDu) {
			skipped++
			continue
		}

		g.Go(func() error {
			if err := p.mergeStyle(gctx, observedAt, styleID, sizes); err != nil {
				p.logger.Error("style merge failed",
					slog.String("style_id", styleID),
					slog.String("error", err.Error()))
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			succeeded = append(succeeded, styleID)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, styleID := range succeeded {
		p.tracker.MarkUpdated(styleID, domain.VenueDu)
	}
	if err := p.tracker.Save(); err != nil {
		failures = append(failures, err)
	}

	if p.archiver != nil {
		key, err := p.archiver.ArchiveSnapshot(ctx, domain.VenueDu, observedAt, p.cfg.DuPath)
		if err != nil {
			p.logger.Error("snapshot archive failed", slog.String("error", err.Error()))
		} else {
			p.logger.Info("snapshot archived", slog.String("key", key))
		}
	}

	p.logger.Info("update run complete",
		slog.Int("merged", len(succeeded)),
		slog.Int("skipped", skipped),
		slog.Int("failed", len(failures)))

	if len(failures) > 0 {
		err := errors.Join(failures...)
		if p.notifier != nil {
			title := fmt.Sprintf("sneakarb: %d style(s) failed to update", len(failures))
			if nerr := p.notifier.Notify(ctx, notify.EventUpdateFailed, title, err.Error()); nerr != nil {
				p.logger.Error("notification failed", slog.String("error", nerr.Error()))
			}
		}
		return fmt.Errorf("pipeline: update: %w", err)
	}
	return nil
}

func (p *UpdatePipeline) mergeStyle(ctx context.Context, observedAt time.Time, styleID string, sizes map[string]*domain.DuListing) error {
	prices := make(map[string]domain.PriceSnapshot, len(sizes))
	transactions := make(map[string][]domain.Transaction, len(sizes))

	for size, rec := range sizes {
		price := rec.PriceCNY
		prices[size] = domain.PriceSnapshot{ListPrice: &price}
		if len(rec.Transactions) > 0 {
			transactions[size] = rec.Transactions
		}
	}

	return p.store.Merge(ctx, domain.VenueDu, observedAt, styleID, prices, transactions)
}
