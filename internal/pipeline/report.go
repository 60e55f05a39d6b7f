// Package pipeline wires the loaders, matcher, margin model, scoring engine
// and stores into the two runnable flows: report and update.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/ingest"
	"github.com/sneakarb/sneakarb/internal/margin"
	"github.com/sneakarb/sneakarb/internal/matcher"
	"github.com/sneakarb/sneakarb/internal/notify"
	"github.com/sneakarb/sneakarb/internal/report"
	"github.com/sneakarb/sneakarb/internal/scoring"
)

// ReportArchiver uploads a rendered report to cold storage.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, strategy string, startedAt time.Time, html []byte) (string, error)
}

// ReportConfig locates the snapshot files and names the run parameters.
type ReportConfig struct {
	StockXPath      string
	FlightClubPath  string
	DuPath          string
	TransactionsDir string
	Strategy        string
	OutputPath      string
}

// ReportPipeline runs one full report pass: load, match, price, score,
// render, persist.
type ReportPipeline struct {
	cfg      ReportConfig
	matcher  *matcher.Matcher
	model    *margin.Model
	registry *scoring.Registry
	builder  *report.Builder
	limits   report.Thresholds

	// Optional sinks; nil disables the step.
	store    domain.OpportunityStore
	archiver ReportArchiver
	notifier *notify.Notifier

	logger *slog.Logger
	now    func() time.Time
}

// NewReportPipeline creates a ReportPipeline. store, archiver and notifier
// may be nil.
func NewReportPipeline(
	cfg ReportConfig,
	m *matcher.Matcher,
	model *margin.Model,
	registry *scoring.Registry,
	limits report.Thresholds,
	store domain.OpportunityStore,
	archiver ReportArchiver,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *ReportPipeline {
	return &ReportPipeline{
		cfg:      cfg,
		matcher:  m,
		model:    model,
		registry: registry,
		builder:  report.NewBuilder(limits, logger),
		limits:   limits,
		store:    store,
		archiver: archiver,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "report_pipeline")),
		now:      time.Now,
	}
}

// Run executes one report pass. Any source failing to load aborts the run;
// downstream per-entry problems only drop the affected entries.
func (p *ReportPipeline) Run(ctx context.Context) error {
	startedAt := p.now()
	observedAt := ingest.ObservationTimeFromPath(p.cfg.DuPath)

	strategy, err := p.registry.Get(p.cfg.Strategy)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	sources, err := p.loadSources(ctx)
	if err != nil {
		return err
	}

	entries, matchCount := p.matcher.Match(sources)
	annotated := p.model.Annotate(ctx, entries, observedAt)
	scoring.Annotate(annotated, strategy)
	ranked := scoring.RankAll(annotated)

	run := domain.RunRecord{
		ID:           uuid.NewString(),
		Strategy:     strategy.Name(),
		StartedAt:    startedAt,
		TotalMatches: matchCount,
		MinRate:      p.limits.MinCrossingRate,
		MinMargin:    p.limits.MinCrossingMargin,
	}

	rep := p.builder.Build(ranked, report.RunInfo{
		Strategy:     strategy.Name(),
		ObservedAt:   observedAt,
		StartedAt:    startedAt,
		TotalMatches: matchCount,
	})

	var buf bytes.Buffer
	if err := rep.Render(&buf); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	html := buf.Bytes()

	if p.cfg.OutputPath != "" {
		if err := os.WriteFile(p.cfg.OutputPath, html, 0o644); err != nil {
			return fmt.Errorf("pipeline: write report %s: %w", p.cfg.OutputPath, err)
		}
		p.logger.Info("report written", slog.String("path", p.cfg.OutputPath))
	}

	if p.store != nil {
		if err := p.store.SaveRun(ctx, run, rep.Entries); err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
	}

	if p.archiver != nil {
		key, err := p.archiver.ArchiveReport(ctx, strategy.Name(), startedAt, html)
		if err != nil {
			p.logger.Error("report archive failed", slog.String("error", err.Error()))
		} else {
			p.logger.Info("report archived", slog.String("key", key))
		}
	}

	if p.notifier != nil {
		event := notify.EventReport
		title := fmt.Sprintf("sneakarb: %d opportunity(s) (%s)", len(rep.Entries), strategy.Name())
		body := string(html)
		if len(rep.Entries) == 0 {
			event = notify.EventNoMatches
			title = "sneakarb: no opportunities found"
			var text bytes.Buffer
			if terr := rep.RenderText(&text); terr == nil {
				body = text.String()
			}
		}
		if err := p.notifier.Notify(ctx, event, title, body); err != nil {
			p.logger.Error("notification failed", slog.String("error", err.Error()))
		}
	}

	p.logger.Info("report run complete",
		slog.String("run_id", run.ID),
		slog.Int("opportunities", len(rep.Entries)),
		slog.Duration("elapsed", p.now().Sub(startedAt)))
	return nil
}

// loadSources loads the three venue snapshots concurrently. Each load is
// independent, so a failure in one does not wait on the others.
func (p *ReportPipeline) loadSources(ctx context.Context) (matcher.Sources, error) {
	var sources matcher.Sources

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		sx, err := ingest.LoadStockX(p.cfg.StockXPath, p.logger)
		if err != nil {
			return err
		}
		if p.cfg.TransactionsDir != "" {
			ingest.AnnotateTransactions(p.cfg.TransactionsDir, sx, p.logger)
		}
		sources.StockX = sx
		return nil
	})
	g.Go(func() error {
		fc, err := ingest.LoadFlightClub(p.cfg.FlightClubPath)
		if err != nil {
			return err
		}
		sources.FlightClub = fc
		return nil
	})
	g.Go(func() error {
		du, err := ingest.LoadDu(p.cfg.DuPath)
		if err != nil {
			return err
		}
		sources.Du = du
		return nil
	})

	if err := g.Wait(); err != nil {
		return matcher.Sources{}, fmt.Errorf("pipeline: load sources: %w", err)
	}
	return sources, nil
}
