package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// SaveRun persists the run header and its entries in one transaction, so a
// run is either recorded in full or not at all.
func (s *OpportunityStore) SaveRun(ctx context.Context, run domain.RunRecord, entries []*domain.MatchedEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin run tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertRun = `
		INSERT INTO runs (id, strategy, started_at, total_matches, min_rate, min_margin)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.Exec(ctx, insertRun,
		run.ID, run.Strategy, run.StartedAt, run.TotalMatches, run.MinRate, run.MinMargin,
	); err != nil {
		return fmt.Errorf("postgres: insert run %s: %w", run.ID, err)
	}

	const insertOpp = `
		INSERT INTO opportunities (
			id, run_id, style_id, size, name, action,
			crossing_margin, crossing_margin_rate,
			adding_margin, adding_margin_rate,
			mid_margin, mid_margin_rate,
			du_target_sell_cny, score, volume, volume_approximated, observed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8,
			$9, $10,
			$11, $12,
			$13, $14, $15, $16, $17
		)`
	for _, e := range entries {
		if _, err := tx.Exec(ctx, insertOpp,
			uuid.NewString(), run.ID, e.StyleID, e.Size, e.Name, e.Action,
			e.CrossingMargin, e.CrossingMarginRate,
			e.AddingMargin, e.AddingMarginRate,
			e.MidMargin, e.MidMarginRate,
			e.DuTargetSellCNY, e.Score, e.Volume, e.VolumeApproximated, e.ObservedAt,
		); err != nil {
			return fmt.Errorf("postgres: insert opportunity %s: %w", e.Key(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit run %s: %w", run.ID, err)
	}
	return nil
}
