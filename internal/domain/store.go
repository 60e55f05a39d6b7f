package domain

import (
	"context"
	"io"
	"time"
)

// TimeSeriesStore persists per-(style id, size) price and transaction
// history. Merge must serialize concurrent calls for the same key while
// letting distinct keys proceed independently, and must never leave a record
// partially written on failure.
type TimeSeriesStore interface {
	// Get loads the record for one (style id, size). Returns ErrNotFound
	// when nothing has been persisted yet.
	Get(styleID, size string) (TimeSeriesRecord, error)

	// GetAll loads every persisted size for a style id, keyed by size.
	GetAll(styleID string) (map[string]TimeSeriesRecord, error)

	// Merge prepends the given snapshot (labelled observedAt) to the venue's
	// price list for each size present, and merges transactions by id so
	// that previously recorded transactions are never duplicated.
	Merge(ctx context.Context, venue Venue, observedAt time.Time, styleID string,
		prices map[string]PriceSnapshot, transactions map[string][]Transaction) error
}

// RunRecord captures one pipeline run for persistence and report headers.
type RunRecord struct {
	ID           string
	Strategy     string
	StartedAt    time.Time
	TotalMatches int
	MinRate      float64
	MinMargin    float64
}

// OpportunityStore persists scored opportunities per run.
type OpportunityStore interface {
	SaveRun(ctx context.Context, run RunRecord, entries []*MatchedEntry) error
}

// LockManager provides cross-process advisory locks, used to serialize
// time-series merges for the same key when several updaters run.
type LockManager interface {
	// Acquire obtains the lock for key with the given TTL and returns an
	// unlock function, or ErrLockHeld when another party holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// BlobWriter uploads archival objects (raw venue snapshots, run reports).
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// RateSource fetches a spot FX rate for an ordered currency pair. Fetch
// failure is a hard failure for the computation that needed the rate.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}
