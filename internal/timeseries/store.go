// Package timeseries persists per-(style id, size) price and transaction
// history as one JSON document per key, venue nested within.
package timeseries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// lockTTL bounds how long a cross-process merge lock may outlive a crashed
// holder.
const lockTTL = 30 * time.Second

// Store is a file-backed domain.TimeSeriesStore. Layout: dir/<style>/<size>.json.
//
// Merges for the same (style, size) serialize on a per-key mutex (and, when a
// LockManager is configured, a cross-process lock); merges for different keys
// proceed independently. Writes are staged to a temp file and renamed so a
// crash mid-merge never corrupts the previously persisted record.
type Store struct {
	dir    string
	lm     domain.LockManager // optional
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLockManager adds a cross-process lock around each key's merge.
func WithLockManager(lm domain.LockManager) Option {
	return func(s *Store) { s.lm = lm }
}

// New creates a Store rooted at dir.
func New(dir string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		logger: logger.With(slog.String("component", "timeseries")),
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(styleID, size string) string {
	return filepath.Join(s.dir, styleID, size+".json")
}

// keyLock returns the mutex guarding one (style, size) record.
func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Get loads the record for one (style id, size).
func (s *Store) Get(styleID, size string) (domain.TimeSeriesRecord, error) {
	data, err := os.ReadFile(s.path(styleID, size))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("timeseries: %s %s: %w", styleID, size, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("timeseries: read %s %s: %w", styleID, size, err)
	}

	var rec domain.TimeSeriesRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("timeseries: decode %s %s: %w", styleID, size, err)
	}
	return rec, nil
}

// GetAll loads every persisted size for a style id, keyed by size token.
func (s *Store) GetAll(styleID string) (map[string]domain.TimeSeriesRecord, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, styleID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("timeseries: %s: %w", styleID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("timeseries: read dir %s: %w", styleID, err)
	}

	out := make(map[string]domain.TimeSeriesRecord)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		size := strings.TrimSuffix(name, ".json")
		rec, err := s.Get(styleID, size)
		if err != nil {
			return nil, err
		}
		out[size] = rec
	}
	return out, nil
}

// Merge folds one venue observation into the persisted records, one size at a
// time. Each size's record is merged under its own lock; a failure on one
// size is reported but does not abort the remaining sizes.
func (s *Store) Merge(ctx context.Context, venue domain.Venue, observedAt time.Time, styleID string,
	prices map[string]domain.PriceSnapshot, transactions map[string][]domain.Transaction) error {

	var errs []error
	for size, snap := range prices {
		if err := s.mergeSize(ctx, venue, observedAt, styleID, size, snap, transactions[size]); err != nil {
			s.logger.Warn("merge failed",
				slog.String("style_id", styleID),
				slog.String("size", size),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", size, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("timeseries: merge %s: %w", styleID, errors.Join(errs...))
	}
	return nil
}

func (s *Store) mergeSize(ctx context.Context, venue domain.Venue, observedAt time.Time, styleID, size string,
	snap domain.PriceSnapshot, incoming []domain.Transaction) error {

	key := styleID + "|" + size

	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if s.lm != nil {
		unlock, err := s.lm.Acquire(ctx, "timeseries:"+key, lockTTL)
		if err != nil {
			return err
		}
		defer unlock()
	}

	rec, err := s.Get(styleID, size)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		rec = make(domain.TimeSeriesRecord)
	}

	series, ok := rec[string(venue)]
	if !ok {
		series = &domain.VenueSeries{}
		rec[string(venue)] = series
	}

	snap.Time = observedAt.UTC().Format(time.RFC3339)
	series.Prices = append([]domain.PriceSnapshot{snap}, series.Prices...)
	series.Transactions = mergeTransactions(series.Transactions, incoming)

	return s.write(styleID, size, rec)
}

// mergeTransactions prepends the incoming transactions that are newer than
// the most recent existing one, identified by id. Incoming is assumed
// time-descending. An empty existing list is replaced wholesale.
func mergeTransactions(existing, incoming []domain.Transaction) []domain.Transaction {
	if len(incoming) == 0 {
		return existing
	}
	if len(existing) == 0 {
		return incoming
	}

	lastID := existing[0].ID
	idx := 0
	for _, t := range incoming {
		if t.ID == lastID {
			break
		}
		idx++
	}
	return append(incoming[:idx:idx], existing...)
}

// write persists a record atomically: stage to a temp file in the same
// directory, then rename over the target.
func (s *Store) write(styleID, size string, rec domain.TimeSeriesRecord) error {
	target := s.path(styleID, size)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("timeseries: mkdir %s: %w", dir, err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("timeseries: encode %s %s: %w", styleID, size, err)
	}

	tmp, err := os.CreateTemp(dir, size+".*.tmp")
	if err != nil {
		return fmt.Errorf("timeseries: stage %s: %w", target, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("timeseries: stage write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("timeseries: stage close %s: %w", target, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("timeseries: rename %s: %w", target, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.TimeSeriesStore = (*Store)(nil)
