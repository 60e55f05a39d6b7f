// Package matcher joins per-venue listings into multi-venue matched entries
// keyed by (sanitized style id, canonical size).
package matcher

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/sizing"
)

// SanitizeStyleID normalizes a model identifier for cross-venue matching:
// lower-cased with separator characters stripped, so "AB-123" and "ab 123"
// collide. Idempotent.
func SanitizeStyleID(styleID string) string {
	s := strings.ToLower(styleID)
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}

// Sources holds the per-venue inputs keyed by sanitized style id, then by
// venue-native size token. Loaders must sanitize style ids with
// SanitizeStyleID before handing records over, otherwise colliding physical
// products never match.
type Sources struct {
	FlightClub map[string]map[string]*domain.FlightClubListing
	StockX     map[string]map[string]*domain.StockXListing
	Du         map[string]map[string]*domain.DuListing
}

// Matcher joins venue sources into matched entries. Venues are applied in a
// fixed order (fc, sx, du) so field placement is deterministic.
type Matcher struct {
	normalizer *sizing.Normalizer
	logger     *slog.Logger
}

// New creates a Matcher.
func New(normalizer *sizing.Normalizer, logger *slog.Logger) *Matcher {
	return &Matcher{
		normalizer: normalizer,
		logger:     logger.With(slog.String("component", "matcher")),
	}
}

// Match joins the sources into entries keyed "style_id size" and returns the
// number of keys with two or more contributing venues (a diagnostic only).
// Records whose brand or size cannot be resolved are dropped individually
// with a diagnostic; they never abort the join.
func (m *Matcher) Match(sources Sources) (map[string]*domain.MatchedEntry, int) {
	entries := make(map[string]*domain.MatchedEntry)

	upsert := func(styleID, size string) *domain.MatchedEntry {
		key := styleID + " " + size
		e, ok := entries[key]
		if !ok {
			e = &domain.MatchedEntry{StyleID: styleID, Size: size}
			entries[key] = e
		}
		return e
	}

	for styleID, sizes := range sources.FlightClub {
		for size, rec := range sizes {
			upsert(styleID, sizing.CanonicalSize(size)).FC = rec
		}
	}

	for styleID, sizes := range sources.StockX {
		for size, rec := range sizes {
			upsert(styleID, sizing.CanonicalSize(size)).SX = rec
		}
	}

	for styleID, sizes := range sources.Du {
		for size, rec := range sizes {
			canonical, ok := m.resolveDuSize(styleID, size, rec)
			if !ok {
				continue
			}
			upsert(styleID, canonical).DU = rec
		}
	}

	matchCount := 0
	for _, e := range entries {
		if e.VenueCount() > 1 {
			matchCount++
		}
	}

	m.logger.Info("matched venue records",
		slog.Int("entries", len(entries)),
		slog.Int("multi_venue", matchCount),
	)
	return entries, matchCount
}

// resolveDuSize converts a cross-border record's foreign (EU, brand-specific)
// size to the canonical token. ok is false when the record must be dropped.
func (m *Matcher) resolveDuSize(styleID, size string, rec *domain.DuListing) (string, bool) {
	brand, ok := sizing.InferBrand(rec.Title)
	if !ok {
		m.logger.Warn("dropping record: cannot infer brand",
			slog.String("style_id", styleID),
			slog.String("title", rec.Title),
		)
		return "", false
	}

	eu, err := strconv.ParseFloat(strings.TrimSpace(size), 64)
	if err != nil {
		m.logger.Warn("dropping record: unparseable size",
			slog.String("style_id", styleID),
			slog.String("size", size),
		)
		return "", false
	}

	us, err := m.normalizer.Normalize(brand, sizing.RegionEU, eu)
	if err != nil {
		m.logger.Warn("dropping record: size not in brand chart",
			slog.String("style_id", styleID),
			slog.String("brand", string(brand)),
			slog.Float64("size", eu),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	return sizing.FormatSize(us), true
}
