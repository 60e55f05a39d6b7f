// Package scoring ranks margin-annotated entries with interchangeable
// strategies weighing margin rate against liquidity and recency.
package scoring

import (
	"fmt"
	"sort"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// Strategy scores one entry. volume is the liquidity proxy backing the
// score; approximated reports that the proxy came from a fallback heuristic
// rather than observed transactions.
type Strategy interface {
	Name() string
	Score(e *domain.MatchedEntry) (score, volume float64, approximated bool)
}

// Config holds the heuristic constants of the strategies. The defaults have
// no documented derivation; they are surfaced here so operators can tune
// them rather than treat them as gospel.
type Config struct {
	Multi MultiConfig    `toml:"multi"`
	Du    DuVolumeConfig `toml:"du_volume_volatility"`
}

// DefaultConfig returns the strategies' default constants.
func DefaultConfig() Config {
	return Config{
		Multi: DefaultMultiConfig(),
		Du:    DefaultDuVolumeConfig(),
	}
}

// Registry maps enumerated strategy names to implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds a Registry with every known strategy registered.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	for _, s := range []Strategy{
		Naive{},
		NewMulti(cfg.Multi),
		NewDuVolumeVolatility(cfg.Du),
	} {
		r.strategies[s.Name()] = s
	}
	return r
}

// Get retrieves a strategy by name. An unrecognized name is a configuration
// error; there is no silent default.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("scoring: strategy %q: %w", name, domain.ErrUnknownStrategy)
	}
	return s, nil
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for n := range r.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Annotate scores every entry in place with the given strategy.
func Annotate(entries map[string]*domain.MatchedEntry, s Strategy) {
	for _, e := range entries {
		e.Score, e.Volume, e.VolumeApproximated = s.Score(e)
	}
}

// Rank returns the entries sorted by score descending. The sort is stable;
// ties keep the order of the keys slice, so callers that need reproducible
// reports pass keys in insertion order.
func Rank(entries map[string]*domain.MatchedEntry, keys []string) []*domain.MatchedEntry {
	ranked := make([]*domain.MatchedEntry, 0, len(keys))
	for _, k := range keys {
		if e, ok := entries[k]; ok {
			ranked = append(ranked, e)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// RankAll is Rank over every entry, with keys sorted lexicographically first
// so the result is deterministic. Map entries carry no insertion order, so
// ties break by key order rather than by the order records were matched.
func RankAll(entries map[string]*domain.MatchedEntry) []*domain.MatchedEntry {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Rank(entries, keys)
}
