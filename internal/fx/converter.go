// Package fx converts monetary amounts between currencies using spot rates
// cached for the lifetime of the process.
package fx

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// Converter is a read-through cache in front of a RateSource. Each ordered
// currency pair is fetched at most once per process; there is no forced
// refresh. Safe for concurrent use.
type Converter struct {
	source domain.RateSource
	group  singleflight.Group

	mu    sync.RWMutex
	rates map[string]float64 // keyed "FROM->TO"
}

// NewConverter creates a Converter backed by the given rate source.
func NewConverter(source domain.RateSource) *Converter {
	return &Converter{
		source: source,
		rates:  make(map[string]float64),
	}
}

// Convert converts amount from one currency to another. On cache miss the
// spot rate is fetched from the source; a fetch failure propagates to the
// caller and nothing is cached, so a later call may retry.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	rate, err := c.rate(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}

func (c *Converter) rate(ctx context.Context, from, to string) (float64, error) {
	key := from + "->" + to

	c.mu.RLock()
	rate, ok := c.rates[key]
	c.mu.RUnlock()
	if ok {
		return rate, nil
	}

	// Concurrent misses for the same pair collapse into a single upstream
	// fetch; everyone shares its result or its error.
	v, err, _ := c.group.Do(key, func() (any, error) {
		r, err := c.source.Rate(ctx, from, to)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.rates[key] = r
		c.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return 0, fmt.Errorf("fx: rate %s->%s: %w", from, to, err)
	}
	return v.(float64), nil
}
