// Package sizing converts vendor/brand-specific shoe sizes into the
// canonical US men's representation used as the cross-venue join key.
// Charts are brand-specific: Nike and adidas cut different lasts, so no
// universal EU->US table exists.
package sizing

import (
	"fmt"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// Chart is a bidirectional mapping between two size encodings. The inverse
// is built once at construction and never rebuilt.
type Chart struct {
	name    string
	forward map[float64]float64
	inverse map[float64]float64
}

// NewChart builds a chart from a single authoritative forward table.
func NewChart(name string, forward map[float64]float64) *Chart {
	inverse := make(map[float64]float64, len(forward))
	for k, v := range forward {
		inverse[v] = k
	}
	return &Chart{name: name, forward: forward, inverse: inverse}
}

// Name returns the chart identifier, e.g. "eu-nike-men".
func (c *Chart) Name() string { return c.name }

// Forward converts a size through the authoritative table.
func (c *Chart) Forward(size float64) (float64, error) {
	out, ok := c.forward[size]
	if !ok {
		return 0, fmt.Errorf("sizing: chart %s size %v: %w", c.name, size, domain.ErrSizeNotFound)
	}
	return out, nil
}

// Inverse converts a size through the cached inverse table.
func (c *Chart) Inverse(size float64) (float64, error) {
	out, ok := c.inverse[size]
	if !ok {
		return 0, fmt.Errorf("sizing: chart %s inverse size %v: %w", c.name, size, domain.ErrSizeNotFound)
	}
	return out, nil
}

// Sizes returns every size on the forward side of the chart.
func (c *Chart) Sizes() []float64 {
	out := make([]float64, 0, len(c.forward))
	for k := range c.forward {
		out = append(out, k)
	}
	return out
}

// Authoritative tables. Vendors disagree on EU conversions; these follow the
// manufacturers' own charts rather than third-party aggregate tables.

var nikeEUToUSMen = map[float64]float64{
	35.5: 3.5,
	36.0: 4.0,
	36.5: 4.5,
	37.5: 5.0,
	38.0: 5.5,
	38.5: 6.0,
	39.0: 6.5,
	40.0: 7.0,
	40.5: 7.5,
	41.0: 8.0,
	42.0: 8.5,
	42.5: 9.0,
	43.0: 9.5,
	44.0: 10.0,
	44.5: 10.5,
	45.0: 11.0,
	45.5: 11.5,
	46.0: 12.0,
	46.5: 12.5,
	47.5: 13.0,
	48.0: 13.5,
	48.5: 14.0,
}

var adidasEUToUSMen = map[float64]float64{
	36.0: 4.0,
	36.5: 4.5,
	37.0: 5.0,
	38.0: 5.5,
	38.5: 6.0,
	39.0: 6.5,
	40.0: 7.0,
	40.5: 7.5,
	41.0: 8.0,
	42.0: 8.5,
	42.5: 9.0,
	43.0: 9.5,
	44.0: 10.0,
	44.5: 10.5,
	45.0: 11.0,
	46.0: 11.5,
	46.5: 12.0,
	47.0: 12.5,
	48.0: 13.0,
	48.5: 13.5,
	49.0: 14.0,
}

var usToCNMen = map[float64]float64{
	3.5:  35.0,
	4.0:  36.0,
	4.5:  37.0,
	5.0:  38.0,
	5.5:  39.0,
	6.0:  39.5,
	6.5:  40.0,
	7.0:  41.0,
	7.5:  41.5,
	8.0:  42.0,
	8.5:  43.0,
	9.0:  43.5,
	9.5:  44.0,
	10.0: 44.5,
	10.5: 45.0,
	11.0: 46.0,
	11.5: 46.5,
	12.0: 47.0,
	12.5: 47.5,
}
