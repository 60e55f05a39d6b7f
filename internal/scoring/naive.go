package scoring

import "github.com/sneakarb/sneakarb/internal/domain"

// Naive scores by crossing margin rate alone, with no liquidity adjustment.
type Naive struct{}

// Name returns the strategy identifier.
func (Naive) Name() string { return "naive" }

// Score returns the crossing margin rate; the volume proxy is 0.
func (Naive) Score(e *domain.MatchedEntry) (float64, float64, bool) {
	return e.CrossingMarginRate, 0, false
}
