package scoring

import (
	"math"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// PriceBracket discounts the score above a price threshold: expensive shoes
// tie up more capital per unit of margin.
type PriceBracket struct {
	Above    float64 `toml:"above"`
	Discount float64 `toml:"discount"`
}

// MultiConfig holds the multi strategy's heuristic constants.
type MultiConfig struct {
	// FallbackBaseRate approximates transactions/day when no transaction
	// history exists, before the size discount is applied.
	FallbackBaseRate float64 `toml:"fallback_base_rate"`
	// SizeDiscount approximates relative demand by shoe size. Sizes near
	// men's 9 carry full weight; extreme sizes are discounted.
	SizeDiscount map[string]float64 `toml:"size_discount"`
	// PriceBrackets must be ordered by Above descending; the first bracket
	// whose threshold the acquiring price exceeds wins.
	PriceBrackets []PriceBracket `toml:"price_brackets"`
}

// DefaultMultiConfig returns the multi strategy's default constants.
func DefaultMultiConfig() MultiConfig {
	return MultiConfig{
		FallbackBaseRate: 0.2,
		SizeDiscount: map[string]float64{
			"3.5": 0.40, "4": 0.50, "4.5": 0.60, "5": 0.70, "5.5": 0.75,
			"6": 0.80, "6.5": 0.85, "7": 0.90, "7.5": 0.95, "8": 0.98,
			"8.5": 1.00, "9": 1.00, "9.5": 1.00, "10": 1.00, "10.5": 1.00,
			"11": 1.00, "11.5": 0.98, "12": 0.95, "12.5": 0.90, "13": 0.85,
			"13.5": 0.80, "14": 0.75, "14.5": 0.70, "15": 0.70, "16": 0.60,
			"17": 0.50, "18": 0.40,
		},
		PriceBrackets: []PriceBracket{
			{Above: 1000, Discount: 0.3},
			{Above: 500, Discount: 0.6},
			{Above: 300, Discount: 0.9},
		},
	}
}

// Multi scores by crossing margin rate weighted by the square root of the
// observed transaction rate and a price-bracket discount. When no history
// exists, a size-indexed table approximates demand and the result is flagged
// as approximated.
type Multi struct {
	cfg MultiConfig
}

// NewMulti creates the multi strategy.
func NewMulti(cfg MultiConfig) Multi {
	return Multi{cfg: cfg}
}

// Name returns the strategy identifier.
func (Multi) Name() string { return "multi" }

// Score weighs margin rate by liquidity and capital efficiency.
func (m Multi) Score(e *domain.MatchedEntry) (float64, float64, bool) {
	rate, approximated := m.transactionRate(e)

	discount := 1.0
	if e.SX != nil {
		for _, b := range m.cfg.PriceBrackets {
			if e.SX.BestAsk > b.Above {
				discount = b.Discount
				break
			}
		}
	}

	return e.CrossingMarginRate * math.Sqrt(rate) * discount, rate, approximated
}

// transactionRate is observed transactions/day when history exists: the
// transaction count over the elapsed time since the oldest one, measured
// against the entry's observation time so scoring stays reproducible.
func (m Multi) transactionRate(e *domain.MatchedEntry) (float64, bool) {
	if e.SX != nil && len(e.SX.Transactions) > 0 {
		oldest := e.SX.Transactions[len(e.SX.Transactions)-1]
		t, ok := domain.ParseTransactionTime(oldest.Time)
		if ok {
			elapsed := e.ObservedAt.Sub(t).Seconds()
			if elapsed > 0 {
				return math.Floor(float64(len(e.SX.Transactions)) * 86400 / elapsed), false
			}
		}
		return 0, false
	}

	discount, ok := m.cfg.SizeDiscount[e.Size]
	if !ok {
		return 0, false
	}
	return m.cfg.FallbackBaseRate * discount, true
}
