// Package margin applies per-venue fee models and computes cross-venue
// arbitrage margins for matched entries.
package margin

// FlightClubFees holds the sell-side deductions for the consignment venue.
type FlightClubFees struct {
	CommissionRate float64 `toml:"commission_rate"`
}

// DuFees holds the sell-side deductions for the cross-border venue. The flat
// fee is charged in CNY and converted at the current spot rate.
type DuFees struct {
	CommissionRate  float64 `toml:"commission_rate"`
	TechServiceRate float64 `toml:"tech_service_rate"`
	TransferRate    float64 `toml:"transfer_rate"`
	ShippingFeeUSD  float64 `toml:"shipping_fee_usd"`
	FlatFeeCNY      float64 `toml:"flat_fee_cny"`
}

// Fees is the complete fee schedule. The values are fixed economic constants
// of the venues, surfaced as configuration so tests can pin them.
type Fees struct {
	// BidCommission is the fixed per-transaction commission charged by the
	// listing book on the acquiring side.
	BidCommission float64 `toml:"bid_commission"`
	// TickSize is the price improvement applied when posting one tick
	// better than best bid (the "adding" variant).
	TickSize float64 `toml:"tick_size"`
	// TargetMarginRate drives the advised cross-border listing price.
	TargetMarginRate float64 `toml:"target_margin_rate"`

	FlightClub FlightClubFees `toml:"flightclub"`
	Du         DuFees         `toml:"du"`
}

// DefaultFees returns the venues' published fee schedules.
func DefaultFees() Fees {
	return Fees{
		BidCommission:    13.95,
		TickSize:         1,
		TargetMarginRate: 0.3,
		FlightClub: FlightClubFees{
			CommissionRate: 0.2,
		},
		Du: DuFees{
			CommissionRate:  0.095,
			TechServiceRate: 0.035,
			TransferRate:    0.01,
			ShippingFeeUSD:  16,
			FlatFeeCNY:      33,
		},
	}
}

// pctRates is the sum of the venue's percentage deductions.
func (d DuFees) pctRates() float64 {
	return d.CommissionRate + d.TechServiceRate + d.TransferRate
}
