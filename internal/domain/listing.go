package domain

import "time"

// Venue identifies one marketplace feeding the pipeline. The values double as
// the venue keys used in persisted time-series records and report output, so
// they must stay stable.
type Venue string

const (
	VenueFlightClub Venue = "fc"
	VenueStockX     Venue = "sx"
	VenueDu         Venue = "du"
)

// StockXListing is one listing-book observation: best bid/ask plus a trailing
// sales count. Sizes are already US men's sizes.
type StockXListing struct {
	Name        string
	URL         string
	StyleID     string // as reported by the venue, before sanitization
	Size        string // canonical size token
	BestBid     float64
	BestAsk     float64
	SalesLast72 int
	ReleaseDate string // "2006-01-02", empty when unknown

	// Transactions is attached by the ingest transaction annotator when a
	// per-style transaction file exists. Newest first.
	Transactions []Transaction
}

// FlightClubListing is one sell-offer observation. Only ListPrice is always
// present; the optional market prices refine the achievable sell price.
type FlightClubListing struct {
	Name             string
	URL              string
	ListPrice        float64
	SellPriceHighest *float64
	SellPriceMarket  *float64
	SellID           string
}

// DuListing is one cross-border marketplace observation. Prices are quoted in
// CNY and sizes use the EU encoding of the shoe's brand.
type DuListing struct {
	Title       string
	URL         string
	PriceCNY    float64
	ForeignSize string // size as listed by the venue
	OrigStyleID string // style id before sanitization, kept for display
	ReleaseDate string

	// Transactions is the venue's recent-sales log, newest first.
	Transactions []Transaction
}

// MatchedEntry joins the per-venue observations of one (style id, size). At
// least one venue is always present; margin and score fields are attached in
// place by the margin model and the scoring engine.
type MatchedEntry struct {
	StyleID     string // display style id (venue-original form when known)
	Name        string
	Size        string // canonical size token, the join key
	ReleaseDate string

	FC *FlightClubListing
	SX *StockXListing
	DU *DuListing

	// Derived venue fields, set by the margin model.
	FCSellPrice     float64 // min of list / highest / market price
	DuPriceUSD      float64
	DuVolume        float64 // venue transactions per day at observation time
	DuTargetSellCNY float64 // advised listing price for the target margin rate
	ObservedAt      time.Time

	// Winning buy/sell pairing and its margins.
	Action              string
	CrossingMargin      float64
	CrossingMarginRate  float64
	AddingMargin        float64
	AddingMarginRate    float64
	MidMargin           float64
	MidMarginRate       float64

	// Scoring annotations.
	Score              float64
	Volume             float64
	VolumeApproximated bool
}

// VenueCount returns how many venues contributed to the entry.
func (e *MatchedEntry) VenueCount() int {
	n := 0
	if e.FC != nil {
		n++
	}
	if e.SX != nil {
		n++
	}
	if e.DU != nil {
		n++
	}
	return n
}

// Key returns the "style_id size" key used for entry maps and report rows.
func (e *MatchedEntry) Key() string {
	return e.StyleID + " " + e.Size
}
