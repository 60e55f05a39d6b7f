package domain

import "time"

// PriceSnapshot is one point-in-time price observation for a (style, size)
// on one venue. Any of the prices may be absent depending on what the venue
// quotes.
type PriceSnapshot struct {
	Time      string   `json:"time"`
	BidPrice  *float64 `json:"bid_price"`
	AskPrice  *float64 `json:"ask_price"`
	ListPrice *float64 `json:"list_price"`
}

// Transaction is one historical sale. ID is the venue-native identifier used
// for dedup during merges.
type Transaction struct {
	ID    string  `json:"id"`
	Time  string  `json:"time"`
	Price float64 `json:"px"`
}

// transactionTimeLayouts covers the timestamp encodings seen across venues.
var transactionTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05-0700",
}

// ParseTransactionTime parses a transaction timestamp, trying each known
// venue encoding. An empty or unparseable timestamp returns ok=false; callers
// treat that as a per-record data-quality failure.
func ParseTransactionTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range transactionTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TransactionsPerDay estimates liquidity from a newest-first transaction log:
// the number of transactions newer than the oldest parseable one, divided by
// the elapsed time since it, normalized to transactions/day. Returns 0 when
// no transaction carries a usable timestamp.
func TransactionsPerDay(observedAt time.Time, txs []Transaction) float64 {
	for i := len(txs) - 1; i >= 0; i-- {
		t, ok := ParseTransactionTime(txs[i].Time)
		if !ok {
			continue
		}
		elapsed := observedAt.Sub(t).Seconds()
		if elapsed <= 0 {
			return 0
		}
		return float64(i) / elapsed * 86400
	}
	return 0
}

// VenueSeries is one venue's slice of a time-series record: price snapshots
// and transactions, both newest first.
type VenueSeries struct {
	Prices       []PriceSnapshot `json:"prices"`
	Transactions []Transaction   `json:"transactions"`
}

// TimeSeriesRecord is the persisted history for one (style id, size), keyed
// by venue.
type TimeSeriesRecord map[string]*VenueSeries
