package matcher

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/sizing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMatcher() *Matcher {
	return New(sizing.NewNormalizer(), testLogger())
}

func TestSanitizeStyleID(t *testing.T) {
	assert.Equal(t, "ab123", SanitizeStyleID("AB-123"))
	assert.Equal(t, "ab123", SanitizeStyleID("ab 123"))
	assert.Equal(t, "575441028", SanitizeStyleID("575441-028"))

	// Stable: sanitizing twice changes nothing.
	once := SanitizeStyleID("CP9652 Core-Black")
	assert.Equal(t, once, SanitizeStyleID(once))
}

func TestMatchThreeVenues(t *testing.T) {
	m := newTestMatcher()

	// Nike EU 42.5 is US 9; all three sources describe the same shoe.
	sources := Sources{
		FlightClub: map[string]map[string]*domain.FlightClubListing{
			"aq0818148": {"9.0": {Name: "Air Jordan 1 Bred Toe", ListPrice: 260}},
		},
		StockX: map[string]map[string]*domain.StockXListing{
			"aq0818148": {"9": {Name: "Jordan 1 Retro High Bred Toe", BestBid: 220, BestAsk: 240}},
		},
		Du: map[string]map[string]*domain.DuListing{
			"aq0818148": {"42.5": {Title: "Air Jordan 1 Bred Toe", PriceCNY: 2000}},
		},
	}

	entries, matchCount := m.Match(sources)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, matchCount)

	e, ok := entries["aq0818148 9"]
	require.True(t, ok)
	assert.Equal(t, 3, e.VenueCount())
	assert.NotNil(t, e.FC)
	assert.NotNil(t, e.SX)
	assert.NotNil(t, e.DU)
}

func TestMatchCountsOnlyMultiVenueKeys(t *testing.T) {
	m := newTestMatcher()

	sources := Sources{
		StockX: map[string]map[string]*domain.StockXListing{
			"solo1": {"9": {BestBid: 100, BestAsk: 110}},
			"both2": {"10": {BestBid: 100, BestAsk: 110}},
		},
		FlightClub: map[string]map[string]*domain.FlightClubListing{
			"both2": {"10.0": {ListPrice: 150}},
		},
	}

	entries, matchCount := m.Match(sources)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, matchCount)
}

func TestMatchDropsUnresolvableDuRecords(t *testing.T) {
	m := newTestMatcher()

	sources := Sources{
		StockX: map[string]map[string]*domain.StockXListing{
			"good1": {"9": {BestBid: 100, BestAsk: 110}},
		},
		Du: map[string]map[string]*domain.DuListing{
			// Size 41.5 is not on the Nike chart: record dropped.
			"good1": {"41.5": {Title: "Nike Something", PriceCNY: 900}},
			// Brand cannot be inferred: record dropped.
			"brandless2": {"42.5": {Title: "Some Unknown Runner", PriceCNY: 700}},
			// Unparseable size token: record dropped.
			"badsize3": {"M": {Title: "Nike Air", PriceCNY: 800}},
			// A fine record in the same batch still goes through.
			"good4": {"42.5": {Title: "Yeezy Boost 350", PriceCNY: 1800}},
		},
	}

	entries, _ := m.Match(sources)
	require.Len(t, entries, 2)

	e, ok := entries["good1 9"]
	require.True(t, ok)
	assert.Nil(t, e.DU, "dropped du record must not attach")
	assert.NotNil(t, e.SX)

	// adidas EU 42.5 -> US 9.
	e, ok = entries["good4 9"]
	require.True(t, ok)
	assert.NotNil(t, e.DU)
}

func TestMatchSizeTokensCanonicalized(t *testing.T) {
	m := newTestMatcher()

	sources := Sources{
		FlightClub: map[string]map[string]*domain.FlightClubListing{
			"x1": {"9.0": {ListPrice: 200}},
		},
		StockX: map[string]map[string]*domain.StockXListing{
			"x1": {"9": {BestBid: 150, BestAsk: 160}},
		},
	}

	entries, matchCount := m.Match(sources)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, matchCount)
}
