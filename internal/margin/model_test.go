package margin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/fx"
)

type fixedRates struct {
	rates map[string]float64
	err   error
}

func (f *fixedRates) Rate(_ context.Context, from, to string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.rates[from+to], nil
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	src := &fixedRates{rates: map[string]float64{
		"CNYUSD": 0.14,
		"USDCNY": 1 / 0.14,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewModel(DefaultFees(), fx.NewConverter(src), logger)
}

func observed() time.Time {
	return time.Date(2019, 7, 28, 11, 6, 32, 0, time.UTC)
}

func TestNetSellValueFlightClub(t *testing.T) {
	m := newTestModel(t)

	net, err := m.NetSellValue(context.Background(), domain.VenueFlightClub, 160)
	require.NoError(t, err)

	// 160 - (160*0.2 + 13.95)
	assert.InDelta(t, 114.05, net, 1e-6)

	// Net proceeds trail the gross price by at least the flat commission.
	assert.Less(t, net, 160-13.95)
}

func TestNetSellValueDu(t *testing.T) {
	m := newTestModel(t)

	net, err := m.NetSellValue(context.Background(), domain.VenueDu, 200)
	require.NoError(t, err)

	// 200 - (200*0.14 + 13.95 + 16 + 33*0.14)
	want := 200.0 - (200*0.14 + 13.95 + 16 + 33*0.14)
	assert.InDelta(t, want, net, 1e-6)
}

func TestMarginInvariant(t *testing.T) {
	m := newTestModel(t)

	for _, tc := range []struct{ buy, net float64 }{
		{110, 114.05}, {200, 180}, {50, 49},
	} {
		amount, rate := m.Margin(tc.buy, tc.net)
		assert.InDelta(t, tc.net-tc.buy, amount, 1e-9)
		assert.InDelta(t, amount/(tc.buy+13.95), rate, 1e-9)
	}
}

func TestTargetSellPriceInvertsNetValue(t *testing.T) {
	m := newTestModel(t)
	ctx := context.Background()

	buy := 120.0
	target := 0.3

	cny, err := m.TargetSellPriceCNY(ctx, buy, target)
	require.NoError(t, err)

	// Selling at the advised price must net exactly the target margin.
	usd := cny * 0.14
	net, err := m.NetSellValue(ctx, domain.VenueDu, usd)
	require.NoError(t, err)

	amount, rate := m.Margin(buy, net)
	assert.InDelta(t, target, rate, 1e-9)
	assert.InDelta(t, target*(buy+13.95), amount, 1e-9)
}

func TestAnnotateCrossingScenario(t *testing.T) {
	m := newTestModel(t)

	entries := map[string]*domain.MatchedEntry{
		"ab123 9": {
			StyleID: "ab123",
			Size:    "9",
			SX:      &domain.StockXListing{Name: "Test Shoe", BestBid: 100, BestAsk: 110},
			FC:      &domain.FlightClubListing{ListPrice: 160},
		},
	}

	out := m.Annotate(context.Background(), entries, observed())
	require.Len(t, out, 1)

	e := out["ab123 9"]
	require.NotNil(t, e)
	assert.Equal(t, "sx->fc", e.Action)
	assert.InDelta(t, 160, e.FCSellPrice, 1e-9)

	net := 114.05
	assert.InDelta(t, net-110, e.CrossingMargin, 1e-6)
	assert.InDelta(t, (net-110)/(110+13.95), e.CrossingMarginRate, 1e-6)
	assert.InDelta(t, net-101, e.AddingMargin, 1e-6)
	assert.InDelta(t, (net-101)/(101+13.95), e.AddingMarginRate, 1e-6)
	assert.InDelta(t, net-105, e.MidMargin, 1e-6)
	assert.InDelta(t, (net-105)/(105+13.95), e.MidMarginRate, 1e-6)
}

func TestAnnotateSkipsSingleVenueEntries(t *testing.T) {
	m := newTestModel(t)

	entries := map[string]*domain.MatchedEntry{
		"solo 9": {
			StyleID: "solo",
			Size:    "9",
			SX:      &domain.StockXListing{BestBid: 100, BestAsk: 110},
		},
	}

	out := m.Annotate(context.Background(), entries, observed())
	assert.Empty(t, out)
}

func TestAnnotatePicksBestPairing(t *testing.T) {
	m := newTestModel(t)

	// Du nets more than FlightClub at these prices.
	entries := map[string]*domain.MatchedEntry{
		"ab123 9": {
			StyleID: "ab123",
			Size:    "9",
			SX:      &domain.StockXListing{BestBid: 100, BestAsk: 110},
			FC:      &domain.FlightClubListing{ListPrice: 160},
			DU:      &domain.DuListing{Title: "Nike Test", PriceCNY: 2000, OrigStyleID: "AB-123"},
		},
	}

	out := m.Annotate(context.Background(), entries, observed())
	require.Len(t, out, 1)

	// Keys keep the sanitized id; display style id reverts to the
	// venue-original form.
	e := out["AB-123 9"]
	require.NotNil(t, e)
	assert.Equal(t, "sx->du", e.Action)
	assert.InDelta(t, 280, e.DuPriceUSD, 1e-6) // 2000 * 0.14
	assert.Greater(t, e.DuTargetSellCNY, 0.0)

	netDu := 280 - (280*0.14 + 13.95 + 16 + 33*0.14)
	assert.InDelta(t, netDu-110, e.CrossingMargin, 1e-6)
}

func TestAnnotateFxFailureSkipsEntryNotBatch(t *testing.T) {
	src := &fixedRates{err: errors.New("rate service down")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewModel(DefaultFees(), fx.NewConverter(src), logger)

	entries := map[string]*domain.MatchedEntry{
		"du 9": {
			StyleID: "du",
			Size:    "9",
			SX:      &domain.StockXListing{BestBid: 100, BestAsk: 110},
			DU:      &domain.DuListing{Title: "Nike Test", PriceCNY: 2000},
		},
		"fc 9": {
			StyleID: "fc",
			Size:    "9",
			SX:      &domain.StockXListing{BestBid: 100, BestAsk: 110},
			FC:      &domain.FlightClubListing{ListPrice: 160},
		},
	}

	out := m.Annotate(context.Background(), entries, observed())

	// The du entry needed FX and is dropped; the fc entry is unaffected.
	require.Len(t, out, 1)
	assert.NotNil(t, out["fc 9"])
}
