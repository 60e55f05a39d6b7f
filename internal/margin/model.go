package margin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/fx"
)

// Model converts gross sell prices into net proceeds per venue and annotates
// matched entries with the best buy/sell pairing's margins.
type Model struct {
	fees      Fees
	converter *fx.Converter
	logger    *slog.Logger
}

// NewModel creates a Model with the given fee schedule.
func NewModel(fees Fees, converter *fx.Converter, logger *slog.Logger) *Model {
	return &Model{
		fees:      fees,
		converter: converter,
		logger:    logger.With(slog.String("component", "margin")),
	}
}

// NetSellValue converts a gross sell price on the given venue into net
// proceeds after all venue deductions. Prices are in USD; the cross-border
// flat fee is converted from CNY at the current spot rate.
func (m *Model) NetSellValue(ctx context.Context, venue domain.Venue, gross float64) (float64, error) {
	switch venue {
	case domain.VenueFlightClub:
		return gross - (gross*m.fees.FlightClub.CommissionRate + m.fees.BidCommission), nil
	case domain.VenueDu:
		flatUSD, err := m.converter.Convert(ctx, m.fees.Du.FlatFeeCNY, "CNY", "USD")
		if err != nil {
			return 0, err
		}
		deductions := gross*m.fees.Du.pctRates() + m.fees.BidCommission + m.fees.Du.ShippingFeeUSD + flatUSD
		return gross - deductions, nil
	default:
		return 0, fmt.Errorf("margin: no fee model for venue %q", venue)
	}
}

// Margin computes the margin amount and rate for a buy price and a net sell
// value. The rate normalizes by the full acquiring cost including the fixed
// commission.
func (m *Model) Margin(buyPrice, netSellValue float64) (amount, rate float64) {
	amount = netSellValue - buyPrice
	rate = amount / (buyPrice + m.fees.BidCommission)
	return amount, rate
}

// TargetSellPriceCNY inverts the cross-border net-value formula: the listing
// price (in CNY) at which selling a shoe acquired for buyPriceUSD yields the
// target margin rate. The inversion is algebraic:
//
//	net(px) = px*(1-R) - commission - shipping - flatFx
//	net(px) = buy + target*(buy + commission)
func (m *Model) TargetSellPriceCNY(ctx context.Context, buyPriceUSD, targetRate float64) (float64, error) {
	flatUSD, err := m.converter.Convert(ctx, m.fees.Du.FlatFeeCNY, "CNY", "USD")
	if err != nil {
		return 0, err
	}
	required := buyPriceUSD + targetRate*(buyPriceUSD+m.fees.BidCommission)
	pxUSD := (required + m.fees.BidCommission + m.fees.Du.ShippingFeeUSD + flatUSD) / (1 - m.fees.Du.pctRates())
	return m.converter.Convert(ctx, pxUSD, "USD", "CNY")
}

// Annotate computes margins for every entry with at least two venues and an
// executable buy side, returning the annotated subset keyed "style_id size".
// Entries whose FX conversion fails are skipped with a diagnostic; the batch
// continues.
func (m *Model) Annotate(ctx context.Context, entries map[string]*domain.MatchedEntry, observedAt time.Time) map[string]*domain.MatchedEntry {
	out := make(map[string]*domain.MatchedEntry)
	skipped := 0

	for _, e := range entries {
		if e.VenueCount() < 2 {
			continue
		}
		// The listing book is the acquiring side; without a two-sided quote
		// there is nothing to cross.
		if e.SX == nil || e.SX.BestAsk <= 0 || e.SX.BestBid <= 0 {
			continue
		}

		if err := m.annotateEntry(ctx, e, observedAt); err != nil {
			skipped++
			m.logger.Warn("skipping entry",
				slog.String("key", e.Key()),
				slog.String("error", err.Error()),
			)
			continue
		}
		out[e.Key()] = e
	}

	if skipped > 0 {
		m.logger.Warn("entries skipped during margin annotation", slog.Int("count", skipped))
	}
	return out
}

func (m *Model) annotateEntry(ctx context.Context, e *domain.MatchedEntry, observedAt time.Time) error {
	e.ObservedAt = observedAt
	fillIdentity(e)

	ask := e.SX.BestAsk
	bid := e.SX.BestBid
	mid := (bid + ask) / 2

	// Collect the net sell value of every available sell venue and keep the
	// best pairing.
	bestNet := 0.0
	action := ""

	if e.FC != nil {
		e.FCSellPrice = fcSellPrice(e.FC)
		net, err := m.NetSellValue(ctx, domain.VenueFlightClub, e.FCSellPrice)
		if err != nil {
			return err
		}
		bestNet, action = net, "sx->fc"
	}

	if e.DU != nil {
		usd, err := m.converter.Convert(ctx, e.DU.PriceCNY, "CNY", "USD")
		if err != nil {
			return err
		}
		e.DuPriceUSD = usd
		e.DuVolume = domain.TransactionsPerDay(observedAt, e.DU.Transactions)

		net, err := m.NetSellValue(ctx, domain.VenueDu, usd)
		if err != nil {
			return err
		}
		if action == "" || net > bestNet {
			bestNet, action = net, "sx->du"
		}
	}

	e.Action = action
	e.CrossingMargin, e.CrossingMarginRate = m.Margin(ask, bestNet)

	addingBuy := bid + m.fees.TickSize
	e.AddingMargin, e.AddingMarginRate = m.Margin(addingBuy, bestNet)

	e.MidMargin, e.MidMarginRate = m.Margin(mid, bestNet)

	if action == "sx->du" {
		target, err := m.TargetSellPriceCNY(ctx, mid, m.fees.TargetMarginRate)
		if err != nil {
			return err
		}
		e.DuTargetSellCNY = target
	}
	return nil
}

// fillIdentity resolves the entry's display name, release date, and style id
// from whichever venues carry them.
func fillIdentity(e *domain.MatchedEntry) {
	switch {
	case e.SX != nil:
		e.Name = e.SX.Name
		e.ReleaseDate = e.SX.ReleaseDate
	case e.FC != nil:
		e.Name = e.FC.Name
	case e.DU != nil:
		e.Name = e.DU.Title
		e.ReleaseDate = e.DU.ReleaseDate
	}
	if e.DU != nil && e.DU.OrigStyleID != "" {
		e.StyleID = e.DU.OrigStyleID
	}
}

// fcSellPrice is the achievable sell price on the consignment venue: the
// listed price capped by the optional highest/market sell prices.
func fcSellPrice(fc *domain.FlightClubListing) float64 {
	px := fc.ListPrice
	if fc.SellPriceHighest != nil && *fc.SellPriceHighest < px {
		px = *fc.SellPriceHighest
	}
	if fc.SellPriceMarket != nil && *fc.SellPriceMarket < px {
		px = *fc.SellPriceMarket
	}
	return px
}
