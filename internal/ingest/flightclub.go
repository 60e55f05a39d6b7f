package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/matcher"
	"github.com/sneakarb/sneakarb/internal/sizing"
)

// fcRecord is the sell-offer dump's wire shape for one (style, size).
type fcRecord struct {
	Name           string     `json:"name"`
	Px             flexFloat  `json:"px"`
	SellPxHighest  *flexFloat `json:"sell_px_highest"`
	SellPxMarket   *flexFloat `json:"sell_px_market"`
	SellID         string     `json:"sell_id"`
	URL            string     `json:"url"`
}

// LoadFlightClub reads the sell-offer JSON dump: style id -> size -> record.
func LoadFlightClub(path string) (map[string]map[string]*domain.FlightClubListing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read flightclub file: %w", err)
	}

	var raw map[string]map[string]fcRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ingest: decode flightclub json: %w", err)
	}

	out := make(map[string]map[string]*domain.FlightClubListing, len(raw))
	for styleID, sizes := range raw {
		key := matcher.SanitizeStyleID(styleID)
		if _, ok := out[key]; !ok {
			out[key] = make(map[string]*domain.FlightClubListing, len(sizes))
		}
		for size, rec := range sizes {
			listing := &domain.FlightClubListing{
				Name:      rec.Name,
				URL:       rec.URL,
				ListPrice: float64(rec.Px),
				SellID:    rec.SellID,
			}
			if rec.SellPxHighest != nil {
				v := float64(*rec.SellPxHighest)
				listing.SellPriceHighest = &v
			}
			if rec.SellPxMarket != nil {
				v := float64(*rec.SellPxMarket)
				listing.SellPriceMarket = &v
			}
			out[key][sizing.CanonicalSize(size)] = listing
		}
	}
	return out, nil
}
