package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/matcher"
)

// duTransaction is the cross-border recent-sales wire shape.
type duTransaction struct {
	ID    string    `json:"id"`
	Time  string    `json:"time"`
	Px    flexFloat `json:"px"`
}

// duRecord is the cross-border dump's wire shape for one (style, size).
type duRecord struct {
	Title        string          `json:"title"`
	Px           flexFloat       `json:"px"`
	ProductURL   string          `json:"product_id_url"`
	Size         string          `json:"size"`
	ReleaseDate  string          `json:"release_date"`
	Transactions []duTransaction `json:"transactions"`
}

// LoadDu reads the cross-border marketplace JSON dump: style id ->
// size (foreign encoding) -> record. The venue-original style id is kept on
// each listing for report display.
func LoadDu(path string) (map[string]map[string]*domain.DuListing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read du file: %w", err)
	}

	var raw map[string]map[string]duRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ingest: decode du json: %w", err)
	}

	out := make(map[string]map[string]*domain.DuListing, len(raw))
	for styleID, sizes := range raw {
		key := matcher.SanitizeStyleID(styleID)
		if _, ok := out[key]; !ok {
			out[key] = make(map[string]*domain.DuListing, len(sizes))
		}
		for size, rec := range sizes {
			listing := &domain.DuListing{
				Title:       rec.Title,
				URL:         rec.ProductURL,
				PriceCNY:    float64(rec.Px),
				ForeignSize: rec.Size,
				OrigStyleID: styleID,
				ReleaseDate: rec.ReleaseDate,
			}
			if listing.ForeignSize == "" {
				listing.ForeignSize = size
			}
			for _, t := range rec.Transactions {
				listing.Transactions = append(listing.Transactions, domain.Transaction{
					ID:    t.ID,
					Time:  t.Time,
					Price: float64(t.Px),
				})
			}
			out[key][size] = listing
		}
	}
	return out, nil
}
