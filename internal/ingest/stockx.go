package ingest

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/matcher"
	"github.com/sneakarb/sneakarb/internal/sizing"
)

// stockxBaseURL prefixes the listing book's product paths.
const stockxBaseURL = "https://stockx.com/"

// LoadStockX reads the listing-book CSV: rows of
// name, path, style_id, size, best_bid, best_ask, sales_last_72[, _, release_date].
// Rows with a "none" style id or a non-positive ask are data-quality
// failures: logged and skipped, never fatal.
func LoadStockX(path string, logger *slog.Logger) (map[string]map[string]*domain.StockXListing, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open stockx file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: read stockx csv: %w", err)
	}

	out := make(map[string]map[string]*domain.StockXListing)
	for i, row := range rows {
		if len(row) < 7 {
			logger.Warn("skipping short stockx row", slog.Int("row", i), slog.Int("fields", len(row)))
			continue
		}

		name := row[0]
		url := stockxBaseURL + row[1]
		styleID := row[2]
		size := sizing.CanonicalSize(row[3])

		if strings.EqualFold(styleID, "none") {
			logger.Warn("stockx row has no style id",
				slog.String("name", name),
				slog.String("url", url),
			)
			continue
		}

		bestBid, err1 := strconv.ParseFloat(row[4], 64)
		bestAsk, err2 := strconv.ParseFloat(row[5], 64)
		sales, err3 := strconv.Atoi(row[6])
		if err1 != nil || err2 != nil || err3 != nil {
			logger.Warn("skipping unparseable stockx row", slog.Int("row", i), slog.String("style_id", styleID))
			continue
		}
		if bestAsk <= 0 {
			continue
		}

		release := ""
		if len(row) > 8 {
			release = row[8]
		}

		listing := &domain.StockXListing{
			Name:        name,
			URL:         url,
			StyleID:     styleID,
			Size:        size,
			BestBid:     bestBid,
			BestAsk:     bestAsk,
			SalesLast72: sales,
			ReleaseDate: release,
		}

		key := matcher.SanitizeStyleID(styleID)
		if _, ok := out[key]; !ok {
			out[key] = make(map[string]*domain.StockXListing)
		}
		out[key][size] = listing
	}
	return out, nil
}

// AnnotateTransactions attaches per-(style, size) transaction history to
// already-loaded listings, from "<style_id>.transaction.txt" CSV files
// (rows of size, time, price) in dir. Missing files simply mean no history.
func AnnotateTransactions(dir string, listings map[string]map[string]*domain.StockXListing, logger *slog.Logger) {
	for styleID, sizes := range listings {
		path := filepath.Join(dir, styleID+".transaction.txt")
		file, err := os.Open(path)
		if err != nil {
			continue
		}

		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		file.Close()
		if err != nil {
			logger.Warn("skipping unreadable transaction file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}

		bySize := make(map[string][]domain.Transaction)
		for _, row := range rows {
			if len(row) < 3 {
				continue
			}
			size := sizing.CanonicalSize(row[0])
			px, err := strconv.ParseFloat(row[2], 64)
			if err != nil {
				continue
			}
			bySize[size] = append(bySize[size], domain.Transaction{Time: row[1], Price: px})
		}

		for size, listing := range sizes {
			if txs, ok := bySize[size]; ok {
				listing.Transactions = txs
			}
		}
	}
}
