package ingest

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadStockX(t *testing.T) {
	csv := `Air Jordan 1 Bred Toe,air-jordan-1-bred-toe,555088-610,9.0,220,240,12,x,2018-02-24
No Style,mystery-shoe,None,9,100,120,3
Ask Gone,sold-out-shoe,AQ0818-148,10,90,0,1
Bad Row,bad-shoe,CP9652,9,abc,120,2
`
	path := writeFile(t, t.TempDir(), "best_prices.txt", csv)

	out, err := LoadStockX(path, testLogger())
	require.NoError(t, err)

	// "None" style id, zero ask, and the unparseable row are all skipped.
	require.Len(t, out, 1)

	sizes, ok := out["555088610"]
	require.True(t, ok, "style id is sanitized")
	listing, ok := sizes["9"]
	require.True(t, ok, "size token is canonicalized")
	assert.Equal(t, "Air Jordan 1 Bred Toe", listing.Name)
	assert.Equal(t, "https://stockx.com/air-jordan-1-bred-toe", listing.URL)
	assert.Equal(t, 220.0, listing.BestBid)
	assert.Equal(t, 240.0, listing.BestAsk)
	assert.Equal(t, 12, listing.SalesLast72)
	assert.Equal(t, "2018-02-24", listing.ReleaseDate)
}

func TestAnnotateTransactions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "555088610.transaction.txt",
		"9,2019-07-27T10:00:00Z,230\n9,2019-07-26T10:00:00Z,228\n10,2019-07-25T10:00:00Z,226\n")

	csv := "Air Jordan 1,aj1,555088-610,9.0,220,240,12\nAir Jordan 1,aj1,555088-610,10,220,240,12\n"
	listings, err := LoadStockX(writeFile(t, dir, "best_prices.txt", csv), testLogger())
	require.NoError(t, err)

	AnnotateTransactions(dir, listings, testLogger())

	require.Len(t, listings["555088610"]["9"].Transactions, 2)
	assert.Equal(t, 230.0, listings["555088610"]["9"].Transactions[0].Price)
	require.Len(t, listings["555088610"]["10"].Transactions, 1)
}

func TestLoadFlightClub(t *testing.T) {
	blob := `{
	  "555088-610": {
	    "9.0": {"name": "Air Jordan 1 Bred Toe", "px": "260", "sell_px_highest": 255, "sell_id": "fc123", "url": "https://www.flightclub.com/aj1"}
	  }
	}`
	path := writeFile(t, t.TempDir(), "flightclub.txt", blob)

	out, err := LoadFlightClub(path)
	require.NoError(t, err)

	listing := out["555088610"]["9"]
	require.NotNil(t, listing)
	assert.Equal(t, 260.0, listing.ListPrice, "string-encoded prices parse")
	require.NotNil(t, listing.SellPriceHighest)
	assert.Equal(t, 255.0, *listing.SellPriceHighest)
	assert.Nil(t, listing.SellPriceMarket)
	assert.Equal(t, "fc123", listing.SellID)
}

func TestLoadDu(t *testing.T) {
	blob := `{
	  "555088-610": {
	    "42.5": {
	      "title": "Air Jordan 1 Bred Toe",
	      "px": 1999,
	      "product_id_url": "https://m.poizon.com/product/1",
	      "size": "42.5",
	      "transactions": [
	        {"id": "t2", "time": "2019-07-28T01:00:00.000", "px": 1980},
	        {"id": "t1", "time": "2019-07-27T22:00:00.000", "px": 1970}
	      ]
	    }
	  }
	}`
	path := writeFile(t, t.TempDir(), "du.20190728-110632.txt", blob)

	out, err := LoadDu(path)
	require.NoError(t, err)

	listing := out["555088610"]["42.5"]
	require.NotNil(t, listing)
	assert.Equal(t, "555088-610", listing.OrigStyleID, "venue-original id retained")
	assert.Equal(t, 1999.0, listing.PriceCNY)
	require.Len(t, listing.Transactions, 2)
	assert.Equal(t, "t2", listing.Transactions[0].ID)
}

func TestObservationTimeFromPath(t *testing.T) {
	got := ObservationTimeFromPath("/data/du/du.20190728-110632.txt")
	want := time.Date(2019, 7, 28, 11, 6, 32, 0, time.UTC)
	assert.Equal(t, want, got)
}
