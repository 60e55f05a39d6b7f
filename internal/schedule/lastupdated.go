// Package schedule tracks when each (style id, venue) was last refreshed so
// the update pipeline only touches items that have gone stale.
package schedule

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sneakarb/sneakarb/internal/domain"
)

const timeLayout = "20060102-150405"

// venueColumns fixes the CSV column order after the style id.
var venueColumns = []domain.Venue{domain.VenueDu, domain.VenueStockX, domain.VenueFlightClub}

// Tracker is a CSV-backed last-updated table. A zero MinInterval means every
// item is always due.
type Tracker struct {
	path        string
	minInterval time.Duration
	now         func() time.Time

	lastUpdated map[string]map[domain.Venue]time.Time
}

// NewTracker loads the tracker file if it exists; a missing file starts an
// empty table.
func NewTracker(path string, minInterval time.Duration) (*Tracker, error) {
	t := &Tracker{
		path:        path,
		minInterval: minInterval,
		now:         time.Now,
		lastUpdated: make(map[string]map[domain.Venue]time.Time),
	}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tracker) load() error {
	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("schedule: open %s: %w", t.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("schedule: read %s: %w", t.path, err)
	}

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		styleID := row[0]
		t.lastUpdated[styleID] = make(map[domain.Venue]time.Time)
		for i, venue := range venueColumns {
			if i+1 >= len(row) || row[i+1] == "" {
				continue
			}
			ts, err := time.Parse(timeLayout, row[i+1])
			if err != nil {
				return fmt.Errorf("schedule: parse %s %s: %w", styleID, row[i+1], err)
			}
			t.lastUpdated[styleID][venue] = ts
		}
	}
	return nil
}

// ShouldUpdate reports whether the item is due for a refresh on the venue.
func (t *Tracker) ShouldUpdate(styleID string, venue domain.Venue) bool {
	if t.minInterval <= 0 {
		return true
	}
	last, ok := t.lastUpdated[styleID][venue]
	if !ok {
		return true
	}
	return t.now().Sub(last) > t.minInterval
}

// MarkUpdated records a refresh and returns its timestamp. Callers must only
// mark after the merge persisted; a failed merge stays due for retry.
func (t *Tracker) MarkUpdated(styleID string, venue domain.Venue) time.Time {
	if _, ok := t.lastUpdated[styleID]; !ok {
		t.lastUpdated[styleID] = make(map[domain.Venue]time.Time)
	}
	ts := t.now()
	t.lastUpdated[styleID][venue] = ts
	return ts
}

// Save writes the table atomically (stage then rename).
func (t *Tracker) Save() error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("schedule: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("schedule: stage %s: %w", t.path, err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	styleIDs := make([]string, 0, len(t.lastUpdated))
	for styleID := range t.lastUpdated {
		styleIDs = append(styleIDs, styleID)
	}
	sort.Strings(styleIDs)

	for _, styleID := range styleIDs {
		row := []string{styleID}
		for _, venue := range venueColumns {
			ts, ok := t.lastUpdated[styleID][venue]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, ts.Format(timeLayout))
		}
		if err := writer.Write(row); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("schedule: write %s: %w", t.path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("schedule: flush %s: %w", t.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("schedule: close %s: %w", t.path, err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("schedule: rename %s: %w", t.path, err)
	}
	return nil
}
