package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneakarb/sneakarb/internal/domain"
	"github.com/sneakarb/sneakarb/internal/notify"
	"github.com/sneakarb/sneakarb/internal/schedule"
	"github.com/sneakarb/sneakarb/internal/timeseries"
)

func duFixture(t *testing.T) string {
	t.Helper()
	return writeFixture(t, t.TempDir(), "du.20190728-110632.txt", `{
	  "555088-610": {
	    "42.5": {
	      "title": "Air Jordan 1 Bred Toe",
	      "px": 1999,
	      "size": "42.5",
	      "transactions": [
	        {"id": "t2", "time": "2019-07-28T01:00:00.000", "px": 1980},
	        {"id": "t1", "time": "2019-07-27T22:00:00.000", "px": 1970}
	      ]
	    }
	  },
	  "CP9652": {
	    "43": {"title": "Yeezy Boost 350 V2", "px": 2500, "size": "43"}
	  }
	}`)
}

func newTracker(t *testing.T, minInterval time.Duration) *schedule.Tracker {
	t.Helper()
	tracker, err := schedule.NewTracker(filepath.Join(t.TempDir(), "last_updated.csv"), minInterval)
	require.NoError(t, err)
	return tracker
}

func TestUpdatePipelineMergesSnapshot(t *testing.T) {
	path := duFixture(t)
	store := timeseries.New(t.TempDir(), testLogger())
	tracker := newTracker(t, time.Hour)

	p := NewUpdatePipeline(UpdateConfig{DuPath: path, Workers: 2}, store, tracker, nil, nil, testLogger())
	require.NoError(t, p.Run(context.Background()))

	rec, err := store.Get("555088610", "42.5")
	require.NoError(t, err)
	series := rec[string(domain.VenueDu)]
	require.NotNil(t, series)
	require.Len(t, series.Prices, 1)
	require.NotNil(t, series.Prices[0].ListPrice)
	assert.Equal(t, 1999.0, *series.Prices[0].ListPrice)
	assert.Equal(t, "2019-07-28T11:06:32Z", series.Prices[0].Time)
	assert.Len(t, series.Transactions, 2)

	_, err = store.Get("cp9652", "43")
	require.NoError(t, err)

	// Both styles are now marked fresh.
	assert.False(t, tracker.ShouldUpdate("555088610", domain.VenueDu))
	assert.False(t, tracker.ShouldUpdate("cp9652", domain.VenueDu))
}

func TestUpdatePipelineSkipsFreshStyles(t *testing.T) {
	path := duFixture(t)
	store := timeseries.New(t.TempDir(), testLogger())
	tracker := newTracker(t, time.Hour)
	tracker.MarkUpdated("555088610", domain.VenueDu)

	p := NewUpdatePipeline(UpdateConfig{DuPath: path}, store, tracker, nil, nil, testLogger())
	require.NoError(t, p.Run(context.Background()))

	_, err := store.Get("555088610", "42.5")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Get("cp9652", "43")
	assert.NoError(t, err)
}

type failingStore struct {
	domain.TimeSeriesStore
	failStyle string
}

func (f *failingStore) Merge(ctx context.Context, venue domain.Venue, observedAt time.Time, styleID string,
	prices map[string]domain.PriceSnapshot, transactions map[string][]domain.Transaction) error {
	if styleID == f.failStyle {
		return errors.New("disk full")
	}
	return f.TimeSeriesStore.Merge(ctx, venue, observedAt, styleID, prices, transactions)
}

func TestUpdatePipelineFailedStyleStaysDue(t *testing.T) {
	path := duFixture(t)
	inner := timeseries.New(t.TempDir(), testLogger())
	store := &failingStore{TimeSeriesStore: inner, failStyle: "555088610"}
	tracker := newTracker(t, time.Hour)

	sender := &recordingSender{}
	notifier := notify.NewNotifier([]notify.Sender{sender}, nil, testLogger())

	p := NewUpdatePipeline(UpdateConfig{DuPath: path}, store, tracker, nil, notifier, testLogger())
	err := p.Run(context.Background())
	require.Error(t, err)

	// The failed style is still due, the successful one is not.
	assert.True(t, tracker.ShouldUpdate("555088610", domain.VenueDu))
	assert.False(t, tracker.ShouldUpdate("cp9652", domain.VenueDu))

	require.Len(t, sender.titles, 1)
	assert.Contains(t, sender.titles[0], "failed to update")
}
