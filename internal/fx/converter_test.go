package fx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls atomic.Int64
	rates map[string]float64
	err   error
}

func (f *fakeSource) Rate(_ context.Context, from, to string) (float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return f.rates[from+to], nil
}

func TestConvertCachesPerPair(t *testing.T) {
	src := &fakeSource{rates: map[string]float64{"CNYUSD": 0.14, "USDCNY": 7.1}}
	c := NewConverter(src)

	got, err := c.Convert(context.Background(), 100, "CNY", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 14.0, got, 1e-9)

	// Same pair again: no second fetch.
	_, err = c.Convert(context.Background(), 50, "CNY", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(1), src.calls.Load())

	// The reverse pair is a distinct cache key.
	got, err = c.Convert(context.Background(), 10, "USD", "CNY")
	require.NoError(t, err)
	assert.InDelta(t, 71.0, got, 1e-9)
	assert.Equal(t, int64(2), src.calls.Load())
}

func TestConvertFetchFailurePropagates(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream down")}
	c := NewConverter(src)

	_, err := c.Convert(context.Background(), 100, "CNY", "USD")
	require.Error(t, err)

	// Nothing was cached; a later call retries the source.
	src.err = nil
	src.rates = map[string]float64{"CNYUSD": 0.14}
	got, err := c.Convert(context.Background(), 100, "CNY", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 14.0, got, 1e-9)
}

func TestConvertConcurrentMissesSingleFetch(t *testing.T) {
	src := &fakeSource{rates: map[string]float64{"CNYUSD": 0.14}}
	c := NewConverter(src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Convert(context.Background(), 1, "CNY", "USD")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), src.calls.Load())
}
