package fxrates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CNY", r.URL.Query().Get("from"))
		assert.Equal(t, "USD", r.URL.Query().Get("to"))
		w.Write([]byte(`{"from":"CNY","to":"USD","rate":0.1412}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	rate, err := c.Rate(context.Background(), "CNY", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 0.1412, rate, 1e-9)
}

func TestRateMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Rate(context.Background(), "CNY", "USD")
	require.Error(t, err)
}

func TestRateNonPositive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"rate":0}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Rate(context.Background(), "CNY", "USD")
	require.Error(t, err)
}

func TestRateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Rate(context.Background(), "CNY", "USD")
	require.Error(t, err)
}
