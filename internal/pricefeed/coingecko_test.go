package pricefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcatracker/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "BRL", time.Second, zerolog.Nop())
}

func TestPricesReadsEveryCoin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "brl", r.URL.Query().Get("vs_currencies"))
		_, _ = w.Write([]byte(`{"bitcoin":{"brl":612345.67},"ethereum":{"brl":20123.4}}`))
	})

	prices, err := c.Prices(context.Background(), domain.Bitcoin, domain.Ethereum)
	require.NoError(t, err)
	assert.Equal(t, "612345.67", prices[domain.Bitcoin].String())
	assert.Equal(t, "20123.4", prices[domain.Ethereum].String())

	btc, err := c.Price(context.Background(), domain.Bitcoin)
	require.NoError(t, err)
	assert.Equal(t, "612345.67", btc.String())
}

func TestPricesMissingCoinIsUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bitcoin":{"brl":1}}`))
	})

	_, err := c.Prices(context.Background(), domain.Bitcoin, domain.Ethereum)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamFailure))
}

func TestPriceHTTPErrorIsUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Price(context.Background(), domain.Bitcoin)
	assert.True(t, errors.Is(err, domain.ErrUpstreamFailure))
}

func TestSnapshotFallsBackToZero(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	prices := c.Snapshot(context.Background(), domain.Bitcoin, domain.Ethereum)
	require.Len(t, prices, 2)
	assert.True(t, prices[domain.Bitcoin].IsZero())
	assert.True(t, prices[domain.Ethereum].IsZero())
}

func TestSnapshotUnreachableFeed(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "brl", 200*time.Millisecond, zerolog.Nop())

	prices := c.Snapshot(context.Background(), domain.Bitcoin)
	assert.True(t, prices[domain.Bitcoin].IsZero())
}
