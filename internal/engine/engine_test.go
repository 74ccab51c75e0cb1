package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lob/internal/common"
)

func TestEngine_RoutesByTicker(t *testing.T) {
	e := New("AAPL", "MSFT")

	_, err := e.PlaceOrder("AAPL", Order{ID: 1, Side: common.Buy, Price: 100, RemainingQuantity: 10})
	require.NoError(t, err)
	_, err = e.PlaceOrder("MSFT", Order{ID: 2, Side: common.Buy, Price: 200, RemainingQuantity: 5})
	require.NoError(t, err)

	assert.True(t, e.Book("AAPL").Contains(1))
	assert.False(t, e.Book("AAPL").Contains(2))
	assert.True(t, e.Book("MSFT").Contains(2))
}

func TestEngine_LazilyCreatesUnlistedTicker(t *testing.T) {
	e := New()
	_, err := e.PlaceOrder("GOOG", Order{ID: 1, Side: common.Sell, Price: 150, RemainingQuantity: 3})
	require.NoError(t, err)
	assert.True(t, e.Book("GOOG").Contains(1))
}

func TestEngine_BooksAreIsolated(t *testing.T) {
	e := New("AAPL", "MSFT")

	_, err := e.PlaceOrder("AAPL", Order{ID: 1, Side: common.Sell, Price: 100, RemainingQuantity: 10})
	require.NoError(t, err)

	// A marketable buy on a different ticker must not match against AAPL's resting sell.
	trades, err := e.PlaceOrder("MSFT", Order{ID: 2, Side: common.Buy, Price: 1000, RemainingQuantity: 10})
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.True(t, e.Book("AAPL").Contains(1))
}
