package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"lob/internal/common"
)

func TestOrder_Fill(t *testing.T) {
	order := Order{ID: 1, Side: common.Buy, Price: 5000, OriginalQuantity: 100, RemainingQuantity: 100}

	filled := order.Fill(30, 1001)
	assert.Equal(t, common.Quantity(30), filled)
	assert.Equal(t, common.Quantity(70), order.RemainingQuantity)
	assert.False(t, order.IsFullyFilled())

	filled = order.Fill(70, 1002)
	assert.Equal(t, common.Quantity(70), filled)
	assert.Equal(t, common.Quantity(0), order.RemainingQuantity)
	assert.True(t, order.IsFullyFilled())
}

func TestOrder_Fill_Overfill(t *testing.T) {
	order := Order{ID: 1, Side: common.Buy, Price: 5000, OriginalQuantity: 100, RemainingQuantity: 100}

	filled := order.Fill(150, 1001)
	assert.Equal(t, common.Quantity(100), filled)
	assert.True(t, order.IsFullyFilled())
}

func TestOrder_UpdateQuantity_RejectsZero(t *testing.T) {
	order := Order{ID: 1, Side: common.Buy, Price: 5000, OriginalQuantity: 100, RemainingQuantity: 100}

	err := order.UpdateQuantity(0, 1001)
	assert.ErrorIs(t, err, common.ErrInvalidQuantity)
	assert.Equal(t, common.Quantity(100), order.RemainingQuantity)
}

func TestOrder_Cancel(t *testing.T) {
	order := Order{ID: 1, Side: common.Buy, Price: 5000, OriginalQuantity: 100, RemainingQuantity: 70}
	order.Cancel(42)
	assert.Equal(t, OrderRetired, order.Status)
	assert.Equal(t, common.Timestamp(42), order.EventTimestamp)
}

func TestOrder_FilledQuantity(t *testing.T) {
	order := Order{OriginalQuantity: 100, RemainingQuantity: 40}
	assert.Equal(t, common.Quantity(60), order.FilledQuantity())
}
