package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lob/internal/common"
)

func newTestOrder(id common.OrderID, side common.Side, price common.Price, qty common.Quantity) Order {
	return Order{ID: id, Side: side, Price: price, RemainingQuantity: qty}
}

func TestOrderBook_AddAndQuery(t *testing.T) {
	book := NewOrderBook()

	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 10000, 5)))
	require.NoError(t, book.Add(newTestOrder(2, common.Sell, 10010, 3)))

	bidPrice, bidSize, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, common.Price(10000), bidPrice)
	assert.Equal(t, common.Quantity(5), bidSize)

	askPrice, askSize, ok := book.BestAsk()
	require.True(t, ok)
	assert.Equal(t, common.Price(10010), askPrice)
	assert.Equal(t, common.Quantity(3), askSize)

	spread, ok := book.Spread()
	require.True(t, ok)
	assert.Equal(t, common.Price(10), spread)

	mid, ok := book.MidPrice()
	require.True(t, ok)
	assert.Equal(t, common.Price(10005), mid)

	assert.Equal(t, 2, book.TotalLevels())
	assert.Equal(t, 2, book.TotalOrders())
}

func TestOrderBook_EmptyBookQueriesAbsent(t *testing.T) {
	book := NewOrderBook()

	_, _, ok := book.BestBid()
	assert.False(t, ok)
	_, _, ok = book.BestAsk()
	assert.False(t, ok)
	_, ok = book.Spread()
	assert.False(t, ok)
	_, ok = book.MidPrice()
	assert.False(t, ok)
}

func TestOrderBook_Add_RejectsZeroPrice(t *testing.T) {
	book := NewOrderBook()
	err := book.Add(newTestOrder(1, common.Buy, 0, 5))
	assert.ErrorIs(t, err, common.ErrInvalidPrice)
}

func TestOrderBook_Add_RejectsZeroQuantity(t *testing.T) {
	book := NewOrderBook()
	err := book.Add(newTestOrder(1, common.Buy, 100, 0))
	assert.ErrorIs(t, err, common.ErrInvalidQuantity)
}

func TestOrderBook_Add_RejectsDuplicateID(t *testing.T) {
	book := NewOrderBook()
	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 100, 5)))
	err := book.Add(newTestOrder(1, common.Buy, 100, 5))
	assert.ErrorIs(t, err, common.ErrOrderAlreadyExists)
}

func TestOrderBook_AddThenCancel_IsIdentity(t *testing.T) {
	book := NewOrderBook()
	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 100, 5)))

	cancelled, err := book.Cancel(1)
	require.NoError(t, err)
	assert.Equal(t, common.OrderID(1), cancelled.ID)
	assert.Equal(t, OrderRetired, cancelled.Status)

	assert.False(t, book.Contains(1))
	assert.Equal(t, 0, book.TotalOrders())
	assert.Equal(t, 0, book.TotalLevels())
	_, _, ok := book.BestBid()
	assert.False(t, ok)
}

func TestOrderBook_Cancel_UnknownID(t *testing.T) {
	book := NewOrderBook()
	_, err := book.Cancel(99)
	assert.ErrorIs(t, err, common.ErrOrderNotFound)
}

func TestOrderBook_CancelOneOfTwoAtSamePrice_KeepsLevel(t *testing.T) {
	book := NewOrderBook()
	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 100, 5)))
	require.NoError(t, book.Add(newTestOrder(2, common.Buy, 100, 7)))

	_, err := book.Cancel(1)
	require.NoError(t, err)

	size, ok := book.VolumeAtPrice(100)
	require.True(t, ok)
	assert.Equal(t, common.Quantity(7), size)

	count, ok := book.OrdersAtPrice(100)
	require.True(t, ok)
	assert.Equal(t, 1, count)
}

func TestOrderBook_Update_PreservesLevelSizeLaw(t *testing.T) {
	book := NewOrderBook()
	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 100, 5)))
	require.NoError(t, book.Add(newTestOrder(2, common.Buy, 100, 3)))

	priorSize, _ := book.VolumeAtPrice(100)

	require.NoError(t, book.Update(1, 9))

	newSize, ok := book.VolumeAtPrice(100)
	require.True(t, ok)
	assert.Equal(t, priorSize+9-5, newSize)
}

func TestOrderBook_Update_RejectsZero(t *testing.T) {
	book := NewOrderBook()
	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 100, 5)))
	err := book.Update(1, 0)
	assert.ErrorIs(t, err, common.ErrInvalidQuantity)

	size, _ := book.VolumeAtPrice(100)
	assert.Equal(t, common.Quantity(5), size)
}

func TestOrderBook_Update_UnknownID(t *testing.T) {
	book := NewOrderBook()
	err := book.Update(42, 10)
	assert.ErrorIs(t, err, common.ErrOrderNotFound)
}

func TestOrderBook_Process_ZeroQuantityOnLiveID_CancelsIt(t *testing.T) {
	book := NewOrderBook()
	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 100, 5)))

	err := book.Process(Order{ID: 1, Side: common.Buy, Price: 100, RemainingQuantity: 0})
	require.NoError(t, err)
	assert.False(t, book.Contains(1))
}

func TestOrderBook_Process_UnknownIDWithQuantity_Adds(t *testing.T) {
	book := NewOrderBook()
	err := book.Process(newTestOrder(1, common.Sell, 200, 4))
	require.NoError(t, err)
	assert.True(t, book.Contains(1))
}

func TestOrderBook_Process_ZeroQuantityOnUnknownID_SurfacesNotFound(t *testing.T) {
	book := NewOrderBook()
	err := book.Process(Order{ID: 999, Side: common.Buy, Price: 100, RemainingQuantity: 0})
	assert.ErrorIs(t, err, common.ErrOrderNotFound)
	assert.False(t, book.Contains(999))
}

func TestOrderBook_BestPriceUpdatesAsLevelsAreRemoved(t *testing.T) {
	book := NewOrderBook()
	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 100, 5)))
	require.NoError(t, book.Add(newTestOrder(2, common.Buy, 105, 5)))
	require.NoError(t, book.Add(newTestOrder(3, common.Buy, 110, 5)))

	price, _, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, common.Price(110), price)

	_, err := book.Cancel(3)
	require.NoError(t, err)

	price, _, ok = book.BestBid()
	require.True(t, ok)
	assert.Equal(t, common.Price(105), price)

	_, err = book.Cancel(2)
	require.NoError(t, err)
	_, err = book.Cancel(1)
	require.NoError(t, err)

	_, _, ok = book.BestBid()
	assert.False(t, ok)
}

func TestOrderBook_Levels_OrderedByPricePriority(t *testing.T) {
	book := NewOrderBook()
	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 100, 5)))
	require.NoError(t, book.Add(newTestOrder(2, common.Buy, 110, 3)))
	require.NoError(t, book.Add(newTestOrder(3, common.Buy, 105, 2)))
	require.NoError(t, book.Add(newTestOrder(4, common.Sell, 120, 1)))
	require.NoError(t, book.Add(newTestOrder(5, common.Sell, 115, 6)))

	bids, asks := book.Levels(-1)
	require.Len(t, bids, 3)
	assert.Equal(t, []common.Price{110, 105, 100}, []common.Price{bids[0].Price, bids[1].Price, bids[2].Price})

	require.Len(t, asks, 2)
	assert.Equal(t, []common.Price{115, 120}, []common.Price{asks[0].Price, asks[1].Price})
}

func TestOrderBook_Levels_TruncatesToDepth(t *testing.T) {
	book := NewOrderBook()
	for i, price := range []common.Price{100, 105, 110, 115, 120} {
		require.NoError(t, book.Add(newTestOrder(common.OrderID(i+1), common.Buy, price, 1)))
	}

	bids, _ := book.Levels(2)
	require.Len(t, bids, 2)
	assert.Equal(t, common.Price(120), bids[0].Price)
	assert.Equal(t, common.Price(115), bids[1].Price)
}

func TestOrderBook_ManyLevelsStayBalanced(t *testing.T) {
	book := NewOrderBook()
	// Ascending insertion order is the pathological case for an unbalanced
	// BST (degenerates to a linked list); a balanced tree handles it fine.
	for i := common.Price(1); i <= 500; i++ {
		require.NoError(t, book.Add(newTestOrder(common.OrderID(i), common.Buy, i*10, 1)))
	}
	assert.Equal(t, 500, book.TotalLevels())
	// An AVL tree of 500 nodes is at most 12 levels high; an unbalanced
	// BST fed ascending prices would be 500 levels high.
	assert.LessOrEqual(t, book.nodeHeight(book.bidRoot), int32(12))

	price, _, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, common.Price(5000), price)

	bids, _ := book.Levels(-1)
	require.Len(t, bids, 500)
	for i := 0; i < len(bids)-1; i++ {
		assert.Greater(t, bids[i].Price, bids[i+1].Price)
	}
}

func TestOrderBook_CancelTwoChildNode_PreservesSurvivingLevelData(t *testing.T) {
	book := NewOrderBook()
	// Ascending insertion of exactly three prices on one side triggers a
	// single left rotation, leaving the middle price as the subtree root
	// with the other two as its left and right child — a deterministic way
	// to force the two-children case in treeRemove.
	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 10, 5)))
	require.NoError(t, book.Add(newTestOrder(2, common.Buy, 20, 7)))
	require.NoError(t, book.Add(newTestOrder(3, common.Buy, 30, 9)))

	_, err := book.Cancel(2)
	require.NoError(t, err)

	assert.Equal(t, 2, book.TotalLevels())

	size10, ok := book.VolumeAtPrice(10)
	require.True(t, ok)
	assert.Equal(t, common.Quantity(5), size10)

	size30, ok := book.VolumeAtPrice(30)
	require.True(t, ok)
	assert.Equal(t, common.Quantity(9), size30)

	// Levels() walks the tree structure directly, so a level whose data was
	// left orphaned by an incomplete removal (rather than genuinely absent)
	// would show up here with the wrong price or a zeroed size.
	bids, _ := book.Levels(-1)
	require.Len(t, bids, 2)
	assert.Equal(t, LevelView{Price: 30, Size: 9}, bids[0])
	assert.Equal(t, LevelView{Price: 10, Size: 5}, bids[1])

	price, size, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, common.Price(30), price)
	assert.Equal(t, common.Quantity(9), size)

	// Removing the new best forces a tree-walk recomputation of the cache;
	// it must land on the surviving real level, not an orphaned one.
	_, err = book.Cancel(3)
	require.NoError(t, err)
	price, size, ok = book.BestBid()
	require.True(t, ok)
	assert.Equal(t, common.Price(10), price)
	assert.Equal(t, common.Quantity(5), size)
}

func TestOrderBook_Notional_NoOverflowAtLargeQuantities(t *testing.T) {
	book := NewOrderBook()
	require.NoError(t, book.Add(newTestOrder(1, common.Buy, 1<<40, 1<<40)))

	order, ok := book.Get(1)
	require.True(t, ok)
	wide := order.Notional()
	// price * qty = 2^80 (~1.2e24), which overflows a uint64 (max ~1.8e19).
	assert.Equal(t, uint64(1<<16), wide.Hi)
	assert.Equal(t, uint64(0), wide.Lo)
}
