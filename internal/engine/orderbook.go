package engine

import (
	"fmt"

	"lob/internal/common"
)

// orderSlot and levelSlot are arena entries. occupied distinguishes a live
// slot from one sitting on a free list awaiting reuse.
type orderSlot struct {
	order    Order
	occupied bool
}

type levelSlot struct {
	level    PriceLevel
	occupied bool
}

// OrderBook owns the two slot arenas (orders, levels), the id->order and
// price->level maps, the two side trees, and the cached best-bid/best-ask
// handles. It is a pure data structure: it knows nothing about matching.
type OrderBook struct {
	orders     []orderSlot
	freeOrders []orderHandle

	levels     []levelSlot
	freeLevels []levelHandle

	orderIndex map[common.OrderID]orderHandle
	priceIndex map[common.Price]levelHandle

	bidRoot levelHandle
	askRoot levelHandle

	bestBid levelHandle
	bestAsk levelHandle

	currentTime common.Timestamp
}

// NewOrderBook returns an empty book with no pre-sized capacity.
func NewOrderBook() *OrderBook {
	return NewOrderBookWithCapacity(0, 0)
}

// NewOrderBookWithCapacity returns an empty book whose arenas and maps are
// preallocated for the given order/level magnitudes, per §4.5 and the
// benchmark harness contract in §6.
func NewOrderBookWithCapacity(orderCapacity, levelCapacity int) *OrderBook {
	return &OrderBook{
		orders:     make([]orderSlot, 0, orderCapacity),
		levels:     make([]levelSlot, 0, levelCapacity),
		orderIndex: make(map[common.OrderID]orderHandle, orderCapacity),
		priceIndex: make(map[common.Price]levelHandle, levelCapacity),
		bidRoot:    noHandle,
		askRoot:    noHandle,
		bestBid:    noHandle,
		bestAsk:    noHandle,
	}
}

func treeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{common.ErrTreeError}, args...)...)
}

// SetTime advances the book's current time, used to stamp orders on
// mutation and to break FIFO ties.
func (b *OrderBook) SetTime(ts common.Timestamp) {
	b.currentTime = ts
}

// CurrentTime returns the book's current time.
func (b *OrderBook) CurrentTime() common.Timestamp {
	return b.currentTime
}

// --- Arena allocation -------------------------------------------------

func (b *OrderBook) allocOrder() orderHandle {
	if n := len(b.freeOrders); n > 0 {
		h := b.freeOrders[n-1]
		b.freeOrders = b.freeOrders[:n-1]
		return h
	}
	b.orders = append(b.orders, orderSlot{})
	return orderHandle(len(b.orders) - 1)
}

func (b *OrderBook) freeOrder(h orderHandle) {
	b.orders[h] = orderSlot{}
	b.freeOrders = append(b.freeOrders, h)
}

func (b *OrderBook) allocLevel() levelHandle {
	if n := len(b.freeLevels); n > 0 {
		h := b.freeLevels[n-1]
		b.freeLevels = b.freeLevels[:n-1]
		return h
	}
	b.levels = append(b.levels, levelSlot{})
	return levelHandle(len(b.levels) - 1)
}

func (b *OrderBook) freeLevel(h levelHandle) {
	b.levels[h] = levelSlot{}
	b.freeLevels = append(b.freeLevels, h)
}

// --- Queries (all O(1) except Levels, which is O(depth)) ----------------

// BestBid returns the highest resting buy price and its aggregate size.
func (b *OrderBook) BestBid() (common.Price, common.Quantity, bool) {
	if b.bestBid == noHandle {
		return 0, 0, false
	}
	lvl := &b.levels[b.bestBid].level
	return lvl.Price, lvl.Size, true
}

// BestAsk returns the lowest resting sell price and its aggregate size.
func (b *OrderBook) BestAsk() (common.Price, common.Quantity, bool) {
	if b.bestAsk == noHandle {
		return 0, 0, false
	}
	lvl := &b.levels[b.bestAsk].level
	return lvl.Price, lvl.Size, true
}

// Spread returns best-ask minus best-bid, zero if crossed, absent if either
// side is empty.
func (b *OrderBook) Spread() (common.Price, bool) {
	bidPrice, _, hasBid := b.BestBid()
	askPrice, _, hasAsk := b.BestAsk()
	if !hasBid || !hasAsk {
		return 0, false
	}
	if askPrice <= bidPrice {
		return 0, true
	}
	return askPrice - bidPrice, true
}

// MidPrice returns the integer average of best bid and best ask.
func (b *OrderBook) MidPrice() (common.Price, bool) {
	bidPrice, _, hasBid := b.BestBid()
	askPrice, _, hasAsk := b.BestAsk()
	if !hasBid || !hasAsk {
		return 0, false
	}
	return (bidPrice + askPrice) / 2, true
}

// VolumeAtPrice returns the aggregate size resting at a price, if any.
func (b *OrderBook) VolumeAtPrice(price common.Price) (common.Quantity, bool) {
	h, ok := b.priceIndex[price]
	if !ok {
		return 0, false
	}
	return b.levels[h].level.Size, true
}

// OrdersAtPrice returns the order count resting at a price, if any.
func (b *OrderBook) OrdersAtPrice(price common.Price) (int, bool) {
	h, ok := b.priceIndex[price]
	if !ok {
		return 0, false
	}
	return b.levels[h].level.OrderCount, true
}

// Contains reports whether id names a currently-live order.
func (b *OrderBook) Contains(id common.OrderID) bool {
	_, ok := b.orderIndex[id]
	return ok
}

// Get returns a copy of a live order by id.
func (b *OrderBook) Get(id common.OrderID) (Order, bool) {
	h, ok := b.orderIndex[id]
	if !ok {
		return Order{}, false
	}
	return b.orders[h].order, true
}

// TotalOrders is the number of live orders in the book.
func (b *OrderBook) TotalOrders() int {
	return len(b.orderIndex)
}

// TotalLevels is the number of live price levels (both sides).
func (b *OrderBook) TotalLevels() int {
	return len(b.priceIndex)
}

// LevelView is a read-only (price, aggregate size) pair as returned by
// Levels.
type LevelView struct {
	Price common.Price
	Size  common.Quantity
}

// Levels walks the bid tree descending and the ask tree ascending, each
// in-order (so no sort is needed), truncating to depth if non-negative.
func (b *OrderBook) Levels(depth int) (bids, asks []LevelView) {
	bids = b.walkDescending(b.bidRoot, depth)
	asks = b.walkAscending(b.askRoot, depth)
	return bids, asks
}

func (b *OrderBook) walkAscending(root levelHandle, depth int) []LevelView {
	var out []LevelView
	var visit func(h levelHandle)
	visit = func(h levelHandle) {
		if h == noHandle || (depth >= 0 && len(out) >= depth) {
			return
		}
		node := b.levelNode(h)
		visit(node.left)
		if depth >= 0 && len(out) >= depth {
			return
		}
		lvl := &b.levels[h].level
		out = append(out, LevelView{Price: lvl.Price, Size: lvl.Size})
		visit(node.right)
	}
	visit(root)
	return out
}

func (b *OrderBook) walkDescending(root levelHandle, depth int) []LevelView {
	var out []LevelView
	var visit func(h levelHandle)
	visit = func(h levelHandle) {
		if h == noHandle || (depth >= 0 && len(out) >= depth) {
			return
		}
		node := b.levelNode(h)
		visit(node.right)
		if depth >= 0 && len(out) >= depth {
			return
		}
		lvl := &b.levels[h].level
		out = append(out, LevelView{Price: lvl.Price, Size: lvl.Size})
		visit(node.left)
	}
	visit(root)
	return out
}

// --- Mutations -----------------------------------------------------------

// Add inserts a brand-new live order into the book.
func (b *OrderBook) Add(order Order) error {
	if order.Price == 0 {
		return fmt.Errorf("%w: price for order %d", common.ErrInvalidPrice, order.ID)
	}
	if order.RemainingQuantity == 0 {
		return fmt.Errorf("%w: quantity for order %d", common.ErrInvalidQuantity, order.ID)
	}
	if b.Contains(order.ID) {
		return fmt.Errorf("%w: id %d", common.ErrOrderAlreadyExists, order.ID)
	}
	if order.OriginalQuantity == 0 {
		order.OriginalQuantity = order.RemainingQuantity
	}

	order.Status = OrderLive
	order.EntryTimestamp = b.currentTime
	order.EventTimestamp = b.currentTime
	order.prev = noHandle
	order.next = noHandle

	levelH := b.getOrCreateLevel(order.Price, order.Side)

	orderH := b.allocOrder()
	order.level = levelH
	b.orders[orderH] = orderSlot{order: order, occupied: true}
	b.orderIndex[order.ID] = orderH

	b.appendToTail(levelH, orderH)
	lvl := &b.levels[levelH].level
	lvl.addStats(order.RemainingQuantity)

	b.maybeUpdateBestOnInsert(levelH, order.Side)
	return nil
}

// getOrCreateLevel locates the level at price, creating and tree-inserting
// it if this is the first order at that price. O(1) when the level already
// exists, O(log M) when a new level must be inserted into the side tree.
func (b *OrderBook) getOrCreateLevel(price common.Price, side common.Side) levelHandle {
	if h, ok := b.priceIndex[price]; ok {
		return h
	}

	h := b.allocLevel()
	b.levels[h] = levelSlot{level: newPriceLevel(price, side), occupied: true}
	b.priceIndex[price] = h

	if side == common.Buy {
		b.bidRoot = b.treeInsert(b.bidRoot, h)
	} else {
		b.askRoot = b.treeInsert(b.askRoot, h)
	}
	return h
}

func (b *OrderBook) appendToTail(levelH levelHandle, orderH orderHandle) {
	lvl := &b.levels[levelH].level
	if lvl.tail == noHandle {
		lvl.head = orderH
		lvl.tail = orderH
		return
	}
	tail := lvl.tail
	b.orders[tail].order.next = orderH
	b.orders[orderH].order.prev = tail
	lvl.tail = orderH
}

func (b *OrderBook) maybeUpdateBestOnInsert(levelH levelHandle, side common.Side) {
	price := b.levels[levelH].level.Price
	if side == common.Buy {
		if b.bestBid == noHandle || price > b.levels[b.bestBid].level.Price {
			b.bestBid = levelH
		}
		return
	}
	if b.bestAsk == noHandle || price < b.levels[b.bestAsk].level.Price {
		b.bestAsk = levelH
	}
}

// Cancel retires a live order, returning it by value.
func (b *OrderBook) Cancel(id common.OrderID) (Order, error) {
	orderH, ok := b.orderIndex[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: id %d", common.ErrOrderNotFound, id)
	}

	order := &b.orders[orderH].order
	levelH := order.level
	order.Cancel(b.currentTime)
	cancelled := *order

	b.unlinkFromLevel(orderH, levelH)
	delete(b.orderIndex, id)
	b.freeOrder(orderH)

	if b.levels[levelH].level.IsEmpty() {
		b.removeEmptyLevel(levelH)
	}

	return cancelled, nil
}

func (b *OrderBook) unlinkFromLevel(orderH orderHandle, levelH levelHandle) {
	order := &b.orders[orderH].order
	prev, next := order.prev, order.next
	lvl := &b.levels[levelH].level

	if prev != noHandle {
		b.orders[prev].order.next = next
	} else {
		lvl.head = next
	}
	if next != noHandle {
		b.orders[next].order.prev = prev
	} else {
		lvl.tail = prev
	}

	lvl.removeStats(order.RemainingQuantity)
}

func (b *OrderBook) removeEmptyLevel(levelH levelHandle) {
	lvl := b.levels[levelH].level
	delete(b.priceIndex, lvl.Price)

	if lvl.Side == common.Buy {
		b.bidRoot = b.treeRemove(b.bidRoot, levelH)
	} else {
		b.askRoot = b.treeRemove(b.askRoot, levelH)
	}

	if b.bestBid == levelH {
		b.bestBid = b.maxWithOrders(b.bidRoot)
	}
	if b.bestAsk == levelH {
		b.bestAsk = b.minWithOrders(b.askRoot)
	}

	b.freeLevel(levelH)
}

// Update changes a live order's working quantity, preserving its FIFO
// position (no relocation within the level's queue).
func (b *OrderBook) Update(id common.OrderID, newQuantity common.Quantity) error {
	if newQuantity == 0 {
		return fmt.Errorf("%w: quantity for order %d", common.ErrInvalidQuantity, id)
	}
	orderH, ok := b.orderIndex[id]
	if !ok {
		return fmt.Errorf("%w: id %d", common.ErrOrderNotFound, id)
	}

	order := &b.orders[orderH].order
	oldQty := order.RemainingQuantity
	if err := order.UpdateQuantity(newQuantity, b.currentTime); err != nil {
		return err
	}

	lvl := &b.levels[order.level].level
	lvl.updateStats(oldQty, newQuantity)
	return nil
}

// Process is the unified write path used by the matching engine for the
// residual of an incoming order: zero quantity cancels, a positive quantity
// on a live id updates it, and a positive quantity on an unknown id is
// added. Process never swallows an error on the caller's behalf — a zero
// quantity against an id that isn't live surfaces ErrOrderNotFound, the same
// as calling Cancel directly would.
func (b *OrderBook) Process(order Order) error {
	if order.RemainingQuantity == 0 {
		_, err := b.Cancel(order.ID)
		return err
	}
	if b.Contains(order.ID) {
		return b.Update(order.ID, order.RemainingQuantity)
	}
	return b.Add(order)
}

// --- Matching-engine accessors --------------------------------------------
//
// Narrow, package-internal accessors the matching engine uses to walk the
// FIFO queue at the opposing best price without being granted the whole
// arena layout (§9 design note 3).

// bestHandle returns the cached best level handle for a side.
func (b *OrderBook) bestHandle(side common.Side) levelHandle {
	if side == common.Buy {
		return b.bestBid
	}
	return b.bestAsk
}

// headOrderAt returns the head (oldest) live order at a level handle.
func (b *OrderBook) headOrderAt(levelH levelHandle) *Order {
	h := b.levels[levelH].level.head
	if h == noHandle {
		return nil
	}
	return &b.orders[h].order
}
