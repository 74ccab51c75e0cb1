package engine

import "lob/internal/common"

// avlNode is the balanced-BST linkage embedded in every price level. It is
// never touched by level.go's own methods — balancing lives in avltree.go,
// which treats the level arena as the tree's backing store.
type avlNode struct {
	parent levelHandle
	left   levelHandle
	right  levelHandle
	height int32
}

// PriceLevel aggregates all live orders resting at one price on one side.
// It does not link orders itself — the book does, since adding/removing an
// order mutates both the order record and the level in one step.
type PriceLevel struct {
	Price      common.Price
	Side       common.Side
	Size       common.Quantity
	Notional   common.Wide128
	OrderCount int

	head orderHandle
	tail orderHandle
	node avlNode
}

func newPriceLevel(price common.Price, side common.Side) PriceLevel {
	return PriceLevel{
		Price: price,
		Side:  side,
		head:  noHandle,
		tail:  noHandle,
		node:  avlNode{parent: noHandle, left: noHandle, right: noHandle, height: 1},
	}
}

// IsEmpty reports whether the level has no live orders.
func (l *PriceLevel) IsEmpty() bool {
	return l.OrderCount == 0
}

// addStats folds a newly-added order's quantity into the level aggregates.
func (l *PriceLevel) addStats(qty common.Quantity) {
	l.OrderCount++
	l.Size += qty
	l.Notional = l.Notional.Add(common.MulNotional(l.Price, qty))
}

// removeStats folds a departing order's quantity out of the level
// aggregates. Preconditions (qty <= Size, OrderCount > 0) are the caller's
// responsibility — the book only calls this as the last step of unlinking
// the matching order.
func (l *PriceLevel) removeStats(qty common.Quantity) {
	l.OrderCount--
	l.Size -= qty
	l.Notional = l.Notional.Sub(common.MulNotional(l.Price, qty))
}

// updateStats adjusts size and notional by the signed delta between old and
// new quantity; order count is unchanged since no order was added or
// removed.
func (l *PriceLevel) updateStats(oldQty, newQty common.Quantity) {
	if newQty >= oldQty {
		delta := newQty - oldQty
		l.Size += delta
		l.Notional = l.Notional.Add(common.MulNotional(l.Price, delta))
	} else {
		delta := oldQty - newQty
		l.Size -= delta
		l.Notional = l.Notional.Sub(common.MulNotional(l.Price, delta))
	}
}
