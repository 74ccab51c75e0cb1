package engine

import "lob/internal/common"

// OrderStatus tracks where an order sits in the absent -> live -> retired
// state machine of §4.5.
type OrderStatus uint8

const (
	OrderLive OrderStatus = iota
	OrderRetired
)

// Order is a passive datum: attributes plus FIFO/tree linkage. It never
// calls into the book or the matching engine itself.
//
// The richer of the two order-record variants observed in the source is
// followed here: an explicit RemainingQuantity alongside OriginalQuantity
// and a Status field, rather than decrementing a single quantity in place.
// This makes partial-fill state directly observable without recomputing it
// from a fill history.
type Order struct {
	ID                common.OrderID
	Side              common.Side
	Price             common.Price
	OriginalQuantity  common.Quantity
	RemainingQuantity common.Quantity
	EntryTimestamp    common.Timestamp
	EventTimestamp    common.Timestamp
	ExchangeID        common.ExchangeID
	Status            OrderStatus

	// prev/next link siblings at the same price level; level names the
	// owning price-level slot. All three are arena handles, not pointers.
	prev  orderHandle
	next  orderHandle
	level levelHandle
}

// FilledQuantity is the amount of the order consumed so far.
func (o *Order) FilledQuantity() common.Quantity {
	return o.OriginalQuantity - o.RemainingQuantity
}

// IsFullyFilled reports whether the order has no working quantity left.
func (o *Order) IsFullyFilled() bool {
	return o.RemainingQuantity == 0
}

// Notional is price * original quantity, widened to avoid overflow.
func (o *Order) Notional() common.Wide128 {
	return common.MulNotional(o.Price, o.OriginalQuantity)
}

// RemainingNotional is price * remaining quantity, widened to avoid
// overflow.
func (o *Order) RemainingNotional() common.Wide128 {
	return common.MulNotional(o.Price, o.RemainingQuantity)
}

// Fill reduces the working quantity by min(qty, RemainingQuantity) and
// stamps the event time, returning the amount actually filled.
func (o *Order) Fill(qty common.Quantity, eventTime common.Timestamp) common.Quantity {
	filled := qty
	if filled > o.RemainingQuantity {
		filled = o.RemainingQuantity
	}
	o.RemainingQuantity -= filled
	o.EventTimestamp = eventTime
	return filled
}

// UpdateQuantity sets the working (remaining) quantity directly and stamps
// the event time. A zero quantity is rejected — callers that want to zero
// an order out should cancel it instead, per the process() dispatch rule in
// §4.5. Growing the quantity above the original is allowed; time priority
// is preserved either way (see §4.5 and §9 design note 4).
func (o *Order) UpdateQuantity(newQuantity common.Quantity, eventTime common.Timestamp) error {
	if newQuantity == 0 {
		return common.ErrInvalidQuantity
	}
	o.RemainingQuantity = newQuantity
	o.EventTimestamp = eventTime
	return nil
}

// Cancel retires the order, stamping the event time. It does not unlink the
// order from its level or free its slot — that is the book's job, since it
// must mutate two records (order and level) atomically.
func (o *Order) Cancel(eventTime common.Timestamp) {
	o.Status = OrderRetired
	o.EventTimestamp = eventTime
}
