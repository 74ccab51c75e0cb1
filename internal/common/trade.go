package common

import "fmt"

// Trade is an immutable execution record emitted by the matching engine.
// Field order mirrors the external contract of §6: aggressor id, passive
// id, price, quantity, timestamp, aggressor side.
type Trade struct {
	AggressorOrderID OrderID
	PassiveOrderID   OrderID
	Price            Price
	Quantity         Quantity
	Timestamp        Timestamp
	AggressorSide    Side
}

// Value returns price*quantity widened to avoid overflow.
func (t Trade) Value() Wide128 {
	return MulNotional(t.Price, t.Quantity)
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"Trade: qty=%d @ %d (aggressor=%d, passive=%d, side=%s, ts=%d)",
		t.Quantity, t.Price, t.AggressorOrderID, t.PassiveOrderID, t.AggressorSide, t.Timestamp,
	)
}
