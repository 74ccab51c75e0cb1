package common

import "math/bits"

// Wide128 is an unsigned 128-bit integer, assembled from two uint64 halves.
// Notional values (price * quantity, summed across a price level) can
// overflow a single uint64 well within realistic price/quantity ranges, so
// aggregate notional is carried in this wider type instead.
type Wide128 struct {
	Hi uint64
	Lo uint64
}

// MulNotional computes price*quantity without overflow.
func MulNotional(price Price, qty Quantity) Wide128 {
	hi, lo := bits.Mul64(uint64(price), uint64(qty))
	return Wide128{Hi: hi, Lo: lo}
}

// Add returns w+other.
func (w Wide128) Add(other Wide128) Wide128 {
	lo, carry := bits.Add64(w.Lo, other.Lo, 0)
	hi, _ := bits.Add64(w.Hi, other.Hi, carry)
	return Wide128{Hi: hi, Lo: lo}
}

// Sub returns w-other. Callers are expected to only subtract values that
// were previously added (aggregate notional never goes negative in a
// correctly used price level).
func (w Wide128) Sub(other Wide128) Wide128 {
	lo, borrow := bits.Sub64(w.Lo, other.Lo, 0)
	hi, _ := bits.Sub64(w.Hi, other.Hi, borrow)
	return Wide128{Hi: hi, Lo: lo}
}

// IsZero reports whether the value is zero.
func (w Wide128) IsZero() bool {
	return w.Hi == 0 && w.Lo == 0
}
