package common

import "errors"

// Error taxonomy for the book and matching engine. Callers compare against
// these sentinels with errors.Is; the wrapped message carries the offending
// identifier or value for diagnostics only, never part of the contract.
var (
	ErrOrderAlreadyExists = errors.New("order already exists")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidQuantity    = errors.New("invalid quantity")

	// ErrLevelNotFound and ErrTreeError indicate an internal invariant was
	// violated (a cached best-price handle pointing at an empty level, a
	// matching loop that can't terminate). They are not expected to surface
	// in normal operation.
	ErrLevelNotFound = errors.New("price level not found")
	ErrTreeError     = errors.New("ordered-tree invariant violated")
)
