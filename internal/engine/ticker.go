package engine

// Ticker identifies the instrument an order book belongs to. It replaces
// the teacher's AssetType enum (internal/engine/types.go in the teacher):
// this repo's books are keyed by instrument symbol rather than a closed
// asset-class enum, since the spec's core is single-instrument and Engine
// is only a thin router in front of one book per instrument.
type Ticker string
