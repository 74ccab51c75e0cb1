package engine

// orderHandle and levelHandle are stable indices into the book's two
// arenas. All "pointers" in this package are handles: equality is handle
// equality, dereference is a slice index. See §9 of the design notes —
// this is the arena + stable handle strategy recommended for translating a
// cyclic pointer graph (order <-> level <-> tree node) into Go.
type orderHandle int32
type levelHandle int32

// noHandle is the shared "nil" for both handle types.
const noHandle = -1
