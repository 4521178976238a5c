package value

import "slices"

// BlockID identifies a compiled block owned by the evaluator.
type BlockID uint64

// Capture is one variable captured by a closure.
type Capture struct {
	VarID uint64
	Value Value
}

// Closure is opaque to the core: it is carried, compared by block and
// displayed, never invoked.
type Closure struct {
	Block    BlockID
	Captures []Capture
}

// NewClosure copies captures so later edits by the caller do not leak in.
func NewClosure(block BlockID, captures ...Capture) Closure {
	return Closure{Block: block, Captures: slices.Clone(captures)}
}
