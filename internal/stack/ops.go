// Package stack resolves what sits on top of an implicit push/pop stack
// at every position of a symbol stream, without ever walking the stack
// sequentially.
//
// The resolver reformulates the stack walk as a sort-by-level-then-scan
// pipeline: per-operation depth deltas become absolute nesting levels via
// a prefix sum, a stable sort groups every operation touching the same
// level in temporal order, and a propagation scan matches each pop or
// read with the most recent push at its level. All phases are data
// parallel and bit-deterministic.
package stack

// OpKind discriminates how an operation moves the logical stack.
type OpKind uint8

const (
	// Read observes the top of the stack without changing it.
	Read OpKind = iota
	// Push puts the operation's symbol on the stack.
	Push
	// Pop removes the current top of the stack.
	Pop
)

// Op is one sparse stack operation, derived from an input symbol.
type Op struct {
	Pos    uint32
	Symbol byte
	Kind   OpKind
}

// delta is the nesting depth contribution of each kind.
func (k OpKind) delta() int32 {
	switch k {
	case Push:
		return 1
	case Pop:
		return -1
	default:
		return 0
	}
}

// ExtractRule classifies a raw symbol into a stack operation. The second
// result reports whether the symbol produces an operation at all;
// symbols without one are resolved later by tape gap-fill.
type ExtractRule func(sym byte) (OpKind, bool)

// ExtractOps derives the sparse operation sequence for a raw buffer.
// Output order follows input order, as the resolver requires.
func ExtractOps(input []byte, rule ExtractRule, dst []Op) []Op {
	for i, sym := range input {
		kind, ok := rule(sym)
		if !ok {
			continue
		}
		dst = append(dst, Op{Pos: uint32(i), Symbol: sym, Kind: kind})
	}
	return dst
}
