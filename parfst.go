// Package parfst executes stack-based finite-state transducers over
// symbol streams using data-parallel kernels.
//
// The package turns two inherently sequential computations into
// sort/scan pipelines with no lane-to-lane dependency chains: resolving
// the top of an implicit push/pop stack at every input position, and
// running a table-driven transducer that emits a compacted output stream
// plus an index tape of originating positions. Results are deterministic
// and independent of the lane count.
//
// Configuration is immutable once an Engine is built; the engine owns a
// scratch arena that grows to the largest call ever made and is reused
// afterwards. One engine serves one call at a time - use an EnginePool
// for concurrent throughput.
package parfst

import (
	"errors"
)

var (
	// ErrConfiguration covers invalid grammar shapes, state or group
	// counts over the static limits, and sentinel collisions. Returned
	// at construction only; a rejected engine is never partially usable.
	ErrConfiguration = errors.New("invalid engine configuration")

	// ErrSentinelCollision is returned when a sentinel value also occurs
	// as a push or pop symbol.
	ErrSentinelCollision = errors.New("sentinel collides with stack symbol")
)

// SymbolGroup is a named equivalence class of input symbols. Groups are
// matched in declared order; a symbol belongs to the first group listing
// it. Symbols in no group fall into the implicit catch-all group, whose
// id is len(groups).
type SymbolGroup struct {
	Name    string
	Members []byte
}

// Grammar is the immutable configuration of one transducer: symbol
// groups plus dense transition and translation tables. Both tables are
// indexed [state][group id], with the catch-all group as the last
// column. Translation cells hold zero or more output symbols.
type Grammar struct {
	Groups       []SymbolGroup
	Transitions  [][]uint8
	Translations [][][]byte
	StartState   uint8
}

// StackConfig describes how raw symbols map onto stack operations and
// which sentinel values the resolver may use. Sentinels must not occur
// among the push or pop symbols.
type StackConfig struct {
	// PushSymbols and PopSymbols drive ExtractStackOps. Symbols in
	// neither set produce no operation and are resolved by gap-fill.
	PushSymbols []byte
	PopSymbols  []byte

	// EmptySentinel is the resolved value at nesting depth zero.
	// ReadMarker is the placeholder for positions without an operation;
	// it never survives into a finished tape.
	EmptySentinel byte
	ReadMarker    byte

	// LevelBits is the sort key width in bits; it must cover the signed
	// level range of the longest possible push or pop run. Zero selects
	// the default of 16.
	LevelBits int
}

// StackOpKind discriminates stack operations.
type StackOpKind uint8

const (
	// OpRead observes the top of the stack.
	OpRead StackOpKind = iota
	// OpPush pushes the operation's symbol.
	OpPush
	// OpPop removes the current top.
	OpPop
)

// StackOp is one sparse stack operation at an input position.
type StackOp struct {
	Pos    uint32
	Symbol byte
	Kind   StackOpKind
}

// Result is the compacted output of one transduce call.
type Result struct {
	// Output holds the emitted symbols in input order; its length is the
	// sum of translation entry lengths along the realized path.
	Output []byte
	// Positions lists every input position whose translation entry was
	// non-empty, in order.
	Positions []uint32
	// Count is the number of emitting input positions, len(Positions).
	Count int
	// FinalState is the machine state after the last symbol, supplied as
	// the start state of the next chunk when chaining calls.
	FinalState uint8
}
