// Package fst applies a finite-state transducer over symbol groups and
// emits a compacted output stream plus the index tape of originating
// input positions.
//
// Tables are dense and flat, indexed state*numGroups+group. Translation
// cells are variable-length byte runs packed into one payload slice with
// an offset table, so nothing inside the parallel phases ever grows.
package fst

import (
	"errors"
	"fmt"
)

// MaxStates bounds the transducer state count. The chunked simulation
// evaluates every state per chunk, so this stays small.
const MaxStates = 32

var (
	// ErrTableShape is returned when table dimensions disagree with the
	// declared state or group counts.
	ErrTableShape = errors.New("table shape mismatch")
	// ErrBadState is returned for a state id outside the table.
	ErrBadState = errors.New("state id out of range")
)

// Tables is the immutable transition/translation configuration of one
// transducer. Built once, shared by any number of calls.
type Tables struct {
	numStates int
	numGroups int

	next []uint8 // next[state*numGroups+group]

	// Translation cell i covers syms[off[i]:off[i+1]].
	off  []uint32
	syms []byte
}

// NewTables validates and packs dense tables. next[s][g] is the
// successor state, outputs[s][g] the emitted run for that transition
// (nil or empty for no output).
func NewTables(numStates, numGroups int, next [][]uint8, outputs [][][]byte) (*Tables, error) {
	if numStates < 1 || numStates > MaxStates {
		return nil, fmt.Errorf("%w: %d states, limit %d", ErrTableShape, numStates, MaxStates)
	}
	if len(next) != numStates || len(outputs) != numStates {
		return nil, fmt.Errorf("%w: %d transition rows, %d translation rows, want %d",
			ErrTableShape, len(next), len(outputs), numStates)
	}

	t := &Tables{
		numStates: numStates,
		numGroups: numGroups,
		next:      make([]uint8, numStates*numGroups),
		off:       make([]uint32, numStates*numGroups+1),
	}
	for s := 0; s < numStates; s++ {
		if len(next[s]) != numGroups || len(outputs[s]) != numGroups {
			return nil, fmt.Errorf("%w: row %d has %d/%d columns, want %d",
				ErrTableShape, s, len(next[s]), len(outputs[s]), numGroups)
		}
		for g := 0; g < numGroups; g++ {
			if int(next[s][g]) >= numStates {
				return nil, fmt.Errorf("%w: transition [%d][%d] -> %d", ErrBadState, s, g, next[s][g])
			}
			idx := s*numGroups + g
			t.next[idx] = next[s][g]
			t.syms = append(t.syms, outputs[s][g]...)
			t.off[idx+1] = uint32(len(t.syms))
		}
	}
	return t, nil
}

// States returns the state count.
func (t *Tables) States() int {
	return t.numStates
}

// Groups returns the symbol group count the tables were built for.
func (t *Tables) Groups() int {
	return t.numGroups
}

// Next returns the successor of state s on group g.
func (t *Tables) Next(s uint8, g uint8) uint8 {
	return t.next[int(s)*t.numGroups+int(g)]
}

// OutLen returns the output run length of the (s, g) transition.
func (t *Tables) OutLen(s uint8, g uint8) uint32 {
	idx := int(s)*t.numGroups + int(g)
	return t.off[idx+1] - t.off[idx]
}

// Out returns the output run of the (s, g) transition.
func (t *Tables) Out(s uint8, g uint8) []byte {
	idx := int(s)*t.numGroups + int(g)
	return t.syms[t.off[idx]:t.off[idx+1]]
}
