package fst

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/biggeezerdevelopment/parfst-go/internal/par"
	"github.com/biggeezerdevelopment/parfst-go/internal/scratch"
	"github.com/biggeezerdevelopment/parfst-go/internal/symbols"
)

var (
	// ErrInputTooLarge is returned when the input length exceeds the
	// uint32 index space of the offset tapes.
	ErrInputTooLarge = errors.New("input exceeds index range")
	// ErrOutputTooLarge is returned when the total translated output
	// would overflow the offset type. Detected before any write.
	ErrOutputTooLarge = errors.New("translated output exceeds index range")
)

// Result is the compacted transducer output for one call.
type Result struct {
	// Output holds the emitted symbols in input order.
	Output []byte
	// Positions holds, for every input position that emitted at least
	// one symbol, that position's index. Ordered, one entry per emitting
	// position.
	Positions []uint32
	// FinalState is the machine state after the last input symbol, for
	// chaining calls across input chunks.
	FinalState uint8
}

// Transducer drives the table-driven state machine across whole inputs.
// Stateless between calls; the per-call scratch arena carries all
// temporaries.
type Transducer struct {
	runner *par.Runner
	tables *Tables
	class  *symbols.Classifier
}

// NewTransducer wires tables to a classifier. The classifier's group
// space must match the tables' group dimension.
func NewTransducer(runner *par.Runner, tables *Tables, class *symbols.Classifier) (*Transducer, error) {
	if class.Groups() != tables.Groups() {
		return nil, fmt.Errorf("%w: classifier has %d groups, tables %d",
			ErrTableShape, class.Groups(), tables.Groups())
	}
	return &Transducer{runner: runner, tables: tables, class: class}, nil
}

// Transduce runs the machine from start across input. Output placement
// uses two-pass compaction: pass one counts each position's emission,
// an exclusive prefix sum turns counts into write offsets, and pass two
// re-evaluates the transitions to write output and index tapes. Total
// output size is known before the first write.
//
// Chunks are simulated speculatively: each chunk computes its state
// mapping for every possible entry state, then a short serial
// composition hands every chunk its actual entry state. Results are
// identical to a sequential left-to-right run.
func (t *Transducer) Transduce(ctx context.Context, arena *scratch.Arena, input []byte, start uint8) (Result, error) {
	if int(start) >= t.tables.States() {
		return Result{}, fmt.Errorf("%w: start state %d of %d", ErrBadState, start, t.tables.States())
	}
	if len(input) > math.MaxUint32 {
		return Result{}, fmt.Errorf("%w: %d symbols", ErrInputTooLarge, len(input))
	}
	if len(input) == 0 {
		return Result{FinalState: start}, nil
	}

	n := len(input)
	groups := scratch.Of[uint8](arena, n)
	err := t.runner.ForEach(ctx, n, func(s par.Span) error {
		t.class.ClassifyAll(input[s.Lo:s.Hi], groups[s.Lo:s.Hi])
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	entries, final, err := t.entryStates(ctx, groups, start)
	if err != nil {
		return Result{}, err
	}
	spans := t.runner.Spans(n)

	// Pass 1: per-position emission counts and emitting-position flags.
	counts := scratch.Of[uint32](arena, n)
	flags := scratch.Of[uint32](arena, n)
	err = t.runner.ForEachSpan(ctx, spans, func(i int, s par.Span) error {
		st := entries[i]
		for j := s.Lo; j < s.Hi; j++ {
			g := groups[j]
			c := t.tables.OutLen(st, g)
			counts[j] = c
			if c > 0 {
				flags[j] = 1
			} else {
				flags[j] = 0
			}
			st = t.tables.Next(st, g)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	symOff := scratch.Of[uint32](arena, n)
	idxOff := scratch.Of[uint32](arena, n)
	totalSyms, err := par.ExclusiveSumUint32(ctx, t.runner, counts, symOff)
	if err != nil {
		return Result{}, err
	}
	if totalSyms > math.MaxUint32 {
		return Result{}, fmt.Errorf("%w: %d symbols", ErrOutputTooLarge, totalSyms)
	}
	totalIdx, err := par.ExclusiveSumUint32(ctx, t.runner, flags, idxOff)
	if err != nil {
		return Result{}, err
	}

	// Pass 2: re-evaluate transitions, writing at the computed offsets.
	output := make([]byte, totalSyms)
	positions := make([]uint32, totalIdx)
	err = t.runner.ForEachSpan(ctx, spans, func(i int, s par.Span) error {
		st := entries[i]
		for j := s.Lo; j < s.Hi; j++ {
			g := groups[j]
			if out := t.tables.Out(st, g); len(out) > 0 {
				copy(output[symOff[j]:], out)
				positions[idxOff[j]] = uint32(j)
			}
			st = t.tables.Next(st, g)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Output: output, Positions: positions, FinalState: final}, nil
}

// entryStates computes each span's entry state plus the final machine
// state. Every span builds its full start-state-to-end-state mapping in
// parallel; composing the mappings serially is cheap because span counts
// are tiny.
func (t *Transducer) entryStates(ctx context.Context, groups []uint8, start uint8) ([]uint8, uint8, error) {
	spans := t.runner.Spans(len(groups))
	numStates := t.tables.States()

	vecs := make([][MaxStates]uint8, len(spans))
	err := t.runner.ForEachSpan(ctx, spans, func(i int, s par.Span) error {
		var vec [MaxStates]uint8
		for st := 0; st < numStates; st++ {
			vec[st] = uint8(st)
		}
		for j := s.Lo; j < s.Hi; j++ {
			g := groups[j]
			for st := 0; st < numStates; st++ {
				vec[st] = t.tables.Next(vec[st], g)
			}
		}
		vecs[i] = vec
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	entries := make([]uint8, len(spans))
	st := start
	for i := range spans {
		entries[i] = st
		st = vecs[i][st]
	}
	return entries, st, nil
}
