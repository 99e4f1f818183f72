package stack

import (
	"context"
	"errors"
	"fmt"

	"github.com/biggeezerdevelopment/parfst-go/internal/par"
	"github.com/biggeezerdevelopment/parfst-go/internal/scratch"
)

// MaxLevelBits caps the sort key width. Levels are biased into unsigned
// space, so the key must hold the full signed level range.
const MaxLevelBits = 32

// DefaultLevelBits covers runs of up to 32767 consecutive pushes or
// pops, far beyond any sane nesting depth.
const DefaultLevelBits = 16

// ErrBadLevelBits is returned for a key width the sort cannot use.
var ErrBadLevelBits = errors.New("level bits must be in [8, 32]")

// Resolver computes top-of-stack tapes. It carries no per-call state and
// may be shared; the arena passed to Resolve may not.
type Resolver struct {
	runner    *par.Runner
	levelBits int
	bias      int32
	mask      uint32
}

// NewResolver builds a resolver whose sort key covers levelBits bits of
// signed nesting depth. Zero selects DefaultLevelBits.
func NewResolver(runner *par.Runner, levelBits int) (*Resolver, error) {
	if levelBits == 0 {
		levelBits = DefaultLevelBits
	}
	if levelBits < 8 || levelBits > MaxLevelBits {
		return nil, fmt.Errorf("%w: got %d", ErrBadLevelBits, levelBits)
	}
	var mask uint32 = ^uint32(0)
	if levelBits < 32 {
		mask = (1 << levelBits) - 1
	}
	return &Resolver{
		runner:    runner,
		levelBits: levelBits,
		bias:      int32(1) << (levelBits - 1),
		mask:      mask,
	}, nil
}

// Resolve produces the dense top-of-stack tape for a sparse, position-
// ordered operation sequence. tape[i] holds the symbol on top of the
// logical stack once position i's own operation has taken effect; a push
// position therefore carries its own symbol, so the gap-fill hands every
// enclosed position its enclosing push. Reads and pops at depth zero
// resolve to empty, as do pops below depth zero (underflow clamps).
//
// Push/pop balance is not validated; unbalanced input yields a
// best-effort tape. Levels outside the configured key width are a caller
// configuration error and produce well-defined garbage.
func (r *Resolver) Resolve(ctx context.Context, arena *scratch.Arena, ops []Op, numPositions int, empty, marker byte) ([]byte, error) {
	tape := make([]byte, numPositions)
	if numPositions == 0 {
		return tape, nil
	}

	sorted, err := r.resolveOps(ctx, arena, ops, empty)
	if err != nil {
		return nil, err
	}

	// Scatter resolved values to their original positions; everything
	// else starts as the read marker.
	err = r.runner.ForEach(ctx, numPositions, func(s par.Span) error {
		for i := s.Lo; i < s.Hi; i++ {
			tape[i] = marker
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = r.runner.ForEach(ctx, len(sorted), func(s par.Span) error {
		for i := s.Lo; i < s.Hi; i++ {
			tape[sorted[i].pos] = sorted[i].value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Gap-fill: marker slots inherit the nearest preceding resolved
	// value, seeded with empty for leading positions.
	if tape[0] == marker {
		tape[0] = empty
	}
	err = par.ScanInclusive(ctx, r.runner, tape, func(a, b byte) byte {
		if b == marker {
			return a
		}
		return b
	})
	if err != nil {
		return nil, err
	}
	return tape, nil
}

// resolveOps runs the sort/scan pipeline over the sparse operations and
// returns records whose values are fully resolved.
func (r *Resolver) resolveOps(ctx context.Context, arena *scratch.Arena, ops []Op, empty byte) ([]record, error) {
	if len(ops) == 0 {
		return nil, nil
	}

	// Phase 1+2: depth deltas, then absolute levels via prefix sum. The
	// (level, symbol) pair addition keeps the right operand's symbol, so
	// only the level component needs scanning.
	levels := scratch.Of[int32](arena, len(ops))
	err := r.runner.ForEach(ctx, len(ops), func(s par.Span) error {
		for i := s.Lo; i < s.Hi; i++ {
			levels[i] = ops[i].Kind.delta()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := par.ScanInclusive(ctx, r.runner, levels, func(a, b int32) int32 { return a + b }); err != nil {
		return nil, err
	}

	// Phase 3 prep: key each operation by the level it provides or
	// observes. Pushes provide the level they create; pops observe the
	// level that remains, reads the level they sit at - all of which is
	// the inclusive-scan level itself. Level <= 0 means the stack is
	// empty there: remap to an empty-stack provider (step 4), which also
	// clamps underflow.
	recs := scratch.Of[record](arena, len(ops))
	alt := scratch.Of[record](arena, len(ops))
	err = r.runner.ForEach(ctx, len(ops), func(s par.Span) error {
		for i := s.Lo; i < s.Hi; i++ {
			recs[i] = record{
				key:      uint32(levels[i]+r.bias) & r.mask,
				pos:      ops[i].Pos,
				value:    ops[i].Symbol,
				provider: ops[i].Kind == Push,
			}
			if levels[i] <= 0 {
				recs[i].value = empty
				recs[i].provider = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Phase 3: stable sort by level. Ties keep temporal order, which the
	// propagation scan relies on.
	sorted, err := radixSort(ctx, r.runner, recs, alt, r.levelBits)
	if err != nil {
		return nil, err
	}

	// Phase 5: within each level run, consumers inherit the most recent
	// preceding provider's symbol.
	err = par.ScanInclusive(ctx, r.runner, sorted, func(a, b record) record {
		if b.provider || b.key != a.key {
			return b
		}
		b.value = a.value
		b.provider = a.provider
		return b
	})
	if err != nil {
		return nil, err
	}
	return sorted, nil
}
