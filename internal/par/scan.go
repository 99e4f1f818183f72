package par

import "context"

// ScanInclusive replaces xs with its inclusive prefix combine under an
// associative combiner. The scan runs in three phases: a per-span reduce,
// a short serial scan over the span aggregates, and a per-span downsweep
// that folds the span prefix back in. Associativity of combine guarantees
// the result is identical for any lane count.
func ScanInclusive[T any](ctx context.Context, r *Runner, xs []T, combine func(T, T) T) error {
	spans := r.Spans(len(xs))
	if len(spans) == 0 {
		return ctx.Err()
	}
	if len(spans) == 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := 1; i < len(xs); i++ {
			xs[i] = combine(xs[i-1], xs[i])
		}
		return nil
	}

	// Upsweep: reduce each span to a single aggregate.
	aggs := make([]T, len(spans))
	err := r.ForEachSpan(ctx, spans, func(i int, s Span) error {
		acc := xs[s.Lo]
		for j := s.Lo + 1; j < s.Hi; j++ {
			acc = combine(acc, xs[j])
		}
		aggs[i] = acc
		return nil
	})
	if err != nil {
		return err
	}

	// Serial exclusive scan over the aggregates; span counts are tiny.
	for i := 1; i < len(aggs); i++ {
		aggs[i] = combine(aggs[i-1], aggs[i])
	}

	// Downsweep: inclusive scan within each span, seeded by the prefix of
	// all earlier spans.
	return r.ForEachSpan(ctx, spans, func(i int, s Span) error {
		if i == 0 {
			for j := s.Lo + 1; j < s.Hi; j++ {
				xs[j] = combine(xs[j-1], xs[j])
			}
			return nil
		}
		acc := aggs[i-1]
		for j := s.Lo; j < s.Hi; j++ {
			acc = combine(acc, xs[j])
			xs[j] = acc
		}
		return nil
	})
}

// ExclusiveSumUint32 writes the exclusive prefix sum of counts into
// offsets and returns the grand total. offsets must have len(counts)
// entries. The total is accumulated in 64 bits so the caller can detect
// uint32 overflow before using the offsets.
func ExclusiveSumUint32(ctx context.Context, r *Runner, counts, offsets []uint32) (uint64, error) {
	if len(offsets) < len(counts) {
		panic("par: offsets shorter than counts")
	}
	spans := r.Spans(len(counts))
	if len(spans) == 0 {
		return 0, ctx.Err()
	}

	sums := make([]uint64, len(spans))
	err := r.ForEachSpan(ctx, spans, func(i int, s Span) error {
		var acc uint64
		for j := s.Lo; j < s.Hi; j++ {
			acc += uint64(counts[j])
		}
		sums[i] = acc
		return nil
	})
	if err != nil {
		return 0, err
	}

	var total uint64
	for i, sum := range sums {
		sums[i] = total
		total += sum
	}

	err = r.ForEachSpan(ctx, spans, func(i int, s Span) error {
		acc := sums[i]
		for j := s.Lo; j < s.Hi; j++ {
			offsets[j] = uint32(acc)
			acc += uint64(counts[j])
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
