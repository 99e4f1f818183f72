// Package par schedules data-parallel kernel phases over a fixed set of
// worker lanes.
//
// A phase is expressed as a function over a half-open index range. The
// runner splits the input into deterministic spans and fans the spans out
// onto an errgroup, so a phase either completes fully or propagates the
// first error. Span boundaries depend only on the input length and the
// configured lane count, never on scheduling order, which keeps every
// phase bit-deterministic.
package par

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Span is a half-open index range [Lo, Hi) processed by a single lane.
type Span struct {
	Lo, Hi int
}

// Runner fans phase work out onto a fixed number of lanes.
type Runner struct {
	lanes int
	grain int
}

// NewRunner creates a runner with the given lane count. A non-positive
// count selects one lane per available CPU.
func NewRunner(lanes int) *Runner {
	if lanes <= 0 {
		lanes = runtime.GOMAXPROCS(0)
	}
	return &Runner{
		lanes: lanes,
		grain: minGrain(),
	}
}

// Lanes returns the configured lane count.
func (r *Runner) Lanes() int {
	return r.lanes
}

// Spans splits [0, n) into at most Lanes() spans of at least the grain
// size. The split is a pure function of n and the runner configuration.
func (r *Runner) Spans(n int) []Span {
	if n <= 0 {
		return nil
	}
	chunks := r.lanes
	if max := (n + r.grain - 1) / r.grain; chunks > max {
		chunks = max
	}
	if chunks < 1 {
		chunks = 1
	}
	spans := make([]Span, 0, chunks)
	size := n / chunks
	rem := n % chunks
	lo := 0
	for i := 0; i < chunks; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		spans = append(spans, Span{Lo: lo, Hi: hi})
		lo = hi
	}
	return spans
}

// ForEach runs fn over every span of [0, n), one goroutine per span.
// The first error cancels the remaining spans via the group context.
func (r *Runner) ForEach(ctx context.Context, n int, fn func(s Span) error) error {
	spans := r.Spans(n)
	return r.ForEachSpan(ctx, spans, func(_ int, s Span) error {
		return fn(s)
	})
}

// ForEachSpan runs fn(i, spans[i]) for every span. Used by phases that
// need per-span scratch slots indexed by span number.
func (r *Runner) ForEachSpan(ctx context.Context, spans []Span, fn func(i int, s Span) error) error {
	if len(spans) == 0 {
		return ctx.Err()
	}
	if len(spans) == 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(0, spans[0])
	}
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range spans {
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i, s)
		})
	}
	return g.Wait()
}
