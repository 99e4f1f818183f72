package parfst

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/biggeezerdevelopment/parfst-go/internal/fst"
	"github.com/biggeezerdevelopment/parfst-go/internal/par"
	"github.com/biggeezerdevelopment/parfst-go/internal/scratch"
	"github.com/biggeezerdevelopment/parfst-go/internal/stack"
	"github.com/biggeezerdevelopment/parfst-go/internal/symbols"
)

// Option configures an Engine at construction.
type Option func(e *Engine) error

// WithLanes fixes the worker lane count. Non-positive selects one lane
// per available CPU.
func WithLanes(n int) Option {
	return func(e *Engine) error {
		e.lanes = n
		return nil
	}
}

// WithStack enables stack-operation mode with the given configuration.
// Required before ResolveTopOfStack, ExtractStackOps or Balanced.
func WithStack(cfg StackConfig) Option {
	return func(e *Engine) error {
		e.stackCfg = cfg
		e.hasStack = true
		return nil
	}
}

// WithLogger attaches a logger for construction and per-call debug
// records. The kernels themselves never log on the hot path.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) error {
		e.log = log
		return nil
	}
}

// Engine owns the configuration tables and the scratch storage for the
// resolver and transducer kernels. Calls on one engine are strictly
// sequenced; independent engines may run concurrently.
type Engine struct {
	runner   *par.Runner
	arena    *scratch.Arena
	class    *symbols.Classifier
	tables   *fst.Tables
	trans    *fst.Transducer
	resolver *stack.Resolver
	log      *zap.SugaredLogger

	start    uint8
	lanes    int
	hasStack bool
	stackCfg StackConfig
	opKind   [256]uint8 // 0 none, 1 push, 2 pop
}

// NewEngine validates the grammar once and builds a ready engine.
// Table shape violations, oversized state or group counts, and sentinel
// collisions are reported as ErrConfiguration; nothing is revalidated
// per call.
func NewEngine(g Grammar, opts ...Option) (*Engine, error) {
	e := &Engine{
		arena: scratch.New(),
		log:   zap.NewNop().Sugar(),
		start: g.StartState,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.runner = par.NewRunner(e.lanes)

	groups := make([]symbols.Group, len(g.Groups))
	for i, sg := range g.Groups {
		groups[i] = symbols.Group{Name: sg.Name, Members: sg.Members}
	}
	class, err := symbols.NewClassifier(groups)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	e.class = class

	tables, err := fst.NewTables(len(g.Transitions), class.Groups(), g.Transitions, g.Translations)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if int(g.StartState) >= tables.States() {
		return nil, fmt.Errorf("%w: start state %d of %d", ErrConfiguration, g.StartState, tables.States())
	}
	e.tables = tables

	e.trans, err = fst.NewTransducer(e.runner, tables, class)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if e.hasStack {
		if err := e.initStack(); err != nil {
			return nil, err
		}
	}

	e.log.Debugw("engine ready",
		"states", tables.States(),
		"groups", class.Groups(),
		"lanes", e.runner.Lanes(),
		"stack_mode", e.hasStack,
	)
	return e, nil
}

func (e *Engine) initStack() error {
	cfg := e.stackCfg
	for _, sym := range cfg.PushSymbols {
		e.opKind[sym] = 1
	}
	for _, sym := range cfg.PopSymbols {
		if e.opKind[sym] == 1 {
			return fmt.Errorf("%w: %q is both push and pop", ErrConfiguration, sym)
		}
		e.opKind[sym] = 2
	}
	if cfg.EmptySentinel == cfg.ReadMarker {
		return fmt.Errorf("%w: empty sentinel equals read marker %q", ErrSentinelCollision, cfg.EmptySentinel)
	}
	for _, sentinel := range []byte{cfg.EmptySentinel, cfg.ReadMarker} {
		if e.opKind[sentinel] != 0 {
			return fmt.Errorf("%w: %q", ErrSentinelCollision, sentinel)
		}
	}

	resolver, err := stack.NewResolver(e.runner, cfg.LevelBits)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	e.resolver = resolver
	return nil
}

// Transduce runs the transducer from the grammar's start state.
func (e *Engine) Transduce(ctx context.Context, input []byte) (Result, error) {
	return e.TransduceFrom(ctx, input, e.start)
}

// TransduceFrom runs the transducer from an explicit start state, the
// chaining entry point for chunked inputs: feed the previous Result's
// FinalState as start.
func (e *Engine) TransduceFrom(ctx context.Context, input []byte, start uint8) (Result, error) {
	e.arena.Reset()
	e.arena.Reserve(transduceScratchSize(len(input)))

	res, err := e.trans.Transduce(ctx, e.arena, input, start)
	if err != nil {
		return Result{}, errors.Wrap(err, "transduce")
	}
	e.log.Debugw("transduce done",
		"input", len(input),
		"output", len(res.Output),
		"emitting_positions", len(res.Positions),
		"final_state", res.FinalState,
	)
	return Result{
		Output:     res.Output,
		Positions:  res.Positions,
		Count:      len(res.Positions),
		FinalState: res.FinalState,
	}, nil
}

// ResolveTopOfStack computes the dense top-of-stack tape for a sparse,
// position-ordered operation sequence over numPositions input positions.
// Unbalanced sequences are resolved best effort, never rejected; use
// Balanced for strict validation.
func (e *Engine) ResolveTopOfStack(ctx context.Context, ops []StackOp, numPositions int) ([]byte, error) {
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: stack mode not configured", ErrConfiguration)
	}
	e.arena.Reset()
	e.arena.Reserve(resolveScratchSize(len(ops)))

	sops := scratch.Of[stack.Op](e.arena, len(ops))
	for i, op := range ops {
		sops[i] = stack.Op{Pos: op.Pos, Symbol: op.Symbol, Kind: stack.OpKind(op.Kind)}
	}
	tape, err := e.resolver.Resolve(ctx, e.arena, sops, numPositions,
		e.stackCfg.EmptySentinel, e.stackCfg.ReadMarker)
	if err != nil {
		return nil, errors.Wrap(err, "resolve top of stack")
	}
	return tape, nil
}

// ResolveInput is the dense-input convenience: extract the sparse
// operations from a raw buffer and resolve them over its full length.
func (e *Engine) ResolveInput(ctx context.Context, input []byte) ([]byte, error) {
	ops := e.ExtractStackOps(input)
	return e.ResolveTopOfStack(ctx, ops, len(input))
}

// ExtractStackOps derives the sparse operation sequence of a raw buffer
// from the configured push and pop symbol sets. Symbols in neither set
// produce no operation.
func (e *Engine) ExtractStackOps(input []byte) []StackOp {
	ops := make([]StackOp, 0, len(input)/4)
	for i, sym := range input {
		switch e.opKind[sym] {
		case 1:
			ops = append(ops, StackOp{Pos: uint32(i), Symbol: sym, Kind: OpPush})
		case 2:
			ops = append(ops, StackOp{Pos: uint32(i), Symbol: sym, Kind: OpPop})
		}
	}
	return ops
}

// Balanced reports whether the input's push/pop sequence never
// underflows and returns to depth zero. The resolver itself never
// checks this; callers that need strict validation call it separately.
func (e *Engine) Balanced(ctx context.Context, input []byte) (bool, error) {
	if e.resolver == nil {
		return false, fmt.Errorf("%w: stack mode not configured", ErrConfiguration)
	}
	ops := e.ExtractStackOps(input)
	if len(ops) == 0 {
		return true, nil
	}

	e.arena.Reset()
	e.arena.Reserve(4 * len(ops))
	levels := scratch.Of[int32](e.arena, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case OpPush:
			levels[i] = 1
		case OpPop:
			levels[i] = -1
		default:
			levels[i] = 0
		}
	}
	if err := par.ScanInclusive(ctx, e.runner, levels, func(a, b int32) int32 { return a + b }); err != nil {
		return false, errors.Wrap(err, "balance scan")
	}

	spans := e.runner.Spans(len(levels))
	minima := make([]int32, len(spans))
	err := e.runner.ForEachSpan(ctx, spans, func(i int, s par.Span) error {
		min := levels[s.Lo]
		for j := s.Lo + 1; j < s.Hi; j++ {
			if levels[j] < min {
				min = levels[j]
			}
		}
		minima[i] = min
		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "balance reduce")
	}
	for _, min := range minima {
		if min < 0 {
			return false, nil
		}
	}
	return levels[len(levels)-1] == 0, nil
}

// Lanes returns the engine's worker lane count.
func (e *Engine) Lanes() int {
	return e.runner.Lanes()
}

// ScratchHighWater reports the largest scratch footprint any call has
// required, in bytes.
func (e *Engine) ScratchHighWater() int {
	return e.arena.HighWater()
}

const arenaSlop = 8 * scratch.CacheLineSize

func transduceScratchSize(n int) int {
	// group ids + counts + flags + two offset tapes
	return n*(1+4*4) + arenaSlop
}

func resolveScratchSize(m int) int {
	// converted ops + levels + two record buffers
	return m*(8+4+2*16) + arenaSlop
}
