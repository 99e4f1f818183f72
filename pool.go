package parfst

import (
	"context"
	"sync"
)

// EnginePool amortizes engines across concurrent callers. Engines are
// single-stream by design; the pool hands each caller exclusive use of
// one and recycles it, scratch arena and all, afterwards.
type EnginePool struct {
	pool sync.Pool
}

// NewEnginePool validates the configuration once and returns a pool
// producing engines for it. Construction errors surface here, never
// from Get.
func NewEnginePool(g Grammar, opts ...Option) (*EnginePool, error) {
	first, err := NewEngine(g, opts...)
	if err != nil {
		return nil, err
	}
	p := &EnginePool{}
	p.pool.New = func() interface{} {
		// Same arguments already validated above; construction cannot
		// fail here.
		e, _ := NewEngine(g, opts...)
		return e
	}
	p.pool.Put(first)
	return p, nil
}

// Get returns an engine for exclusive use. Return it with Put.
func (p *EnginePool) Get() *Engine {
	return p.pool.Get().(*Engine)
}

// Put recycles an engine, keeping its grown scratch arena warm.
func (p *EnginePool) Put(e *Engine) {
	p.pool.Put(e)
}

// Transduce borrows an engine for one call.
func (p *EnginePool) Transduce(ctx context.Context, input []byte) (Result, error) {
	e := p.Get()
	defer p.Put(e)
	return e.Transduce(ctx, input)
}

// ResolveInput borrows an engine for one dense-input resolve call.
func (p *EnginePool) ResolveInput(ctx context.Context, input []byte) ([]byte, error) {
	e := p.Get()
	defer p.Put(e)
	return e.ResolveInput(ctx, input)
}
