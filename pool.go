package lettergen

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one generator is available.
	MinPoolSize = 1

	// MaxPoolSize caps generators; with the Chrome engine each owns a
	// browser (~200MB).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("generator pool is closed")

// GeneratorPool hands out Generators so independent batches, such as
// concurrent uploads, can run in parallel. Each batch stays sequential.
// Generators are created lazily on first acquire with the pool's options.
type GeneratorPool struct {
	size       int
	newFn      func() (*Generator, error)
	generators []*Generator
	sem        chan *Generator
	mu         sync.Mutex
	created    int
	closed     bool
}

// NewGeneratorPool creates a pool with capacity for n Generators built with
// opts. Options are validated by creating the first Generator eagerly.
func NewGeneratorPool(n int, opts ...Option) (*GeneratorPool, error) {
	p := newGeneratorPool(n, func() (*Generator, error) { return NewGenerator(opts...) })

	g, err := p.Acquire(context.Background())
	if err != nil {
		return nil, err
	}
	p.Release(g)
	return p, nil
}

func newGeneratorPool(n int, newFn func() (*Generator, error)) *GeneratorPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &GeneratorPool{
		size:       n,
		newFn:      newFn,
		generators: make([]*Generator, 0, n),
		sem:        make(chan *Generator, n),
	}
}

// Acquire gets a Generator from the pool, creating one if capacity allows.
// Blocks until one is released or ctx is done.
func (p *GeneratorPool) Acquire(ctx context.Context) (*Generator, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	select {
	case g, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return g, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock: the Chrome engine loads assets
		g, err := p.newFn()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		if p.closed {
			// Close ran while g was being built and did not see it.
			p.mu.Unlock()
			_ = g.Close()
			return nil, ErrPoolClosed
		}
		p.generators = append(p.generators, g)
		p.mu.Unlock()
		return g, nil
	}
	p.mu.Unlock()

	select {
	case g, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return g, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a Generator to the pool. Releasing after Close is a no-op.
// The lock is held while sending so Close cannot close the channel mid-send;
// the send never blocks because at most size Generators exist.
func (p *GeneratorPool) Release(g *Generator) {
	if g == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- g
}

// Generate runs one batch on a pooled Generator, waiting for one to be free.
func (p *GeneratorPool) Generate(ctx context.Context, csv io.Reader, branding *Branding) (*Result, error) {
	g, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(g)
	return g.Generate(ctx, csv, branding)
}

// Close releases every Generator's resources.
// Returns an aggregated error if several fail to close.
func (p *GeneratorPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	generators := p.generators
	p.mu.Unlock()

	var errs []error
	for _, g := range generators {
		if err := g.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *GeneratorPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
