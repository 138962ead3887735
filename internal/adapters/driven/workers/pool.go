// Package workers runs CPU-bound extraction on bounded goroutine pools.
package workers

import (
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

// Ensure Pool implements the interface.
var _ driven.Executor = (*Pool)(nil)

// ErrReleased is returned by Submit after Release.
var ErrReleased = errors.New("worker pool released")

// Pool is a named, fixed-size ants pool. Submit blocks while every worker
// is busy, so callers get back-pressure instead of unbounded queues.
type Pool struct {
	name string
	pool *ants.Pool
	once sync.Once
}

// New creates a pool of size workers. A panicking task is logged and does
// not take the worker down.
func New(name string, size int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %s pool size must be positive", domain.ErrInvalidInput, name)
	}
	p, err := ants.NewPool(size, ants.WithPanicHandler(func(v any) {
		logger.Error("%s worker panic: %v", name, v)
	}))
	if err != nil {
		return nil, fmt.Errorf("create %s pool: %w", name, err)
	}
	return &Pool{name: name, pool: p}, nil
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// Cap returns the number of workers.
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Running returns the number of busy workers.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Submit schedules task on a free worker.
func (p *Pool) Submit(task func()) error {
	if err := p.pool.Submit(task); err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return fmt.Errorf("%s: %w", p.name, ErrReleased)
		}
		return fmt.Errorf("%s: submit: %w", p.name, err)
	}
	return nil
}

// Release stops accepting tasks. Tasks already running are left to finish.
// Safe to call more than once.
func (p *Pool) Release() {
	p.once.Do(p.pool.Release)
}
