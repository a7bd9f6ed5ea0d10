package enrich

import (
	"context"
	"sync"
)

// OnceGate is a Barrier whose initialization runs once per process, on
// the first Wait. Later waiters share its result.
type OnceGate struct {
	init func(context.Context) error
	once sync.Once
	done chan struct{}
	err  error
}

// NewOnceGate creates a gate that runs init on first use.
func NewOnceGate(init func(context.Context) error) *OnceGate {
	return &OnceGate{init: init, done: make(chan struct{})}
}

// Wait blocks until initialization has finished or ctx is done.
// Initialization is not cancelled when a waiter gives up.
func (g *OnceGate) Wait(ctx context.Context) error {
	g.once.Do(func() {
		initCtx := context.WithoutCancel(ctx)
		go func() {
			g.err = g.init(initCtx)
			close(g.done)
		}()
	})

	select {
	case <-g.done:
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether initialization has completed, successfully or not.
func (g *OnceGate) Ready() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}
