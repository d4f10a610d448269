// Package gate bounds the number of in-flight generations per backend.
package gate

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate is a capacity-bounded admission primitive. Waiters are admitted in
// arrival order and block without spinning.
type Gate struct {
	name     string
	capacity int
	sem      *semaphore.Weighted
	inflight atomic.Int64
	waiting  atomic.Int64
	// observe is called with the in-flight count after every change.
	observe func(inflight int)
}

// New returns a gate admitting at most capacity concurrent holders.
// Capacity below 1 is treated as 1.
func New(name string, capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{name: name, capacity: capacity, sem: semaphore.NewWeighted(int64(capacity))}
}

// OnChange installs a callback receiving the in-flight count whenever it
// changes. It must be set before the gate is shared.
func (g *Gate) OnChange(fn func(inflight int)) { g.observe = fn }

// Name returns the gate's label.
func (g *Gate) Name() string { return g.name }

// Capacity returns the maximum number of concurrent holders.
func (g *Gate) Capacity() int { return g.capacity }

// Inflight returns the number of current holders.
func (g *Gate) Inflight() int { return int(g.inflight.Load()) }

// Waiting returns the number of callers blocked in Acquire.
func (g *Gate) Waiting() int { return int(g.waiting.Load()) }

// Acquire blocks until a slot is free or ctx is done. On success the
// returned release func must be called exactly once; extra calls are no-ops.
func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	g.waiting.Add(1)
	err = g.sem.Acquire(ctx, 1)
	g.waiting.Add(-1)
	if err != nil {
		return func() {}, err
	}
	g.changed(g.inflight.Add(1))
	var once atomic.Bool
	return func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		g.changed(g.inflight.Add(-1))
		g.sem.Release(1)
	}, nil
}

// Do runs fn while holding a slot. The slot is released when fn returns,
// fails or panics.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	release, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

func (g *Gate) changed(n int64) {
	if g.observe != nil {
		g.observe(int(n))
	}
}
