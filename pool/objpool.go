// File: pool/objpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FreePool is the generic borrow/return pool behind connections, streams
// and buffers. Entries are kept on a LIFO free list so the most recently
// returned entry, still warm in cache, is lent out first.

package pool

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/control"
	"github.com/momentics/ccio/internal/debug"
)

// Config describes a FreePool.
type Config[T comparable] struct {
	// Max bounds the number of constructed entries; 0 is unbounded.
	Max int
	// Prealloc constructs Max entries up front.
	Prealloc bool
	// New constructs an entry. Required.
	New func() (T, error)
	// Reset clears an entry on return.
	Reset func(T)
	// Destroy releases an entry's resources when it leaves the pool.
	Destroy func(T)

	Metrics *control.PoolMetrics
	Logger  logrus.FieldLogger
}

// FreePool lends out constructed entries. It is not safe for concurrent
// use; callers on several goroutines must serialize access.
type FreePool[T comparable] struct {
	free []T
	// owned maps every constructed entry to whether it is borrowed.
	owned   map[T]bool
	max     int
	newFn   func() (T, error)
	resetFn func(T)
	destroy func(T)
	metrics *control.PoolMetrics
	log     logrus.FieldLogger
	closed  bool
	created uint64
}

var _ api.Pool[*Buffer] = (*FreePool[*Buffer])(nil)

// NewFreePool creates a pool; with Prealloc set and Max > 0 it constructs
// every entry before returning.
func NewFreePool[T comparable](cfg Config[T]) (*FreePool[T], error) {
	if cfg.New == nil {
		return nil, fmt.Errorf("%w: pool constructor is nil", api.ErrInvalidArgument)
	}
	if cfg.Max < 0 {
		return nil, fmt.Errorf("%w: pool max %d", api.ErrInvalidArgument, cfg.Max)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = control.NewPoolMetrics("pool")
	}
	if cfg.Logger == nil {
		cfg.Logger = control.DiscardLogger()
	}
	p := &FreePool[T]{
		owned:   make(map[T]bool),
		max:     cfg.Max,
		newFn:   cfg.New,
		resetFn: cfg.Reset,
		destroy: cfg.Destroy,
		metrics: cfg.Metrics,
		log:     cfg.Logger,
	}
	if cfg.Prealloc && cfg.Max > 0 {
		p.free = make([]T, 0, cfg.Max)
		for i := 0; i < cfg.Max; i++ {
			e, err := p.create()
			if err != nil {
				p.Close()
				return nil, err
			}
			p.owned[e] = false
			p.free = append(p.free, e)
		}
	}
	return p, nil
}

func (p *FreePool[T]) create() (T, error) {
	e, err := p.newFn()
	if err != nil {
		p.metrics.CreateEx.Incr()
		var zero T
		return zero, err
	}
	p.created++
	p.metrics.Created.Incr()
	p.metrics.Total.Incr()
	return e, nil
}

// Borrow pops the most recently returned entry or constructs a new one.
// It fails with api.ErrPoolExhausted when Max entries are lent out.
func (p *FreePool[T]) Borrow() (T, error) {
	var zero T
	p.metrics.Borrowed.Incr()
	if p.closed {
		p.metrics.BorrowEx.Incr()
		return zero, api.ErrPoolClosed
	}
	var e T
	if n := len(p.free); n > 0 {
		e = p.free[n-1]
		p.free[n-1] = zero
		p.free = p.free[:n-1]
	} else {
		if p.max > 0 && len(p.owned) >= p.max {
			p.metrics.BorrowEx.Incr()
			return zero, api.ErrPoolExhausted
		}
		var err error
		if e, err = p.create(); err != nil {
			p.metrics.BorrowEx.Incr()
			return zero, err
		}
	}
	p.owned[e] = true
	p.metrics.Active.Incr()
	return e, nil
}

// Return puts a borrowed entry back on the free list. Returning an entry
// twice, or one this pool never lent, is a contract violation.
func (p *FreePool[T]) Return(e T) error {
	borrowed, ok := p.owned[e]
	if !ok {
		return debug.Violation(p.log, "return of an entry not owned by this pool")
	}
	if !borrowed {
		return debug.Violation(p.log, "double return of a pooled entry")
	}
	p.metrics.Returned.Incr()
	p.metrics.Active.Decr()
	if p.resetFn != nil {
		p.resetFn(e)
	}
	if p.closed {
		p.release(e)
		return nil
	}
	p.owned[e] = false
	p.free = append(p.free, e)
	return nil
}

// Destroy removes a borrowed entry from the pool for good, freeing a slot
// under Max.
func (p *FreePool[T]) Destroy(e T) error {
	borrowed, ok := p.owned[e]
	if !ok || !borrowed {
		return debug.Violation(p.log, "destroy of an entry that is not borrowed")
	}
	p.metrics.Active.Decr()
	p.release(e)
	return nil
}

func (p *FreePool[T]) release(e T) {
	delete(p.owned, e)
	if p.destroy != nil {
		p.destroy(e)
	}
	p.metrics.Destroyed.Incr()
	p.metrics.Total.Decr()
}

// Close destroys every free entry. Entries still borrowed are destroyed as
// they are returned. Borrow fails afterwards.
func (p *FreePool[T]) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, e := range p.free {
		p.release(e)
	}
	p.free = nil
	if n := len(p.owned); n > 0 {
		p.log.WithField("borrowed", n).Debug("pool closed with entries outstanding")
	}
}

// Owns reports whether e is currently borrowed from this pool.
func (p *FreePool[T]) Owns(e T) bool {
	return p.owned[e]
}

// Stats returns the pool accounting.
func (p *FreePool[T]) Stats() api.PoolStats {
	return api.PoolStats{
		Free:     len(p.free),
		Borrowed: len(p.owned) - len(p.free),
		Max:      p.max,
		Created:  p.created,
	}
}
