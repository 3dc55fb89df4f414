// File: stream/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package stream

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/control"
	"github.com/momentics/ccio/internal/debug"
	"github.com/momentics/ccio/pool"
)

// Config describes a stream pool. Zero values select defaults.
type Config struct {
	// PoolSize bounds borrowed streams; 0 is unbounded.
	PoolSize int
	Prealloc bool
	// Buffers supplies read and write buffers. A default BufferPool is
	// created when nil.
	Buffers *pool.BufferPool
	Logger  logrus.FieldLogger
	Metrics *control.StreamMetrics
}

// Pool lends out Streams. Every borrow acquires two fresh buffers and
// every return releases them, so buffers never move between streams.
type Pool struct {
	free    *pool.FreePool[*Stream]
	bufs    *pool.BufferPool
	log     logrus.FieldLogger
	metrics *control.StreamMetrics
}

// NewPool creates a stream pool.
func NewPool(cfg Config) (*Pool, error) {
	if cfg.Metrics == nil {
		cfg.Metrics = control.NewStreamMetrics()
	}
	p := &Pool{
		bufs:    cfg.Buffers,
		log:     control.ModuleLogger(cfg.Logger, "ccio::stream"),
		metrics: cfg.Metrics,
	}
	if p.bufs == nil {
		bp, err := pool.NewBufferPool(pool.BufferConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
		p.bufs = bp
	}
	fp, err := pool.NewFreePool(pool.Config[*Stream]{
		Max:      cfg.PoolSize,
		Prealloc: cfg.Prealloc,
		New: func() (*Stream, error) {
			s := p.newStream()
			s.pooled = true
			return s, nil
		},
		Reset:   (*Stream).reset,
		Metrics: cfg.Metrics.Pool,
		Logger:  p.log,
	})
	if err != nil {
		return nil, err
	}
	p.free = fp
	return p, nil
}

func (p *Pool) newStream() *Stream {
	return &Stream{log: p.log, metrics: p.metrics}
}

// acquire gives s a fresh pair of buffers.
func (p *Pool) acquire(s *Stream) error {
	rbuf, err := p.bufs.Borrow()
	if err != nil {
		return err
	}
	wbuf, err := p.bufs.Borrow()
	if err != nil {
		_ = p.bufs.Return(rbuf)
		return err
	}
	s.rbuf, s.wbuf = rbuf, wbuf
	return nil
}

func (p *Pool) release(s *Stream) {
	if s.rbuf != nil {
		_ = p.bufs.Return(s.rbuf)
	}
	if s.wbuf != nil {
		_ = p.bufs.Return(s.wbuf)
	}
	s.rbuf, s.wbuf = nil, nil
}

// check enforces the return/destroy contract: channel closed, data
// detached.
func (p *Pool) check(s *Stream, op string) error {
	if s.ch != nil && !s.ch.Closed() {
		return debug.Violation(p.log, "%s of stream with open %s channel", op, s.ch.Type())
	}
	if s.data != nil {
		return debug.Violation(p.log, "%s of stream with data attached", op)
	}
	return nil
}

// Borrow returns a stream with fresh buffers and no channel. It never
// blocks; it fails with api.ErrPoolExhausted at capacity or when no
// buffer is available.
func (p *Pool) Borrow() (*Stream, error) {
	s, err := p.free.Borrow()
	if err != nil {
		p.log.WithError(err).Debug("borrow")
		return nil, err
	}
	if err := p.acquire(s); err != nil {
		_ = p.free.Return(s)
		p.metrics.Pool.BorrowEx.Incr()
		p.log.WithError(err).Warn("borrow: no buffers")
		return nil, err
	}
	return s, nil
}

// Return releases the buffers and puts s back. Its channel must be closed
// and its data detached.
func (p *Pool) Return(s *Stream) error {
	if s == nil {
		return nil
	}
	if err := p.check(s, "return"); err != nil {
		return err
	}
	if !s.pooled {
		return debug.Violation(p.log, "return of an unpooled stream")
	}
	if !p.free.Owns(s) {
		return p.free.Return(s)
	}
	p.release(s)
	return p.free.Return(s)
}

// Create allocates a stream with fresh buffers outside the pool bound.
func (p *Pool) Create() (*Stream, error) {
	s := p.newStream()
	if err := p.acquire(s); err != nil {
		p.metrics.Pool.CreateEx.Incr()
		return nil, err
	}
	p.metrics.Pool.Created.Incr()
	p.metrics.Pool.Total.Incr()
	return s, nil
}

// Destroy releases the buffers and drops s. Its channel must be closed and
// its data detached.
func (p *Pool) Destroy(s *Stream) error {
	if s == nil {
		return nil
	}
	if err := p.check(s, "destroy"); err != nil {
		return err
	}
	if s.pooled {
		if !p.free.Owns(s) {
			return p.free.Destroy(s)
		}
		p.release(s)
		return p.free.Destroy(s)
	}
	p.release(s)
	s.reset()
	p.metrics.Pool.Destroyed.Incr()
	p.metrics.Pool.Total.Decr()
	return nil
}

// Buffers returns the buffer pool streams draw from.
func (p *Pool) Buffers() *pool.BufferPool { return p.bufs }

// Close destroys every free stream.
func (p *Pool) Close() { p.free.Close() }

// Stats returns the pool accounting.
func (p *Pool) Stats() api.PoolStats { return p.free.Stats() }
