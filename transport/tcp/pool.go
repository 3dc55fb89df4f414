// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp - connection pool.

package tcp

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/control"
	"github.com/momentics/ccio/internal/debug"
	"github.com/momentics/ccio/pool"
)

// Defaults for Config.
const (
	DefaultBacklog  = 128
	DefaultPoolSize = 0
)

// Config describes a connection pool. Zero values select defaults.
type Config struct {
	// Backlog is the listen(2) backlog of listeners from this pool.
	Backlog int
	// PoolSize bounds borrowed connections; 0 is unbounded.
	PoolSize int
	Prealloc bool
	Logger   logrus.FieldLogger
	Metrics  *control.TCPMetrics
}

// Pool lends out Conns. It is not safe for concurrent use.
type Pool struct {
	free    *pool.FreePool[*Conn]
	backlog int
	log     logrus.FieldLogger
	metrics *control.TCPMetrics
}

// NewPool creates a connection pool.
func NewPool(cfg Config) (*Pool, error) {
	if cfg.Backlog <= 0 {
		cfg.Backlog = DefaultBacklog
	}
	if cfg.Metrics == nil {
		cfg.Metrics = control.NewTCPMetrics()
	}
	p := &Pool{
		backlog: cfg.Backlog,
		log:     control.ModuleLogger(cfg.Logger, "ccio::tcp"),
		metrics: cfg.Metrics,
	}
	fp, err := pool.NewFreePool(pool.Config[*Conn]{
		Max:      cfg.PoolSize,
		Prealloc: cfg.Prealloc,
		New: func() (*Conn, error) {
			c := p.newConn()
			c.pooled = true
			return c, nil
		},
		Reset:   (*Conn).reset,
		Metrics: cfg.Metrics.Pool,
		Logger:  p.log,
	})
	if err != nil {
		return nil, err
	}
	p.free = fp
	p.log.WithFields(logrus.Fields{"backlog": cfg.Backlog, "poolsize": cfg.PoolSize}).Debug("tcp pool created")
	return p, nil
}

func (p *Pool) newConn() *Conn {
	c := &Conn{
		owner:   p,
		backlog: p.backlog,
		log:     p.log,
		metrics: p.metrics,
	}
	c.reset()
	return c
}

// Borrow returns a reset connection. It never blocks and fails with
// api.ErrPoolExhausted at capacity.
func (p *Pool) Borrow() (*Conn, error) {
	c, err := p.free.Borrow()
	if err != nil {
		p.log.WithError(err).Debug("borrow")
		return nil, err
	}
	return c, nil
}

// Return resets c and puts it back. c must be closed first.
func (p *Pool) Return(c *Conn) error {
	if c == nil {
		return nil
	}
	if !c.Closed() {
		return debug.Violation(p.log, "return of open connection fd %d", c.fd)
	}
	return p.free.Return(c)
}

// Create allocates a connection outside the pool bound.
func (p *Pool) Create() (*Conn, error) {
	p.metrics.Pool.Created.Incr()
	p.metrics.Pool.Total.Incr()
	return p.newConn(), nil
}

// Destroy drops c for good; a borrowed connection frees its pool slot.
// c must be closed first.
func (p *Pool) Destroy(c *Conn) error {
	if c == nil {
		return nil
	}
	if !c.Closed() {
		return debug.Violation(p.log, "destroy of open connection fd %d", c.fd)
	}
	if c.pooled {
		return p.free.Destroy(c)
	}
	c.owner = nil
	p.metrics.Pool.Destroyed.Incr()
	p.metrics.Pool.Total.Decr()
	return nil
}

// Close destroys every free connection.
func (p *Pool) Close() {
	p.free.Close()
}

// Stats returns the pool accounting.
func (p *Pool) Stats() api.PoolStats {
	return p.free.Stats()
}
