// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package pipe - pipe connection pool.

package pipe

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/control"
	"github.com/momentics/ccio/internal/debug"
	"github.com/momentics/ccio/pool"
)

// DefaultPoolSize is the pipe pool bound; processes rarely need more than
// one pipe.
const DefaultPoolSize = 1

// Config describes a pipe pool. PoolSize 0 selects DefaultPoolSize; use
// Unbounded for no bound.
type Config struct {
	PoolSize  int
	Unbounded bool
	Prealloc  bool
	Logger    logrus.FieldLogger
	Metrics   *control.PipeMetrics
}

// Pool lends out pipe Conns.
type Pool struct {
	free    *pool.FreePool[*Conn]
	log     logrus.FieldLogger
	metrics *control.PipeMetrics
}

// NewPool creates a pipe pool.
func NewPool(cfg Config) (*Pool, error) {
	max := cfg.PoolSize
	switch {
	case cfg.Unbounded:
		max = 0
	case max == 0:
		max = DefaultPoolSize
	}
	if cfg.Metrics == nil {
		cfg.Metrics = control.NewPipeMetrics()
	}
	p := &Pool{
		log:     control.ModuleLogger(cfg.Logger, "ccio::pipe"),
		metrics: cfg.Metrics,
	}
	fp, err := pool.NewFreePool(pool.Config[*Conn]{
		Max:      max,
		Prealloc: cfg.Prealloc,
		New:      func() (*Conn, error) { return p.newConn(), nil },
		Reset:    (*Conn).reset,
		Destroy:  func(c *Conn) { c.Close() },
		Metrics:  cfg.Metrics.Pool,
		Logger:   p.log,
	})
	if err != nil {
		return nil, err
	}
	p.free = fp
	return p, nil
}

func (p *Pool) newConn() *Conn {
	c := &Conn{log: p.log, metrics: p.metrics}
	c.reset()
	return c
}

// Borrow returns a reset, unopened pipe.
func (p *Pool) Borrow() (*Conn, error) { return p.free.Borrow() }

// Return puts c back; it must be closed first.
func (p *Pool) Return(c *Conn) error {
	if c == nil {
		return nil
	}
	if !c.Closed() {
		return debug.Violation(p.log, "return of open pipe %d/%d", c.rfd, c.wfd)
	}
	return p.free.Return(c)
}

// Destroy drops a borrowed pipe, closing it if needed.
func (p *Pool) Destroy(c *Conn) error {
	if c == nil {
		return nil
	}
	return p.free.Destroy(c)
}

func (p *Pool) Close() { p.free.Close() }
func (p *Pool) Stats() api.PoolStats { return p.free.Stats() }
