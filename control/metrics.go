// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics for the I/O substrate. Components only increment; an
// external collector polls Registry snapshots.

package control

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metric is a named, readable observability value.
type Metric interface {
	Name() string
	Description() string
	Value() any
}

// Counter is a monotonic counter.
type Counter struct {
	name, desc string
	v          atomic.Uint64
}

// NewCounter creates an unregistered counter.
func NewCounter(name, desc string) *Counter {
	return &Counter{name: name, desc: desc}
}

func (c *Counter) Incr() { c.v.Add(1) }
func (c *Counter) IncrN(n uint64) { c.v.Add(n) }
func (c *Counter) Load() uint64 { return c.v.Load() }
func (c *Counter) Name() string { return c.name }
func (c *Counter) Description() string { return c.desc }
func (c *Counter) Value() any { return c.v.Load() }

// Gauge is a point-in-time value that moves both ways.
type Gauge struct {
	name, desc string
	v          atomic.Int64
}

// NewGauge creates an unregistered gauge.
func NewGauge(name, desc string) *Gauge {
	return &Gauge{name: name, desc: desc}
}

func (g *Gauge) Incr() { g.v.Add(1) }
func (g *Gauge) Decr() { g.v.Add(-1) }
func (g *Gauge) Set(v int64) { g.v.Store(v) }
func (g *Gauge) Load() int64 { return g.v.Load() }
func (g *Gauge) Name() string { return g.name }
func (g *Gauge) Description() string { return g.desc }
func (g *Gauge) Value() any { return g.v.Load() }

// MetricsRegistry holds registered metrics plus ad-hoc values.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
	values  map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]Metric),
		values:  make(map[string]any),
	}
}

// Register adds metrics; a later metric with the same name replaces the
// earlier one.
func (mr *MetricsRegistry) Register(ms ...Metric) {
	mr.mu.Lock()
	for _, m := range ms {
		mr.metrics[m.Name()] = m
	}
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Set sets or updates an ad-hoc metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.values[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// GetSnapshot returns the current value of every metric.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics)+len(mr.values))
	for k, v := range mr.values {
		out[k] = v
	}
	for k, m := range mr.metrics {
		out[k] = m.Value()
	}
	return out
}

// Names lists registered metric names in order.
func (mr *MetricsRegistry) Names() []string {
	mr.mu.RLock()
	names := make([]string, 0, len(mr.metrics))
	for k := range mr.metrics {
		names = append(names, k)
	}
	mr.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Updated returns the time of the last registration or Set.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
