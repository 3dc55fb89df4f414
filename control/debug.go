// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Probe registry for runtime inspection of pools, loops and metrics.

package control

import (
	"sync"

	"github.com/momentics/ccio/api"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

var _ api.Debug = (*DebugProbes)(nil)

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// RegisterPool exposes a pool's statistics under name.
func (dp *DebugProbes) RegisterPool(name string, stats func() api.PoolStats) {
	dp.RegisterProbe(name, func() any { return stats() })
}

// RegisterMetrics exposes a registry snapshot under "metrics".
func (dp *DebugProbes) RegisterMetrics(mr *MetricsRegistry) {
	dp.RegisterProbe("metrics", func() any { return mr.GetSnapshot() })
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}
