// control/metrics_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/ccio/api"
)

func TestCounterGauge(t *testing.T) {
	c := NewCounter("c", "")
	g := NewGauge("g", "")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Incr()
				g.Incr()
				g.Decr()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(8000), c.Load())
	assert.Equal(t, int64(0), g.Load())
	c.IncrN(5)
	assert.Equal(t, uint64(8005), c.Value())
}

func TestRegistrySnapshot(t *testing.T) {
	mr := NewMetricsRegistry()
	tcp := NewTCPMetrics()
	mr.Register(tcp.Metrics()...)
	mr.Set("build", "test")

	tcp.Accept.Incr()
	tcp.RecvByte.IncrN(42)
	tcp.Pool.Active.Incr()

	snap := mr.GetSnapshot()
	assert.Equal(t, uint64(1), snap["tcp_accept"])
	assert.Equal(t, uint64(42), snap["tcp_recv_byte"])
	assert.Equal(t, int64(1), snap["tcp_conn_active"])
	assert.Equal(t, "test", snap["build"])
	assert.False(t, mr.Updated().IsZero())
}

func TestFamilyNamesUnique(t *testing.T) {
	mr := NewMetricsRegistry()
	var all []Metric
	all = append(all, NewTCPMetrics().Metrics()...)
	all = append(all, NewPipeMetrics().Metrics()...)
	all = append(all, NewStreamMetrics().Metrics()...)
	all = append(all, NewBufferMetrics().Metrics()...)
	all = append(all, NewEventMetrics().Metrics()...)
	mr.Register(all...)
	assert.Len(t, mr.Names(), len(all))
	assert.Contains(t, mr.Names(), "tcp_conn_borrow_ex")
	assert.Contains(t, mr.Names(), "stream_write_byte")
}

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	mr := NewMetricsRegistry()
	m := NewBufferMetrics()
	mr.Register(m.Metrics()...)
	dp.RegisterMetrics(mr)
	dp.RegisterPool("buf", func() api.PoolStats { return api.PoolStats{Free: 2, Max: 4} })
	RegisterPlatformProbes(dp)

	state := dp.DumpState()
	require.Contains(t, state, "metrics")
	require.Contains(t, state, "platform.cpus")
	assert.Equal(t, api.PoolStats{Free: 2, Max: 4}, state["buf"])
}
