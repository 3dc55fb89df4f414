// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BufferPool lends fixed-size Buffers. Every buffer is reset on return.

package pool

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/control"
)

// Buffer size limits.
const (
	DefaultBufferSize = 16 * 1024
	MinBufferSize     = 512
	MaxBufferSize     = 64 * 1024
)

// BufferConfig describes a BufferPool. Zero values select defaults.
type BufferConfig struct {
	Size     int
	PoolSize int
	Prealloc bool
	Metrics  *control.BufferMetrics
	Logger   logrus.FieldLogger
}

// BufferPool is a FreePool of equally sized buffers.
type BufferPool struct {
	*FreePool[*Buffer]
	size int
}

// NewBufferPool creates a buffer pool. Size must lie within
// [MinBufferSize, MaxBufferSize].
func NewBufferPool(cfg BufferConfig) (*BufferPool, error) {
	if cfg.Size == 0 {
		cfg.Size = DefaultBufferSize
	}
	if cfg.Size < MinBufferSize || cfg.Size > MaxBufferSize {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", api.ErrBufferSize, cfg.Size, MinBufferSize, MaxBufferSize)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = control.NewBufferMetrics()
	}
	size := cfg.Size
	fp, err := NewFreePool(Config[*Buffer]{
		Max:      cfg.PoolSize,
		Prealloc: cfg.Prealloc,
		New:      func() (*Buffer, error) { return NewBuffer(size), nil },
		Reset:    (*Buffer).Reset,
		Metrics:  cfg.Metrics.Pool,
		Logger:   control.ModuleLogger(cfg.Logger, "ccio::buf"),
	})
	if err != nil {
		return nil, err
	}
	return &BufferPool{FreePool: fp, size: size}, nil
}

// Size returns the capacity of every buffer in the pool.
func (bp *BufferPool) Size() int { return bp.size }
