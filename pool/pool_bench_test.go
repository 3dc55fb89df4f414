//go:build !debug

// Package pool
// Author: momentics <momentics@gmail.com>
//
// Borrow/return benchmarks for the free-list pools.

package pool

import (
	"testing"
)

// BenchmarkFreePoolBorrowReturn measures a steady-state borrow/return cycle.
func BenchmarkFreePoolBorrowReturn(b *testing.B) {
	p, err := NewFreePool(Config[*entry]{
		Max: 64,
		New: func() (*entry, error) { return &entry{}, nil },
	})
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e, err := p.Borrow()
		if err != nil {
			b.Fatal(err)
		}
		if err := p.Return(e); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkBufferPoolCycle borrows a buffer, fills it and hands it back.
func BenchmarkBufferPoolCycle(b *testing.B) {
	bp, err := NewBufferPool(BufferConfig{Size: DefaultBufferSize, PoolSize: 8, Prealloc: true})
	if err != nil {
		b.Fatal(err)
	}
	defer bp.Close()
	payload := make([]byte, 4096)

	b.SetBytes(int64(len(payload)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, err := bp.Borrow()
		if err != nil {
			b.Fatal(err)
		}
		if _, err := buf.Write(payload); err != nil {
			b.Fatal(err)
		}
		if err := bp.Return(buf); err != nil {
			b.Fatal(err)
		}
	}
}
