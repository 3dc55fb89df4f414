// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs for borrow/return resource reuse.

package api

// Pool lends out pre-constructed entries. Borrow never blocks: it fails with
// ErrPoolExhausted when the pool is bounded and every entry is lent out.
type Pool[T any] interface {
	Borrow() (T, error)
	// Return hands an entry back; returning an entry twice, or one the pool
	// never lent, is a caller contract violation.
	Return(entry T) error
}

// PoolStats is a point-in-time view of a pool's accounting.
type PoolStats struct {
	Free     int
	Borrowed int
	Max      int // 0 means unbounded
	Created  uint64
}
