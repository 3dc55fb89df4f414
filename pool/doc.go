// Package pool
// Author: momentics <momentics@gmail.com>
//
// Borrow/return pooling for connections, streams and byte buffers.
//
// FreePool keeps constructed entries on a LIFO free list with an optional
// capacity bound and tracks ownership so a double or foreign return is
// reported as a contract violation. BufferPool specializes it for the
// fixed-size cursor Buffers that streams read into and write from.
// Pools are not synchronized.
package pool
