// Package stream
// Author: momentics <momentics@gmail.com>
//
// Buffered, partial-transfer-aware I/O over any api.Channel.
//
// A Stream owns a read buffer and a write buffer, runs optional hooks
// around each transfer and translates channel outcomes into the retry
// protocol used by layers above:
//
//	Read   full -> StatusRetry, partial -> StatusOK, none -> StatusEOF
//	Write  full -> StatusOK,    partial -> StatusRetry
//
// Capacity and empty-buffer checks fail with StatusNoMemory and
// StatusEmpty before any syscall is made.
package stream
