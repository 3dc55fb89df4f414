// File: internal/transport/transport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/ccio/api"
)

// Direction selects the outcome table row for a zero-byte transfer.
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

// Outcome is the classified result of one transfer syscall.
type Outcome struct {
	N      int
	Status api.Status
	// Ready is the value the matching readiness flag must take.
	Ready bool
	// EOF is set when the peer shut down in order.
	EOF bool
	Err *api.IOError
}

// Classify folds a syscall result into an Outcome:
//
//	n == requested   -> OK, still ready
//	0 < n < requested -> OK, not ready
//	n == 0 inbound   -> EOF, not ready
//	n == 0 outbound  -> Again, not ready
//	would-block      -> Again, not ready
//	other error      -> Error, not ready
func Classify(dir Direction, n int, ioe *api.IOError, requested int) Outcome {
	if ioe != nil {
		if ioe.WouldBlock() {
			return Outcome{Status: api.StatusAgain}
		}
		return Outcome{Status: api.StatusError, Err: ioe}
	}
	if n > 0 {
		return Outcome{N: n, Status: api.StatusOK, Ready: n >= requested}
	}
	if dir == Inbound {
		return Outcome{Status: api.StatusEOF, EOF: true}
	}
	return Outcome{Status: api.StatusAgain}
}

// Read issues read(2) on fd, retrying on EINTR.
func Read(fd int, p []byte) (int, *api.IOError) {
	for {
		n, err := unix.Read(fd, p)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		return 0, api.AsIOError("read", err)
	}
}

// Write issues write(2) on fd, retrying on EINTR.
func Write(fd int, p []byte) (int, *api.IOError) {
	for {
		n, err := unix.Write(fd, p)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		return 0, api.AsIOError("write", err)
	}
}

// Total sums the segment lengths of a vectored transfer.
func Total(bufs [][]byte) int {
	total := 0
	for _, b := range bufs {
		total += len(b)
	}
	return total
}
