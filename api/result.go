// Package api
// Author: momentics@gmail.com
//
// Status codes returned by transfer operations.

package api

// Status is the outcome of a transfer or stream operation. Statuses are
// ordinary return values, not errors.
type Status int

const (
	// StatusOK means the operation completed; for reads, a partial transfer
	// that should pause until fresh readiness.
	StatusOK Status = iota
	// StatusError is fatal for the channel; the caller tears it down.
	StatusError
	// StatusAgain means would-block; retry after readiness is reported.
	StatusAgain
	// StatusNoMemory means the buffer lacks capacity for the request.
	StatusNoMemory
	// StatusEmpty means there is nothing buffered to send.
	StatusEmpty
	// StatusRetry means re-issue the operation immediately.
	StatusRetry
	// StatusEOF means the peer shut down in order.
	StatusEOF
)

var statusNames = [...]string{
	StatusOK:       "ok",
	StatusError:    "error",
	StatusAgain:    "again",
	StatusNoMemory: "nomem",
	StatusEmpty:    "empty",
	StatusRetry:    "retry",
	StatusEOF:      "eof",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}
