// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for ccio.

package api

import (
	"errors"
	"fmt"
	"syscall"
)

// Common errors used across the library.
var (
	ErrPoolExhausted       = errors.New("pool exhausted")
	ErrPoolClosed          = errors.New("pool is closed")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotSupported        = errors.New("operation not supported")
	ErrContract            = errors.New("caller contract violation")
	ErrIndefiniteWaitEmpty = errors.New("indefinite wait returned no events")
	ErrUnknownOption       = errors.New("unknown option")
	ErrBufferSize          = errors.New("buffer size out of range")
	ErrClosed              = errors.New("use of closed resource")
)

// ErrorKind classifies an OS error at the syscall boundary.
type ErrorKind int

const (
	// KindTerminal covers every error that is not retryable.
	KindTerminal ErrorKind = iota
	// KindInterrupted is EINTR; it never leaves internal/transport.
	KindInterrupted
	// KindWouldBlock is EAGAIN/EWOULDBLOCK (and EINPROGRESS for connect).
	KindWouldBlock
)

func (k ErrorKind) String() string {
	switch k {
	case KindInterrupted:
		return "interrupted"
	case KindWouldBlock:
		return "would-block"
	default:
		return "terminal"
	}
}

// IOError is a syscall failure classified once, where it happened.
type IOError struct {
	Op    string
	Errno syscall.Errno
	Kind  ErrorKind
}

// NewIOError classifies errno for op.
func NewIOError(op string, errno syscall.Errno) *IOError {
	kind := KindTerminal
	switch errno {
	case syscall.EINTR:
		kind = KindInterrupted
	case syscall.EAGAIN, syscall.EINPROGRESS:
		kind = KindWouldBlock
	}
	// EWOULDBLOCK aliases EAGAIN on linux but not everywhere.
	if errno == syscall.EWOULDBLOCK {
		kind = KindWouldBlock
	}
	return &IOError{Op: op, Errno: errno, Kind: kind}
}

// AsIOError converts err into an *IOError. Errors that do not carry an errno
// are reported as terminal with errno EIO.
func AsIOError(op string, err error) *IOError {
	if err == nil {
		return nil
	}
	var ioe *IOError
	if errors.As(err, &ioe) {
		return ioe
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return NewIOError(op, errno)
	}
	return &IOError{Op: op, Errno: syscall.EIO, Kind: KindTerminal}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Errno.Error(), e.Kind)
}

func (e *IOError) Unwrap() error {
	return e.Errno
}

// Temporary reports whether the operation may succeed if retried.
func (e *IOError) Temporary() bool {
	return e.Kind != KindTerminal
}

// WouldBlock reports whether the descriptor is simply not ready.
func (e *IOError) WouldBlock() bool {
	return e.Kind == KindWouldBlock
}
