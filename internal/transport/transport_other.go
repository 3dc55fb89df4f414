//go:build !linux
// +build !linux

// File: internal/transport/transport_other.go
// Author: momentics <momentics@gmail.com>
//
// Vectored transfers are only wired for linux.

package transport

import (
	"syscall"

	"github.com/momentics/ccio/api"
)

func Readv(fd int, bufs [][]byte) (int, *api.IOError) {
	return 0, api.NewIOError("readv", syscall.ENOSYS)
}

func Writev(fd int, bufs [][]byte) (int, *api.IOError) {
	return 0, api.NewIOError("writev", syscall.ENOSYS)
}
