// internal/transport/transport_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux scatter/gather transfers via readv(2)/writev(2).

package transport

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/ccio/api"
)

// Readv issues readv(2) on fd, retrying on EINTR.
func Readv(fd int, bufs [][]byte) (int, *api.IOError) {
	for {
		n, err := unix.Readv(fd, bufs)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		return 0, api.AsIOError("readv", err)
	}
}

// Writev issues writev(2) on fd, retrying on EINTR.
func Writev(fd int, bufs [][]byte) (int, *api.IOError) {
	for {
		n, err := unix.Writev(fd, bufs)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		return 0, api.AsIOError("writev", err)
	}
}
