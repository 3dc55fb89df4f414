//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"fmt"

	"github.com/momentics/ccio/api"
)

type poller struct{}

func openPoller(int) (*poller, error) {
	return nil, fmt.Errorf("%w: reactor requires epoll", api.ErrNotSupported)
}

func (*poller) ctl(ctlOp, int, api.EventMask) error { return api.ErrNotSupported }

func (*poller) wait(int, func(int, api.EventMask)) (int, error) {
	return 0, api.ErrNotSupported
}

func (*poller) close() error { return nil }
