//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package pipe

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/internal/debug"
)

// Open creates a non-blocking, close-on-exec pipe.
func (c *Conn) Open() bool {
	c.metrics.Open.Incr()
	if !c.Closed() || c.state != api.StateUnknown {
		c.metrics.OpenEx.Incr()
		c.err = debug.Violation(c.log, "open on a %s pipe", c.state)
		return false
	}
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		c.err = api.AsIOError("pipe2", err)
		c.metrics.OpenEx.Incr()
		c.log.WithError(c.err).Error("pipe open")
		return false
	}
	c.rfd, c.wfd = fds[0], fds[1]
	c.state = api.StateConnected
	c.log.WithField("fds", fds).Debug("pipe opened")
	return true
}
