// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package pipe - pipe channel with the same readiness discipline as tcp.

package pipe

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/control"
	"github.com/momentics/ccio/internal/debug"
	"github.com/momentics/ccio/internal/transport"
)

// Conn is a unidirectional pipe used as a channel: Recv reads the read end
// and Send writes the write end. State is Unknown until Open, Connected
// while open, EOF after the writer side went away and Closing after Close.
type Conn struct {
	rfd, wfd  int
	state     api.State
	recvReady bool
	sendReady bool
	recvBytes uint64
	sendBytes uint64
	err       error

	log     logrus.FieldLogger
	metrics *control.PipeMetrics
}

var (
	_ api.Channel    = (*Conn)(nil)
	_ api.Notifiable = (*Conn)(nil)
)

func (c *Conn) reset() {
	c.rfd, c.wfd = -1, -1
	c.state = api.StateUnknown
	c.recvReady = false
	c.sendReady = false
	c.recvBytes = 0
	c.sendBytes = 0
	c.err = nil
}

func (c *Conn) Type() api.ChannelType { return api.ChannelPipe }

// FD returns the read end.
func (c *Conn) FD() int { return c.rfd }

// ReadFD returns the read end.
func (c *Conn) ReadFD() int { return c.rfd }

// WriteFD returns the write end.
func (c *Conn) WriteFD() int { return c.wfd }

func (c *Conn) State() api.State { return c.state }
func (c *Conn) RecvReady() bool { return c.recvReady }
func (c *Conn) SendReady() bool { return c.sendReady }
func (c *Conn) RecvBytes() uint64 { return c.recvBytes }
func (c *Conn) SendBytes() uint64 { return c.sendBytes }
func (c *Conn) Err() error { return c.err }
func (c *Conn) Closed() bool { return c.rfd < 0 && c.wfd < 0 }

// Notify records readiness for either end. Register the read end for read
// events and the write end for write events with the same Conn.
func (c *Conn) Notify(events api.EventMask) {
	if events.Readable() || events.Failed() {
		c.recvReady = true
	}
	if events.Writable() || events.Failed() {
		c.sendReady = true
	}
}

// Recv reads from the read end.
func (c *Conn) Recv(p []byte) (int, api.Status) {
	if !c.recvReady {
		c.err = debug.Violation(c.log, "pipe recv on fd %d while not ready", c.rfd)
		return 0, api.StatusError
	}
	if len(p) == 0 {
		return 0, api.StatusOK
	}
	c.metrics.Recv.Incr()
	n, ioe := transport.Read(c.rfd, p)
	out := transport.Classify(transport.Inbound, n, ioe, len(p))
	c.recvReady = out.Ready
	switch out.Status {
	case api.StatusOK:
		c.recvBytes += uint64(n)
		c.metrics.RecvByte.IncrN(uint64(n))
	case api.StatusEOF:
		c.state = api.StateEOF
	case api.StatusError:
		c.err = out.Err
		c.metrics.RecvEx.Incr()
		c.log.WithError(out.Err).WithField("fd", c.rfd).Warn("pipe recv")
	}
	return out.N, out.Status
}

// Send writes to the write end.
func (c *Conn) Send(p []byte) (int, api.Status) {
	if !c.sendReady {
		c.err = debug.Violation(c.log, "pipe send on fd %d while not ready", c.wfd)
		return 0, api.StatusError
	}
	if len(p) == 0 {
		return 0, api.StatusOK
	}
	c.metrics.Send.Incr()
	n, ioe := transport.Write(c.wfd, p)
	out := transport.Classify(transport.Outbound, n, ioe, len(p))
	c.sendReady = out.Ready
	switch out.Status {
	case api.StatusOK:
		c.sendBytes += uint64(n)
		c.metrics.SendByte.IncrN(uint64(n))
	case api.StatusError:
		c.err = out.Err
		c.metrics.SendEx.Incr()
		c.log.WithError(out.Err).WithField("fd", c.wfd).Warn("pipe send")
	}
	return out.N, out.Status
}

// Close closes both ends. It reports false if either close failed.
func (c *Conn) Close() bool {
	c.metrics.Close.Incr()
	c.recvReady = false
	c.sendReady = false
	if c.state != api.StateUnknown {
		c.state = api.StateClosing
	}
	ok := true
	for _, fd := range []*int{&c.rfd, &c.wfd} {
		if *fd < 0 {
			continue
		}
		if err := unix.Close(*fd); err != nil {
			c.err = api.AsIOError("close", err)
			ok = false
		}
		*fd = -1
	}
	if !ok {
		c.metrics.CloseEx.Incr()
		c.log.WithError(c.err).Warn("pipe close")
	}
	return ok
}

func setNonblock(fd int, nonblocking bool) error {
	if err := unix.SetNonblock(fd, nonblocking); err != nil {
		return api.AsIOError("fcntl", err)
	}
	return nil
}

func (c *Conn) SetReadBlocking() error { return setNonblock(c.rfd, false) }
func (c *Conn) SetReadNonblocking() error { return setNonblock(c.rfd, true) }
func (c *Conn) SetWriteBlocking() error { return setNonblock(c.wfd, false) }
func (c *Conn) SetWriteNonblocking() error { return setNonblock(c.wfd, true) }
