// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp - non-blocking connection, readiness and transfer outcomes.

package tcp

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/control"
	"github.com/momentics/ccio/internal/debug"
	"github.com/momentics/ccio/internal/transport"
)

// Conn is a non-blocking TCP socket with explicit readiness flags.
//
// Recv/Recvv may only be called while RecvReady is true and Send/Sendv
// while SendReady is true. The flags are raised by Notify, which the event
// loop dispatch calls, and lowered by the transfer that finds the socket
// drained or full.
type Conn struct {
	fd        int
	state     api.State
	recvReady bool
	sendReady bool
	recvBytes uint64
	sendBytes uint64
	err       error

	owner   *Pool
	pooled  bool
	backlog int
	log     logrus.FieldLogger
	metrics *control.TCPMetrics
}

var (
	_ api.Channel    = (*Conn)(nil)
	_ api.Notifiable = (*Conn)(nil)
)

func (c *Conn) reset() {
	c.fd = -1
	c.state = api.StateUnknown
	c.recvReady = false
	c.sendReady = false
	c.recvBytes = 0
	c.sendBytes = 0
	c.err = nil
}

// Type returns api.ChannelTCP.
func (c *Conn) Type() api.ChannelType { return api.ChannelTCP }

// FD returns the socket descriptor, -1 when none is open.
func (c *Conn) FD() int { return c.fd }

// State returns the connection state.
func (c *Conn) State() api.State { return c.state }

// RecvReady reports the read readiness flag.
func (c *Conn) RecvReady() bool { return c.recvReady }

// SendReady reports the write readiness flag.
func (c *Conn) SendReady() bool { return c.sendReady }

// RecvBytes returns the bytes received since the last reset.
func (c *Conn) RecvBytes() uint64 { return c.recvBytes }

// SendBytes returns the bytes sent since the last reset.
func (c *Conn) SendBytes() uint64 { return c.sendBytes }

// Err returns the last recorded error.
func (c *Conn) Err() error { return c.err }

// Closed reports whether no descriptor is open.
func (c *Conn) Closed() bool { return c.fd < 0 }

// Notify records readiness reported by the event loop. An error event
// raises both flags so the next transfer surfaces the error. A pending
// connect is settled by the first write or error event: Connected on
// success, Closing with Err set on failure.
func (c *Conn) Notify(events api.EventMask) {
	if events.Readable() || events.Failed() {
		c.recvReady = true
	}
	if events.Writable() || events.Failed() {
		c.sendReady = true
	}
	if c.state == api.StateConnecting && (events.Writable() || events.Failed()) {
		c.finishConnect()
	}
}

func (c *Conn) finishConnect() {
	soerr, err := unix.GetsockoptInt(c.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err == nil && soerr == 0 {
		c.state = api.StateConnected
		c.log.WithField("fd", c.fd).Debug("connected")
		return
	}
	if err != nil {
		c.err = api.AsIOError("getsockopt", err)
	} else {
		c.err = api.NewIOError("connect", unix.Errno(soerr))
	}
	// SO_ERROR reads as 0 once fetched; the socket must not be retried.
	c.state = api.StateClosing
	c.metrics.ConnectEx.Incr()
	c.log.WithError(c.err).WithField("fd", c.fd).Warn("connect failed")
}

// Recv reads into p.
func (c *Conn) Recv(p []byte) (int, api.Status) {
	if !c.recvReady {
		return c.violation("recv on fd %d while not ready", c.fd)
	}
	if len(p) == 0 {
		return 0, api.StatusOK
	}
	c.metrics.Recv.Incr()
	n, ioe := transport.Read(c.fd, p)
	return c.afterRecv(transport.Classify(transport.Inbound, n, ioe, len(p)))
}

// Recvv scatters one read across bufs. Outcomes match Recv for the same
// total length.
func (c *Conn) Recvv(bufs [][]byte) (int, api.Status) {
	if !c.recvReady {
		return c.violation("recvv on fd %d while not ready", c.fd)
	}
	total := transport.Total(bufs)
	if total == 0 {
		return 0, api.StatusOK
	}
	c.metrics.Recv.Incr()
	n, ioe := transport.Readv(c.fd, bufs)
	return c.afterRecv(transport.Classify(transport.Inbound, n, ioe, total))
}

func (c *Conn) afterRecv(out transport.Outcome) (int, api.Status) {
	c.recvReady = out.Ready
	switch out.Status {
	case api.StatusOK:
		c.recvBytes += uint64(out.N)
		c.metrics.RecvByte.IncrN(uint64(out.N))
	case api.StatusEOF:
		c.state = api.StateEOF
		c.log.WithField("fd", c.fd).Debug("peer closed")
	case api.StatusError:
		c.err = out.Err
		c.metrics.RecvEx.Incr()
		c.log.WithError(out.Err).WithField("fd", c.fd).Warn("recv")
	}
	return out.N, out.Status
}

// Send writes p.
func (c *Conn) Send(p []byte) (int, api.Status) {
	if !c.sendReady {
		return c.violation("send on fd %d while not ready", c.fd)
	}
	if len(p) == 0 {
		return 0, api.StatusOK
	}
	c.metrics.Send.Incr()
	n, ioe := transport.Write(c.fd, p)
	return c.afterSend(transport.Classify(transport.Outbound, n, ioe, len(p)))
}

// Sendv gathers bufs into one write. Outcomes match Send for the same
// total length.
func (c *Conn) Sendv(bufs [][]byte) (int, api.Status) {
	if !c.sendReady {
		return c.violation("sendv on fd %d while not ready", c.fd)
	}
	total := transport.Total(bufs)
	if total == 0 {
		return 0, api.StatusOK
	}
	c.metrics.Send.Incr()
	n, ioe := transport.Writev(c.fd, bufs)
	return c.afterSend(transport.Classify(transport.Outbound, n, ioe, total))
}

func (c *Conn) afterSend(out transport.Outcome) (int, api.Status) {
	c.sendReady = out.Ready
	switch out.Status {
	case api.StatusOK:
		c.sendBytes += uint64(out.N)
		c.metrics.SendByte.IncrN(uint64(out.N))
	case api.StatusError:
		c.err = out.Err
		c.metrics.SendEx.Incr()
		c.log.WithError(out.Err).WithField("fd", c.fd).Warn("send")
	}
	return out.N, out.Status
}

func (c *Conn) violation(format string, args ...any) (int, api.Status) {
	c.err = debug.Violation(c.log, format, args...)
	return 0, api.StatusError
}
