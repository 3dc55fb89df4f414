//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp - connect, listen, accept, reject and close.

package tcp

import (
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/internal/debug"
)

const sockFlags = unix.SOCK_STREAM | unix.SOCK_NONBLOCK | unix.SOCK_CLOEXEC

// sockaddr resolves addr ("host:port") into a socket family and address.
// An empty host binds the IPv4 wildcard.
func sockaddr(addr string) (int, unix.Sockaddr, error) {
	ta, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", api.ErrInvalidArgument, err)
	}
	if ta.IP == nil {
		return unix.AF_INET, &unix.SockaddrInet4{Port: ta.Port}, nil
	}
	if ip4 := ta.IP.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: ta.Port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa, nil
	}
	sa := &unix.SockaddrInet6{Port: ta.Port}
	copy(sa.Addr[:], ta.IP.To16())
	if ta.Zone != "" {
		if ifi, err := net.InterfaceByName(ta.Zone); err == nil {
			sa.ZoneId = uint32(ifi.Index)
		}
	}
	return unix.AF_INET6, sa, nil
}

// Connect starts a non-blocking connect to addr. The connection is
// Connected on return, or Connecting until Notify sees the socket become
// writable.
func (c *Conn) Connect(addr string) bool {
	c.metrics.Connect.Incr()
	if c.state != api.StateUnknown || c.fd >= 0 {
		c.metrics.ConnectEx.Incr()
		c.err = debug.Violation(c.log, "connect on a %s connection", c.state)
		return false
	}
	family, sa, err := sockaddr(addr)
	if err != nil {
		return c.connectFailed(addr, err)
	}
	fd, err := unix.Socket(family, sockFlags, unix.IPPROTO_TCP)
	if err != nil {
		return c.connectFailed(addr, api.AsIOError("socket", err))
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	err = unix.Connect(fd, sa)
	switch err {
	case nil:
		c.state = api.StateConnected
	case unix.EINPROGRESS, unix.EINTR:
		c.state = api.StateConnecting
	default:
		unix.Close(fd)
		return c.connectFailed(addr, api.AsIOError("connect", err))
	}
	c.fd = fd
	c.log.WithFields(logrus.Fields{"fd": fd, "addr": addr, "state": c.state}).Debug("connect")
	return true
}

func (c *Conn) connectFailed(addr string, err error) bool {
	c.err = err
	c.metrics.ConnectEx.Incr()
	c.log.WithError(err).WithField("addr", addr).Error("connect")
	return false
}

// Listen binds addr and starts listening with the pool's backlog.
func (c *Conn) Listen(addr string) bool {
	c.metrics.Listen.Incr()
	if c.state != api.StateUnknown || c.fd >= 0 {
		c.metrics.ListenEx.Incr()
		c.err = debug.Violation(c.log, "listen on a %s connection", c.state)
		return false
	}
	family, sa, err := sockaddr(addr)
	if err != nil {
		return c.listenFailed(addr, err)
	}
	fd, err := unix.Socket(family, sockFlags, unix.IPPROTO_TCP)
	if err != nil {
		return c.listenFailed(addr, api.AsIOError("socket", err))
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return c.listenFailed(addr, api.AsIOError("setsockopt", err))
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return c.listenFailed(addr, api.AsIOError("bind", err))
	}
	if err := unix.Listen(fd, c.backlog); err != nil {
		unix.Close(fd)
		return c.listenFailed(addr, api.AsIOError("listen", err))
	}
	c.fd = fd
	c.state = api.StateListening
	c.log.WithFields(logrus.Fields{"fd": fd, "addr": addr, "backlog": c.backlog}).Info("listening")
	return true
}

func (c *Conn) listenFailed(addr string, err error) bool {
	c.err = err
	c.metrics.ListenEx.Incr()
	c.log.WithError(err).WithField("addr", addr).Error("listen")
	return false
}

// LocalAddr returns the bound address, useful after listening on port 0.
func (c *Conn) LocalAddr() (*net.TCPAddr, error) {
	sa, err := unix.Getsockname(c.fd)
	if err != nil {
		return nil, api.AsIOError("getsockname", err)
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]).To16(), Port: a.Port}, nil
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]), Port: a.Port}, nil
	}
	return nil, fmt.Errorf("%w: address family", api.ErrNotSupported)
}

// accept4 takes one pending connection. It returns -1 and a nil error when
// the backlog is drained.
func (c *Conn) accept4() (int, error) {
	for {
		fd, _, err := unix.Accept4(c.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		switch err {
		case nil:
			return fd, nil
		case unix.EINTR, unix.ECONNABORTED:
			continue
		case unix.EAGAIN:
			c.recvReady = false
			return -1, nil
		default:
			return -1, api.AsIOError("accept4", err)
		}
	}
}

// Accept takes one pending connection from a listening Conn and returns
// it as a new Connected Conn from the same pool. It returns false when the
// backlog is drained or on failure; the listener itself is left as is.
func (c *Conn) Accept() (*Conn, bool) {
	c.metrics.Accept.Incr()
	if c.state != api.StateListening {
		c.metrics.AcceptEx.Incr()
		_ = debug.Violation(c.log, "accept on a %s connection", c.state)
		return nil, false
	}
	if !c.recvReady {
		c.metrics.AcceptEx.Incr()
		_ = debug.Violation(c.log, "accept on fd %d while not ready", c.fd)
		return nil, false
	}
	fd, err := c.accept4()
	if err != nil {
		c.metrics.AcceptEx.Incr()
		c.log.WithError(err).WithField("fd", c.fd).Warn("accept")
		return nil, false
	}
	if fd < 0 {
		return nil, false
	}
	nc, err := c.sibling()
	if err != nil {
		unix.Close(fd)
		c.metrics.AcceptEx.Incr()
		c.log.WithError(err).Warn("accept: no connection available")
		return nil, false
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	nc.fd = fd
	nc.state = api.StateConnected
	c.log.WithFields(logrus.Fields{"fd": fd, "listener": c.fd}).Debug("accepted")
	return nc, true
}

// sibling obtains a connection from wherever c came from.
func (c *Conn) sibling() (*Conn, error) {
	if c.owner == nil {
		return nil, api.ErrNotSupported
	}
	if c.pooled {
		return c.owner.Borrow()
	}
	return c.owner.Create()
}

// Reject accepts one pending connection and closes it at once.
func (c *Conn) Reject() bool {
	c.metrics.Reject.Incr()
	if c.state != api.StateListening || !c.recvReady {
		c.metrics.RejectEx.Incr()
		_ = debug.Violation(c.log, "reject on fd %d (%s, ready=%t)", c.fd, c.state, c.recvReady)
		return false
	}
	fd, err := c.accept4()
	if err != nil {
		c.metrics.RejectEx.Incr()
		c.log.WithError(err).WithField("fd", c.fd).Warn("reject")
		return false
	}
	if fd < 0 {
		return false
	}
	if err := unix.Close(fd); err != nil {
		c.metrics.RejectEx.Incr()
		c.log.WithError(err).WithField("fd", fd).Warn("reject: close")
		return false
	}
	return true
}

// Close releases the socket and moves the connection to Closing. Closing a
// connection without a descriptor succeeds.
func (c *Conn) Close() bool {
	c.metrics.Close.Incr()
	c.recvReady = false
	c.sendReady = false
	if c.fd < 0 {
		if c.state != api.StateUnknown {
			c.state = api.StateClosing
		}
		return true
	}
	fd := c.fd
	c.fd = -1
	c.state = api.StateClosing
	if err := unix.Close(fd); err != nil {
		c.err = api.AsIOError("close", err)
		c.metrics.CloseEx.Incr()
		c.log.WithError(c.err).WithField("fd", fd).Warn("close")
		return false
	}
	c.log.WithFields(logrus.Fields{"fd": fd, "recv": c.recvBytes, "sent": c.sendBytes}).Debug("closed")
	return true
}

// Adopt wraps an already connected, non-blocking descriptor.
func (c *Conn) Adopt(fd int) bool {
	if fd < 0 || c.fd >= 0 || c.state != api.StateUnknown {
		c.err = debug.Violation(c.log, "adopt fd %d into a %s connection", fd, c.state)
		return false
	}
	c.fd = fd
	c.state = api.StateConnected
	return true
}
