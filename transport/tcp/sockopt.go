// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp - socket option helpers.

package tcp

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/ccio/api"
)

// maxSndBuf caps MaximizeSndBuf's search.
const maxSndBuf = 256 * 1024 * 1024

func (c *Conn) setInt(level, opt, value int, op string) error {
	if err := unix.SetsockoptInt(c.fd, level, opt, value); err != nil {
		return api.AsIOError(op, err)
	}
	return nil
}

func (c *Conn) getInt(level, opt int, op string) (int, error) {
	v, err := unix.GetsockoptInt(c.fd, level, opt)
	if err != nil {
		return 0, api.AsIOError(op, err)
	}
	return v, nil
}

// SetNonblocking sets O_NONBLOCK on the descriptor.
func (c *Conn) SetNonblocking() error {
	if err := unix.SetNonblock(c.fd, true); err != nil {
		return api.AsIOError("fcntl", err)
	}
	return nil
}

// SetBlocking clears O_NONBLOCK on the descriptor.
func (c *Conn) SetBlocking() error {
	if err := unix.SetNonblock(c.fd, false); err != nil {
		return api.AsIOError("fcntl", err)
	}
	return nil
}

func (c *Conn) SetReuseAddr() error {
	return c.setInt(unix.SOL_SOCKET, unix.SO_REUSEADDR, 1, "setsockopt SO_REUSEADDR")
}

func (c *Conn) SetTCPNoDelay() error {
	return c.setInt(unix.IPPROTO_TCP, unix.TCP_NODELAY, 1, "setsockopt TCP_NODELAY")
}

func (c *Conn) SetKeepAlive() error {
	return c.setInt(unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1, "setsockopt SO_KEEPALIVE")
}

// SetLinger makes close block up to timeout seconds for unsent data.
func (c *Conn) SetLinger(timeout int) error {
	l := unix.Linger{Onoff: 1, Linger: int32(timeout)}
	if err := unix.SetsockoptLinger(c.fd, unix.SOL_SOCKET, unix.SO_LINGER, &l); err != nil {
		return api.AsIOError("setsockopt SO_LINGER", err)
	}
	return nil
}

// UnsetLinger restores the default close behavior.
func (c *Conn) UnsetLinger() error {
	l := unix.Linger{}
	if err := unix.SetsockoptLinger(c.fd, unix.SOL_SOCKET, unix.SO_LINGER, &l); err != nil {
		return api.AsIOError("setsockopt SO_LINGER", err)
	}
	return nil
}

func (c *Conn) SetSndBuf(size int) error {
	return c.setInt(unix.SOL_SOCKET, unix.SO_SNDBUF, size, "setsockopt SO_SNDBUF")
}

func (c *Conn) SetRcvBuf(size int) error {
	return c.setInt(unix.SOL_SOCKET, unix.SO_RCVBUF, size, "setsockopt SO_RCVBUF")
}

func (c *Conn) SndBuf() (int, error) {
	return c.getInt(unix.SOL_SOCKET, unix.SO_SNDBUF, "getsockopt SO_SNDBUF")
}

func (c *Conn) RcvBuf() (int, error) {
	return c.getInt(unix.SOL_SOCKET, unix.SO_RCVBUF, "getsockopt SO_RCVBUF")
}

// SOError returns and clears the pending socket error.
func (c *Conn) SOError() (int, error) {
	return c.getInt(unix.SOL_SOCKET, unix.SO_ERROR, "getsockopt SO_ERROR")
}

// MaximizeSndBuf raises SO_SNDBUF as far as the kernel accepts, searching
// between the current size and maxSndBuf. It returns the resulting size.
func (c *Conn) MaximizeSndBuf() (int, error) {
	lo, err := c.SndBuf()
	if err != nil {
		return 0, err
	}
	hi := maxSndBuf
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if c.SetSndBuf(mid) == nil {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return c.SndBuf()
}
