//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor - Linux epoll implementation.

package reactor

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/ccio/api"
)

// poller owns the epoll descriptor and the fixed event array.
type poller struct {
	epfd   int
	events []unix.EpollEvent
}

func openPoller(capacity int) (*poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, api.AsIOError("epoll_create1", err)
	}
	return &poller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, capacity),
	}, nil
}

// epollBits converts interest into edge-triggered epoll flags.
func epollBits(interest api.EventMask) uint32 {
	bits := uint32(unix.EPOLLET)
	if interest.Readable() {
		bits |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest.Writable() {
		bits |= unix.EPOLLOUT
	}
	return bits
}

// eventMask converts reported epoll flags.
func eventMask(bits uint32) api.EventMask {
	var m api.EventMask
	if bits&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		m |= api.EventError
	}
	if bits&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0 {
		m |= api.EventRead
	}
	if bits&unix.EPOLLOUT != 0 {
		m |= api.EventWrite
	}
	return m
}

func (p *poller) ctl(op ctlOp, fd int, interest api.EventMask) error {
	switch op {
	case ctlDel:
		err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		if err == unix.ENOENT || err == unix.EBADF {
			return nil
		}
		if err != nil {
			return api.AsIOError("epoll_ctl del", err)
		}
		return nil
	case ctlMod:
		ev := unix.EpollEvent{Events: epollBits(interest), Fd: int32(fd)}
		if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
			return api.AsIOError("epoll_ctl mod", err)
		}
		return nil
	default:
		ev := unix.EpollEvent{Events: epollBits(interest), Fd: int32(fd)}
		if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			return api.AsIOError("epoll_ctl add", err)
		}
		return nil
	}
}

// wait polls once and calls fn per ready descriptor. EINTR restarts the
// poll.
func (p *poller) wait(timeout int, fn func(fd int, mask api.EventMask)) (int, error) {
	var (
		n   int
		err error
	)
	for {
		n, err = unix.EpollWait(p.epfd, p.events, timeout)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return 0, api.AsIOError("epoll_wait", err)
	}
	for i := 0; i < n; i++ {
		ev := p.events[i]
		fn(int(ev.Fd), eventMask(ev.Events))
	}
	return n, nil
}

func (p *poller) close() error {
	if err := unix.Close(p.epfd); err != nil {
		return api.AsIOError("close", err)
	}
	return nil
}
