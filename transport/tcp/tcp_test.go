//go:build linux && !debug

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/control"
)

func newTestPool(t *testing.T, size int) (*Pool, *control.TCPMetrics) {
	t.Helper()
	m := control.NewTCPMetrics()
	p, err := NewPool(Config{PoolSize: size, Metrics: m})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p, m
}

// socketPair returns two adopted, connected conns over an AF_UNIX stream
// pair, which shares the outcome table with TCP sockets.
func socketPair(t *testing.T, p *Pool) (*Conn, *Conn) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	a, err := p.Borrow()
	require.NoError(t, err)
	b, err := p.Borrow()
	require.NoError(t, err)
	require.True(t, a.Adopt(fds[0]))
	require.True(t, b.Adopt(fds[1]))
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestPoolScenario(t *testing.T) {
	p, m := newTestPool(t, 2)
	a, err := p.Borrow()
	require.NoError(t, err)
	b, err := p.Borrow()
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	_, err = p.Borrow()
	require.ErrorIs(t, err, api.ErrPoolExhausted)

	require.NoError(t, p.Return(a))
	c, err := p.Borrow()
	require.NoError(t, err)
	assert.Same(t, a, c)
	assert.Equal(t, uint64(1), m.Pool.BorrowEx.Load())
	assert.Equal(t, int64(2), m.Pool.Active.Load())
}

func TestReturnResetsConnection(t *testing.T) {
	p, _ := newTestPool(t, 0)
	a, b := socketPair(t, p)
	b.Notify(api.EventWrite)
	_, st := b.Send([]byte("x"))
	require.Equal(t, api.StatusOK, st)

	require.True(t, b.Close())
	assert.Equal(t, api.StateClosing, b.State())
	require.NoError(t, p.Return(b))
	assert.Equal(t, api.StateUnknown, b.State())
	assert.Zero(t, b.SendBytes())
	assert.False(t, b.SendReady())
	assert.Equal(t, -1, b.FD())

	// open connections may not go back
	assert.ErrorIs(t, p.Return(a), api.ErrContract)
	// nor twice
	assert.ErrorIs(t, p.Return(b), api.ErrContract)
}

func TestRecvOutcomes(t *testing.T) {
	p, m := newTestPool(t, 0)
	a, b := socketPair(t, p)
	a.Notify(api.EventWrite)
	b.Notify(api.EventRead)

	n, st := a.Send([]byte("hello world"))
	require.Equal(t, api.StatusOK, st)
	require.Equal(t, 11, n)
	assert.True(t, a.SendReady(), "full send keeps the flag")

	buf := make([]byte, 5)
	n, st = b.Recv(buf)
	assert.Equal(t, api.StatusOK, st)
	assert.Equal(t, 5, n)
	assert.True(t, b.RecvReady(), "full read keeps the flag")

	buf = make([]byte, 64)
	n, st = b.Recv(buf)
	assert.Equal(t, api.StatusOK, st)
	assert.Equal(t, " world", string(buf[:n]))
	assert.False(t, b.RecvReady(), "partial read clears the flag")

	// the flag is down: calling again is a contract fault, not a syscall
	recvCalls := m.Recv.Load()
	n, st = b.Recv(buf)
	assert.Equal(t, api.StatusError, st)
	assert.Zero(t, n)
	assert.ErrorIs(t, b.Err(), api.ErrContract)
	assert.Equal(t, recvCalls, m.Recv.Load())

	b.Notify(api.EventRead)
	_, st = b.Recv(buf)
	assert.Equal(t, api.StatusAgain, st)
	assert.False(t, b.RecvReady())

	assert.Equal(t, uint64(11), b.RecvBytes())
	assert.Equal(t, uint64(11), m.RecvByte.Load())
	assert.Zero(t, m.RecvEx.Load())
}

func TestRecvEOF(t *testing.T) {
	p, _ := newTestPool(t, 0)
	a, b := socketPair(t, p)
	require.True(t, a.Close())

	b.Notify(api.EventRead)
	n, st := b.Recv(make([]byte, 8))
	assert.Equal(t, api.StatusEOF, st)
	assert.Zero(t, n)
	assert.Equal(t, api.StateEOF, b.State())
	assert.False(t, b.RecvReady())
}

func TestSendErrorRecorded(t *testing.T) {
	p, m := newTestPool(t, 0)
	a, b := socketPair(t, p)
	require.True(t, b.Close())

	a.Notify(api.EventWrite)
	_, st := a.Send([]byte("gone"))
	assert.Equal(t, api.StatusError, st)
	var ioe *api.IOError
	require.ErrorAs(t, a.Err(), &ioe)
	assert.Equal(t, unix.EPIPE, ioe.Errno)
	assert.Equal(t, uint64(1), m.SendEx.Load())
	assert.False(t, a.SendReady())
}

func TestVectoredMatchesScalar(t *testing.T) {
	p, _ := newTestPool(t, 0)
	a, b := socketPair(t, p)
	a.Notify(api.EventWrite)
	b.Notify(api.EventRead)

	n, st := a.Sendv([][]byte{[]byte("abc"), []byte("defg")})
	require.Equal(t, api.StatusOK, st)
	require.Equal(t, 7, n)

	x, y := make([]byte, 3), make([]byte, 4)
	n, st = b.Recvv([][]byte{x, y})
	assert.Equal(t, api.StatusOK, st)
	assert.Equal(t, 7, n)
	assert.True(t, b.RecvReady())
	assert.Equal(t, "abc", string(x))
	assert.Equal(t, "defg", string(y))

	n, st = b.Recvv([][]byte{x, y})
	assert.Equal(t, api.StatusAgain, st)
	assert.Zero(t, n)
	assert.False(t, b.RecvReady())

	n, st = a.Sendv(nil)
	assert.Equal(t, api.StatusOK, st)
	assert.Zero(t, n)
}

func TestSendFillsSocket(t *testing.T) {
	p, _ := newTestPool(t, 0)
	a, _ := socketPair(t, p)
	require.NoError(t, a.SetSndBuf(4096))
	chunk := make([]byte, 64*1024)
	a.Notify(api.EventWrite)

	var st api.Status
	for i := 0; i < 1024 && a.SendReady(); i++ {
		_, st = a.Send(chunk)
	}
	assert.False(t, a.SendReady())
	assert.Contains(t, []api.Status{api.StatusOK, api.StatusAgain}, st)
}

func TestListenAcceptConnect(t *testing.T) {
	p, m := newTestPool(t, 0)
	ln, err := p.Borrow()
	require.NoError(t, err)
	require.True(t, ln.Listen("127.0.0.1:0"))
	defer ln.Close()
	assert.Equal(t, api.StateListening, ln.State())
	addr, err := ln.LocalAddr()
	require.NoError(t, err)

	// nothing pending yet
	ln.Notify(api.EventRead)
	_, ok := ln.Accept()
	assert.False(t, ok)
	assert.False(t, ln.RecvReady())
	assert.Zero(t, m.AcceptEx.Load())

	cli, err := p.Borrow()
	require.NoError(t, err)
	defer cli.Close()
	require.True(t, cli.Connect(fmt.Sprintf("127.0.0.1:%d", addr.Port)))
	waitWritable(t, cli.FD())
	cli.Notify(api.EventWrite)
	require.Equal(t, api.StateConnected, cli.State())

	ln.Notify(api.EventRead)
	var srv *Conn
	require.Eventually(t, func() bool {
		ln.Notify(api.EventRead)
		srv, ok = ln.Accept()
		return ok
	}, time.Second, time.Millisecond)
	defer srv.Close()
	assert.Equal(t, api.StateConnected, srv.State())
	assert.Equal(t, api.StateListening, ln.State())
	assert.True(t, srv.pooled)

	n, st := cli.Send([]byte("ping"))
	require.Equal(t, api.StatusOK, st)
	require.Equal(t, 4, n)
	waitReadable(t, srv.FD())
	srv.Notify(api.EventRead)
	buf := make([]byte, 4)
	n, st = srv.Recv(buf)
	assert.Equal(t, api.StatusOK, st)
	assert.Equal(t, "ping", string(buf[:n]))

	assert.Equal(t, uint64(1), m.Listen.Load())
	assert.Equal(t, uint64(1), m.Connect.Load())
	assert.Zero(t, m.ConnectEx.Load())
}

func TestReject(t *testing.T) {
	p, m := newTestPool(t, 0)
	ln, err := p.Create()
	require.NoError(t, err)
	require.True(t, ln.Listen("127.0.0.1:0"))
	defer ln.Close()
	addr, err := ln.LocalAddr()
	require.NoError(t, err)

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	defer unix.Close(fd)
	require.NoError(t, unix.Connect(fd, &unix.SockaddrInet4{Port: addr.Port, Addr: [4]byte{127, 0, 0, 1}}))

	waitReadable(t, ln.FD())
	ln.Notify(api.EventRead)
	assert.True(t, ln.Reject())
	assert.Equal(t, uint64(1), m.Reject.Load())
	assert.Zero(t, m.RejectEx.Load())

	n, err := unix.Read(fd, make([]byte, 1))
	assert.True(t, n == 0 || err != nil, "peer sees the close")
}

func TestContractFaults(t *testing.T) {
	p, m := newTestPool(t, 0)
	c, err := p.Borrow()
	require.NoError(t, err)

	_, ok := c.Accept()
	assert.False(t, ok)
	assert.Equal(t, uint64(1), m.AcceptEx.Load())
	assert.False(t, c.Reject())
	assert.False(t, c.Adopt(-1))

	_, st := c.Send([]byte("x"))
	assert.Equal(t, api.StatusError, st)

	assert.False(t, c.Listen("not an address"))
	assert.Equal(t, uint64(1), m.ListenEx.Load())
	assert.ErrorIs(t, c.Err(), api.ErrInvalidArgument)
	assert.True(t, c.Close())
}

func TestConnectRefused(t *testing.T) {
	p, m := newTestPool(t, 0)
	// bind a port, then close it so nothing listens there
	probe, err := p.Create()
	require.NoError(t, err)
	require.True(t, probe.Listen("127.0.0.1:0"))
	addr, err := probe.LocalAddr()
	require.NoError(t, err)
	require.True(t, probe.Close())

	c, err := p.Borrow()
	require.NoError(t, err)
	defer c.Close()
	if !c.Connect(addr.String()) {
		assert.Equal(t, uint64(1), m.ConnectEx.Load())
		return
	}
	waitWritable(t, c.FD())
	c.Notify(api.EventWrite)
	assert.NotEqual(t, api.StateConnected, c.State())
	var ioe *api.IOError
	require.ErrorAs(t, c.Err(), &ioe)
	assert.Equal(t, unix.ECONNREFUSED, ioe.Errno)
	assert.Equal(t, uint64(1), m.ConnectEx.Load())
	assert.Equal(t, api.StateClosing, c.State())

	// later events must not revive the socket
	c.Notify(api.EventWrite)
	c.Notify(api.EventWrite | api.EventError)
	assert.Equal(t, api.StateClosing, c.State())
	assert.Equal(t, uint64(1), m.ConnectEx.Load())
	require.ErrorAs(t, c.Err(), &ioe)
	assert.Equal(t, unix.ECONNREFUSED, ioe.Errno)
}

func TestCreateDestroy(t *testing.T) {
	p, m := newTestPool(t, 1)
	c, err := p.Create()
	require.NoError(t, err)
	assert.False(t, c.pooled)
	require.NoError(t, p.Destroy(c))
	assert.Equal(t, uint64(1), m.Pool.Destroyed.Load())
	assert.Equal(t, int64(0), m.Pool.Total.Load())

	b, err := p.Borrow()
	require.NoError(t, err)
	require.NoError(t, p.Destroy(b))
	b2, err := p.Borrow()
	require.NoError(t, err)
	assert.NotSame(t, b, b2)
}

func TestSocketOptions(t *testing.T) {
	p, _ := newTestPool(t, 0)
	c, err := p.Create()
	require.NoError(t, err)
	require.True(t, c.Listen("127.0.0.1:0"))
	defer c.Close()

	require.NoError(t, c.SetReuseAddr())
	require.NoError(t, c.SetTCPNoDelay())
	require.NoError(t, c.SetKeepAlive())
	require.NoError(t, c.SetLinger(1))
	require.NoError(t, c.UnsetLinger())
	require.NoError(t, c.SetRcvBuf(8192))
	rcv, err := c.RcvBuf()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rcv, 8192)

	before, err := c.SndBuf()
	require.NoError(t, err)
	after, err := c.MaximizeSndBuf()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, after, before)

	soerr, err := c.SOError()
	require.NoError(t, err)
	assert.Zero(t, soerr)

	require.NoError(t, c.SetBlocking())
	require.NoError(t, c.SetNonblocking())
}

func waitFor(t *testing.T, fd int, events int16) {
	t.Helper()
	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}
	n, err := unix.Poll(fds, 1000)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func waitReadable(t *testing.T, fd int) { waitFor(t, fd, unix.POLLIN) }
func waitWritable(t *testing.T, fd int) { waitFor(t, fd, unix.POLLOUT) }
