// File: stream/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package stream

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/control"
	"github.com/momentics/ccio/internal/debug"
	"github.com/momentics/ccio/pool"
)

// Stream binds a channel to a read buffer, a write buffer and a Handler.
// The buffers belong to the stream for as long as it is borrowed; data is
// protocol state owned by the caller.
type Stream struct {
	ch      api.Channel
	rbuf    *pool.Buffer
	wbuf    *pool.Buffer
	handler *Handler
	data    any
	err     error

	pooled  bool
	log     logrus.FieldLogger
	metrics *control.StreamMetrics
}

func (s *Stream) reset() {
	s.ch = nil
	s.rbuf = nil
	s.wbuf = nil
	s.handler = nil
	s.data = nil
	s.err = nil
}

// Attach binds ch and h. Replacing a channel that is still open is a
// contract violation.
func (s *Stream) Attach(ch api.Channel, h *Handler) error {
	if s.ch != nil && s.ch != ch && !s.ch.Closed() {
		return debug.Violation(s.log, "attach over an open %s channel", s.ch.Type())
	}
	s.ch = ch
	s.handler = h
	return nil
}

// Type returns the channel type, ChannelUnknown without a channel.
func (s *Stream) Type() api.ChannelType {
	if s.ch == nil {
		return api.ChannelUnknown
	}
	return s.ch.Type()
}

func (s *Stream) Channel() api.Channel { return s.ch }
func (s *Stream) Handler() *Handler { return s.handler }
func (s *Stream) ReadBuf() *pool.Buffer { return s.rbuf }
func (s *Stream) WriteBuf() *pool.Buffer { return s.wbuf }
func (s *Stream) Err() error { return s.err }
func (s *Stream) Data() any { return s.data }
func (s *Stream) SetData(data any) { s.data = data }

// DetachData hands protocol state back to the caller. A stream must have
// no data attached when it is returned or destroyed.
func (s *Stream) DetachData() any {
	d := s.data
	s.data = nil
	return d
}

// Notify forwards readiness to the channel.
func (s *Stream) Notify(events api.EventMask) {
	if n, ok := s.ch.(api.Notifiable); ok {
		n.Notify(events)
	}
}

// Close closes the channel. It reports false if the close failed.
func (s *Stream) Close() bool {
	if s.ch == nil {
		return true
	}
	if !s.ch.Close() {
		s.err = s.ch.Err()
		return false
	}
	return true
}

// Read receives up to n bytes into the read buffer; n <= 0 asks for all
// free space. It returns
//
//	StatusRetry     n bytes arrived; more may be pending, read again
//	StatusOK        fewer than n arrived; wait for the next event
//	StatusEOF       nothing arrived, the peer is gone
//	StatusNoMemory  fewer than n bytes free; the channel is not touched
//	StatusAgain     would-block
//	StatusError     see Err
func (s *Stream) Read(n int) api.Status {
	s.handler.preRead(s, n)
	s.metrics.Read.Incr()
	if s.ch == nil || s.rbuf == nil {
		s.err = debug.Violation(s.log, "read on a detached stream")
		s.metrics.ReadEx.Incr()
		return api.StatusError
	}
	free := s.rbuf.WriteSize()
	if n <= 0 {
		n = free
	}
	if n == 0 || free < n {
		s.metrics.ReadEx.Incr()
		s.log.WithFields(logrus.Fields{"want": n, "free": free}).Debug("read buffer full")
		return api.StatusNoMemory
	}
	got, st := s.ch.Recv(s.rbuf.Free()[:n])
	switch {
	case st == api.StatusOK && got == n:
		st = api.StatusRetry
	case st == api.StatusOK && got == 0:
		st = api.StatusEOF
	case st == api.StatusError:
		s.err = s.ch.Err()
		s.metrics.ReadEx.Incr()
	}
	if got > 0 {
		s.rbuf.AdvanceWrite(got)
		s.metrics.ReadByte.IncrN(uint64(got))
		s.handler.postRead(s, got)
	}
	return st
}

// Write sends every unread byte of the write buffer. n is the caller's
// estimate and only reaches the PreWrite hook. It returns
//
//	StatusOK     the buffer drained
//	StatusRetry  part went out; write again
//	StatusEmpty  nothing to send; the channel is not touched
//	StatusAgain  would-block
//	StatusError  see Err
func (s *Stream) Write(n int) api.Status {
	s.handler.preWrite(s, n)
	s.metrics.Write.Incr()
	if s.ch == nil || s.wbuf == nil {
		s.err = debug.Violation(s.log, "write on a detached stream")
		s.metrics.WriteEx.Incr()
		return api.StatusError
	}
	avail := s.wbuf.ReadSize()
	if avail == 0 {
		s.metrics.WriteEx.Incr()
		return api.StatusEmpty
	}
	sent, st := s.ch.Send(s.wbuf.Unread())
	switch {
	case st == api.StatusOK && sent < avail:
		st = api.StatusRetry
	case st == api.StatusError:
		s.err = s.ch.Err()
		s.metrics.WriteEx.Incr()
	}
	if sent > 0 {
		s.wbuf.AdvanceRead(sent)
		s.metrics.WriteByte.IncrN(uint64(sent))
		s.handler.postWrite(s, sent)
	}
	return st
}
