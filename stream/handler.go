// File: stream/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package stream

// Handler holds the optional lifecycle hooks of a stream. Pre hooks run
// before every transfer attempt with the requested byte count; Post hooks
// run only after a transfer that moved bytes, with the byte count.
type Handler struct {
	PreRead   func(s *Stream, n int)
	PostRead  func(s *Stream, n int)
	PreWrite  func(s *Stream, n int)
	PostWrite func(s *Stream, n int)
}

func (h *Handler) preRead(s *Stream, n int) {
	if h != nil && h.PreRead != nil {
		h.PreRead(s, n)
	}
}

func (h *Handler) postRead(s *Stream, n int) {
	if h != nil && h.PostRead != nil {
		h.PostRead(s, n)
	}
}

func (h *Handler) preWrite(s *Stream, n int) {
	if h != nil && h.PreWrite != nil {
		h.PreWrite(s, n)
	}
}

func (h *Handler) postWrite(s *Stream, n int) {
	if h != nil && h.PostWrite != nil {
		h.PostWrite(s, n)
	}
}
