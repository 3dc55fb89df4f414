// File: pool/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity byte buffer with independent read and write cursors.

package pool

import "io"

// Buffer holds bytes in data[r:w]; data[w:] is free space. The capacity
// never changes after construction.
type Buffer struct {
	data []byte
	r, w int
}

// NewBuffer allocates a buffer of size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// ReadSize returns the number of unread bytes.
func (b *Buffer) ReadSize() int { return b.w - b.r }

// WriteSize returns the free space after the write cursor.
func (b *Buffer) WriteSize() int { return len(b.data) - b.w }

// Unread returns the unread bytes without consuming them.
func (b *Buffer) Unread() []byte { return b.data[b.r:b.w] }

// Free returns the writable space after the write cursor.
func (b *Buffer) Free() []byte { return b.data[b.w:] }

// AdvanceRead consumes n unread bytes. It panics if n is out of range.
func (b *Buffer) AdvanceRead(n int) {
	if n < 0 || n > b.ReadSize() {
		panic("pool: AdvanceRead out of range")
	}
	b.r += n
	if b.r == b.w {
		b.r, b.w = 0, 0
	}
}

// AdvanceWrite commits n bytes written into Free. It panics if n is out of
// range.
func (b *Buffer) AdvanceWrite(n int) {
	if n < 0 || n > b.WriteSize() {
		panic("pool: AdvanceWrite out of range")
	}
	b.w += n
}

// Reset empties the buffer.
func (b *Buffer) Reset() { b.r, b.w = 0, 0 }

// Compact moves unread bytes to the start so Free is as large as possible.
func (b *Buffer) Compact() {
	if b.r == 0 {
		return
	}
	n := copy(b.data, b.data[b.r:b.w])
	b.r, b.w = 0, n
}

// Read drains unread bytes into p.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.ReadSize() == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.Unread())
	b.AdvanceRead(n)
	return n, nil
}

// Write appends p, failing with io.ErrShortWrite when p does not fit.
func (b *Buffer) Write(p []byte) (int, error) {
	n := copy(b.Free(), p)
	b.w += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// WriteString appends s like Write.
func (b *Buffer) WriteString(s string) (int, error) {
	n := copy(b.Free(), s)
	b.w += n
	if n < len(s) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

var (
	_ io.Reader       = (*Buffer)(nil)
	_ io.Writer       = (*Buffer)(nil)
	_ io.StringWriter = (*Buffer)(nil)
)
