// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides a scripted, controllable api.Channel.

package fake

import (
	"errors"
	"sync"

	"github.com/momentics/ccio/api"
)

// ErrScripted is the error a Fail step records.
var ErrScripted = errors.New("fake: scripted failure")

// Step scripts the outcome of one Recv or Send call.
type Step struct {
	N      int
	Status api.Status
	Err    error
}

// Transfer moves up to n bytes.
func Transfer(n int) Step { return Step{N: n, Status: api.StatusOK} }

// EOF reports an orderly peer shutdown.
func EOF() Step { return Step{Status: api.StatusEOF} }

// Again reports would-block.
func Again() Step { return Step{Status: api.StatusAgain} }

// Fail reports a terminal error; a nil err records ErrScripted.
func Fail(err error) Step {
	if err == nil {
		err = ErrScripted
	}
	return Step{Status: api.StatusError, Err: err}
}

// Channel is a fake api.Channel whose transfers follow a script. An
// exhausted script reports would-block.
type Channel struct {
	mu         sync.Mutex
	typ        api.ChannelType
	fd         int
	state      api.State
	recvScript []Step
	sendScript []Step
	recvCalls  int
	sendCalls  int
	sent       []byte
	fill       byte
	closed     bool
	closeErr   error
	err        error
	notified   api.EventMask
}

var (
	_ api.Channel    = (*Channel)(nil)
	_ api.Notifiable = (*Channel)(nil)
)

// NewChannel creates a connected fake channel of the given type.
func NewChannel(typ api.ChannelType) *Channel {
	return &Channel{typ: typ, fd: 1 << 16, state: api.StateConnected, fill: 'x'}
}

// ScriptRecv appends Recv outcomes.
func (c *Channel) ScriptRecv(steps ...Step) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recvScript = append(c.recvScript, steps...)
	return c
}

// ScriptSend appends Send outcomes.
func (c *Channel) ScriptSend(steps ...Step) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendScript = append(c.sendScript, steps...)
	return c
}

// FailClose makes Close report err.
func (c *Channel) FailClose(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeErr = err
}

func (c *Channel) Type() api.ChannelType { return c.typ }
func (c *Channel) FD() int { return c.fd }

func (c *Channel) State() api.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Recv fills p with the fill byte per the next scripted step.
func (c *Channel) Recv(p []byte) (int, api.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recvCalls++
	st := c.next(&c.recvScript)
	switch st.Status {
	case api.StatusOK:
		n := min(st.N, len(p))
		for i := range p[:n] {
			p[i] = c.fill
		}
		if n == 0 {
			c.state = api.StateEOF
			return 0, api.StatusEOF
		}
		return n, api.StatusOK
	case api.StatusEOF:
		c.state = api.StateEOF
	case api.StatusError:
		c.err = st.Err
	}
	return 0, st.Status
}

// Send accepts bytes per the next scripted step and records them.
func (c *Channel) Send(p []byte) (int, api.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendCalls++
	st := c.next(&c.sendScript)
	switch st.Status {
	case api.StatusOK:
		n := min(st.N, len(p))
		c.sent = append(c.sent, p[:n]...)
		if n == 0 {
			return 0, api.StatusAgain
		}
		return n, api.StatusOK
	case api.StatusError:
		c.err = st.Err
	}
	return 0, st.Status
}

func (c *Channel) next(script *[]Step) Step {
	if len(*script) == 0 {
		return Again()
	}
	st := (*script)[0]
	*script = (*script)[1:]
	return st
}

// Close marks the channel closed; it fails if FailClose was set.
func (c *Channel) Close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = api.StateClosing
	if c.closeErr != nil {
		c.err = c.closeErr
		return false
	}
	c.closed = true
	return true
}

func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Notify records the last mask delivered.
func (c *Channel) Notify(events api.EventMask) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notified = events
}

// Notified returns the last mask passed to Notify.
func (c *Channel) Notified() api.EventMask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notified
}

// RecvCalls returns the number of Recv calls.
func (c *Channel) RecvCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recvCalls
}

// SendCalls returns the number of Send calls.
func (c *Channel) SendCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendCalls
}

// Sent returns a copy of every byte accepted by Send.
func (c *Channel) Sent() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.sent...)
}
