// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the channel abstraction streams are layered on. A channel is a
// bidirectional, non-blocking endpoint (TCP socket, pipe, ...).

package api

// ChannelType tags the variant behind a Channel.
type ChannelType int

const (
	ChannelUnknown ChannelType = iota
	ChannelTCP
	ChannelPipe
)

func (t ChannelType) String() string {
	switch t {
	case ChannelTCP:
		return "tcp"
	case ChannelPipe:
		return "pipe"
	default:
		return "unknown"
	}
}

// State is the connection state machine shared by every channel variant.
//
//	Unknown -> Connecting -> Connected -> Eof | Closing
//	Unknown -> Listening -> Closing
type State int

const (
	StateUnknown State = iota
	StateConnecting
	StateConnected
	StateEOF
	StateClosing
	StateListening
)

var stateNames = [...]string{
	StateUnknown:    "unknown",
	StateConnecting: "connecting",
	StateConnected:  "connected",
	StateEOF:        "eof",
	StateClosing:    "closing",
	StateListening:  "listening",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "invalid"
	}
	return stateNames[s]
}

// Channel is the capability set a stream needs from its endpoint.
//
// Recv and Send are non-blocking. They may only be called while the
// channel's matching readiness flag is set; the outcome is one of
//
//	(n, StatusOK)     n > 0 bytes moved
//	(0, StatusEOF)    orderly peer shutdown (Recv only)
//	(0, StatusAgain)  would-block
//	(0, StatusError)  terminal error, see Err
type Channel interface {
	Type() ChannelType
	// FD returns the descriptor to register with an event loop.
	FD() int
	State() State
	Recv(p []byte) (int, Status)
	Send(p []byte) (int, Status)
	// Close releases the descriptor; it reports false if the close failed.
	Close() bool
	Closed() bool
	// Err returns the last recorded error, if any.
	Err() error
}
