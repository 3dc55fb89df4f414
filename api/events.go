// File: api/events.go
// Package api defines readiness event types.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// EventMask is the uniform readiness bitmask delivered per descriptor.
// Each kind occupies its own byte so masks stay combinable.
type EventMask uint32

const (
	EventRead  EventMask = 0x0000ff
	EventWrite EventMask = 0x00ff00
	EventError EventMask = 0xff0000
)

// Readable reports whether m carries read readiness.
func (m EventMask) Readable() bool { return m&EventRead != 0 }

// Writable reports whether m carries write readiness.
func (m EventMask) Writable() bool { return m&EventWrite != 0 }

// Failed reports whether m carries an error or hangup condition.
func (m EventMask) Failed() bool { return m&EventError != 0 }

func (m EventMask) String() string {
	if m == 0 {
		return "none"
	}
	s := ""
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if m.Readable() {
		add("read")
	}
	if m.Writable() {
		add("write")
	}
	if m.Failed() {
		add("error")
	}
	return s
}
