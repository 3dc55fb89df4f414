// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Dispatch contract between the event loop and the protocol layer.

package api

// DispatchFunc receives the opaque context registered for a descriptor and
// the readiness mask reported for it. Readiness is edge-triggered: the
// callback must drain the descriptor until would-block (or yield it back to
// the loop) before returning, otherwise no further event is reported.
type DispatchFunc func(ctx any, events EventMask)

// Notifiable is implemented by channels whose readiness flags are fed from
// dispatched event masks.
type Notifiable interface {
	Notify(events EventMask)
}
