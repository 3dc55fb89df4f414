// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral part of the edge-triggered event loop: registration
// table, yield queue and dispatch.

package reactor

import (
	"fmt"

	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"

	"github.com/momentics/ccio/api"
	"github.com/momentics/ccio/control"
	"github.com/momentics/ccio/internal/debug"
)

// Wait timeouts in milliseconds.
const (
	Infinite = -1
	NoWait   = 0
)

type ctlOp int

const (
	ctlAdd ctlOp = iota
	ctlMod
	ctlDel
)

// registration is the per-descriptor entry of the loop.
type registration struct {
	ctx      any
	interest api.EventMask
}

// yieldEvent is a dispatch postponed to the next Wait.
type yieldEvent struct {
	fd   int
	mask api.EventMask
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Loop) { l.log = control.ModuleLogger(log, "ccio::event") }
}

// WithMetrics sets the metric family the loop increments.
func WithMetrics(m *control.EventMetrics) Option {
	return func(l *Loop) { l.metrics = m }
}

// WithPanicRecovery makes Wait recover a panicking dispatch, log it and
// continue with the next event.
func WithPanicRecovery() Option {
	return func(l *Loop) { l.recover = true }
}

// Loop multiplexes readiness for many descriptors onto one dispatch
// callback. It is driven by a single goroutine and is not safe for
// concurrent use.
type Loop struct {
	poller   *poller
	capacity int
	dispatch api.DispatchFunc
	regs     map[int]*registration
	yielded  *queue.Queue
	log      logrus.FieldLogger
	metrics  *control.EventMetrics
	recover  bool
	closed   bool
}

// New creates a loop that reports at most capacity events per Wait.
func New(capacity int, dispatch api.DispatchFunc, opts ...Option) (*Loop, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: loop capacity %d", api.ErrInvalidArgument, capacity)
	}
	if dispatch == nil {
		return nil, fmt.Errorf("%w: nil dispatch", api.ErrInvalidArgument)
	}
	l := &Loop{
		capacity: capacity,
		dispatch: dispatch,
		regs:     make(map[int]*registration),
		yielded:  queue.New(),
	}
	for _, o := range opts {
		o(l)
	}
	if l.log == nil {
		l.log = control.ModuleLogger(nil, "ccio::event")
	}
	if l.metrics == nil {
		l.metrics = control.NewEventMetrics()
	}
	p, err := openPoller(capacity)
	if err != nil {
		l.log.WithError(err).Error("create event loop")
		return nil, err
	}
	l.poller = p
	return l, nil
}

// RegisterRead arms edge-triggered read interest for fd. ctx is handed
// back on every dispatch for fd.
func (l *Loop) RegisterRead(fd int, ctx any) error {
	return l.register(fd, ctx, api.EventRead)
}

// RegisterWrite arms edge-triggered write interest for fd.
func (l *Loop) RegisterWrite(fd int, ctx any) error {
	return l.register(fd, ctx, api.EventWrite)
}

// register adds fd or merges interest into an existing registration. A
// descriptor carries one ctx; the latest registration wins.
func (l *Loop) register(fd int, ctx any, interest api.EventMask) error {
	l.metrics.Register.Incr()
	if l.closed {
		l.metrics.RegisterEx.Incr()
		return api.ErrClosed
	}
	if fd < 0 {
		l.metrics.RegisterEx.Incr()
		return fmt.Errorf("%w: fd %d", api.ErrInvalidArgument, fd)
	}
	reg, ok := l.regs[fd]
	op := ctlAdd
	if ok {
		op = ctlMod
		interest |= reg.interest
	} else if len(l.regs) >= l.capacity {
		_ = debug.Violation(l.log, "fd %d exceeds loop capacity %d", fd, l.capacity)
	}
	if err := l.poller.ctl(op, fd, interest); err != nil {
		l.metrics.RegisterEx.Incr()
		l.log.WithError(err).WithField("fd", fd).Warn("register")
		return err
	}
	if ok {
		reg.ctx = ctx
		reg.interest = interest
		return nil
	}
	l.regs[fd] = &registration{ctx: ctx, interest: interest}
	l.metrics.Registered.Incr()
	l.log.WithFields(logrus.Fields{"fd": fd, "interest": interest}).Trace("registered")
	return nil
}

// Deregister removes fd. A descriptor the kernel already dropped on close
// is not an error.
func (l *Loop) Deregister(fd int) error {
	l.metrics.Deregister.Incr()
	if l.closed {
		l.metrics.DeregisterEx.Incr()
		return api.ErrClosed
	}
	if err := l.poller.ctl(ctlDel, fd, 0); err != nil {
		l.metrics.DeregisterEx.Incr()
		l.log.WithError(err).WithField("fd", fd).Warn("deregister")
		return err
	}
	if _, ok := l.regs[fd]; ok {
		delete(l.regs, fd)
		l.metrics.Registered.Decr()
	}
	return nil
}

// Yield postpones a dispatch of mask for fd to the next Wait, which then
// does not block. A callback yields instead of draining a descriptor to
// would-block, keeping the edge without starving other descriptors.
// Yields for descriptors deregistered in the meantime are dropped.
func (l *Loop) Yield(fd int, mask api.EventMask) error {
	if l.closed {
		return api.ErrClosed
	}
	if _, ok := l.regs[fd]; !ok {
		return fmt.Errorf("%w: fd %d is not registered", api.ErrInvalidArgument, fd)
	}
	l.yielded.Add(yieldEvent{fd: fd, mask: mask})
	return nil
}

// Wait blocks up to timeout milliseconds (Infinite blocks until an event)
// and dispatches once per ready descriptor, then every event yielded
// before the call in FIFO order. It returns the number of dispatches.
// An indefinite wait that dispatches nothing fails with
// api.ErrIndefiniteWaitEmpty.
func (l *Loop) Wait(timeout int) (int, error) {
	l.metrics.Wait.Incr()
	if l.closed {
		l.metrics.WaitEx.Incr()
		return 0, api.ErrClosed
	}
	pending := l.yielded.Length()
	if pending > 0 {
		timeout = NoWait
	}
	n := 0
	_, err := l.poller.wait(timeout, func(fd int, mask api.EventMask) {
		reg, ok := l.regs[fd]
		if !ok {
			return
		}
		l.fire(reg.ctx, mask)
		n++
	})
	if err != nil {
		l.metrics.WaitEx.Incr()
		l.log.WithError(err).Error("wait")
		return 0, err
	}
	for i := 0; i < pending && !l.closed; i++ {
		y := l.yielded.Remove().(yieldEvent)
		reg, ok := l.regs[y.fd]
		if !ok {
			continue
		}
		l.metrics.Yielded.Incr()
		l.fire(reg.ctx, y.mask)
		n++
	}
	if n == 0 && timeout < 0 {
		l.metrics.WaitEx.Incr()
		return 0, api.ErrIndefiniteWaitEmpty
	}
	return n, nil
}

func (l *Loop) fire(ctx any, mask api.EventMask) {
	l.metrics.Dispatched.Incr()
	if mask.Readable() {
		l.metrics.ReadEvents.Incr()
	}
	if mask.Writable() {
		l.metrics.WriteEvents.Incr()
	}
	if mask.Failed() {
		l.metrics.ErrorEvents.Incr()
	}
	if !l.recover {
		l.dispatch(ctx, mask)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.log.WithField("panic", r).Error("dispatch panicked")
		}
	}()
	l.dispatch(ctx, mask)
}

// Len returns the number of registered descriptors.
func (l *Loop) Len() int { return len(l.regs) }

// Capacity returns the per-Wait event capacity.
func (l *Loop) Capacity() int { return l.capacity }

// Close releases the OS resources of the loop. It is idempotent.
func (l *Loop) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.regs = nil
	l.yielded = queue.New()
	return l.poller.close()
}
