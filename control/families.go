// control/families.go
// Author: momentics <momentics@gmail.com>
//
// Metric families, one per resource type.

package control

// PoolMetrics tracks the lifecycle of pooled entries.
type PoolMetrics struct {
	Created   *Counter
	CreateEx  *Counter
	Destroyed *Counter
	Total     *Gauge
	Borrowed  *Counter
	BorrowEx  *Counter
	Returned  *Counter
	Active    *Gauge
}

// NewPoolMetrics creates a pool family whose names start with prefix.
func NewPoolMetrics(prefix string) *PoolMetrics {
	return &PoolMetrics{
		Created:   NewCounter(prefix+"_created", "entries constructed"),
		CreateEx:  NewCounter(prefix+"_create_ex", "entry construction failures"),
		Destroyed: NewCounter(prefix+"_destroyed", "entries destroyed"),
		Total:     NewGauge(prefix+"_total", "entries currently allocated"),
		Borrowed:  NewCounter(prefix+"_borrowed", "borrow attempts"),
		BorrowEx:  NewCounter(prefix+"_borrow_ex", "failed borrow attempts"),
		Returned:  NewCounter(prefix+"_returned", "entries returned"),
		Active:    NewGauge(prefix+"_active", "entries currently borrowed"),
	}
}

// Metrics lists every metric of the family.
func (m *PoolMetrics) Metrics() []Metric {
	return []Metric{m.Created, m.CreateEx, m.Destroyed, m.Total, m.Borrowed, m.BorrowEx, m.Returned, m.Active}
}

// IOMetrics counts recv/send calls, failures and bytes.
type IOMetrics struct {
	Recv     *Counter
	RecvEx   *Counter
	RecvByte *Counter
	Send     *Counter
	SendEx   *Counter
	SendByte *Counter
}

func newIOMetrics(prefix string) IOMetrics {
	return IOMetrics{
		Recv:     NewCounter(prefix+"_recv", "recv calls"),
		RecvEx:   NewCounter(prefix+"_recv_ex", "failed recv calls"),
		RecvByte: NewCounter(prefix+"_recv_byte", "bytes received"),
		Send:     NewCounter(prefix+"_send", "send calls"),
		SendEx:   NewCounter(prefix+"_send_ex", "failed send calls"),
		SendByte: NewCounter(prefix+"_send_byte", "bytes sent"),
	}
}

func (m *IOMetrics) metrics() []Metric {
	return []Metric{m.Recv, m.RecvEx, m.RecvByte, m.Send, m.SendEx, m.SendByte}
}

// TCPMetrics is the TCP connection family.
type TCPMetrics struct {
	Pool *PoolMetrics
	IOMetrics

	Accept    *Counter
	AcceptEx  *Counter
	Reject    *Counter
	RejectEx  *Counter
	Connect   *Counter
	ConnectEx *Counter
	Close     *Counter
	CloseEx   *Counter
	Listen    *Counter
	ListenEx  *Counter
}

// NewTCPMetrics creates the tcp_* family.
func NewTCPMetrics() *TCPMetrics {
	return &TCPMetrics{
		Pool:      NewPoolMetrics("tcp_conn"),
		IOMetrics: newIOMetrics("tcp"),
		Accept:    NewCounter("tcp_accept", "accept attempts"),
		AcceptEx:  NewCounter("tcp_accept_ex", "failed accepts"),
		Reject:    NewCounter("tcp_reject", "reject attempts"),
		RejectEx:  NewCounter("tcp_reject_ex", "failed rejects"),
		Connect:   NewCounter("tcp_connect", "connect attempts"),
		ConnectEx: NewCounter("tcp_connect_ex", "failed connects"),
		Close:     NewCounter("tcp_close", "close attempts"),
		CloseEx:   NewCounter("tcp_close_ex", "failed closes"),
		Listen:    NewCounter("tcp_listen", "listen attempts"),
		ListenEx:  NewCounter("tcp_listen_ex", "failed listens"),
	}
}

// Metrics lists every metric of the family.
func (m *TCPMetrics) Metrics() []Metric {
	out := append(m.Pool.Metrics(), m.IOMetrics.metrics()...)
	return append(out, m.Accept, m.AcceptEx, m.Reject, m.RejectEx,
		m.Connect, m.ConnectEx, m.Close, m.CloseEx, m.Listen, m.ListenEx)
}

// PipeMetrics is the pipe channel family.
type PipeMetrics struct {
	Pool *PoolMetrics
	IOMetrics

	Open    *Counter
	OpenEx  *Counter
	Close   *Counter
	CloseEx *Counter
}

// NewPipeMetrics creates the pipe_* family.
func NewPipeMetrics() *PipeMetrics {
	return &PipeMetrics{
		Pool:      NewPoolMetrics("pipe_conn"),
		IOMetrics: newIOMetrics("pipe"),
		Open:      NewCounter("pipe_open", "pipe creations"),
		OpenEx:    NewCounter("pipe_open_ex", "failed pipe creations"),
		Close:     NewCounter("pipe_close", "close attempts"),
		CloseEx:   NewCounter("pipe_close_ex", "failed closes"),
	}
}

// Metrics lists every metric of the family.
func (m *PipeMetrics) Metrics() []Metric {
	out := append(m.Pool.Metrics(), m.IOMetrics.metrics()...)
	return append(out, m.Open, m.OpenEx, m.Close, m.CloseEx)
}

// StreamMetrics is the stream family.
type StreamMetrics struct {
	Pool *PoolMetrics

	Read      *Counter
	ReadEx    *Counter
	ReadByte  *Counter
	Write     *Counter
	WriteEx   *Counter
	WriteByte *Counter
}

// NewStreamMetrics creates the stream_* family.
func NewStreamMetrics() *StreamMetrics {
	return &StreamMetrics{
		Pool:      NewPoolMetrics("stream"),
		Read:      NewCounter("stream_read", "read calls"),
		ReadEx:    NewCounter("stream_read_ex", "failed read calls"),
		ReadByte:  NewCounter("stream_read_byte", "bytes read"),
		Write:     NewCounter("stream_write", "write calls"),
		WriteEx:   NewCounter("stream_write_ex", "failed write calls"),
		WriteByte: NewCounter("stream_write_byte", "bytes written"),
	}
}

// Metrics lists every metric of the family.
func (m *StreamMetrics) Metrics() []Metric {
	return append(m.Pool.Metrics(), m.Read, m.ReadEx, m.ReadByte, m.Write, m.WriteEx, m.WriteByte)
}

// BufferMetrics is the buffer pool family.
type BufferMetrics struct {
	Pool *PoolMetrics
}

// NewBufferMetrics creates the buf_* family.
func NewBufferMetrics() *BufferMetrics {
	return &BufferMetrics{Pool: NewPoolMetrics("buf")}
}

// Metrics lists every metric of the family.
func (m *BufferMetrics) Metrics() []Metric {
	return m.Pool.Metrics()
}

// EventMetrics is the event loop family.
type EventMetrics struct {
	Register     *Counter
	RegisterEx   *Counter
	Deregister   *Counter
	DeregisterEx *Counter
	Wait         *Counter
	WaitEx       *Counter
	Dispatched   *Counter
	Yielded      *Counter
	ReadEvents   *Counter
	WriteEvents  *Counter
	ErrorEvents  *Counter
	Registered   *Gauge
}

// NewEventMetrics creates the event_* family.
func NewEventMetrics() *EventMetrics {
	return &EventMetrics{
		Register:     NewCounter("event_register", "register calls"),
		RegisterEx:   NewCounter("event_register_ex", "failed register calls"),
		Deregister:   NewCounter("event_deregister", "deregister calls"),
		DeregisterEx: NewCounter("event_deregister_ex", "failed deregister calls"),
		Wait:         NewCounter("event_wait", "wait calls"),
		WaitEx:       NewCounter("event_wait_ex", "failed wait calls"),
		Dispatched:   NewCounter("event_dispatched", "events dispatched"),
		Yielded:      NewCounter("event_yielded", "yielded events dispatched"),
		ReadEvents:   NewCounter("event_read", "read events dispatched"),
		WriteEvents:  NewCounter("event_write", "write events dispatched"),
		ErrorEvents:  NewCounter("event_error", "error events dispatched"),
		Registered:   NewGauge("event_registered", "descriptors currently registered"),
	}
}

// Metrics lists every metric of the family.
func (m *EventMetrics) Metrics() []Metric {
	return []Metric{m.Register, m.RegisterEx, m.Deregister, m.DeregisterEx,
		m.Wait, m.WaitEx, m.Dispatched, m.Yielded,
		m.ReadEvents, m.WriteEvents, m.ErrorEvents, m.Registered}
}
