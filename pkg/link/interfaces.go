package link

import "time"

// UpperLayer is the transport-function-segment layer sitting above a
// LinkLayer. pkg/transport implements this to receive reassembled frame
// payloads and find out when the link comes up or down.
type UpperLayer interface {
	OnLowerLayerUp()
	OnLowerLayerDown()
	OnReceive(data []byte)
	OnSendResult(success bool)
}

// Router is the single-wire-slot transmit arbiter a LinkLayer submits
// formatted frames to. pkg/channel implements this; see SPEC_FULL.md §4.B.
type Router interface {
	BeginTransmit(buffer []byte, sink CompletionSink)
}

// CompletionSink receives the eventual result of a BeginTransmit call.
// LinkLayer implements this itself so Router can report back onto it.
type CompletionSink interface {
	OnTransmitResult(success bool)
}

// LinkListener observes link-state and keep-alive events without sitting in
// the data path. Sessions and diagnostics code implement this.
type LinkListener interface {
	OnStateChange(status LinkStatus)
	OnKeepAliveInitiated()
	OnKeepAliveSuccess()
	OnKeepAliveFailure()
}

// TransportSegment is a single outbound frame's worth of payload, handed
// down from pkg/transport. Advance reports whether more segments remain
// after this one.
type TransportSegment interface {
	GetSegment() []byte
	Advance() bool
}

// Executor is the single-threaded run-loop a LinkLayer schedules its
// response and keep-alive timers on. pkg/executor implements this.
type Executor interface {
	Now() time.Time
	PostLambda(fn func())
	Schedule(at time.Time, fn func()) Timer
}

// Timer is a handle to a scheduled callback. Cancel is safe to call even
// after the callback has already fired.
type Timer interface {
	Cancel()
}
