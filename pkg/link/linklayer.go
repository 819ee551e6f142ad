package link

import (
	"time"

	"avaneesh/dnp3-go/pkg/internal/logger"
)

// transmitMode tracks which state machine, if any, currently owns the
// single in-flight wire slot.
type transmitMode int

const (
	txIdle transmitMode = iota
	txPrimary
	txSecondary
)

// pendingBuffer holds at most one queued-but-not-yet-submitted frame,
// mirroring the teacher's openpal::Settable<RSlice> slots.
type pendingBuffer struct {
	buf []byte
	set bool
}

func (p *pendingBuffer) Set(buf []byte) { p.buf, p.set = buf, true }
func (p *pendingBuffer) Clear()         { p.buf, p.set = nil, false }

// LinkLayer is one FT3 data-link-layer session: a single struct running
// both the primary and secondary state machines side by side in either
// role; config.IsMaster sets the DIR bit of the frames it sends.
// This replaces the teacher's split MasterLink/OutstationLink types with
// the unified facade opendnp3's own LinkLayer presents to its upper layer;
// see DESIGN.md for why the split was dropped.
type LinkLayer struct {
	config LinkConfig
	log    logger.Logger

	executor Executor
	upper    UpperLayer
	listener LinkListener
	router   Router

	priState priState
	secState secState

	segments TransportSegment

	isOnline      bool
	isRemoteReset bool
	nextReadFCB   bool
	nextWriteFCB  bool

	numRetryRemaining int

	keepAliveDue         bool
	lastMessageTimestamp time.Time
	responseTimer        Timer
	keepAliveTimer       Timer

	txMode     transmitMode
	pendingPri pendingBuffer
	pendingSec pendingBuffer
}

// NewLinkLayer constructs an offline LinkLayer. Call SetRouter before
// OnLowerLayerUp; the router isn't available at construction time in the
// teacher's wiring either (pkg/channel owns both ends of that reference).
func NewLinkLayer(config LinkConfig, log logger.Logger, executor Executor, upper UpperLayer, listener LinkListener) *LinkLayer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &LinkLayer{
		config:   config,
		log:      log,
		executor: executor,
		upper:    upper,
		listener: listener,
		priState: priIdle,
		secState: secNotReset,
	}
}

// SetRouter attaches the transmit arbiter this layer submits frames to.
func (ll *LinkLayer) SetRouter(router Router) {
	ll.router = router
}

// OnLowerLayerUp brings the link online: starts the keep-alive timer and
// notifies the upper layer and listener.
func (ll *LinkLayer) OnLowerLayerUp() error {
	if ll.isOnline {
		return ErrAlreadyOnline
	}
	ll.isOnline = true

	now := ll.executor.Now()
	ll.lastMessageTimestamp = now
	if ll.config.KeepAliveTimeout > 0 {
		ll.startKeepAliveTimer(now.Add(ll.config.KeepAliveTimeout))
	}

	ll.listener.OnStateChange(LinkStatusUnreset)
	ll.upper.OnLowerLayerUp()

	return nil
}

// OnLowerLayerDown takes the link offline, resetting both state machines
// and discarding any in-flight or pending transmissions.
func (ll *LinkLayer) OnLowerLayerDown() error {
	if !ll.isOnline {
		return ErrNotOnline
	}
	ll.isOnline = false
	ll.keepAliveDue = false
	ll.isRemoteReset = false
	ll.segments = nil
	ll.txMode = txIdle
	ll.pendingPri.Clear()
	ll.pendingSec.Clear()

	ll.cancelResponseTimer()
	if ll.keepAliveTimer != nil {
		ll.keepAliveTimer.Cancel()
		ll.keepAliveTimer = nil
	}

	ll.priState = priIdle
	ll.secState = secNotReset

	ll.listener.OnStateChange(LinkStatusUnreset)
	ll.upper.OnLowerLayerDown()

	return nil
}

// Send hands a transport segment set to the primary machine for
// transmission. Only one Send may be outstanding at a time.
func (ll *LinkLayer) Send(segments TransportSegment) error {
	if !ll.isOnline {
		return ErrNotOnline
	}
	if ll.segments != nil {
		return ErrSendInProgress
	}
	ll.segments = segments
	ll.tryStartTransmission()
	return nil
}

// OnFrame dispatches one parsed, CRC-validated frame into the appropriate
// state machine based on its function code.
func (ll *LinkLayer) OnFrame(header LinkHeaderFields, userdata []byte) error {
	if !ll.isOnline {
		return ErrNotOnline
	}
	if !ll.validate(header) {
		return ErrUnexpectedEvent
	}

	ll.lastMessageTimestamp = ll.executor.Now()

	if header.IsPrimary == PrimaryFrame {
		switch header.Func {
		case FuncTestLinkStates:
			ll.secOnTestLinkStates(header.FCB)
		case FuncResetLink:
			ll.secOnResetLinkStates()
		case FuncRequestLinkStatus:
			ll.secOnRequestLinkStatus()
		case FuncUserDataConfirmed:
			ll.secOnConfirmedUserData(header.FCB, userdata)
		case FuncUserDataUnconfirmed:
			ll.pushDataUp(userdata)
		default:
			return ErrUnknownFunctionCode
		}
	} else {
		switch header.Func {
		case FuncAck:
			ll.priOnAck(header.FCVDFC)
		case FuncNack:
			ll.priOnNack(header.FCVDFC)
		case FuncLinkStatusResponse:
			ll.priOnLinkStatus(header.FCVDFC)
		case FuncLinkNotUsed:
			ll.priOnNotSupported(header.FCVDFC)
		default:
			return ErrUnknownFunctionCode
		}
	}

	ll.tryStartTransmission()
	return nil
}

// validate checks the DIR bit and both addresses against this layer's
// configuration, rejecting frames that don't belong to this session.
func (ll *LinkLayer) validate(header LinkHeaderFields) bool {
	if header.IsFromMaster == ll.config.IsMaster {
		ll.log.Warn("frame received from a peer with the same master/outstation role: fromMaster=%v", header.IsFromMaster)
		return false
	}
	if header.Dest != ll.config.LocalAddr {
		ll.log.Warn("frame for unknown destination: dest=%v", header.Dest)
		return false
	}
	if header.Src != ll.config.RemoteAddr {
		ll.log.Warn("frame from unknown source: src=%v", header.Src)
		return false
	}
	return true
}

// OnTransmitResult implements CompletionSink: the router calls this once
// the frame it was given to BeginTransmit has gone out (or failed to).
func (ll *LinkLayer) OnTransmitResult(success bool) {
	if ll.txMode == txIdle {
		ll.log.Error("unexpected transmit-result callback with no frame in flight")
		return
	}

	wasPrimary := ll.txMode == txPrimary
	ll.txMode = txIdle

	ll.tryPendingTx(&ll.pendingSec, false)
	ll.tryPendingTx(&ll.pendingPri, true)

	if wasPrimary {
		ll.priOnTransmitResult(success)
	} else {
		// the secondary machine has no transmit-wait states of its own in
		// this design: ACK/NACK/LINK_STATUS responses are fire-and-forget
	}

	ll.tryStartTransmission()
}

func (ll *LinkLayer) tryPendingTx(pending *pendingBuffer, primary bool) {
	if ll.txMode != txIdle || !pending.set {
		return
	}
	ll.router.BeginTransmit(pending.buf, ll)
	pending.Clear()
	if primary {
		ll.txMode = txPrimary
	} else {
		ll.txMode = txSecondary
	}
}

// queueTransmit submits buffer for transmission, or parks it in the
// matching pending slot if the single wire slot is already occupied.
func (ll *LinkLayer) queueTransmit(buffer []byte, primary bool) {
	if ll.txMode == txIdle {
		if primary {
			ll.txMode = txPrimary
		} else {
			ll.txMode = txSecondary
		}
		ll.router.BeginTransmit(buffer, ll)
		return
	}
	if primary {
		ll.pendingPri.Set(buffer)
	} else {
		ll.pendingSec.Set(buffer)
	}
}

func (ll *LinkLayer) queueAck() {
	ll.queueTransmit(FormatAck(ll.config.IsMaster, false, ll.config.RemoteAddr, ll.config.LocalAddr), false)
}

func (ll *LinkLayer) queueNack() {
	ll.queueTransmit(FormatNack(ll.config.IsMaster, false, ll.config.RemoteAddr, ll.config.LocalAddr), false)
}

func (ll *LinkLayer) queueLinkStatus() {
	ll.queueTransmit(FormatLinkStatus(ll.config.IsMaster, false, ll.config.RemoteAddr, ll.config.LocalAddr), false)
}

func (ll *LinkLayer) queueResetLinks() {
	ll.queueTransmit(FormatResetLinkStates(ll.config.IsMaster, ll.config.RemoteAddr, ll.config.LocalAddr), true)
}

func (ll *LinkLayer) queueRequestLinkStatus() {
	ll.queueTransmit(FormatRequestLinkStatus(ll.config.IsMaster, ll.config.RemoteAddr, ll.config.LocalAddr), true)
}

func (ll *LinkLayer) resetRetry() {
	ll.numRetryRemaining = ll.config.NumRetry
}

func (ll *LinkLayer) retry() bool {
	if ll.numRetryRemaining > 0 {
		ll.numRetryRemaining--
		return true
	}
	return false
}

func (ll *LinkLayer) resetWriteFCB()  { ll.nextWriteFCB = false }
func (ll *LinkLayer) toggleWriteFCB() { ll.nextWriteFCB = !ll.nextWriteFCB }

func (ll *LinkLayer) pushDataUp(data []byte) {
	ll.upper.OnReceive(data)
}

// completeSendOperation clears the in-flight segment set and posts the
// result back to the upper layer on the executor, matching the teacher's
// PostLambda hop so OnSendResult never runs reentrantly inside Send/OnFrame.
func (ll *LinkLayer) completeSendOperation(success bool) {
	ll.segments = nil
	ll.executor.PostLambda(func() {
		ll.upper.OnSendResult(success)
	})
}

// tryStartTransmission lets the primary machine act on a due keep-alive
// probe and/or a pending Send, in that order, whenever the machine becomes
// idle: after OnFrame, after OnTransmitResult, and after OnResponseTimeout.
func (ll *LinkLayer) tryStartTransmission() {
	if ll.keepAliveDue {
		ll.priTrySendRequestLinkStatus()
	}
	if ll.segments != nil {
		if ll.config.UseConfirms {
			ll.priTrySendConfirmed()
		} else {
			ll.priTrySendUnconfirmed()
		}
	}
}

func (ll *LinkLayer) onKeepAliveTimeout() {
	now := ll.executor.Now()
	elapsed := now.Sub(ll.lastMessageTimestamp)

	if elapsed >= ll.config.KeepAliveTimeout {
		ll.lastMessageTimestamp = now
		ll.keepAliveDue = true
	}

	ll.startKeepAliveTimer(ll.lastMessageTimestamp.Add(ll.config.KeepAliveTimeout))
	ll.tryStartTransmission()
}

func (ll *LinkLayer) onResponseTimeout() {
	ll.priOnTimeout()
	ll.tryStartTransmission()
}

func (ll *LinkLayer) startResponseTimer() {
	ll.responseTimer = ll.executor.Schedule(ll.executor.Now().Add(ll.config.ResponseTimeout), ll.onResponseTimeout)
}

func (ll *LinkLayer) startKeepAliveTimer(at time.Time) {
	if ll.keepAliveTimer != nil {
		ll.keepAliveTimer.Cancel()
	}
	ll.keepAliveTimer = ll.executor.Schedule(at, ll.onKeepAliveTimeout)
}

func (ll *LinkLayer) cancelResponseTimer() {
	if ll.responseTimer != nil {
		ll.responseTimer.Cancel()
		ll.responseTimer = nil
	}
}

func (ll *LinkLayer) failKeepAlive(timeout bool) {
	if timeout {
		ll.listener.OnKeepAliveFailure()
	}
}

func (ll *LinkLayer) completeKeepAlive() {
	ll.listener.OnKeepAliveSuccess()
}

// Status reports whether the link has completed a reset handshake with its
// peer, for diagnostics callers that don't want to implement LinkListener.
func (ll *LinkLayer) Status() LinkStatus {
	if ll.isRemoteReset || ll.secState == secReset {
		return LinkStatusReset
	}
	return LinkStatusUnreset
}

// IsOnline reports whether OnLowerLayerUp has been called without a
// matching OnLowerLayerDown.
func (ll *LinkLayer) IsOnline() bool {
	return ll.isOnline
}
