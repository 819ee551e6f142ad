package link

// priState tags the primary (link-initiating) station's state machine.
// Each LinkLayer value owns exactly one of these; events are dispatched by
// switching on the tag instead of through virtual calls on a singleton
// per-state object, per SPEC_FULL.md §9's design notes.
type priState int

const (
	priIdle                        priState = iota
	priSendUnconfirmedTransmitWait          // queued an UNCONFIRMED_USER_DATA frame, waiting for the wire
	priLinkResetTransmitWait                // queued RESET_LINK_STATES, waiting for the wire
	priConfUserDataTransmitWait             // queued a CONFIRMED_USER_DATA frame, waiting for the wire
	priRequestLinkStatusTransmitWait        // queued REQUEST_LINK_STATUS, waiting for the wire
	priResetLinkWait                        // RESET_LINK_STATES is on the wire, waiting for an ACK
	priConfDataWait                         // CONFIRMED_USER_DATA is on the wire, waiting for an ACK/NACK
	priRequestLinkStatusWait                // REQUEST_LINK_STATUS is on the wire, waiting for LINK_STATUS
)

func (s priState) String() string {
	switch s {
	case priIdle:
		return "Idle"
	case priSendUnconfirmedTransmitWait:
		return "SendUnconfirmedTransmitWait"
	case priLinkResetTransmitWait:
		return "LinkResetTransmitWait"
	case priConfUserDataTransmitWait:
		return "ConfUserDataTransmitWait"
	case priRequestLinkStatusTransmitWait:
		return "RequestLinkStatusTransmitWait"
	case priResetLinkWait:
		return "ResetLinkWait"
	case priConfDataWait:
		return "ConfDataWait"
	case priRequestLinkStatusWait:
		return "RequestLinkStatusWait"
	default:
		return "Unknown"
	}
}

// priOnAck dispatches a received ACK to the primary machine. rxBuffFull
// carries the secondary's DFC bit.
func (ll *LinkLayer) priOnAck(rxBuffFull bool) {
	switch ll.priState {
	case priResetLinkWait:
		ll.isRemoteReset = true
		ll.resetWriteFCB()
		ll.cancelResponseTimer()
		buffer, err := FormatConfirmedUserData(ll.config.IsMaster, ll.nextWriteFCB, ll.config.RemoteAddr, ll.config.LocalAddr, ll.segments.GetSegment())
		if err != nil {
			ll.log.Error("failed to format confirmed user data: error=%v", err)
			ll.completeSendOperation(false)
			ll.priState = priIdle
			return
		}
		ll.priState = priConfUserDataTransmitWait
		ll.queueTransmit(buffer, true)
		ll.listener.OnStateChange(LinkStatusReset)
	case priConfDataWait:
		ll.toggleWriteFCB()
		ll.cancelResponseTimer()
		if ll.segments.Advance() {
			buffer, err := FormatConfirmedUserData(ll.config.IsMaster, ll.nextWriteFCB, ll.config.RemoteAddr, ll.config.LocalAddr, ll.segments.GetSegment())
			if err != nil {
				ll.log.Error("failed to format confirmed user data: error=%v", err)
				ll.completeSendOperation(false)
				ll.priState = priIdle
				return
			}
			ll.priState = priConfUserDataTransmitWait
			ll.queueTransmit(buffer, true)
		} else {
			ll.completeSendOperation(true)
			ll.priState = priIdle
		}
	default:
		ll.log.Warn("unexpected ACK for primary state: state=%v", ll.priState)
	}
}

// priOnNack dispatches a received NACK to the primary machine.
func (ll *LinkLayer) priOnNack(rxBuffFull bool) {
	switch ll.priState {
	case priConfDataWait:
		ll.listener.OnStateChange(LinkStatusUnreset)
		if rxBuffFull {
			ll.priFailure()
			return
		}
		ll.resetRetry()
		ll.cancelResponseTimer()
		ll.priState = priLinkResetTransmitWait
		ll.queueResetLinks()
	case priRequestLinkStatusWait:
		ll.cancelResponseTimer()
		ll.failKeepAlive(false)
		ll.priState = priIdle
	default:
		ll.log.Warn("unexpected NACK for primary state: state=%v", ll.priState)
	}
}

// priOnLinkStatus dispatches a received LINK_STATUS response.
func (ll *LinkLayer) priOnLinkStatus(rxBuffFull bool) {
	switch ll.priState {
	case priRequestLinkStatusWait:
		ll.cancelResponseTimer()
		ll.completeKeepAlive()
		ll.priState = priIdle
	default:
		ll.log.Warn("unexpected LINK_STATUS for primary state: state=%v", ll.priState)
	}
}

// priOnNotSupported dispatches a received NOT_SUPPORTED response.
func (ll *LinkLayer) priOnNotSupported(rxBuffFull bool) {
	switch ll.priState {
	case priRequestLinkStatusWait:
		ll.cancelResponseTimer()
		ll.failKeepAlive(false)
		ll.priState = priIdle
	default:
		ll.log.Warn("unexpected NOT_SUPPORTED for primary state: state=%v", ll.priState)
	}
}

// priOnTransmitResult dispatches completion of the frame the primary
// machine currently has queued on the wire.
func (ll *LinkLayer) priOnTransmitResult(success bool) {
	switch ll.priState {
	case priSendUnconfirmedTransmitWait:
		if ll.segments.Advance() {
			buffer, err := FormatUnconfirmedUserData(ll.config.IsMaster, ll.config.RemoteAddr, ll.config.LocalAddr, ll.segments.GetSegment())
			if err != nil {
				ll.log.Error("failed to format unconfirmed user data: error=%v", err)
				ll.completeSendOperation(false)
				ll.priState = priIdle
				return
			}
			ll.queueTransmit(buffer, true)
			return
		}
		ll.completeSendOperation(success)
		ll.priState = priIdle
	case priLinkResetTransmitWait:
		if success {
			ll.startResponseTimer()
			ll.priState = priResetLinkWait
		} else {
			ll.completeSendOperation(false)
			ll.priState = priIdle
		}
	case priConfUserDataTransmitWait:
		if success {
			ll.startResponseTimer()
			ll.priState = priConfDataWait
		} else {
			ll.completeSendOperation(false)
			ll.priState = priIdle
		}
	case priRequestLinkStatusTransmitWait:
		if success {
			ll.startResponseTimer()
			ll.priState = priRequestLinkStatusWait
		} else {
			ll.failKeepAlive(false)
			ll.priState = priIdle
		}
	default:
		ll.log.Error("invalid transmit-result action for primary state: state=%v", ll.priState)
	}
}

// priOnTimeout dispatches expiry of the response timer.
func (ll *LinkLayer) priOnTimeout() {
	switch ll.priState {
	case priResetLinkWait:
		if ll.retry() {
			ll.log.Warn("link reset timeout, retrying: remaining=%v", ll.numRetryRemaining)
			ll.priState = priLinkResetTransmitWait
			ll.queueResetLinks()
		} else {
			ll.log.Warn("link reset final timeout, no retries remain")
			ll.completeSendOperation(false)
			ll.priState = priIdle
		}
	case priConfDataWait:
		if ll.retry() {
			ll.log.Warn("confirmed data timeout, retrying: remaining=%v", ll.numRetryRemaining)
			buffer, err := FormatConfirmedUserData(ll.config.IsMaster, ll.nextWriteFCB, ll.config.RemoteAddr, ll.config.LocalAddr, ll.segments.GetSegment())
			if err != nil {
				ll.log.Error("failed to format confirmed user data: error=%v", err)
				ll.completeSendOperation(false)
				ll.priState = priIdle
				return
			}
			ll.priState = priConfUserDataTransmitWait
			ll.queueTransmit(buffer, true)
		} else {
			ll.log.Warn("confirmed data final timeout, no retries remain")
			ll.listener.OnStateChange(LinkStatusUnreset)
			ll.completeSendOperation(false)
			ll.priState = priIdle
		}
	case priRequestLinkStatusWait:
		ll.log.Warn("link status request response timeout")
		ll.failKeepAlive(true)
		ll.priState = priIdle
	default:
		ll.log.Error("invalid timeout action for primary state: state=%v", ll.priState)
	}
}

// priFailure is the shared cleanup path for an unrecoverable failure while
// ResetLinkWait or ConfDataWait is outstanding.
func (ll *LinkLayer) priFailure() {
	ll.cancelResponseTimer()
	ll.completeSendOperation(false)
	ll.priState = priIdle
}

// priTrySendUnconfirmed starts transmitting the current segment set
// unconfirmed, if the machine is idle.
func (ll *LinkLayer) priTrySendUnconfirmed() {
	if ll.priState != priIdle {
		return
	}
	buffer, err := FormatUnconfirmedUserData(ll.config.IsMaster, ll.config.RemoteAddr, ll.config.LocalAddr, ll.segments.GetSegment())
	if err != nil {
		ll.log.Error("failed to format unconfirmed user data: error=%v", err)
		ll.completeSendOperation(false)
		return
	}
	ll.priState = priSendUnconfirmedTransmitWait
	ll.queueTransmit(buffer, true)
}

// priTrySendConfirmed starts transmitting the current segment set
// confirmed, resetting the link first if the remote side isn't known to be
// reset yet.
func (ll *LinkLayer) priTrySendConfirmed() {
	if ll.priState != priIdle {
		return
	}
	if ll.isRemoteReset {
		ll.resetRetry()
		buffer, err := FormatConfirmedUserData(ll.config.IsMaster, ll.nextWriteFCB, ll.config.RemoteAddr, ll.config.LocalAddr, ll.segments.GetSegment())
		if err != nil {
			ll.log.Error("failed to format confirmed user data: error=%v", err)
			ll.completeSendOperation(false)
			return
		}
		ll.priState = priConfUserDataTransmitWait
		ll.queueTransmit(buffer, true)
	} else {
		ll.resetRetry()
		ll.priState = priLinkResetTransmitWait
		ll.queueResetLinks()
	}
}

// priTrySendRequestLinkStatus starts a keep-alive probe, if the machine is
// idle.
func (ll *LinkLayer) priTrySendRequestLinkStatus() {
	if ll.priState != priIdle {
		return
	}
	ll.keepAliveDue = false
	ll.priState = priRequestLinkStatusTransmitWait
	ll.queueRequestLinkStatus()
	ll.listener.OnKeepAliveInitiated()
}
