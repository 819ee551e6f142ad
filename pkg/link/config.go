package link

import "time"

// LinkConfig parameterizes a LinkLayer instance. One LinkConfig describes
// one end of one point-to-point FT3 session: a master talking to a single
// outstation, or an outstation talking to its master.
type LinkConfig struct {
	// IsMaster is this end's role. It sets the DIR bit of every outgoing
	// frame, and validate rejects inbound frames whose DIR bit shows a peer
	// of the same role. The primary-station logic (SPEC_FULL.md §4.C) and
	// the secondary-station logic (§4.D) both run regardless of IsMaster:
	// OnFrame dispatches each frame on its PRM bit.
	IsMaster bool

	// LocalAddr and RemoteAddr are the 16-bit DNP3 link addresses this
	// instance uses as source and destination respectively.
	LocalAddr  uint16
	RemoteAddr uint16

	// UseConfirms requests CONFIRMED_USER_DATA framing (with FCB toggling
	// and ACK/NACK waiting) for primary user data instead of
	// UNCONFIRMED_USER_DATA. It applies in either role: an outstation's
	// responses also go out through Send as primary user data.
	UseConfirms bool

	// NumRetry is how many times a RESET_LINK_STATES or confirmed frame is
	// retransmitted after a response timeout before the upper layer is told
	// the send failed. A NACK restarts the reset handshake with a fresh
	// budget, and a transmit failure fails the send without a retry.
	NumRetry int

	// ResponseTimeout bounds how long the primary state machine waits for
	// an ACK/NACK/LINK_STATUS after a confirmed primary frame.
	ResponseTimeout time.Duration

	// KeepAliveTimeout is the idle period after which the link sends a
	// REQUEST_LINK_STATUS probe. Zero disables keep-alive entirely.
	KeepAliveTimeout time.Duration
}

// DefaultLinkConfig returns the conservative defaults opendnp3 ships: three
// retries, a two-second response timeout, and a one-minute keep-alive.
func DefaultLinkConfig(isMaster bool, localAddr, remoteAddr uint16) LinkConfig {
	return LinkConfig{
		IsMaster:         isMaster,
		LocalAddr:        localAddr,
		RemoteAddr:       remoteAddr,
		UseConfirms:      false,
		NumRetry:         3,
		ResponseTimeout:  2 * time.Second,
		KeepAliveTimeout: 60 * time.Second,
	}
}
