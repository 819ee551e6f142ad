package master

import (
	"avaneesh/dnp3-go/pkg/channel"
	"avaneesh/dnp3-go/pkg/executor"
	"avaneesh/dnp3-go/pkg/link"
	"avaneesh/dnp3-go/pkg/transport"
)

// session connects the master to a channel. It owns the transport-layer
// reassembler and a link.LinkLayer running both station machines;
// the old hand-rolled frame construction against the channel is gone, the
// link layer now owns the wire format and the ACK/retry/keep-alive logic.
type session struct {
	linkAddress uint16
	remoteAddr  uint16
	channel     *channel.Channel
	master      *master
	transport   *transport.Layer
	exec        *executor.Executor
	link        *link.LinkLayer
}

// newSession creates a new master session and starts its link layer's
// executor loop. The link layer itself stays offline until the channel
// reports the physical connection is up.
func newSession(linkAddr, remoteAddr uint16, ch *channel.Channel, m *master) *session {
	s := &session{
		linkAddress: linkAddr,
		remoteAddr:  remoteAddr,
		channel:     ch,
		master:      m,
		transport:   transport.NewLayer(),
		exec:        executor.New(m.logger),
	}

	cfg := link.LinkConfig{
		IsMaster:         true,
		LocalAddr:        linkAddr,
		RemoteAddr:       remoteAddr,
		UseConfirms:      m.config.UseConfirms,
		NumRetry:         m.config.NumRetry,
		ResponseTimeout:  m.config.LinkResponseTimeout,
		KeepAliveTimeout: m.config.KeepAliveTimeout,
	}
	s.link = link.NewLinkLayer(cfg, m.logger, s.exec, upperLayer{s}, s)
	s.link.SetRouter(ch.LinkRouter())
	s.exec.Start()

	return s
}

// OnReceive hands a decoded link frame to the link layer (implements
// channel.Session).
func (s *session) OnReceive(header link.LinkHeaderFields, userdata []byte) error {
	return s.link.OnFrame(header, userdata)
}

// LinkAddress returns the link address (implements channel.Session).
func (s *session) LinkAddress() uint16 {
	return s.linkAddress
}

// Type returns the session type (implements channel.Session).
func (s *session) Type() channel.SessionType {
	return channel.SessionTypeMaster
}

// OnConnectionEstablished brings the link layer online (implements
// channel.ConnectionStateListener).
func (s *session) OnConnectionEstablished() {
	s.master.logger.Info("Master session %d: connection established", s.linkAddress)
	s.transport.Reset()
	if err := s.link.OnLowerLayerUp(); err != nil {
		s.master.logger.Debug("Master session %d: OnLowerLayerUp: %v", s.linkAddress, err)
	}
}

// OnConnectionLost takes the link layer offline (implements
// channel.ConnectionStateListener).
func (s *session) OnConnectionLost() {
	s.master.logger.Info("Master session %d: connection lost", s.linkAddress)
	if err := s.link.OnLowerLayerDown(); err != nil {
		s.master.logger.Debug("Master session %d: OnLowerLayerDown: %v", s.linkAddress, err)
	}
	s.transport.Reset()
}

// OnStateChange implements link.LinkListener.
func (s *session) OnStateChange(status link.LinkStatus) {
	s.master.logger.Debug("Master session %d: link state -> %s", s.linkAddress, status)
}

// OnKeepAliveInitiated implements link.LinkListener.
func (s *session) OnKeepAliveInitiated() {
	s.master.logger.Debug("Master session %d: keep-alive probe sent", s.linkAddress)
}

// OnKeepAliveSuccess implements link.LinkListener.
func (s *session) OnKeepAliveSuccess() {
	s.master.logger.Debug("Master session %d: keep-alive succeeded", s.linkAddress)
}

// OnKeepAliveFailure implements link.LinkListener.
func (s *session) OnKeepAliveFailure() {
	s.master.logger.Warn("Master session %d: keep-alive failed", s.linkAddress)
}

// sendAPDU segments an APDU and submits it to the link layer. Completion
// of the link-level send is reported asynchronously to upperLayer, not
// here; sendAndWait's reply wait is keyed on the application-layer
// response arriving through onReceiveAPDU, not on link delivery.
func (s *session) sendAPDU(apdu []byte) error {
	segments := s.transport.Send(apdu)
	if len(segments) == 0 {
		return nil
	}
	return s.link.Send(transport.NewSegmentSet(segments))
}

// close stops the session's executor loop.
func (s *session) close() {
	s.exec.Stop()
}

// upperLayer adapts session to link.UpperLayer under its own named type so
// its single-argument OnReceive doesn't collide with channel.Session's
// two-argument OnReceive, which session implements directly.
type upperLayer struct {
	s *session
}

// OnLowerLayerUp implements link.UpperLayer.
func (u upperLayer) OnLowerLayerUp() {
	u.s.master.logger.Debug("Master session %d: link layer up", u.s.linkAddress)
}

// OnLowerLayerDown implements link.UpperLayer.
func (u upperLayer) OnLowerLayerDown() {
	u.s.master.logger.Debug("Master session %d: link layer down", u.s.linkAddress)
}

// OnReceive implements link.UpperLayer, reassembling transport segments and
// forwarding completed APDUs to the master.
func (u upperLayer) OnReceive(data []byte) {
	apdu, err := u.s.transport.Receive(data)
	if err != nil {
		// Sequence errors and a missing FIR are recovered from silently by
		// the reassembler; only log, don't propagate.
		u.s.master.logger.Debug("Master session %d: transport error: %v", u.s.linkAddress, err)
		return
	}
	if apdu == nil {
		return
	}
	if err := u.s.master.onReceiveAPDU(apdu); err != nil {
		u.s.master.logger.Warn("Master session %d: APDU handling error: %v", u.s.linkAddress, err)
	}
}

// OnSendResult implements link.UpperLayer.
func (u upperLayer) OnSendResult(success bool) {
	if !success {
		u.s.master.logger.Warn("Master session %d: link-layer send failed", u.s.linkAddress)
	}
}
