package transport

// Layer represents the transport layer
type Layer struct {
	rxReassembler *Reassembler
	txSequence    uint8
}

// NewLayer creates a new transport layer
func NewLayer() *Layer {
	return &Layer{
		rxReassembler: NewReassembler(),
		txSequence:    0,
	}
}

// Receive processes received data and returns complete APDU if available
func (l *Layer) Receive(data []byte) ([]byte, error) {
	if len(data) < HeaderSize {
		return nil, ErrMissingFIR
	}

	// Parse header
	fir, fin, seq := ParseHeader(data[0])

	// Create segment
	segment := &Segment{
		FIR:  fir,
		FIN:  fin,
		Seq:  seq,
		Data: data[1:],
	}

	// Process through reassembler
	return l.rxReassembler.Process(segment)
}

// Send segments APDU data for transmission
// Returns list of transport layer frames ready for link layer
func (l *Layer) Send(apdu []byte) [][]byte {
	if len(apdu) == 0 {
		return nil
	}

	// Segment the APDU
	segments := SegmentData(apdu, l.txSequence)

	// Update sequence for next transmission
	l.txSequence = (l.txSequence + uint8(len(segments))) & TransportSeqMask

	// Serialize segments
	result := make([][]byte, len(segments))
	for i, seg := range segments {
		result[i] = seg.Serialize()
	}

	return result
}

// Reset resets the transport layer state
func (l *Layer) Reset() {
	l.rxReassembler.Reset()
	l.txSequence = 0
}

// SegmentSet walks the transport frames produced by Send one at a time,
// implementing link.TransportSegment so a session can hand a whole APDU's
// worth of segments to link.LinkLayer.Send in one call.
type SegmentSet struct {
	chunks [][]byte
	idx    int
}

// NewSegmentSet wraps the output of Layer.Send for submission to the link
// layer. chunks must be non-empty.
func NewSegmentSet(chunks [][]byte) *SegmentSet {
	return &SegmentSet{chunks: chunks}
}

// GetSegment returns the transport frame currently being sent.
func (s *SegmentSet) GetSegment() []byte {
	return s.chunks[s.idx]
}

// Advance moves to the next transport frame, reporting whether one exists.
func (s *SegmentSet) Advance() bool {
	if s.idx+1 < len(s.chunks) {
		s.idx++
		return true
	}
	return false
}
