package link

import (
	"sync"
	"time"
)

// fakeExecutor is a deterministic, manually-advanced Executor for tests:
// Schedule never fires on its own; the test advances the clock by setting
// now and fires the newest live timer with FireLatestTimer. PostLambda
// callbacks run only when the test calls RunPosted.
type fakeExecutor struct {
	mu     sync.Mutex
	now    time.Time
	posted []func()
	timers []*fakeTimer
}

type fakeTimer struct {
	at        time.Time
	fn        func()
	cancelled bool
}

func (t *fakeTimer) Cancel() { t.cancelled = true }

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{now: time.Unix(0, 0)}
}

func (e *fakeExecutor) Now() time.Time { return e.now }

func (e *fakeExecutor) PostLambda(fn func()) {
	e.mu.Lock()
	e.posted = append(e.posted, fn)
	e.mu.Unlock()
}

func (e *fakeExecutor) Schedule(at time.Time, fn func()) Timer {
	t := &fakeTimer{at: at, fn: fn}
	e.mu.Lock()
	e.timers = append(e.timers, t)
	e.mu.Unlock()
	return t
}

// RunPosted invokes and clears every lambda queued via PostLambda.
func (e *fakeExecutor) RunPosted() {
	e.mu.Lock()
	posted := e.posted
	e.posted = nil
	e.mu.Unlock()
	for _, fn := range posted {
		fn()
	}
}

// FireLatestTimer fires the most recently scheduled, not-yet-cancelled
// timer, mimicking the response or keep-alive timer expiring.
func (e *fakeExecutor) FireLatestTimer() bool {
	e.mu.Lock()
	var fn func()
	for i := len(e.timers) - 1; i >= 0; i-- {
		t := e.timers[i]
		if !t.cancelled {
			fn = t.fn
			break
		}
	}
	e.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// fakeRouter is a Router that immediately reports success (or a configured
// failure) back to whatever CompletionSink it was given.
type fakeRouter struct {
	sent    [][]byte
	succeed bool
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{succeed: true}
}

func (r *fakeRouter) BeginTransmit(buffer []byte, sink CompletionSink) {
	r.sent = append(r.sent, buffer)
	sink.OnTransmitResult(r.succeed)
}

// fakeUpper records the calls an UpperLayer receives.
type fakeUpper struct {
	ups      int
	downs    int
	received [][]byte
	results  []bool
}

func (u *fakeUpper) OnLowerLayerUp()   { u.ups++ }
func (u *fakeUpper) OnLowerLayerDown() { u.downs++ }
func (u *fakeUpper) OnReceive(data []byte) {
	u.received = append(u.received, append([]byte{}, data...))
}
func (u *fakeUpper) OnSendResult(success bool) { u.results = append(u.results, success) }

// fakeListener records the calls a LinkListener receives.
type fakeListener struct {
	states        []LinkStatus
	keepAliveInit int
	keepAliveOK   int
	keepAliveFail int
}

func (l *fakeListener) OnStateChange(status LinkStatus) { l.states = append(l.states, status) }
func (l *fakeListener) OnKeepAliveInitiated()            { l.keepAliveInit++ }
func (l *fakeListener) OnKeepAliveSuccess()              { l.keepAliveOK++ }
func (l *fakeListener) OnKeepAliveFailure()              { l.keepAliveFail++ }

// fakeSegments is a one-or-more-chunk TransportSegment double.
type fakeSegments struct {
	chunks [][]byte
	idx    int
}

func newFakeSegments(chunks ...[]byte) *fakeSegments {
	return &fakeSegments{chunks: chunks}
}

func (s *fakeSegments) GetSegment() []byte { return s.chunks[s.idx] }
func (s *fakeSegments) Advance() bool {
	if s.idx+1 < len(s.chunks) {
		s.idx++
		return true
	}
	return false
}

func newTestPair() (master, outstation *LinkLayer, masterUpper, outUpper *fakeUpper, masterListener, outListener *fakeListener) {
	masterUpper = &fakeUpper{}
	outUpper = &fakeUpper{}
	masterListener = &fakeListener{}
	outListener = &fakeListener{}

	masterCfg := DefaultLinkConfig(true, 1024, 1)
	outCfg := DefaultLinkConfig(false, 1, 1024)

	master = NewLinkLayer(masterCfg, nil, newFakeExecutor(), masterUpper, masterListener)
	outstation = NewLinkLayer(outCfg, nil, newFakeExecutor(), outUpper, outListener)

	return
}

// loopbackRouter wires one LinkLayer's output directly into the other's
// OnFrame, simulating a perfect point-to-point wire.
type loopbackRouter struct {
	peer *LinkLayer
}

func (r *loopbackRouter) BeginTransmit(buffer []byte, sink CompletionSink) {
	header, userdata, _, err := Parse(buffer)
	sink.OnTransmitResult(err == nil)
	if err == nil {
		r.peer.OnFrame(header, userdata)
	}
}
