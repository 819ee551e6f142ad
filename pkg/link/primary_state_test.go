package link

import (
	"testing"
	"time"
)

func TestPriOnNack_ConfDataWait_RxBuffFullFails(t *testing.T) {
	upper := &fakeUpper{}
	listener := &fakeListener{}
	exec := newFakeExecutor()
	cfg := DefaultLinkConfig(true, 1024, 1)
	cfg.UseConfirms = true
	ll := NewLinkLayer(cfg, nil, exec, upper, listener)
	ll.SetRouter(newFakeRouter())
	ll.OnLowerLayerUp()
	ll.isRemoteReset = true // skip the reset handshake for this test

	if err := ll.Send(newFakeSegments([]byte("data"))); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if ll.priState != priConfDataWait {
		t.Fatalf("priState = %v, want ConfDataWait", ll.priState)
	}

	header := LinkHeaderFields{IsFromMaster: false, Src: 1, Dest: 1024, Func: FuncNack, IsPrimary: SecondaryFrame, FCVDFC: true}
	if err := ll.OnFrame(header, nil); err != nil {
		t.Fatalf("OnFrame(nack, rxBuffFull) error = %v", err)
	}

	if ll.priState != priIdle {
		t.Errorf("priState = %v, want Idle after an rxBuffFull NACK", ll.priState)
	}
	if ll.segments != nil {
		t.Errorf("segments should be cleared after priFailure")
	}

	exec.RunPosted()
	if len(upper.results) != 1 || upper.results[0] {
		t.Errorf("upper.results = %v, want [false]", upper.results)
	}
}

func TestPriOnNack_ConfDataWait_RetriesResetLink(t *testing.T) {
	upper := &fakeUpper{}
	listener := &fakeListener{}
	exec := newFakeExecutor()
	cfg := DefaultLinkConfig(true, 1024, 1)
	cfg.UseConfirms = true
	ll := NewLinkLayer(cfg, nil, exec, upper, listener)
	ll.SetRouter(newFakeRouter())
	ll.OnLowerLayerUp()
	ll.isRemoteReset = true

	if err := ll.Send(newFakeSegments([]byte("data"))); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if ll.priState != priConfDataWait {
		t.Fatalf("priState = %v, want ConfDataWait", ll.priState)
	}

	header := LinkHeaderFields{IsFromMaster: false, Src: 1, Dest: 1024, Func: FuncNack, IsPrimary: SecondaryFrame, FCVDFC: false}
	if err := ll.OnFrame(header, nil); err != nil {
		t.Fatalf("OnFrame(nack) error = %v", err)
	}

	// a non-rxBuffFull NACK requeues RESET_LINK_STATES; with the fake router
	// completing the transmit synchronously, the machine is already waiting
	// on the reset ACK by the time OnFrame returns.
	if ll.priState != priResetLinkWait {
		t.Errorf("priState = %v, want ResetLinkWait after requeuing the reset", ll.priState)
	}

	found := false
	for _, s := range listener.states {
		if s == LinkStatusUnreset {
			found = true
		}
	}
	if !found {
		t.Errorf("listener.states = %v, want an UNRESET transition on NACK", listener.states)
	}
}

func TestPriOnNack_RequestLinkStatusWait_GoesIdleWithoutReportingFailure(t *testing.T) {
	upper := &fakeUpper{}
	listener := &fakeListener{}
	exec := newFakeExecutor()
	ll := NewLinkLayer(DefaultLinkConfig(true, 1024, 1), nil, exec, upper, listener)
	ll.SetRouter(newFakeRouter())
	ll.OnLowerLayerUp()

	exec.now = exec.now.Add(ll.config.KeepAliveTimeout + time.Second)
	if !exec.FireLatestTimer() {
		t.Fatalf("expected a pending keep-alive timer")
	}
	if ll.priState != priRequestLinkStatusWait {
		t.Fatalf("priState = %v, want RequestLinkStatusWait", ll.priState)
	}

	header := LinkHeaderFields{IsFromMaster: false, Src: 1, Dest: 1024, Func: FuncNack, IsPrimary: SecondaryFrame}
	if err := ll.OnFrame(header, nil); err != nil {
		t.Fatalf("OnFrame(nack) error = %v", err)
	}

	if ll.priState != priIdle {
		t.Errorf("priState = %v, want Idle after a keep-alive NACK", ll.priState)
	}
	// a NACK/NOT_SUPPORTED response isn't a timeout, so it shouldn't be
	// escalated to the listener the way an actual response timeout is.
	if listener.keepAliveFail != 0 {
		t.Errorf("keepAliveFail = %d, want 0 (non-timeout failure stays silent)", listener.keepAliveFail)
	}
}

func TestPriOnNotSupported_RequestLinkStatusWait_GoesIdleWithoutReportingFailure(t *testing.T) {
	upper := &fakeUpper{}
	listener := &fakeListener{}
	exec := newFakeExecutor()
	ll := NewLinkLayer(DefaultLinkConfig(true, 1024, 1), nil, exec, upper, listener)
	ll.SetRouter(newFakeRouter())
	ll.OnLowerLayerUp()

	exec.now = exec.now.Add(ll.config.KeepAliveTimeout + time.Second)
	if !exec.FireLatestTimer() {
		t.Fatalf("expected a pending keep-alive timer")
	}
	if ll.priState != priRequestLinkStatusWait {
		t.Fatalf("priState = %v, want RequestLinkStatusWait", ll.priState)
	}

	header := LinkHeaderFields{IsFromMaster: false, Src: 1, Dest: 1024, Func: FuncLinkNotUsed, IsPrimary: SecondaryFrame}
	if err := ll.OnFrame(header, nil); err != nil {
		t.Fatalf("OnFrame(not-supported) error = %v", err)
	}

	if ll.priState != priIdle {
		t.Errorf("priState = %v, want Idle after a NOT_SUPPORTED response", ll.priState)
	}
	if listener.keepAliveFail != 0 {
		t.Errorf("keepAliveFail = %d, want 0 (non-timeout failure stays silent)", listener.keepAliveFail)
	}
}

func TestPriOnLinkStatus_RequestLinkStatusWait_ReportsSuccess(t *testing.T) {
	upper := &fakeUpper{}
	listener := &fakeListener{}
	exec := newFakeExecutor()
	ll := NewLinkLayer(DefaultLinkConfig(true, 1024, 1), nil, exec, upper, listener)
	ll.SetRouter(newFakeRouter())
	ll.OnLowerLayerUp()

	exec.now = exec.now.Add(ll.config.KeepAliveTimeout + time.Second)
	if !exec.FireLatestTimer() {
		t.Fatalf("expected a pending keep-alive timer")
	}
	if ll.priState != priRequestLinkStatusWait {
		t.Fatalf("priState = %v, want RequestLinkStatusWait", ll.priState)
	}

	header := LinkHeaderFields{IsFromMaster: false, Src: 1, Dest: 1024, Func: FuncLinkStatusResponse, IsPrimary: SecondaryFrame}
	if err := ll.OnFrame(header, nil); err != nil {
		t.Fatalf("OnFrame(link-status) error = %v", err)
	}

	if ll.priState != priIdle {
		t.Errorf("priState = %v, want Idle after a LINK_STATUS reply", ll.priState)
	}
	if listener.keepAliveOK != 1 {
		t.Errorf("keepAliveOK = %d, want 1", listener.keepAliveOK)
	}
}
