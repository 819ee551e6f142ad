package executor

import (
	"sync"
	"testing"
	"time"
)

func TestPostLambda_RunsOnLoopGoroutine(t *testing.T) {
	e := New(nil)
	e.Start()
	defer e.Stop()

	done := make(chan struct{})
	e.PostLambda(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PostLambda callback never ran")
	}
}

func TestSchedule_FiresAfterDeadline(t *testing.T) {
	e := New(nil)
	e.Start()
	defer e.Stop()

	start := time.Now()
	fired := make(chan time.Time, 1)
	e.Schedule(start.Add(50*time.Millisecond), func() {
		fired <- time.Now()
	})

	select {
	case at := <-fired:
		if at.Sub(start) < 40*time.Millisecond {
			t.Errorf("fired too early: %v after start", at.Sub(start))
		}
	case <-time.After(time.Second):
		t.Fatal("scheduled callback never ran")
	}
}

func TestSchedule_CancelPreventsCallback(t *testing.T) {
	e := New(nil)
	e.Start()
	defer e.Stop()

	ran := false
	var mu sync.Mutex
	timer := e.Schedule(time.Now().Add(20*time.Millisecond), func() {
		mu.Lock()
		ran = true
		mu.Unlock()
	})
	timer.Cancel()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if ran {
		t.Error("cancelled timer callback ran anyway")
	}
}

func TestOrdering_CallbacksRunInDeadlineOrder(t *testing.T) {
	e := New(nil)
	e.Start()
	defer e.Stop()

	var mu sync.Mutex
	var order []int
	record := func(n int) func() {
		return func() {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
		}
	}

	now := time.Now()
	e.Schedule(now.Add(30*time.Millisecond), record(3))
	e.Schedule(now.Add(10*time.Millisecond), record(1))
	e.Schedule(now.Add(20*time.Millisecond), record(2))

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 {
		t.Fatalf("order = %v, want 3 entries", order)
	}
	for i, want := range []int{1, 2, 3} {
		if order[i] != want {
			t.Errorf("order = %v, want [1 2 3]", order)
			break
		}
	}
}

func TestStop_PreventsFurtherCallbacks(t *testing.T) {
	e := New(nil)
	e.Start()

	ran := make(chan struct{}, 1)
	e.Schedule(time.Now().Add(10*time.Millisecond), func() { ran <- struct{}{} })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("timer never fired before Stop")
	}

	e.Stop()

	afterStop := make(chan struct{}, 1)
	e.Schedule(time.Now(), func() { afterStop <- struct{}{} })
	select {
	case <-afterStop:
		t.Error("callback ran on an executor after Stop")
	case <-time.After(50 * time.Millisecond):
	}

	fired := false
	var mu sync.Mutex
	e2 := New(nil)
	// a fresh executor that's never started should never run anything
	e2.Schedule(time.Now(), func() {
		mu.Lock()
		fired = true
		mu.Unlock()
	})
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired {
		t.Error("callback ran on an executor that was never started")
	}
}
