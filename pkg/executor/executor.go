// Package executor provides the single-threaded, timer-driven run loop the
// link layer (and anything else in this module that needs cooperative
// scheduling instead of raw goroutines) posts work onto. It follows the
// same context.Context/sync.WaitGroup/ticker shape as the teacher's
// master.taskProcessor, generalized into a reusable primitive and backed by
// the same priority queue pkg/master already uses for its task queue.
package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"avaneesh/dnp3-go/pkg/internal/logger"
	"avaneesh/dnp3-go/pkg/internal/queue"
	"avaneesh/dnp3-go/pkg/link"
)

// pollInterval bounds how long a due callback can wait behind the ticker
// when nothing calls Wake. PostLambda and Schedule both call wake, so this
// is a backstop, not the steady-state latency.
const pollInterval = 5 * time.Millisecond

// postedPriority outranks scheduled timers so work queued via PostLambda
// for "now" runs before a timer due at that same instant. The queue orders
// by deadline first, so a timer with an earlier deadline still runs first.
const postedPriority = 1

// Executor runs every posted lambda and every due timer callback on one
// goroutine, in the order their deadlines expire. Nothing scheduled through
// it ever runs concurrently with anything else scheduled through it, which
// is what lets LinkLayer mutate its state machines from timer callbacks
// without a mutex.
type Executor struct {
	log   logger.Logger
	queue *queue.PriorityQueue
	wake  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

var _ link.Executor = (*Executor)(nil)

// New creates an Executor. Call Start before scheduling anything and Stop
// when finished with it.
func New(log logger.Logger) *Executor {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		log:    log,
		queue:  queue.NewPriorityQueue(),
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the run loop goroutine. Calling Start twice is a no-op.
func (e *Executor) Start() {
	if !e.started.CompareAndSwap(false, true) {
		return
	}
	e.wg.Add(1)
	go e.run()
}

// Stop cancels the run loop and waits for it to exit. Timers still pending
// when Stop is called never fire.
func (e *Executor) Stop() {
	e.cancel()
	e.wg.Wait()
}

// Now returns the current wall-clock time. Pulled out as a method (rather
// than callers reaching for time.Now directly) so tests can substitute a
// fake Executor with a controllable clock, per link.Executor.
func (e *Executor) Now() time.Time {
	return time.Now()
}

// PostLambda queues fn to run on the executor goroutine as soon as it's
// next scheduled, ahead of any timer due at the same instant.
func (e *Executor) PostLambda(fn func()) {
	item := &timerItem{fn: fn}
	e.queue.Push(item, postedPriority, time.Now())
	e.signalWake()
}

// Schedule queues fn to run on the executor goroutine at or after at.
// Canceling the returned Timer before it fires prevents fn from ever
// running; canceling after is a harmless no-op.
func (e *Executor) Schedule(at time.Time, fn func()) link.Timer {
	item := &timerItem{fn: fn}
	handle := &TimerHandle{item: item}
	e.queue.Push(item, 0, at)
	e.signalWake()
	return handle
}

func (e *Executor) signalWake() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Executor) run() {
	defer e.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-e.wake:
			e.drainReady()
		case <-ticker.C:
			e.drainReady()
		}
	}
}

func (e *Executor) drainReady() {
	now := time.Now()
	for {
		v := e.queue.NextReady(now)
		if v == nil {
			return
		}
		item := v.(*timerItem)
		if item.cancelled.Load() {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.log.Error("recovered panic in executor callback: %v", r)
				}
			}()
			item.fn()
		}()
	}
}

// timerItem is the payload stored in the priority queue for both posted
// lambdas and scheduled timers.
type timerItem struct {
	fn        func()
	cancelled atomic.Bool
}

// TimerHandle implements link.Timer. Cancel is safe to call from any
// goroutine and safe to call more than once.
type TimerHandle struct {
	item *timerItem
}

// Cancel marks the timer's callback as skipped. If the run loop has
// already popped and begun running the callback, Cancel has no effect on
// that in-flight invocation.
func (h *TimerHandle) Cancel() {
	h.item.cancelled.Store(true)
}
