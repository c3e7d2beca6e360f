package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vibe-beat/core"
	"github.com/lixenwraith/vibe-beat/status"
)

// Loop is a single-consumer run-loop implementing Scheduler
// Timer fires and posted jobs are funneled through one channel and executed on one goroutine,
// so state owned by loop callbacks is never mutated concurrently
type Loop struct {
	clock clockwork.Clock
	jobs  chan job

	mu     sync.Mutex
	timers map[Handle]*loopTimer
	nextID Handle

	// Control
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool

	log zerolog.Logger

	// Cached metric pointers
	statJobs    *atomic.Int64
	statDropped *atomic.Int64
	statTimers  *atomic.Int64
}

type job struct {
	handle Handle // zero for posted jobs
	fn     func()
}

type loopTimer struct {
	ticker clockwork.Ticker
	done   chan struct{}
}

// NewLoop creates a stopped loop reading time from clock
func NewLoop(clock clockwork.Clock, queueSize int, logger zerolog.Logger, reg *status.Registry) *Loop {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Loop{
		clock:       clock,
		jobs:        make(chan job, queueSize),
		timers:      make(map[Handle]*loopTimer),
		stopChan:    make(chan struct{}),
		log:         logger.With().Str("component", "loop").Logger(),
		statJobs:    reg.Ints.Get("loop.jobs"),
		statDropped: reg.Ints.Get("loop.dropped"),
		statTimers:  reg.Ints.Get("loop.timers"),
	}
}

// Now returns the loop clock's current time
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// Start launches the run-loop goroutine
func (l *Loop) Start() {
	if l.running.CompareAndSwap(false, true) {
		l.wg.Add(1)
		core.Go(l.run)
	}
}

// Stop halts the loop and every timer; pending jobs are discarded
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.running.Store(false)
		close(l.stopChan)

		l.mu.Lock()
		for h, t := range l.timers {
			t.ticker.Stop()
			delete(l.timers, h)
		}
		l.statTimers.Store(0)
		l.mu.Unlock()

		l.wg.Wait()
	})
}

// Post queues fn for execution on the loop goroutine
// Blocks while the queue is full so input is never dropped; returns false only once stopped
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopChan:
		return false
	default:
	}

	select {
	case l.jobs <- job{fn: fn}:
		return true
	case <-l.stopChan:
		return false
	}
}

// Do runs fn on the loop goroutine and waits for it to finish
// Must not be called from a loop callback
func (l *Loop) Do(fn func()) bool {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}

	select {
	case <-done:
		return true
	case <-l.stopChan:
		return false
	}
}

// ScheduleRepeating starts a ticker whose fires are executed on the loop goroutine
func (l *Loop) ScheduleRepeating(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		l.log.Error().Dur("interval", interval).Msg("rejected non-positive timer interval")
		return 0
	}

	select {
	case <-l.stopChan:
		return 0
	default:
	}

	t := &loopTimer{
		ticker: l.clock.NewTicker(interval),
		done:   make(chan struct{}),
	}

	l.mu.Lock()
	l.nextID++
	h := l.nextID
	l.timers[h] = t
	l.statTimers.Store(int64(len(l.timers)))
	l.mu.Unlock()

	l.wg.Add(1)
	core.Go(func() { l.forward(h, t, fn) })

	return h
}

// Cancel stops the timer for h; fires already queued are dropped at execution
func (l *Loop) Cancel(h Handle) {
	if h == 0 {
		return
	}

	l.mu.Lock()
	t, ok := l.timers[h]
	if ok {
		delete(l.timers, h)
		l.statTimers.Store(int64(len(l.timers)))
	}
	l.mu.Unlock()

	if ok {
		t.ticker.Stop()
		close(t.done)
	}
}

// forward relays ticker fires into the job channel until cancelled or stopped
func (l *Loop) forward(h Handle, t *loopTimer, fn func()) {
	defer l.wg.Done()

	for {
		select {
		case <-t.ticker.Chan():
			select {
			case l.jobs <- job{handle: h, fn: fn}:
			case <-t.done:
				return
			case <-l.stopChan:
				return
			}
		case <-t.done:
			return
		case <-l.stopChan:
			return
		}
	}
}

// run executes jobs in arrival order
func (l *Loop) run() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			return
		case j := <-l.jobs:
			l.exec(j)
		}
	}
}

func (l *Loop) exec(j job) {
	if j.handle != 0 && !l.live(j.handle) {
		l.statDropped.Add(1)
		return
	}
	l.statJobs.Add(1)
	j.fn()
}

func (l *Loop) live(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.timers[h]
	return ok
}
