package watch

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is the debounce window: a batch fires only after this
// long with no new events.
const DefaultQuietPeriod = 5 * time.Second

// Scheduler decides when a collecting batch drains. Both strategies share
// the aggregator's debounce state machine; they differ only in whether the
// drain happens automatically.
type Scheduler interface {
	// Reset arms or refreshes the quiet timer after an event.
	Reset()
	// Stop cancels any armed timer. A drain already in progress is allowed
	// to finish.
	Stop()
}

// TimerScheduler fires the drain callback once the quiet period elapses
// with no intervening Reset.
type TimerScheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	fire    func()
	timer   *time.Timer
	stopped bool
}

// NewTimerScheduler creates a timer-backed scheduler. The callback runs on
// the timer goroutine.
func NewTimerScheduler(delay time.Duration, fire func()) *TimerScheduler {
	if delay <= 0 {
		delay = DefaultQuietPeriod
	}
	return &TimerScheduler{delay: delay, fire: fire}
}

func (s *TimerScheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.fire)
		return
	}
	s.timer.Reset(s.delay)
}

func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

// ManualScheduler is the degraded synchronous mode used when no timer loop
// should run: events are still recorded into the pending set, but batches
// drain only on an explicit Analyze call.
type ManualScheduler struct{}

func (ManualScheduler) Reset() {}
func (ManualScheduler) Stop()  {}
