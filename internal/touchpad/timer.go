package touchpad

import (
	"sync"
	"time"

	"github.com/desertbit/timer"
)

// Subsystem names the FSM a deadline belongs to, so that a button timer and
// an edge-scroll timer on the same touch never collide in the registry.
type Subsystem int

const (
	SubsystemButton Subsystem = iota
	SubsystemEdgeScroll
	SubsystemTap
	SubsystemDWT
	SubsystemTrackpoint
	SubsystemGesture
)

// deviceSlot is the sentinel slot used for device-level (not per-touch)
// timers such as the tap FSM's own deadline.
const deviceSlot = -1

type timerKey struct {
	slot int
	sub  Subsystem
}

// TimerService is the timer consumed by every FSM in the package. It
// guarantees at most one outstanding deadline per (touch, subsystem) slot:
// starting a new timer cancels any prior one on the same key, and
// cancellation is idempotent. Expirations are delivered on Fired, which the
// host's event loop drains on its next iteration rather than inline with
// whatever goroutine the underlying timer fires on — this keeps timer
// delivery serialized with input-event dispatch as required by spec.md §5.
type TimerService struct {
	mu     sync.Mutex
	timers map[timerKey]*pendingTimer
	Fired  chan Deadline
}

// Deadline is delivered on TimerService.Fired when a (touch, subsystem)
// timer expires.
type Deadline struct {
	Slot int
	Sub  Subsystem
}

type pendingTimer struct {
	t    *timer.Timer
	done chan struct{}
}

// NewTimerService creates a timer service with a reasonably buffered
// delivery channel; a touchpad has at most a handful of timers in flight at
// once (one per touch per subsystem, plus DWT/trackpoint/gesture).
func NewTimerService() *TimerService {
	return &TimerService{
		timers: make(map[timerKey]*pendingTimer),
		Fired:  make(chan Deadline, 32),
	}
}

// Set (re)starts the deadline for (slot, sub), cancelling whatever deadline
// was previously outstanding on that key.
func (s *TimerService) Set(slot int, sub Subsystem, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := timerKey{slot, sub}
	s.cancelLocked(key)

	done := make(chan struct{})
	t := timer.NewTimer(d)
	s.timers[key] = &pendingTimer{t: t, done: done}

	go func() {
		select {
		case <-t.C:
			s.Fired <- Deadline{Slot: slot, Sub: sub}
		case <-done:
			t.Stop()
		}
	}()
}

// Cancel cancels the deadline for (slot, sub) if one is outstanding. It is a
// no-op, not an error, if none is pending.
func (s *TimerService) Cancel(slot int, sub Subsystem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(timerKey{slot, sub})
}

func (s *TimerService) cancelLocked(key timerKey) {
	if p, ok := s.timers[key]; ok {
		close(p.done)
		delete(s.timers, key)
	}
}

// CancelAll cancels every outstanding timer, used on device suspend.
func (s *TimerService) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.timers {
		s.cancelLocked(key)
	}
}
