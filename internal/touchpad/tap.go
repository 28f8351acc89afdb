package touchpad

import "time"

const (
	tapTimeoutSingleMs = 180
	tapTimeoutMultiMs  = 200
	dragLockTimeoutMs  = tapTimeoutMultiMs
)

// tapDeviceState is the shared, single-instance-per-device tap/drag FSM of
// spec.md §4.4. Unlike the soft-button and edge-scroll FSMs, which run one
// instance per touch, there is exactly one of these per Device.
type tapDeviceState struct {
	state         TapState
	suspended     bool
	fingerCount   int // current count of touches with Tap.State == TapTouchTouch
	maxFingerCount int
	startTime     uint64
	button        uint16 // button driving an in-flight press/release pair (drag or single pending click)
	dragSlot      int    // touch slot driving an active drag's motion, -1 if none

	// Multitap (spec.md §4.4: "n successive taps within the window generate
	// n press/release pairs, with monotone timestamps"). Each resolved tap
	// that chains into another (a follow-up touch lands inside the TAPPED
	// settle window and lifts again without becoming a drag) accumulates
	// here instead of emitting immediately; the whole run flushes together
	// once the chain breaks.
	multitapButton uint16
	multitapCount  int
	lastTapEnd     uint64 // timestamp of the last emitted pair, for monotonicity across a flushed run

	pendingPress    bool
	pendingRelease  bool
	pendingMultitap int // number of queued press/release pairs to flush this frame
}

// queueTap accumulates one resolved tap into the pending multitap run,
// flushing whatever was queued first if the button type changed (e.g. a
// 2-finger tap chained after a 1-finger one) so each flushed pair uses a
// consistent button.
func (d *Device) queueTap(button uint16) {
	if d.tap.multitapCount > 0 && d.tap.multitapButton != button {
		d.flushMultitap()
	}
	d.tap.multitapButton = button
	d.tap.multitapCount++
}

// flushMultitap moves whatever is queued into pendingMultitap so
// tapPostEvents emits it this frame, used when a chain is interrupted by
// something other than the settle-window timeout (e.g. committing to a
// drag).
func (d *Device) flushMultitap() {
	if d.tap.multitapCount == 0 {
		return
	}
	d.tap.pendingMultitap += d.tap.multitapCount
	d.tap.multitapCount = 0
}

func (d *Device) tapMotionThresholdSquared() float64 {
	res := d.geometry.X.Resolution
	if res <= 0 {
		res = 1
	}
	threshold := 2.0 * float64(res) // ~2mm
	return threshold * threshold
}

func windowForFingerCount(n int) uint64 {
	if n <= 1 {
		return tapTimeoutSingleMs
	}
	return tapTimeoutMultiMs
}

func buttonForFingerCount(n int) uint16 {
	switch n {
	case 2:
		return BtnRight
	case 3:
		return BtnMiddle
	default:
		return BtnLeft
	}
}

// tapDragging reports whether the device is currently in a committed
// tap-and-drag, used by motion.go to avoid double-emitting the drag
// touch's motion through the plain pointer-motion path.
func (d *Device) tapDragging() bool {
	switch d.tap.state {
	case TapDragging, TapDragging2, TapDraggingWait:
		return true
	default:
		return false
	}
}

func (d *Device) tapIsDragTouch(t *Touch) bool {
	return d.tap.dragSlot == t.slot
}

// tapHandleState computes tap-FSM transitions for the frame. All emission
// is deferred to tapPostEvents so the §2/§5 phase order (tap-derived
// buttons emit first) is independent of when state is computed.
func (d *Device) tapHandleState(now uint64) {
	if !d.opts.TapEnabled {
		return
	}

	for i := range d.touches {
		t := &d.touches[i]
		if t.State != StateBegin {
			continue
		}
		d.tapProcessBegin(t, now)
	}

	for i := range d.touches {
		t := &d.touches[i]
		if t.State != StateUpdate || !t.Dirty {
			continue
		}
		if t.Tap.State == TapTouchTouch {
			d.tapProcessMotion(t, now)
		}
	}

	for i := range d.touches {
		t := &d.touches[i]
		if t.State != StateEnd {
			continue
		}
		d.tapProcessUp(t, now)
	}
}

// tapProcessBegin implements the suspend-gates-new-touches rule and the
// finger-count ramp TOUCH -> TOUCH_2 -> TOUCH_3 -> DEAD.
func (d *Device) tapProcessBegin(t *Touch, now uint64) {
	if d.tap.suspended || d.palmTapClassify(t) || t.IsThumb {
		t.Tap.State = TapTouchDead
		return
	}

	switch d.tap.state {
	case TapDraggingWait:
		// New touch within the drag-lock window resumes the drag.
		t.Tap.State = TapTouchTouch
		t.Tap.Initial = t.Point
		d.tap.fingerCount++
		d.timers.Cancel(deviceSlot, SubsystemTap)
		d.tap.state = TapDragging2
		d.tap.dragSlot = t.slot
		return
	case TapDragging, TapDragging2:
		// A third finger landing while dragging ends the drag (see
		// SPEC_FULL.md / spec.md §9 open question (a)).
		t.Tap.State = TapTouchDead
		d.tap.pendingRelease = true
		d.tap.state = TapIdle
		d.tap.dragSlot = -1
		return
	case TapTapped:
		// A second touch inside the post-tap window: this may become a
		// tap-and-drag (spec.md §4.4) once it moves.
		t.Tap.State = TapTouchTouch
		t.Tap.Initial = t.Point
		d.tap.fingerCount++
		d.timers.Cancel(deviceSlot, SubsystemTap)
		d.tap.state = TapDraggingOrTap
		d.tap.dragSlot = t.slot
		return
	}

	t.Tap.State = TapTouchTouch
	t.Tap.Initial = t.Point
	d.tap.fingerCount++
	if d.tap.fingerCount > d.tap.maxFingerCount {
		d.tap.maxFingerCount = d.tap.fingerCount
	}

	switch d.tap.fingerCount {
	case 1:
		d.tap.state = TapTouch
		d.tap.startTime = now
	case 2:
		d.tap.state = TapTouch2
	case 3:
		d.tap.state = TapTouch3
	default:
		d.tap.state = TapDead
	}

	d.timers.Set(deviceSlot, SubsystemTap, msToDuration(windowForFingerCount(d.tap.maxFingerCount)))
}

// tapProcessMotion kills the sequence (for >=2 fingers) or demotes it to a
// drag candidate (for 1 finger) once cumulative motion crosses the
// threshold, per spec.md §4.4's "Motion threshold" rule.
func (d *Device) tapProcessMotion(t *Touch, now uint64) {
	dx := float64(t.Point.X - t.Tap.Initial.X)
	dy := float64(t.Point.Y - t.Tap.Initial.Y)
	if dx*dx+dy*dy <= d.tapMotionThresholdSquared() {
		return
	}

	switch d.tap.state {
	case TapTouch:
		t.Tap.State = TapTouchDead
		d.tap.fingerCount--
		d.tap.state = TapIdle
		d.timers.Cancel(deviceSlot, SubsystemTap)
	case TapTouch2, TapTouch2Hold, TapTouch3, TapTouch3Hold:
		d.killSequence()
	case TapDraggingOrTap:
		// The drag-lock follower moved: commit to an actual drag, inheriting
		// the originating tap's button. The tap that started this drag
		// becomes the drag's press rather than a click; any earlier taps
		// queued for this chain are flushed now as clicks.
		d.tap.button = d.tap.multitapButton
		d.tap.multitapCount--
		d.flushMultitap()
		d.tap.state = TapDragging
		d.tap.pendingPress = true
	case TapDragging2:
		d.tap.state = TapDragging
	}
}

func (d *Device) killSequence() {
	for i := range d.touches {
		if d.touches[i].Tap.State == TapTouchTouch {
			d.touches[i].Tap.State = TapTouchDead
		}
	}
	d.tap.fingerCount = 0
	d.tap.state = TapDead
	d.timers.Cancel(deviceSlot, SubsystemTap)
}

// tapProcessUp handles a tap-participating touch lifting: it either
// resolves the sequence when the last finger lifts, or (during an active
// drag) either releases immediately or enters DRAGGING_WAIT for drag-lock.
func (d *Device) tapProcessUp(t *Touch, now uint64) {
	wasTapActive := t.Tap.State == TapTouchTouch
	t.Tap.State = TapTouchIdle

	if (d.tap.state == TapDragging || d.tap.state == TapDragging2) && d.tap.dragSlot == t.slot {
		if wasTapActive {
			d.tap.fingerCount--
		}
		d.tap.dragSlot = -1
		if d.opts.TapDragLock {
			d.tap.state = TapDraggingWait
			d.timers.Set(deviceSlot, SubsystemTap, msToDuration(dragLockTimeoutMs))
		} else {
			d.tap.pendingRelease = true
			d.tap.state = TapIdle
		}
		return
	}

	if !wasTapActive {
		return
	}

	d.tap.fingerCount--
	if d.tap.fingerCount > 0 {
		return // other tap-active touches still down; wait for all to lift
	}

	switch d.tap.state {
	case TapTouch, TapTouch2, TapTouch3, TapTouch2Hold, TapTouch3Hold:
		elapsed := now - d.tap.startTime
		if elapsed <= windowForFingerCount(d.tap.maxFingerCount) {
			d.queueTap(buttonForFingerCount(d.tap.maxFingerCount))
			d.tap.state = TapTapped
			d.timers.Set(deviceSlot, SubsystemTap, msToDuration(windowForFingerCount(d.tap.maxFingerCount)))
		} else {
			d.tap.state = TapIdle
		}
		d.tap.maxFingerCount = 0
	case TapDraggingOrTap:
		// The follower lifted without ever moving enough to count as a
		// drag: chain it into the multitap run as a second, independent tap.
		d.queueTap(BtnLeft)
		d.tap.state = TapTapped
		d.timers.Set(deviceSlot, SubsystemTap, msToDuration(tapTimeoutSingleMs))
	}
}

// tapHandleTimeout fires when the shared tap timer expires: either the
// tap-decision window ran out with no resolution (dead sequence), the
// TAPPED settle window elapsed with no follow-up touch (commit the tap),
// or the drag-lock window elapsed with no new touch (end the drag).
func (d *Device) tapHandleTimeout(now uint64) {
	switch d.tap.state {
	case TapTouch, TapTouch2, TapTouch3, TapTouch2Hold, TapTouch3Hold:
		d.killSequence()
		d.tap.state = TapIdle
	case TapTapped:
		d.flushMultitap()
		d.tap.state = TapIdle
	case TapDraggingWait:
		d.tap.pendingRelease = true
		d.tap.state = TapIdle
	case TapDead:
		// The window armed when a fourth finger landed ran out; the sequence
		// is already dead and stays so until every finger lifts.
	default:
		// The timer should have been cancelled before entering any other
		// state; firing here means a transition forgot to cancel it.
		logLibinputBug("tap timer fired in state %s", d.tap.state)
	}
}

// tapPostEvents is the emission phase: press/release for a resolved tap or
// drag, and forwarding the drag-follower touch's motion while DRAGGING.
func (d *Device) tapPostEvents(now uint64) {
	if d.tap.pendingPress {
		d.emitButton(now, d.tap.button, true, false)
		d.tap.pendingPress = false
	}
	if d.tap.pendingRelease {
		d.emitButton(now, d.tap.button, false, false)
		d.tap.pendingRelease = false
	}

	if d.tap.pendingMultitap > 0 {
		t := now
		if t <= d.tap.lastTapEnd {
			t = d.tap.lastTapEnd + 1
		}
		for i := 0; i < d.tap.pendingMultitap; i++ {
			d.emitButton(t, d.tap.multitapButton, true, false)
			d.emitButton(t, d.tap.multitapButton, false, false)
			d.tap.lastTapEnd = t
			t++
		}
		d.tap.pendingMultitap = 0
	}

	if d.tap.state == TapDragging && d.tap.dragSlot >= 0 {
		t := &d.touches[d.tap.dragSlot]
		if t.Dirty {
			delta, ok := d.delta(t)
			if ok {
				ax, ay := d.accel.filter(delta.X, delta.Y, now)
				if ax != 0 || ay != 0 {
					d.sink.PointerMotionUnaccelerated(now, delta.X, delta.Y)
					d.sink.PointerMotion(now, ax, ay)
				}
			}
		}
	}
}

// tapSuspend cancels any in-flight tap without emitting anything, and
// marks the FSM suspended so new touches are ignored until resume (spec.md
// §4.4's "Suspend/resume").
func (d *Device) tapSuspend() {
	if d.tap.suspended {
		return
	}
	d.tap.suspended = true
	if d.tap.state != TapIdle {
		d.killSequence()
	}
	d.tap.state = TapIdle
	d.tap.multitapCount = 0
	d.tap.pendingMultitap = 0
	d.timers.Cancel(deviceSlot, SubsystemTap)
}

func (d *Device) tapResume() {
	d.tap.suspended = false
}

// tapReleaseAll runs the tap FSM forward with a synthetic release for any
// held drag button, and emits taps still queued in TAPPED as complete
// press/release pairs, matching spec.md §7's suspend contract.
func (d *Device) tapReleaseAll(now uint64) {
	switch {
	case d.tap.state == TapTapped:
		d.flushMultitap()
		d.tapPostEvents(now)
	case d.tapDragging():
		d.emitButton(now, d.tap.button, false, false)
	}
	d.tap.state = TapIdle
	d.tap.dragSlot = -1
	d.tap.fingerCount = 0
	d.tap.multitapCount = 0
	d.tap.pendingMultitap = 0
	d.timers.Cancel(deviceSlot, SubsystemTap)
}

// palmTapClassify implements spec.md §4.6's palm-tap rule: a BEGIN touch in
// a palm zone and in the northern half of the touchpad is immediately a
// palm tap, unless it's inside a soft-button area.
func (d *Device) palmTapClassify(t *Touch) bool {
	if !d.palmGeom.Enabled {
		return false
	}
	if d.isInsideSoftbuttonArea(t) {
		return false
	}
	inZone := t.Point.X <= d.palmGeom.LeftEdge || t.Point.X >= d.palmGeom.RightEdge
	north := t.Point.Y < d.palmGeom.VertMid
	return inZone && north
}

func msToDuration(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
