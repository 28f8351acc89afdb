package touchpad

// gestureSwitchTimeoutMs debounces rapid finger-count changes (one finger
// briefly lifting mid-scroll) before committing to a new gesture mode.
const gestureSwitchTimeoutMs = 100

// gestureState tracks the 2-finger-scroll / clickpad-combined-drag mode
// that sits alongside the plain per-touch motion path in motion.go.
// Unlike the original this was distilled from, single-finger pointer
// motion is handled directly in motion.go's postMotion; this FSM only
// owns the cases that need every active touch's motion combined into one
// pointer event: 2-finger scrolling, and dragging a clickpad click with
// more than one finger down.
type gestureState struct {
	fingerCount        int
	fingerCountPending int
	started            bool

	twofingerActive   bool
	clickCombineActive bool

	axisXActive bool
	axisYActive bool
}

// combinedTouchesDelta sums (or averages) the per-frame delta of every
// tp_touch_active, dirty touch, mirroring tp_get_touches_delta.
func (d *Device) combinedTouchesDelta(average bool) (NormalizedCoords, bool) {
	var sum NormalizedCoords
	n := 0
	for i := range d.touches {
		t := &d.touches[i]
		if !d.tpTouchActive(t) || !t.Dirty {
			continue
		}
		delta, ok := d.delta(t)
		if !ok {
			continue
		}
		sum.X += delta.X
		sum.Y += delta.Y
		n++
	}
	if n == 0 {
		return NormalizedCoords{}, false
	}
	if average {
		sum.X /= float64(n)
		sum.Y /= float64(n)
	}
	return sum, true
}

// gestureHandleState counts active touches and debounces finger-count
// changes: a brand-new gesture (nothing started yet) switches mode
// immediately to avoid latency, but changing finger count mid-gesture
// waits out gestureSwitchTimeoutMs in case it's just one finger bouncing.
func (d *Device) gestureHandleState(now uint64) {
	active := 0
	for i := range d.touches {
		if d.tpTouchActive(&d.touches[i]) {
			active++
		}
	}

	g := &d.gesture
	if active != g.fingerCount {
		switch {
		case active == 0:
			d.gestureStop(now)
			g.fingerCount = 0
			g.fingerCountPending = 0
		case !g.started:
			g.fingerCount = active
			g.fingerCountPending = 0
		case active != g.fingerCountPending:
			g.fingerCountPending = active
			d.timers.Set(deviceSlot, SubsystemGesture, msToDuration(gestureSwitchTimeoutMs))
		}
	} else {
		g.fingerCountPending = 0
	}
}

func (d *Device) gestureHandleTimeout(now uint64) {
	g := &d.gesture
	if g.fingerCountPending == 0 {
		return
	}
	d.gestureStop(now)
	g.fingerCount = g.fingerCountPending
	g.fingerCountPending = 0
	d.gesturePostEvents(now)
}

func (d *Device) gestureStart(now uint64) {
	d.gesture.started = true
}

// gestureStop ends whatever combined-motion mode is active, flushing a
// terminal zero-value scroll event on every axis that was live.
func (d *Device) gestureStop(now uint64) {
	g := &d.gesture
	if !g.started {
		return
	}
	if g.fingerCount == 2 {
		d.gestureStopTwofingerScroll(now)
	}
	g.started = false
	g.twofingerActive = false
	g.clickCombineActive = false
}

func (d *Device) gestureStopTwofingerScroll(now uint64) {
	g := &d.gesture
	if g.axisYActive {
		d.sink.PointerAxis(now, AxisVertical, 0, SourceFinger, 0)
		g.axisYActive = false
	}
	if g.axisXActive {
		d.sink.PointerAxis(now, AxisHorizontal, 0, SourceFinger, 0)
		g.axisXActive = false
	}
}

// gesturePostEvents implements spec.md §4.5's 2-finger scroll and the
// clickpad click-drag combine rule: while dragging a tap, or while a
// clickpad button is physically held, no 2-finger scroll is emitted. With
// a clickpad button held, motion of every active touch is combined into
// one 1-finger-equivalent pointer event; during a tap drag, motion is left
// to the tap and per-touch motion paths.
func (d *Device) gesturePostEvents(now uint64) {
	g := &d.gesture
	if g.fingerCount == 0 {
		g.twofingerActive = false
		g.clickCombineActive = false
		return
	}

	if d.tapDragging() || (d.traits.IsClickpad && d.buttons.state != 0) {
		d.gestureStop(now)
		g.fingerCount = 1
		g.fingerCountPending = 0
	}

	if g.fingerCountPending != 0 {
		g.twofingerActive = g.fingerCount == 2
		return // debouncing: don't emit until the switch timer resolves
	}

	// spec.md §4.5: 2-finger scroll is gated on exactly two active,
	// non-palm touches and click_method != CLICKFINGER (§4.7). A device
	// configured for a different scroll method, or clickfinger's
	// finger-count-decides-the-button scheme, never combines motion here;
	// each touch falls through to motion.go's plain per-touch path.
	twofingerEligible := d.opts.ScrollMethod == ScrollMethodTwoFinger &&
		d.opts.ClickMethod != ClickMethodClickfinger

	switch {
	case g.fingerCount == 2 && !twofingerEligible:
		g.twofingerActive = false
		g.clickCombineActive = false
		return
	}

	switch g.fingerCount {
	case 1:
		g.twofingerActive = false
		if d.traits.IsClickpad && d.buttons.state != 0 {
			g.clickCombineActive = true
			delta, ok := d.combinedTouchesDelta(false)
			if ok {
				d.gestureStart(now)
				ax, ay := d.accel.filter(delta.X, delta.Y, now)
				if ax != 0 || ay != 0 {
					d.sink.PointerMotionUnaccelerated(now, delta.X, delta.Y)
					d.sink.PointerMotion(now, ax, ay)
				}
			}
		} else {
			g.clickCombineActive = false
		}
	case 2:
		g.twofingerActive = true
		g.clickCombineActive = false
		delta, ok := d.combinedTouchesDelta(true)
		if !ok {
			return
		}
		ax, ay := d.accel.filter(delta.X, delta.Y, now)
		if ax == 0 && ay == 0 {
			return
		}
		d.gestureStart(now)
		if d.opts.NaturalScroll {
			ax, ay = -ax, -ay
		}
		if ay != 0 {
			d.sink.PointerAxis(now, AxisVertical, ay, SourceFinger, 0)
			g.axisYActive = true
		}
		if ax != 0 {
			d.sink.PointerAxis(now, AxisHorizontal, ax, SourceFinger, 0)
			g.axisXActive = true
		}
	default:
		g.twofingerActive = false
		g.clickCombineActive = false
	}
}
