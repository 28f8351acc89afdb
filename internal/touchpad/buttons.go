package touchpad

const (
	buttonEnterTimeoutMs = 100
	buttonLeaveTimeoutMs = 300
)

// processPhysicalButton is the ingress handler for BTN_LEFT/RIGHT/MIDDLE
// (spec.md §4.1's "clickpad receiving any physical button code other than
// BTN_LEFT is a kernel bug"). It only updates the pressed-bitmask and
// queues the frame-level press/release event; area resolution happens in
// postButtonEvents once the frame's touches are classified.
func (d *Device) processPhysicalButton(code uint16, value int32) {
	if d.traits.IsClickpad && code != BtnLeft {
		logKernelBug("received button code 0x%x event on a clickpad", code)
		return
	}

	mask := uint32(1) << (code - BtnLeft)
	if value != 0 {
		d.buttons.state |= mask
		d.queued |= EventButtonPress
	} else {
		d.buttons.state &^= mask
		d.queued |= EventButtonRelease
	}
}

func isInsideBottomButtonArea(g ButtonAreaGeometry, t *Touch) bool {
	return t.Point.Y >= g.BottomTopEdge
}

func isInsideBottomRightArea(g ButtonAreaGeometry, t *Touch) bool {
	return isInsideBottomButtonArea(g, t) && t.Point.X > g.BottomRightLeftEdge
}

func isInsideBottomLeftArea(g ButtonAreaGeometry, t *Touch) bool {
	return isInsideBottomButtonArea(g, t) && !isInsideBottomRightArea(g, t)
}

func isInsideTopButtonArea(g ButtonAreaGeometry, t *Touch) bool {
	return g.HasTopButtons && t.Point.Y <= g.TopBottomEdge
}

func isInsideTopRightArea(g ButtonAreaGeometry, t *Touch) bool {
	return isInsideTopButtonArea(g, t) && t.Point.X > g.TopRightLeftEdge
}

func isInsideTopLeftArea(g ButtonAreaGeometry, t *Touch) bool {
	return isInsideTopButtonArea(g, t) && t.Point.X < g.TopLeftRightEdge
}

func isInsideTopMiddleArea(g ButtonAreaGeometry, t *Touch) bool {
	return isInsideTopButtonArea(g, t) &&
		t.Point.X >= g.TopLeftRightEdge && t.Point.X <= g.TopRightLeftEdge
}

// isInsideSoftbuttonArea is used by the palm classifiers (classifyPalm and
// palmTapClassify): spec.md §4.6 excludes touches inside a soft-button area
// from palm classification even when geometrically inside the palm zone.
func (d *Device) isInsideSoftbuttonArea(t *Touch) bool {
	return isInsideTopButtonArea(d.buttonAreas, t) || isInsideBottomButtonArea(d.buttonAreas, t)
}

func (d *Device) buttonSetEnterTimer(t *Touch) {
	d.timers.Set(t.slot, SubsystemButton, buttonEnterTimeoutMs*1e6)
}

func (d *Device) buttonSetLeaveTimer(t *Touch) {
	d.timers.Set(t.slot, SubsystemButton, buttonLeaveTimeoutMs*1e6)
}

// buttonSetState changes the soft-button FSM state and runs the on-entry
// behavior from the state diagram this was distilled from
// (original_source/src/evdev-mt-touchpad-buttons.c).
func (d *Device) buttonSetState(t *Touch, state ButtonAreaState, event ButtonAreaEvent) {
	d.timers.Cancel(t.slot, SubsystemButton)
	t.Button.State = state

	switch state {
	case ButtonStateNone:
		t.Button.Curr = buttonEventNone
	case ButtonStateArea:
		t.Button.Curr = ButtonEventInArea
	case ButtonStateBottom:
		t.Button.Curr = event
	case ButtonStateTop:
		// curr already holds the committed sub-area from TOP_NEW/TOP_TO_IGNORE
	case ButtonStateTopNew:
		t.Button.Curr = event
		d.buttonSetEnterTimer(t)
	case ButtonStateTopToIgnore:
		d.buttonSetLeaveTimer(t)
	case ButtonStateIgnore:
		t.Button.Curr = buttonEventNone
	}
}

func (d *Device) buttonHandleEvent(t *Touch, event ButtonAreaEvent, now uint64) {
	prev := t.Button.State

	switch t.Button.State {
	case ButtonStateNone:
		switch event {
		case ButtonEventInBottomR, ButtonEventInBottomL:
			d.buttonSetState(t, ButtonStateBottom, event)
		case ButtonEventInTopR, ButtonEventInTopM, ButtonEventInTopL:
			d.buttonSetState(t, ButtonStateTopNew, event)
		case ButtonEventInArea:
			d.buttonSetState(t, ButtonStateArea, event)
		case ButtonEventUp:
			d.buttonSetState(t, ButtonStateNone, event)
		}
	case ButtonStateArea:
		if event == ButtonEventUp {
			d.buttonSetState(t, ButtonStateNone, event)
		}
	case ButtonStateBottom:
		switch event {
		case ButtonEventInBottomR, ButtonEventInBottomL:
			if event != t.Button.Curr {
				d.buttonSetState(t, ButtonStateBottom, event)
			}
		case ButtonEventInTopR, ButtonEventInTopM, ButtonEventInTopL, ButtonEventInArea:
			d.buttonSetState(t, ButtonStateArea, event)
		case ButtonEventUp:
			d.buttonSetState(t, ButtonStateNone, event)
		}
	case ButtonStateTop:
		switch event {
		case ButtonEventInBottomR, ButtonEventInBottomL:
			d.buttonSetState(t, ButtonStateTopToIgnore, event)
		case ButtonEventInTopR, ButtonEventInTopM, ButtonEventInTopL:
			if event != t.Button.Curr {
				d.buttonSetState(t, ButtonStateTopNew, event)
			}
		case ButtonEventInArea:
			d.buttonSetState(t, ButtonStateTopToIgnore, event)
		case ButtonEventUp:
			d.buttonSetState(t, ButtonStateNone, event)
		}
	case ButtonStateTopNew:
		switch event {
		case ButtonEventInBottomR, ButtonEventInBottomL, ButtonEventInArea:
			d.buttonSetState(t, ButtonStateArea, event)
		case ButtonEventInTopR, ButtonEventInTopM, ButtonEventInTopL:
			if event != t.Button.Curr {
				d.buttonSetState(t, ButtonStateTopNew, event)
			}
		case ButtonEventUp:
			d.buttonSetState(t, ButtonStateNone, event)
		case ButtonEventPress, ButtonEventTimeout:
			d.buttonSetState(t, ButtonStateTop, event)
		}
	case ButtonStateTopToIgnore:
		switch event {
		case ButtonEventInTopR, ButtonEventInTopM, ButtonEventInTopL:
			if event == t.Button.Curr {
				d.buttonSetState(t, ButtonStateTop, event)
			} else {
				d.buttonSetState(t, ButtonStateTopNew, event)
			}
		case ButtonEventUp:
			d.buttonSetState(t, ButtonStateNone, event)
		case ButtonEventTimeout:
			d.buttonSetState(t, ButtonStateIgnore, event)
		}
	case ButtonStateIgnore:
		if event == ButtonEventUp {
			d.buttonSetState(t, ButtonStateNone, event)
		}
	}

	if prev != t.Button.State {
		logDebug("button state: from %s, event on slot %d to %s", prev, t.slot, t.Button.State)
	}
}

// buttonHandleState runs the per-frame soft-button FSM: geometric
// classification for dirty touches, UP for touches that ended, and
// device-level PRESS/RELEASE fan-out to every live touch (spec.md §4.3).
func (d *Device) buttonHandleState(now uint64) {
	for i := range d.touches {
		t := &d.touches[i]
		if t.State == StateNone {
			continue
		}
		if t.State == StateEnd {
			d.buttonHandleEvent(t, ButtonEventUp, now)
		} else if t.Dirty {
			var event ButtonAreaEvent
			switch {
			case isInsideBottomRightArea(d.buttonAreas, t):
				event = ButtonEventInBottomR
			case isInsideBottomLeftArea(d.buttonAreas, t):
				event = ButtonEventInBottomL
			case isInsideTopRightArea(d.buttonAreas, t):
				event = ButtonEventInTopR
			case isInsideTopMiddleArea(d.buttonAreas, t):
				event = ButtonEventInTopM
			case isInsideTopLeftArea(d.buttonAreas, t):
				event = ButtonEventInTopL
			default:
				event = ButtonEventInArea
			}
			d.buttonHandleEvent(t, event, now)
		}
		if d.queued&EventButtonRelease != 0 {
			d.buttonHandleEvent(t, ButtonEventRelease, now)
		}
		if d.queued&EventButtonPress != 0 {
			d.buttonHandleEvent(t, ButtonEventPress, now)
		}
	}
}

func (d *Device) releaseAllButtons(now uint64) {
	if d.buttons.state != 0 {
		d.buttons.state = 0
		d.queued |= EventButtonRelease
		d.postButtonEvents(now)
	}
}

// postButtonEvents is the emission phase for button presses/releases:
// clickpads resolve an area bitmask from every touch's committed soft
// button area, non-clickpads forward the physical button verbatim.
func (d *Device) postButtonEvents(now uint64) {
	if d.traits.IsClickpad {
		d.postClickpadButtons(now)
	} else {
		d.postPhysicalButtons(now)
	}
}

func (d *Device) postPhysicalButtons(now uint64) {
	changed := d.buttons.state ^ d.buttons.oldState
	if changed == 0 {
		return
	}
	for bit := uint32(0); bit < 3; bit++ {
		mask := uint32(1) << bit
		if changed&mask == 0 {
			continue
		}
		code := uint16(BtnLeft) + uint16(bit)
		pressed := d.buttons.state&mask != 0
		code = d.remapLeftHanded(code)
		d.emitButton(now, code, pressed, false)
	}
}

const (
	areaBitNone   = 0
	areaBitArea   = 1 << 0
	areaBitLeft   = 1 << 1
	areaBitMiddle = 1 << 2
	areaBitRight  = 1 << 3
)

// postClickpadButtons implements tp_post_clickpadbutton_buttons from
// original_source/src/evdev-mt-touchpad-buttons.c: resolve a button from
// the OR of every active touch's committed soft-button area, buffering the
// press (click_pending) until a touch supplies an area.
func (d *Device) postClickpadButtons(now uint64) {
	current := d.buttons.state
	old := d.buttons.oldState

	if !d.buttons.clickPending && current == old {
		return
	}

	if current != 0 {
		var area uint32
		isTop := false

		for i := range d.touches {
			t := &d.touches[i]
			switch t.Button.Curr {
			case ButtonEventInArea:
				area |= areaBitArea
			case ButtonEventInTopL:
				isTop = true
				area |= areaBitLeft
			case ButtonEventInBottomL:
				area |= areaBitLeft
			case ButtonEventInTopM:
				isTop = true
				area |= areaBitMiddle
			case ButtonEventInTopR:
				isTop = true
				area |= areaBitRight
			case ButtonEventInBottomR:
				area |= areaBitRight
			}
		}

		if area == 0 && d.opts.ClickMethod != ClickMethodClickfinger {
			d.buttons.clickPending = true
			return
		}

		var button uint16
		switch {
		case area&areaBitMiddle != 0 || (area&areaBitLeft != 0 && area&areaBitRight != 0):
			button = d.remapLeftHanded(BtnMiddle)
		case area&areaBitRight != 0:
			button = d.remapLeftHanded(BtnRight)
		case area&areaBitLeft != 0:
			button = d.remapLeftHanded(BtnLeft)
		default:
			button = BtnLeft
		}

		if d.opts.ClickMethod == ClickMethodClickfinger {
			button = d.clickfingerButton()
			if button == 0 {
				d.buttons.clickPending = false
				return
			}
		}

		d.buttons.active = uint32(button)
		d.buttons.activeIsTop = isTop
		d.buttons.clickPending = false
		d.pinTouches()
		d.emitButton(now, button, true, isTop)
		return
	}

	button := uint16(d.buttons.active)
	isTop := d.buttons.activeIsTop
	d.buttons.active = 0
	d.buttons.activeIsTop = false
	d.buttons.clickPending = false
	if button != 0 {
		d.emitButton(now, button, false, isTop)
	}
}

// clickfingerButton picks LEFT/RIGHT/MIDDLE by the number of active touches
// (spec.md §4.7's CLICKFINGER click method).
func (d *Device) clickfingerButton() uint16 {
	n := 0
	for i := range d.touches {
		if d.tpTouchActive(&d.touches[i]) || d.buttonTouchActive(&d.touches[i]) {
			n++
		}
	}
	switch n {
	case 0, 1:
		return BtnLeft
	case 2:
		return d.remapLeftHanded(BtnRight)
	default:
		return d.remapLeftHanded(BtnMiddle)
	}
}

func (d *Device) remapLeftHanded(code uint16) uint16 {
	if !d.opts.LeftHanded {
		return code
	}
	switch code {
	case BtnLeft:
		return BtnRight
	case BtnRight:
		return BtnLeft
	default:
		return code
	}
}

// emitButton routes top-button presses to the paired trackpoint sink
// (spec.md §4.3/§6) instead of the touchpad device; all other buttons go
// through the normal sink.
func (d *Device) emitButton(now uint64, code uint16, pressed bool, isTop bool) {
	var count uint32
	if pressed {
		count = d.seat.press(code)
	} else {
		count = d.seat.release(code)
	}
	if isTop && d.traits.HasTopButtons {
		if d.trackpointSink != nil {
			d.trackpointSink.PointerButton(now, code, pressed, count)
		}
		return
	}
	d.sink.PointerButton(now, code, pressed, count)
}
