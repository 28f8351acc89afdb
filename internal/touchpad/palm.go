package touchpad

import "math"

const (
	dwtShortTimeoutMs = 220
	dwtLongTimeoutMs  = 520
	palmEdgeWindowMs  = 200
)

// classifyPalm runs every frame for every live touch and owns t.Palm.State
// (spec.md §4.6): edge-zone classification on BEGIN, its 200ms
// reversibility window on UPDATE, and DWT/trackpoint suppression
// overriding either.
func (d *Device) classifyPalm(t *Touch, now uint64) {
	if t.State == StateBegin {
		// A touch starting inside a soft-button area, or in the right
		// edge-scroll zone, is not an edge palm even inside the palm band.
		if d.inPalmEdgeZone(t.Point) && !d.isInsideSoftbuttonArea(t) &&
			d.touchEdge(t)&EdgeRight == 0 {
			t.Palm.State = PalmEdge
			t.Palm.First = t.Point
			t.Palm.Time = now
		}
		if d.dwt.keyboardActive {
			t.Palm.State = PalmTyping
		}
		if d.trackpoint.active {
			t.Palm.State = PalmTrackpoint
		}
		return
	}

	if t.State != StateUpdate || !t.Dirty {
		return
	}

	if t.Palm.State == PalmEdge && now-t.Palm.Time <= palmEdgeWindowMs {
		if d.palmEdgeExitSatisfied(t) {
			t.Palm.State = PalmNone
		}
	}
}

func (d *Device) inPalmEdgeZone(p DeviceCoords) bool {
	if !d.palmGeom.Enabled {
		return false
	}
	return p.X <= d.palmGeom.LeftEdge || p.X >= d.palmGeom.RightEdge
}

// palmEdgeExitSatisfied implements the reversibility test: the touch must
// have moved back inside the non-palm band, and its travel direction from
// Palm.First must be within +/-45 degrees of horizontal.
func (d *Device) palmEdgeExitSatisfied(t *Touch) bool {
	if d.inPalmEdgeZone(t.Point) {
		return false
	}
	dx := float64(t.Point.X - t.Palm.First.X)
	dy := float64(t.Point.Y - t.Palm.First.Y)
	if dx == 0 && dy == 0 {
		return false
	}
	return math.Abs(dy) <= math.Abs(dx)
}

// NotifyKeyboardKey is the DWT collaborator hook: a non-ignored keypress
// (re)arms the quiet-period timer, extending it on every further keystroke
// while typing continues (spec.md §4.6).
func (d *Device) NotifyKeyboardKey(code uint16, pressed bool, now uint64) {
	if !pressed || isDWTIgnoredKey(code) {
		return
	}
	first := !d.dwt.keyboardActive
	d.dwt.keyboardActive = true
	d.dwt.keyboardLastPress = now
	if first {
		d.timers.Set(deviceSlot, SubsystemDWT, msToDuration(dwtShortTimeoutMs))
		d.tapSuspend()
	} else {
		d.timers.Set(deviceSlot, SubsystemDWT, msToDuration(dwtLongTimeoutMs))
	}
}

// dwtHandleTimeout fires when the quiet period elapses with no further
// keystrokes: typing is considered over. Touches that were already down
// before the most recent keystroke are reactivated; touches that landed
// during the typing burst stay suppressed until they're released, since
// they're more likely a resting palm than a deliberate touch.
func (d *Device) dwtHandleTimeout(now uint64) {
	d.dwt.keyboardActive = false
	for i := range d.touches {
		t := &d.touches[i]
		if t.Palm.State != PalmTyping {
			continue
		}
		if t.BeginMillis <= d.dwt.keyboardLastPress {
			t.Palm.State = PalmNone
		}
	}
	d.tapResume()
}

// NotifyTrackpointActivity is the trackpoint collaborator hook: movement
// or a button press on a paired trackpoint suppresses touchpad touches the
// same way keyboard activity does, using the same quiet-period shape.
func (d *Device) NotifyTrackpointActivity(now uint64) {
	first := !d.trackpoint.active
	d.trackpoint.active = true
	if first {
		d.timers.Set(deviceSlot, SubsystemTrackpoint, msToDuration(dwtShortTimeoutMs))
		d.tapSuspend()
	} else {
		d.timers.Set(deviceSlot, SubsystemTrackpoint, msToDuration(dwtLongTimeoutMs))
	}
}

func (d *Device) trackpointHandleTimeout(now uint64) {
	d.trackpoint.active = false
	for i := range d.touches {
		t := &d.touches[i]
		if t.Palm.State == PalmTrackpoint {
			t.Palm.State = PalmNone
		}
	}
	d.tapResume()
}

// isDWTIgnoredKey excludes modifiers, function keys, the numpad and
// multimedia keys from arming the typing timer: holding shift or tapping
// volume keys while using the touchpad shouldn't suppress it.
func isDWTIgnoredKey(code uint16) bool {
	switch code {
	case 29, 97, // ctrl
		42, 54, // shift
		56, 100, // alt
		125, 126, // meta
		58, 69, 70: // capslock, numlock, scrolllock
		return true
	}
	if (code >= 59 && code <= 88) || (code >= 183 && code <= 194) {
		return true // F1-F12 (the first span also covers the keypad block), F13-F24
	}
	if (code >= 71 && code <= 83) || code == 96 || code == 98 || code == 118 {
		return true // numpad
	}
	if code >= 113 && code <= 121 {
		return true // volume/mute/media transport
	}
	if code == 163 || code == 164 || code == 165 || code == 166 || code == 167 {
		return true // next/playpause/prev/stop/record
	}
	return false
}
