package touchpad

import "math"

// scrollLockTimeoutMs is the per-touch lock-in delay: a touch sitting
// still inside an edge zone without crossing the motion threshold commits
// to edge-scroll mode once this elapses (spec.md §4.5).
const scrollLockTimeoutMs = 300

// defaultScrollThresholdMM is the distance from its landing point that a
// touch still in EDGE_NEW must cover before it emits any scroll, so that
// sweeping across an edge to move the pointer doesn't accidentally start
// scrolling.
const defaultScrollThresholdMM = 3.0

type scrollEvent int

const (
	scrollEventTouch scrollEvent = iota
	scrollEventMotion
	scrollEventRelease
	scrollEventTimeout
	scrollEventPosted
)

// touchEdge returns which scroll edge(s) a touch's current point falls
// into. Edge scrolling only applies when the device is configured for it.
func (d *Device) touchEdge(t *Touch) EdgeMask {
	if d.opts.ScrollMethod != ScrollMethodEdge {
		return EdgeNone
	}
	var edge EdgeMask
	if t.Point.X > d.edgeGeom.RightEdge {
		edge |= EdgeRight
	}
	if t.Point.Y > d.edgeGeom.BottomEdge {
		edge |= EdgeBottom
	}
	return edge
}

// edgeScrollSetTimer arms the lock-in timer, except when BUTTON_AREAS is
// the active click method: a finger resting in the button strip is most
// likely there to click, not scroll (spec.md §4.5).
func (d *Device) edgeScrollSetTimer(t *Touch) {
	if d.opts.ClickMethod == ClickMethodButtonAreas {
		return
	}
	d.timers.Set(t.slot, SubsystemEdgeScroll, msToDuration(scrollLockTimeoutMs))
}

func (d *Device) edgeScrollSetState(t *Touch, state EdgeTouchState) {
	d.timers.Cancel(t.slot, SubsystemEdgeScroll)
	t.Scroll.EdgeState = state

	switch state {
	case EdgeStateNone:
		t.Scroll.Edge = EdgeNone
	case EdgeStateNew:
		t.Scroll.Edge = d.touchEdge(t)
		t.Scroll.Initial = t.Point
		d.edgeScrollSetTimer(t)
	case EdgeStateLocked:
		// no-op on entry
	case EdgeStateArea:
		t.Scroll.Edge = EdgeNone
	}
}

// edgeScrollHandleEvent is the per-touch 4-state FSM: NONE -> EDGE_NEW (an
// edge zone touch-down) -> EDGE (locked into scrolling, direction pinned)
// or AREA (escaped the edge, plain motion touch) once the finger either
// leaves the zone or the lock-in timer fires.
func (d *Device) edgeScrollHandleEvent(t *Touch, event scrollEvent, now uint64) {
	prev := t.Scroll.EdgeState

	switch t.Scroll.EdgeState {
	case EdgeStateNone:
		switch event {
		case scrollEventTouch:
			if d.touchEdge(t) != EdgeNone {
				d.edgeScrollSetState(t, EdgeStateNew)
			} else {
				d.edgeScrollSetState(t, EdgeStateArea)
			}
		}
	case EdgeStateNew:
		switch event {
		case scrollEventMotion:
			t.Scroll.Edge &= d.touchEdge(t)
			if t.Scroll.Edge == EdgeNone {
				d.edgeScrollSetState(t, EdgeStateArea)
			}
		case scrollEventRelease:
			d.edgeScrollSetState(t, EdgeStateNone)
		case scrollEventTimeout, scrollEventPosted:
			d.edgeScrollSetState(t, EdgeStateLocked)
		}
	case EdgeStateLocked:
		switch event {
		case scrollEventMotion:
			// A touch that started in the corner resolves its axis the
			// first time it leaves one of the two candidate edges.
			if t.Scroll.Edge == (EdgeRight | EdgeBottom) {
				t.Scroll.Edge &= d.touchEdge(t)
				if t.Scroll.Edge == EdgeNone {
					d.edgeScrollSetState(t, EdgeStateArea)
				}
			}
		case scrollEventRelease:
			d.edgeScrollSetState(t, EdgeStateNone)
		}
	case EdgeStateArea:
		switch event {
		case scrollEventRelease:
			d.edgeScrollSetState(t, EdgeStateNone)
		}
	}

	if prev != t.Scroll.EdgeState {
		logDebug("edge-scroll state: from %s on slot %d to new state", prev, t.slot)
	}
}

// edgeScrollHandleState drives the FSM from touch lifecycle transitions,
// mirroring spec.md §2's "the state phase runs once per frame for every
// dirty touch" rule.
func (d *Device) edgeScrollHandleState(now uint64) {
	for i := range d.touches {
		t := &d.touches[i]
		if !t.Dirty {
			continue
		}
		switch t.State {
		case StateBegin:
			d.edgeScrollHandleEvent(t, scrollEventTouch, now)
		case StateUpdate:
			d.edgeScrollHandleEvent(t, scrollEventMotion, now)
		case StateEnd:
			d.edgeScrollHandleEvent(t, scrollEventRelease, now)
		}
	}
}

// edgeScrollPostEvents emits one scroll axis event per edge touch with a
// resolved axis that moved this frame. A corner touch emits nothing until
// its axis is resolved, and a touch still in EDGE_NEW emits nothing until
// it has moved defaultScrollThresholdMM from where it landed.
func (d *Device) edgeScrollPostEvents(now uint64) {
	if d.opts.ScrollMethod != ScrollMethodEdge {
		return
	}

	for i := range d.touches {
		t := &d.touches[i]
		if !t.Dirty || t.Palm.State != PalmNone {
			continue
		}

		var axis Axis
		switch t.Scroll.Edge {
		case EdgeNone:
			if t.Scroll.HasAxis {
				d.sink.PointerAxis(now, t.Scroll.Direction, 0, SourceFinger, 0)
				t.Scroll.HasAxis = false
			}
			continue
		case EdgeRight:
			axis = AxisVertical
		case EdgeBottom:
			axis = AxisHorizontal
		default:
			continue // both edges still live, direction not resolved yet
		}

		normalized, ok := d.delta(t)
		if !ok {
			continue
		}
		ax, ay := d.accel.filter(normalized.X, normalized.Y, now)
		value := ay
		if axis == AxisHorizontal {
			value = ax
		}

		if t.Scroll.EdgeState == EdgeStateNew {
			xCoeff, yCoeff := d.scaleCoeffs()
			dx := float64(t.Point.X-t.Scroll.Initial.X) * xCoeff
			dy := float64(t.Point.Y-t.Scroll.Initial.Y) * yCoeff
			dist := math.Hypot(dx, dy)
			if dist < mmToDPINormalized(defaultScrollThresholdMM) {
				value = 0
			}
		}

		if value == 0 {
			continue
		}
		if d.opts.NaturalScroll {
			value = -value
		}

		d.sink.PointerAxis(now, axis, value, SourceFinger, 0)
		t.Scroll.Direction = axis
		t.Scroll.HasAxis = true
		d.edgeScrollHandleEvent(t, scrollEventPosted, now)
	}
}

// edgeScrollStopEvents sends a terminal zero-value axis event for any
// touch still mid-scroll, then resets it to AREA so the rest of the
// pipeline doesn't need special-case handling for an interrupted scroll
// (spec.md §7's suspend contract).
func (d *Device) edgeScrollStopEvents(now uint64) {
	for i := range d.touches {
		t := &d.touches[i]
		if !t.Scroll.HasAxis {
			continue
		}
		d.sink.PointerAxis(now, t.Scroll.Direction, 0, SourceFinger, 0)
		t.Scroll.HasAxis = false
		t.Scroll.Edge = EdgeNone
		t.Scroll.EdgeState = EdgeStateArea
	}
}
