package touchpad

import "math"

// hysteresisMargin is 0.15mm on each axis, derived from that axis's
// resolution (1 unit per mm when the kernel reports none), to suppress
// sensor micro-jitter without eating real small motion. It does not scale
// with the device diagonal.
func (d *Device) hysteresisMargin() FloatCoords {
	const marginMM = 0.15
	xRes := d.geometry.X.Resolution
	yRes := d.geometry.Y.Resolution
	if xRes <= 0 {
		xRes = 1
	}
	if yRes <= 0 {
		yRes = 1
	}
	return FloatCoords{
		X: marginMM * float64(xRes),
		Y: marginMM * float64(yRes),
	}
}

// applyHysteresis filters the incoming point into t.HysteresisCenter and
// writes the filtered value back to t.Point, per spec.md §4.2: for each
// axis independently, keep the center unless the new point strays further
// than margin, in which case slide the center toward it by the excess.
func (d *Device) applyHysteresis(t *Touch) {
	if !t.Dirty {
		return
	}
	if t.historyCount == 0 {
		t.HysteresisCenter = FloatCoords{X: float64(t.Point.X), Y: float64(t.Point.Y)}
		return
	}

	margin := d.hysteresisMargin()
	t.HysteresisCenter.X = hysteresisAxis(t.HysteresisCenter.X, float64(t.Point.X), margin.X)
	t.HysteresisCenter.Y = hysteresisAxis(t.HysteresisCenter.Y, float64(t.Point.Y), margin.Y)

	t.Point.X = int32(t.HysteresisCenter.X)
	t.Point.Y = int32(t.HysteresisCenter.Y)
}

func hysteresisAxis(center, p, margin float64) float64 {
	delta := p - center
	if math.Abs(delta) <= margin {
		return center
	}
	if delta > 0 {
		return center + (delta - margin)
	}
	return center + (delta + margin)
}

// maybeUnpin releases a pinned touch once its displacement from the pin
// center exceeds the device's motion threshold (spec.md §4.6).
func (d *Device) maybeUnpin(t *Touch) {
	if !t.Pinned.IsPinned {
		return
	}
	dx := float64(t.Point.X) - t.Pinned.Center.X
	dy := float64(t.Point.Y) - t.Pinned.Center.Y
	if dx*dx+dy*dy > d.pinMotionThresholdSquared() {
		t.Pinned.IsPinned = false
	}
}

func (d *Device) pinMotionThresholdSquared() float64 {
	res := d.geometry.X.Resolution
	if res <= 0 {
		res = 1
	}
	// mm-scaled threshold: ~1.5mm of travel before a pinned touch unpins.
	threshold := 1.5 * float64(res)
	return threshold * threshold
}

// pinTouches pins every currently active touch on a clickpad physical
// press, per spec.md §4.6.
func (d *Device) pinTouches() {
	for i := range d.touches {
		t := &d.touches[i]
		if t.State != StateBegin && t.State != StateUpdate {
			continue
		}
		t.Pinned.IsPinned = true
		t.Pinned.Center = FloatCoords{X: float64(t.Point.X), Y: float64(t.Point.Y)}
	}
}

// scaleCoeffs converts device units to the normalized 1000-dpi-equivalent
// unit space, using kernel-reported resolution when available and falling
// back to the device diagonal otherwise (spec.md §4.2).
func (d *Device) scaleCoeffs() (xCoeff, yCoeff float64) {
	if d.geometry.X.Resolution > 0 && d.geometry.Y.Resolution > 0 {
		return DefaultMouseDPI / 25.4 / float64(d.geometry.X.Resolution),
			DefaultMouseDPI / 25.4 / float64(d.geometry.Y.Resolution)
	}
	diag := d.geometry.DiagonalMM
	if diag <= 0 {
		diag = 100
	}
	// Without resolution, approximate both axes uniformly from the
	// diagonal so aspect ratio at least stays proportionate.
	coeff := DefaultMouseDPI / 25.4 / (diag / 10.0)
	return coeff, coeff
}

// delta estimates a touch's per-frame motion from the 4 most recent history
// samples as (h0 + h1 - h2 - h3) / 4, a smoothing finite difference, then
// normalizes it. No delta is produced until TouchpadMinSamples have
// accumulated since the last history reset.
func (d *Device) delta(t *Touch) (NormalizedCoords, bool) {
	if t.historyCount < TouchpadMinSamples {
		return NormalizedCoords{}, false
	}
	h0 := t.historySample(0)
	h1 := t.historySample(1)
	h2 := t.historySample(2)
	h3 := t.historySample(3)

	dx := float64(h0.X+h1.X-h2.X-h3.X) / 4.0
	dy := float64(h0.Y+h1.Y-h2.Y-h3.Y) / 4.0

	xCoeff, yCoeff := d.scaleCoeffs()
	return NormalizedCoords{X: dx * xCoeff, Y: dy * yCoeff}, true
}

// resetAllHistories implements the open question of spec.md §9(b): semi-MT
// devices synthesize position jumps when the finger-count hint changes, so
// every touch's motion history is reset on that frame.
func (d *Device) resetAllHistories() {
	for i := range d.touches {
		d.touches[i].resetHistory()
	}
}

// postMotion is the final emission phase: 2-finger scroll has already
// claimed the two-touch case in gesturePostEvents, so this only drives
// single-touch pointer motion for touches that are tp_touch_active and not
// otherwise claimed by edge-scroll.
func (d *Device) postMotion(now uint64) {
	if d.gesture.twofingerActive || d.gesture.clickCombineActive {
		return
	}
	for i := range d.touches {
		t := &d.touches[i]
		if !d.tpTouchActive(t) {
			continue
		}
		if d.opts.ScrollMethod == ScrollMethodEdge &&
			t.Scroll.EdgeState != EdgeStateArea && t.Scroll.EdgeState != EdgeStateNone {
			continue
		}
		// While DRAGGING, tapPostEvents forwards the drag touch's motion.
		if d.tapDragging() && (!d.tapIsDragTouch(t) || d.tap.state == TapDragging) {
			continue
		}
		delta, ok := d.delta(t)
		if !ok || !t.Dirty {
			continue
		}
		ax, ay := d.accel.filter(delta.X, delta.Y, now)
		if ax == 0 && ay == 0 {
			continue
		}
		d.sink.PointerMotionUnaccelerated(now, delta.X, delta.Y)
		d.sink.PointerMotion(now, ax, ay)
	}
}
