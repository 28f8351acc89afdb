package touchpad

// Device owns one touchpad's worth of state: the fixed touch-slot array,
// the shared tap FSM, button/edge/palm geometry, the motion filter and the
// option surface. Its lifetime is the lifetime of the opened kernel device
// (spec.md §3).
type Device struct {
	touches []Touch
	curSlot int

	hasMT              bool
	semiMT             bool
	reportsDistance    bool
	fakeTouches        uint8
	lastFakeFingerCount int

	lastMillis uint64

	queued EventMask

	geometry    Geometry
	traits      DeviceTraits
	opts        Options
	buttonAreas ButtonAreaGeometry
	edgeGeom    EdgeScrollGeometry
	palmGeom    PalmGeometry

	buttons struct {
		state, oldState uint32
		clickPending    bool
		active          uint32
		activeIsTop     bool
	}

	tap tapDeviceState

	gesture gestureState

	dwt struct {
		keyboardActive       bool
		keyboardLastPress    uint64
	}

	trackpoint struct {
		active bool
	}

	accel *pointerAccelerator

	timers         *TimerService
	sink           Sink
	trackpointSink Sink
	seat           *seatButtonCounter
}

// SetTrackpointSink registers the external trackpoint collaborator that
// top-button presses are routed to on a topbuttonpad (spec.md §4.3/§6). A
// nil sink (the default) silently drops top-button emission, matching "no
// events on the touchpad device" from spec.md §8 scenario 3 when no
// trackpoint is paired.
func (d *Device) SetTrackpointSink(sink Sink) {
	d.trackpointSink = sink
}

// Timers exposes the device's timer service so the host event loop can
// select on its Fired channel alongside the raw event source, per
// spec.md §5's single-goroutine dispatch contract.
func (d *Device) Timers() *TimerService {
	return d.timers
}

// NewDevice constructs a Device sized to max(numSlots, maxFingerCountHint),
// matching spec.md §3's fixed touch-slot array rule for semi-MT hardware.
func NewDevice(numSlots, maxFingerCountHint int, x, y AbsAxisInfo, traits DeviceTraits, sink Sink) *Device {
	n := numSlots
	if maxFingerCountHint > n {
		n = maxFingerCountHint
	}
	if n < 1 {
		n = 1
	}

	d := &Device{
		touches:         make([]Touch, n),
		hasMT:           numSlots > 0,
		semiMT:          traits.IsSemiMT,
		traits:          traits,
		geometry:        NewGeometry(x, y),
		timers:          NewTimerService(),
		sink:            sink,
		seat:            newSeatButtonCounter(),
		accel:           newPointerAccelerator(pointerAccelProfileSmoothSimple),
	}
	for i := range d.touches {
		d.touches[i].slot = i
	}

	d.opts = DefaultOptions(traits)
	d.buttonAreas = computeButtonAreas(d.geometry, traits.HasTopButtons)
	d.edgeGeom = computeEdgeScrollGeometry(d.geometry, traits)
	d.palmGeom = computePalmGeometry(d.geometry, traits)
	d.tap.state = TapIdle
	return d
}

func (d *Device) retuneButtonAreas() {
	hasTop := d.traits.HasTopButtons
	d.buttonAreas = computeButtonAreas(d.geometry, hasTop)
	if d.opts.ClickMethod == ClickMethodClickfinger {
		// Push the bottom strip off-screen: the whole surface becomes a
		// plain motion zone once clickfinger decides buttons by finger
		// count instead of position (spec.md §4.7).
		d.buttonAreas.BottomTopEdge = d.geometry.Y.Max + 1
	}
}

func (d *Device) retuneEdgeGeometry() {
	d.edgeGeom = computeEdgeScrollGeometry(d.geometry, d.traits)
}

// Dispatch feeds one batch of raw evdev events (typically everything read
// in one non-blocking read from the kernel fd) through ingress, frame
// processing and emission. now is the monotonic millisecond timestamp to
// stamp events with when the caller doesn't have per-event kernel
// timestamps more precise than frame granularity.
func (d *Device) Dispatch(events []RawEvent, now uint64) {
	d.lastMillis = now
	for _, e := range events {
		if e.Type == EvSyn && e.Code == SynReport {
			d.processFrame(now)
			continue
		}
		d.ingressEvent(e)
	}
}

// processFrame runs the phase sequence of spec.md §2 for one SYN_REPORT
// boundary, then advances per-touch lifecycle state and clears per-frame
// bookkeeping.
func (d *Device) processFrame(now uint64) {
	d.reconcileHover()

	for i := range d.touches {
		t := &d.touches[i]
		if t.State == StateNone {
			continue
		}
		t.Millis = now
		d.classifyPalm(t, now)
		d.applyHysteresis(t)
		if t.Dirty {
			t.pushHistory(t.Point)
		}
		d.maybeUnpin(t)
	}

	d.buttonHandleState(now)
	d.edgeScrollHandleState(now)
	d.tapHandleState(now)
	d.gestureHandleState(now)

	// Emission, in the §2/§5 phase order.
	d.tapPostEvents(now)
	d.postButtonEvents(now)
	d.edgeScrollPostEvents(now)
	d.gesturePostEvents(now)
	d.postMotion(now)

	d.buttons.oldState = d.buttons.state
	d.queued = EventNone

	for i := range d.touches {
		t := &d.touches[i]
		switch t.State {
		case StateBegin:
			t.State = StateUpdate
		case StateEnd:
			if d.reportsDistance {
				t.State = StateHovering
			} else {
				t.State = StateNone
			}
			t.HasEnded = false
		}
		t.Dirty = false
	}
}

// HandleTimeout processes one expired (touch, subsystem) deadline. Callers
// should drain TimerService.Fired on the same goroutine that calls
// Dispatch, so timer delivery is serialized with input events as required
// by spec.md §5.
func (d *Device) HandleTimeout(dl Deadline, now uint64) {
	switch dl.Sub {
	case SubsystemButton:
		if dl.Slot >= 0 && dl.Slot < len(d.touches) {
			d.buttonHandleEvent(&d.touches[dl.Slot], ButtonEventTimeout, now)
			d.postButtonEvents(now)
		}
	case SubsystemEdgeScroll:
		if dl.Slot >= 0 && dl.Slot < len(d.touches) {
			d.edgeScrollHandleEvent(&d.touches[dl.Slot], scrollEventTimeout, now)
			d.edgeScrollPostEvents(now)
		}
	case SubsystemTap:
		d.tapHandleTimeout(now)
		d.tapPostEvents(now)
	case SubsystemDWT:
		d.dwtHandleTimeout(now)
	case SubsystemTrackpoint:
		d.trackpointHandleTimeout(now)
	case SubsystemGesture:
		d.gestureHandleTimeout(now)
	}
}

// tpTouchActive implements spec.md §3's "a touch classified palm ... is
// excluded from tp_touch_active": the shared notion of "this touch drives
// motion/scroll/tap" used across subsystems.
func (d *Device) tpTouchActive(t *Touch) bool {
	if t.State != StateBegin && t.State != StateUpdate {
		return false
	}
	if t.Palm.State != PalmNone {
		return false
	}
	if t.Pinned.IsPinned {
		return false
	}
	return true
}

// buttonTouchActive mirrors tp_button_touch_active: a touch is "active for
// button purposes" once classified into the plain motion AREA state,
// independent of palm/pin suppression (spec.md §4.3: "a pinned touch is
// active for button-area purposes").
func (d *Device) buttonTouchActive(t *Touch) bool {
	return t.Button.State == ButtonStateArea
}

// suspend implements spec.md §7's device-suspend contract: release every
// pressed button, release all taps cleanly, cancel every timer, then stop
// producing events until resume.
func (d *Device) suspend() {
	d.releaseAllButtons(d.lastMillis)
	d.tapReleaseAll(d.lastMillis)
	d.edgeScrollStopEvents(d.lastMillis)
	d.timers.CancelAll()
}

func (d *Device) resume() {
	// Nothing to re-arm: the next frame's geometry events will re-derive
	// all FSM state from scratch, same as after a fresh device open.
}
