package touchpad

// Touch is one slot's worth of state (spec.md §3). Touches are never
// reallocated: Device.touches is a fixed-length slice sized at construction
// to max(num real slots, max finger-count hint), and a touch's slot index is
// its identity for the lifetime of the device.
type Touch struct {
	slot int

	State    TouchState
	HasEnded bool
	Dirty    bool
	IsThumb  bool

	Point       DeviceCoords
	Millis      uint64 // monotonic timestamp of the latest update (spec.md §3)
	BeginMillis uint64 // timestamp this tracking sequence started
	Distance    int    // 0 == touching; >0 == hovering, if the device reports it
	Pressure    int

	history      [TouchpadHistoryLength]DeviceCoords
	historyIndex int
	historyCount int

	HysteresisCenter FloatCoords

	Pinned struct {
		IsPinned bool
		Center   FloatCoords
	}

	Button struct {
		State ButtonAreaState
		Curr  ButtonAreaEvent
	}

	Tap struct {
		State   TapTouchState
		Initial DeviceCoords
		IsThumb bool
	}

	Scroll struct {
		EdgeState EdgeTouchState
		Edge      EdgeMask
		Direction Axis
		HasAxis   bool
		Initial   DeviceCoords
	}

	Palm struct {
		State PalmState
		First DeviceCoords
		Time  uint64
	}
}

// Slot returns the touch's fixed slot index.
func (t *Touch) Slot() int { return t.slot }

// resetHistory clears the delta-estimation ring, forcing at least
// TouchpadMinSamples dirty frames before a new delta is produced again.
func (t *Touch) resetHistory() {
	t.historyIndex = 0
	t.historyCount = 0
}

// pushHistory records a new sample into the ring buffer after hysteresis
// filtering has already updated t.Point.
func (t *Touch) pushHistory(p DeviceCoords) {
	t.history[t.historyIndex] = p
	t.historyIndex = (t.historyIndex + 1) % TouchpadHistoryLength
	if t.historyCount < TouchpadHistoryLength {
		t.historyCount++
	}
}

// historySample returns the sample `back` steps before the most recent one
// (0 == most recent).
func (t *Touch) historySample(back int) DeviceCoords {
	idx := (t.historyIndex - 1 - back + 2*TouchpadHistoryLength) % TouchpadHistoryLength
	return t.history[idx]
}

// newTouch resets a touch to the start of a new tracking sequence (spec.md
// §4.1's new_touch): HOVERING, cleared history, dirty.
func (t *Touch) newTouch(millis uint64) {
	t.State = StateHovering
	t.HasEnded = false
	t.Dirty = true
	t.Millis = millis
	t.BeginMillis = millis
	t.resetHistory()
	t.Pinned.IsPinned = false
	t.Palm.State = PalmNone
	t.Tap.State = TapTouchIdle
	t.Button.State = ButtonStateNone
	t.Scroll.EdgeState = EdgeStateNone
}

// endSequence marks the kernel tracking-id release (spec.md §4.1).
func (t *Touch) endSequence() {
	t.HasEnded = true
	t.Dirty = true
	if t.State == StateBegin || t.State == StateUpdate {
		t.State = StateEnd
	} else {
		t.State = StateNone
	}
}
