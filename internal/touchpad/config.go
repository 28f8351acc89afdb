package touchpad

// Options is the runtime-mutable per-device configuration surface of
// spec.md §4.7. Each field corresponds to one option group; Set/Get go
// through the methods below rather than direct field access so that
// validation and side effects (like retuning button geometry when
// click_method changes) always run.
type Options struct {
	TapEnabled     bool
	TapDragLock    bool
	ClickMethod    ClickMethod
	ScrollMethod   ScrollMethod
	NaturalScroll  bool
	LeftHanded     bool
	SendEvents     SendEventsMode
	DetectThumbs   bool // original_source thumb.detect_thumbs; see DESIGN.md
}

// DeviceTraits are the read-only device properties the default-selection
// rules in spec.md §4.7 key off. They come from the device source (evdev
// property bits and model quirks), never from the core itself.
type DeviceTraits struct {
	IsClickpad          bool
	HasTopButtons       bool
	TouchpadNoPhysButton bool // no separate physical buttons (evsource sets it from INPUT_PROP_BUTTONPAD); turns tap on by default
	IsApple              bool
	IsSemiMT             bool
	NumSlots             int
	WidthMM              float64
	// QuirkClickfinger marks Chromebook/System76/Clevo-style models that
	// default to clickfinger even though they are clickpads.
	QuirkClickfinger bool
}

// DefaultOptions computes the per-device defaults from spec.md §4.7's
// selection rules.
func DefaultOptions(t DeviceTraits) Options {
	o := Options{
		TapEnabled:    t.TouchpadNoPhysButton,
		TapDragLock:   false,
		NaturalScroll: false,
		LeftHanded:    false,
		SendEvents:    SendEventsEnabled,
	}

	switch {
	case !t.IsClickpad:
		o.ClickMethod = ClickMethodNone
	case t.IsApple || t.QuirkClickfinger:
		o.ClickMethod = ClickMethodClickfinger
	default:
		o.ClickMethod = ClickMethodButtonAreas
	}

	if t.NumSlots >= 2 {
		o.ScrollMethod = ScrollMethodTwoFinger
	} else {
		o.ScrollMethod = ScrollMethodEdge
	}

	return o
}

// SetTapEnabled implements the idempotent-set law of spec.md §8: calling it
// twice with the same value must be equivalent to calling it once, which
// holds trivially here since there is no hidden transition performed only
// on an actual flip other than suspending in-flight taps.
func (d *Device) SetTapEnabled(enabled bool) ConfigStatus {
	if d.opts.TapEnabled == enabled {
		return ConfigSuccess
	}
	d.opts.TapEnabled = enabled
	if !enabled {
		d.tapSuspend()
	}
	return ConfigSuccess
}

func (d *Device) SetTapDragLock(enabled bool) ConfigStatus {
	d.opts.TapDragLock = enabled
	return ConfigSuccess
}

// SetClickMethod changes the clickpad button-resolution strategy and
// retunes the bottom-button top edge: pushing it off-screen under
// clickfinger keeps the bottom area a plain motion zone, matching
// spec.md §4.7.
func (d *Device) SetClickMethod(m ClickMethod) ConfigStatus {
	if !d.traits.IsClickpad && m != ClickMethodNone {
		return ConfigUnsupported
	}
	d.opts.ClickMethod = m
	d.retuneButtonAreas()
	return ConfigSuccess
}

func (d *Device) SetScrollMethod(m ScrollMethod) ConfigStatus {
	if m == ScrollMethodTwoFinger && d.traits.NumSlots < 2 {
		return ConfigUnsupported
	}
	d.opts.ScrollMethod = m
	d.retuneEdgeGeometry()
	return ConfigSuccess
}

func (d *Device) SetNaturalScroll(enabled bool) ConfigStatus {
	d.opts.NaturalScroll = enabled
	return ConfigSuccess
}

// SetLeftHanded only takes effect when no physical button is currently
// held, per spec.md §4.7; otherwise it is deferred by returning Unsupported
// so the caller (the config API) knows to retry, matching the "returns
// UNSUPPORTED when valid but currently un-honourable" rule of spec.md §7.
func (d *Device) SetLeftHanded(enabled bool) ConfigStatus {
	if d.buttons.state != 0 {
		return ConfigUnsupported
	}
	d.opts.LeftHanded = enabled
	return ConfigSuccess
}

func (d *Device) SetSendEvents(mode SendEventsMode) ConfigStatus {
	if d.opts.SendEvents == mode {
		return ConfigSuccess
	}
	wasDisabled := d.opts.SendEvents != SendEventsEnabled
	d.opts.SendEvents = mode
	nowDisabled := mode != SendEventsEnabled
	if nowDisabled && !wasDisabled {
		d.suspend()
	} else if !nowDisabled && wasDisabled {
		d.resume()
	}
	return ConfigSuccess
}

// SetDetectThumbs is a stub: original_source's thumb-detection heuristic
// (pressure/size based) depends on hardware signals this core's §3 data
// model doesn't carry, so the option is accepted and stored but never
// changes t.IsThumb (see DESIGN.md).
func (d *Device) SetDetectThumbs(enabled bool) ConfigStatus {
	d.opts.DetectThumbs = enabled
	return ConfigSuccess
}

func (d *Device) Options() Options { return d.opts }
