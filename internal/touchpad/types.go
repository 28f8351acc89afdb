// Package touchpad implements the core of a multi-touch touchpad input
// processor: it turns a stream of evdev slot/button/key events into pointer,
// scroll, gesture and button events suitable for a compositor.
//
// The package is single-threaded by contract: Device.Dispatch and
// Device.HandleTimeout must only ever be called from one goroutine, matching
// the libinput core this was distilled from, which runs every touchpad as
// one FSM set driven by one event loop.
package touchpad

import "fmt"

// DeviceCoords is a raw coordinate in device (kernel ABS_MT_*) units.
type DeviceCoords struct {
	X, Y int32
}

// FloatCoords is a device-unit coordinate or delta with sub-unit precision.
type FloatCoords struct {
	X, Y float64
}

// NormalizedCoords is a delta normalized to a device-independent
// 1000-dpi-equivalent unit.
type NormalizedCoords struct {
	X, Y float64
}

func (c FloatCoords) Sub(o FloatCoords) FloatCoords {
	return FloatCoords{c.X - o.X, c.Y - o.Y}
}

// TouchState is the 5-state per-touch lifecycle from spec.md §3.
type TouchState int

const (
	StateNone TouchState = iota
	StateHovering
	StateBegin
	StateUpdate
	StateEnd
)

func (s TouchState) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateHovering:
		return "HOVERING"
	case StateBegin:
		return "BEGIN"
	case StateUpdate:
		return "UPDATE"
	case StateEnd:
		return "END"
	default:
		return fmt.Sprintf("TouchState(%d)", int(s))
	}
}

// PalmState classifies why a touch is being suppressed from motion/tap/scroll.
type PalmState int

const (
	PalmNone PalmState = iota
	PalmEdge
	PalmTyping
	PalmTrackpoint
)

// EventMask accumulates what kind of device-wide events a frame produced.
type EventMask uint8

const (
	EventNone           EventMask = 0
	EventMotion         EventMask = 1 << 0
	EventButtonPress    EventMask = 1 << 1
	EventButtonRelease  EventMask = 1 << 2
)

// ButtonAreaState is the per-touch soft-button FSM state (spec.md §4.3).
type ButtonAreaState int

const (
	ButtonStateNone ButtonAreaState = iota
	ButtonStateArea
	ButtonStateBottom
	ButtonStateTop
	ButtonStateTopNew
	ButtonStateTopToIgnore
	ButtonStateIgnore
)

func (s ButtonAreaState) String() string {
	switch s {
	case ButtonStateNone:
		return "NONE"
	case ButtonStateArea:
		return "AREA"
	case ButtonStateBottom:
		return "BOTTOM"
	case ButtonStateTop:
		return "TOP"
	case ButtonStateTopNew:
		return "TOP_NEW"
	case ButtonStateTopToIgnore:
		return "TOP_TO_IGNORE"
	case ButtonStateIgnore:
		return "IGNORE"
	default:
		return fmt.Sprintf("ButtonAreaState(%d)", int(s))
	}
}

// ButtonAreaEvent is the set of geometric, lifecycle and timeout events fed
// into the soft-button FSM.
type ButtonAreaEvent int

const (
	// buttonEventNone is the zero-value "no pending area" sentinel stored in
	// touch.Button.Curr outside BOTTOM/TOP/TOP_NEW.
	buttonEventNone ButtonAreaEvent = iota
	ButtonEventInBottomR
	ButtonEventInBottomL
	ButtonEventInTopR
	ButtonEventInTopM
	ButtonEventInTopL
	ButtonEventInArea
	ButtonEventUp
	ButtonEventPress
	ButtonEventRelease
	ButtonEventTimeout
)

// EdgeMask marks which scroll edges a touch's starting point fell into.
type EdgeMask uint8

const (
	EdgeNone   EdgeMask = 0
	EdgeRight  EdgeMask = 1 << 0
	EdgeBottom EdgeMask = 1 << 1
)

// EdgeTouchState is the per-touch edge-scroll FSM state (spec.md §4.5).
type EdgeTouchState int

const (
	EdgeStateNone EdgeTouchState = iota
	EdgeStateNew
	EdgeStateLocked
	EdgeStateArea
)

func (s EdgeTouchState) String() string {
	switch s {
	case EdgeStateNone:
		return "NONE"
	case EdgeStateNew:
		return "EDGE_NEW"
	case EdgeStateLocked:
		return "EDGE"
	case EdgeStateArea:
		return "AREA"
	default:
		return fmt.Sprintf("EdgeTouchState(%d)", int(s))
	}
}

// Axis identifies a scroll axis.
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// AxisSource identifies what produced a scroll axis event.
type AxisSource int

const (
	SourceWheel AxisSource = iota
	SourceFinger
	SourceContinuous
)

// TapTouchState gates whether a touch participates in the shared tap FSM.
type TapTouchState int

const (
	TapTouchIdle TapTouchState = iota
	TapTouchTouch
	TapTouchDead
)

// TapState is the shared, single-instance-per-device tap/drag FSM
// (spec.md §4.4).
type TapState int

const (
	TapIdle TapState = iota
	TapTouch
	TapTapped
	TapTouch2
	TapTouch2Hold
	TapTouch3
	TapTouch3Hold
	TapDraggingOrTap
	TapDragging
	TapDraggingWait
	TapDragging2
	TapDead
)

func (s TapState) String() string {
	names := [...]string{
		"IDLE", "TOUCH", "TAPPED", "TOUCH_2", "TOUCH_2_HOLD", "TOUCH_3",
		"TOUCH_3_HOLD", "DRAGGING_OR_TAP", "DRAGGING", "DRAGGING_WAIT",
		"DRAGGING_2", "DEAD",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return fmt.Sprintf("TapState(%d)", int(s))
	}
	return names[s]
}

// ClickMethod selects how a clickpad press is turned into a button.
type ClickMethod int

const (
	ClickMethodNone ClickMethod = iota
	ClickMethodButtonAreas
	ClickMethodClickfinger
)

// ScrollMethod selects the scrolling mode.
type ScrollMethod int

const (
	ScrollMethodNone ScrollMethod = iota
	ScrollMethodTwoFinger
	ScrollMethodEdge
	ScrollMethodButtonDown
)

// SendEventsMode is the device-wide suspend mode.
type SendEventsMode int

const (
	SendEventsEnabled SendEventsMode = iota
	SendEventsDisabled
	SendEventsDisabledOnExternalMouse
)

// ConfigStatus is the result of a configuration Set call (spec.md §6/§7).
type ConfigStatus int

const (
	ConfigSuccess ConfigStatus = iota
	ConfigUnsupported
	ConfigInvalid
)

// Physical button codes, mirrored from evdev so the core never depends on
// the ingress package.
const (
	BtnLeft   = 0x110
	BtnRight  = 0x111
	BtnMiddle = 0x112
)

const (
	// TouchpadHistoryLength is the ring-buffer depth used for delta
	// estimation (spec.md §4.2).
	TouchpadHistoryLength = 4
	// TouchpadMinSamples is the minimum history depth before a delta may be
	// produced.
	TouchpadMinSamples = 4
	// DefaultMouseDPI is the normalization target for device-independent
	// deltas and mm-based thresholds.
	DefaultMouseDPI = 1000.0
)

// mmToDPINormalized converts a millimeter distance to the normalized unit
// space deltas are expressed in, using DefaultMouseDPI/25.4 units per mm.
func mmToDPINormalized(mm float64) float64 {
	return DefaultMouseDPI / 25.4 * mm
}
