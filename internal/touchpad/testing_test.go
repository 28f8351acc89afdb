package touchpad

// fakeSink is the test double for Sink: it just records every call so
// assertions can check the exact event sequence the core produced.
type fakeSink struct {
	buttons  []buttonCall
	axes     []axisCall
	motion   []motionCall
	unaccel  []motionCall
}

type buttonCall struct {
	Time    uint64
	Code    uint16
	Pressed bool
	Seat    uint32
}

type axisCall struct {
	Time   uint64
	Axis   Axis
	Value  float64
	Source AxisSource
}

type motionCall struct {
	Time   uint64
	DX, DY float64
}

func (s *fakeSink) PointerMotion(time uint64, dx, dy float64) {
	s.motion = append(s.motion, motionCall{time, dx, dy})
}

func (s *fakeSink) PointerMotionUnaccelerated(time uint64, dx, dy float64) {
	s.unaccel = append(s.unaccel, motionCall{time, dx, dy})
}

func (s *fakeSink) PointerButton(time uint64, code uint16, pressed bool, seatCount uint32) {
	s.buttons = append(s.buttons, buttonCall{time, code, pressed, seatCount})
}

func (s *fakeSink) PointerAxis(time uint64, axis Axis, value float64, source AxisSource, discrete int) {
	s.axes = append(s.axes, axisCall{time, axis, value, source})
}

func (s *fakeSink) TouchDown(time uint64, slot int, x, y int32)   {}
func (s *fakeSink) TouchMotion(time uint64, slot int, x, y int32) {}
func (s *fakeSink) TouchUp(time uint64, slot int)                 {}
func (s *fakeSink) TouchFrame(time uint64)                        {}
func (s *fakeSink) TouchCancel(time uint64, slot int)             {}

var _ Sink = (*fakeSink)(nil)

// testAbsX/testAbsY describe a generic 120mm x 70mm clickpad at 10
// units/mm, used by every test in this package unless noted otherwise.
var (
	testAbsX = AbsAxisInfo{Min: 0, Max: 1200, Resolution: 10}
	testAbsY = AbsAxisInfo{Min: 0, Max: 700, Resolution: 10}
)

func newTestDevice(traits DeviceTraits) (*Device, *fakeSink) {
	sink := &fakeSink{}
	d := NewDevice(traits.NumSlots, traits.NumSlots, testAbsX, testAbsY, traits, sink)
	return d, sink
}

func frame(events ...RawEvent) []RawEvent {
	return append(events, RawEvent{Type: EvSyn, Code: SynReport})
}

// touchDown synthesizes the kernel event sequence for a brand-new touch
// landing at (x, y) in the given slot: BTN_TOUCH plus the MT tracking-id and
// position, and BTN_TOOL_FINGER only when slot is 0. A test landing a
// further finger sends the BTN_TOOL_* finger-count transition itself,
// mirroring what the teacher's main.go read loop decodes from a real device.
func touchDown(slot, trackingID int, x, y int32) []RawEvent {
	events := []RawEvent{
		{Type: EvKey, Code: BtnTouch, Value: 1},
		{Type: EvAbs, Code: AbsMTSlot, Value: int32(slot)},
		{Type: EvAbs, Code: AbsMTTrackingID, Value: int32(trackingID)},
		{Type: EvAbs, Code: AbsMTPositionX, Value: x},
		{Type: EvAbs, Code: AbsMTPositionY, Value: y},
	}
	if slot == 0 {
		events = append(events, RawEvent{Type: EvKey, Code: BtnToolFinger, Value: 1})
	}
	return events
}

func touchMove(slot int, x, y int32) []RawEvent {
	return []RawEvent{
		{Type: EvAbs, Code: AbsMTSlot, Value: int32(slot)},
		{Type: EvAbs, Code: AbsMTPositionX, Value: x},
		{Type: EvAbs, Code: AbsMTPositionY, Value: y},
	}
}

func touchUp(slot int) []RawEvent {
	events := []RawEvent{
		{Type: EvAbs, Code: AbsMTSlot, Value: int32(slot)},
		{Type: EvAbs, Code: AbsMTTrackingID, Value: -1},
	}
	if slot == 0 {
		events = append(events, RawEvent{Type: EvKey, Code: BtnToolFinger, Value: 0})
	}
	events = append(events, RawEvent{Type: EvKey, Code: BtnTouch, Value: 0})
	return events
}
