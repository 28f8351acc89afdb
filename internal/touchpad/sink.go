package touchpad

// Sink is the compositor-facing event sink collaborator (spec.md §1/§6).
// The core never touches a display server or input backend directly; it
// only calls these methods, in the phase order mandated by spec.md §2/§5:
// tap-derived buttons, then physical/soft buttons, then edge-scroll axes,
// then 2-finger-scroll/motion.
type Sink interface {
	// PointerMotion emits accelerated device-independent motion.
	PointerMotion(time uint64, dx, dy float64)
	// PointerMotionUnaccelerated emits raw-normalised motion alongside the
	// accelerated event, per spec.md §6.
	PointerMotionUnaccelerated(time uint64, dx, dy float64)
	// PointerButton emits a physical or soft button transition. seatCount is
	// the number of pointer devices in the seat with this button logically
	// down, a libinput-original detail (see SPEC_FULL.md §3) carried as
	// metadata only.
	PointerButton(time uint64, code uint16, pressed bool, seatCount uint32)
	// PointerAxis emits one scroll tick. discrete is only meaningful for
	// SourceWheel.
	PointerAxis(time uint64, axis Axis, value float64, source AxisSource, discrete int)
	// Touch* mirror the raw touch lifecycle through to the sink, for
	// clients that want raw multitouch alongside the synthesized pointer
	// stream.
	TouchDown(time uint64, slot int, x, y int32)
	TouchMotion(time uint64, slot int, x, y int32)
	TouchUp(time uint64, slot int)
	TouchFrame(time uint64)
	TouchCancel(time uint64, slot int)
}

// seatButtonCounter is a minimal seat-wide press counter: in the real
// compositor this would track every pointer-capable device in the seat, but
// the core only opens one touchpad, so "seat-wide" degenerates to this
// device's own press count. It is kept as a separate type so a host that
// plugs in true seat tracking only needs to replace this one component.
type seatButtonCounter struct {
	counts map[uint16]uint32
}

func newSeatButtonCounter() *seatButtonCounter {
	return &seatButtonCounter{counts: make(map[uint16]uint32)}
}

func (s *seatButtonCounter) press(code uint16) uint32 {
	s.counts[code]++
	return s.counts[code]
}

func (s *seatButtonCounter) release(code uint16) uint32 {
	if s.counts[code] > 0 {
		s.counts[code]--
	}
	return s.counts[code]
}
