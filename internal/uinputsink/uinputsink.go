// Package uinputsink is the event-sink collaborator named in spec.md §1's
// scope exclusion: it implements touchpad.Sink over bendahl/uinput virtual
// devices. A touchpad normally wires two independent Sinks: one as the
// main pointer (touchpad.Device.sink) and, on machines with a paired
// trackpoint, a second as touchpad.Device.trackpointSink that top-button
// events route to instead (spec.md §6).
package uinputsink

import (
	"fmt"
	"math"

	"github.com/bendahl/uinput"

	"touchpadd/internal/touchpad"
)

// Sink owns one uinput relative-mouse device. Motion accumulates
// fractional pixels across frames so repeated sub-pixel deltas (common at
// low acceleration) aren't truncated to zero forever.
type Sink struct {
	mouse uinput.Mouse

	residualX, residualY float64
}

// New creates a virtual relative-pointer device under the given name.
func New(name string) (*Sink, error) {
	mouse, err := uinput.CreateMouse("/dev/uinput", []byte(name))
	if err != nil {
		return nil, fmt.Errorf("create virtual pointer %q: %w", name, err)
	}
	return &Sink{mouse: mouse}, nil
}

func (s *Sink) Close() error {
	return s.mouse.Close()
}

func (s *Sink) move(dx, dy float64) {
	s.residualX += dx
	s.residualY += dy
	ix := int32(math.Trunc(s.residualX))
	iy := int32(math.Trunc(s.residualY))
	if ix == 0 && iy == 0 {
		return
	}
	s.residualX -= float64(ix)
	s.residualY -= float64(iy)
	if ix != 0 {
		s.mouse.MoveRight(ix)
	}
	if iy != 0 {
		s.mouse.MoveDown(iy)
	}
}

func (s *Sink) PointerMotion(time uint64, dx, dy float64) {
	s.move(dx, dy)
}

// PointerMotionUnaccelerated is a no-op: a uinput relative-mouse node has
// no way to carry both an accelerated and unaccelerated value for the same
// motion, so only PointerMotion's value reaches the kernel (see DESIGN.md).
func (s *Sink) PointerMotionUnaccelerated(time uint64, dx, dy float64) {}

func (s *Sink) PointerButton(time uint64, code uint16, pressed bool, seatCount uint32) {
	press, release := s.mouse.LeftPress, s.mouse.LeftRelease
	switch code {
	case touchpad.BtnRight:
		press, release = s.mouse.RightPress, s.mouse.RightRelease
	case touchpad.BtnMiddle:
		press, release = s.mouse.MiddlePress, s.mouse.MiddleRelease
	}
	if pressed {
		press()
	} else {
		release()
	}
}

func (s *Sink) PointerAxis(time uint64, axis touchpad.Axis, value float64, source touchpad.AxisSource, discrete int) {
	if value == 0 {
		return
	}
	horizontal := axis == touchpad.AxisHorizontal
	s.mouse.Wheel(horizontal, int32(math.Round(value)))
}

// Raw multitouch passthrough is out of scope for this sink:
// bendahl/uinput has no per-slot tracking-id touchpad helper, and spec.md
// §6's compositor-facing contract only requires the synthesized
// pointer/scroll/button stream, so Touch* are no-ops (see DESIGN.md).
func (s *Sink) TouchDown(time uint64, slot int, x, y int32)   {}
func (s *Sink) TouchMotion(time uint64, slot int, x, y int32) {}
func (s *Sink) TouchUp(time uint64, slot int)                 {}
func (s *Sink) TouchFrame(time uint64)                        {}
func (s *Sink) TouchCancel(time uint64, slot int)             {}

var _ touchpad.Sink = (*Sink)(nil)
