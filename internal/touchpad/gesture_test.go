package touchpad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func gestureTestTraits() DeviceTraits {
	return DeviceTraits{
		IsClickpad: true,
		NumSlots:   2,
		WidthMM:    120,
	}
}

// Two touches moving together vertically produce one averaged 2-finger
// scroll axis event rather than two independent pointer-motion events.
func TestTwoFingerScrollEmitsVerticalAxis(t *testing.T) {
	d, sink := newTestDevice(gestureTestTraits())
	require.Equal(t, ScrollMethodTwoFinger, d.Options().ScrollMethod)

	down := append(touchDown(0, 1, 500, 300), touchDown(1, 2, 700, 300)...)
	down = append(down,
		RawEvent{Type: EvKey, Code: BtnToolFinger, Value: 0},
		RawEvent{Type: EvKey, Code: BtnToolDoubletap, Value: 1},
	)
	d.Dispatch(frame(down...), 1000)
	require.True(t, d.gesture.started || d.gesture.fingerCount == 2)

	y := int32(300)
	for i := 0; i < 5; i++ {
		y -= 20
		events := append(touchMove(0, 500, y), touchMove(1, 700, y)...)
		d.Dispatch(frame(events...), uint64(1010+10*(i+1)))
	}

	require.NotEmpty(t, sink.axes)
	require.Equal(t, AxisVertical, sink.axes[len(sink.axes)-1].Axis)
	require.True(t, d.gesture.twofingerActive)
	require.Empty(t, sink.motion, "two-finger motion must not also surface as plain pointer motion")

	up := append(touchUp(0), touchUp(1)...)
	up = append(up, RawEvent{Type: EvKey, Code: BtnToolDoubletap, Value: 0})
	d.Dispatch(frame(up...), 1200)
	require.Equal(t, 0.0, sink.axes[len(sink.axes)-1].Value, "lifting both touches posts a terminal zero-value axis event")
}

// While a clickpad button is held during a one-finger drag, a second
// finger's motion is combined into the same pointer-motion stream instead
// of starting a 2-finger scroll.
func TestClickDragCombinesMultiTouchMotion(t *testing.T) {
	d, sink := newTestDevice(gestureTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 500, 300)...), 1000)
	d.Dispatch(frame(RawEvent{Type: EvKey, Code: BtnLeft, Value: 1}), 1010)
	// The second finger lands: the tool hint transitions FINGER -> DOUBLETAP.
	second := append(touchDown(1, 2, 700, 300),
		RawEvent{Type: EvKey, Code: BtnToolFinger, Value: 0},
		RawEvent{Type: EvKey, Code: BtnToolDoubletap, Value: 1},
	)
	d.Dispatch(frame(second...), 1020)

	x := int32(500)
	for i := 0; i < 5; i++ {
		x += 20
		events := append(touchMove(0, x, 300), touchMove(1, 700+int32(20*(i+1)), 300)...)
		d.Dispatch(frame(events...), uint64(1030+10*(i+1)))
	}

	require.True(t, d.gesture.clickCombineActive)
	require.False(t, d.gesture.twofingerActive)
	require.NotEmpty(t, sink.motion)

	d.Dispatch(frame(RawEvent{Type: EvKey, Code: BtnLeft, Value: 0}), 1200)
}
