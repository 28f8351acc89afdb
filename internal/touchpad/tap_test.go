package touchpad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tapTestTraits() DeviceTraits {
	return DeviceTraits{
		IsClickpad:           true,
		TouchpadNoPhysButton: true,
		NumSlots:             3,
		WidthMM:              120,
	}
}

func TestTapSingleFingerTapEmitsLeftClick(t *testing.T) {
	d, sink := newTestDevice(tapTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 600, 350)...), 1000)
	d.Dispatch(frame(touchUp(0)...), 1050)
	require.Empty(t, sink.buttons, "click is deferred until the tap window closes")

	d.HandleTimeout(Deadline{Slot: deviceSlot, Sub: SubsystemTap}, 1050+tapTimeoutSingleMs)

	require.Len(t, sink.buttons, 2)
	require.Equal(t, buttonCall{Time: 1050 + tapTimeoutSingleMs, Code: BtnLeft, Pressed: true, Seat: 1}, sink.buttons[0])
	require.Equal(t, buttonCall{Time: 1050 + tapTimeoutSingleMs, Code: BtnLeft, Pressed: false, Seat: 0}, sink.buttons[1])
}

func TestTapTwoFingerTapEmitsRightClick(t *testing.T) {
	d, sink := newTestDevice(tapTestTraits())

	// Finger 1 down: BTN_TOUCH + BTN_TOOL_FINGER.
	d.Dispatch(frame(touchDown(0, 1, 300, 350)...), 1000)
	// Finger 2 lands: the tool hint transitions FINGER -> DOUBLETAP.
	d.Dispatch(frame(
		RawEvent{Type: EvKey, Code: BtnToolFinger, Value: 0},
		RawEvent{Type: EvKey, Code: BtnToolDoubletap, Value: 1},
		RawEvent{Type: EvAbs, Code: AbsMTSlot, Value: 1},
		RawEvent{Type: EvAbs, Code: AbsMTTrackingID, Value: 2},
		RawEvent{Type: EvAbs, Code: AbsMTPositionX, Value: 900},
		RawEvent{Type: EvAbs, Code: AbsMTPositionY, Value: 350},
	), 1010)
	// Finger 1 lifts first: tool hint transitions back DOUBLETAP -> FINGER;
	// BTN_TOUCH stays asserted since finger 2 is still down.
	d.Dispatch(frame(
		RawEvent{Type: EvAbs, Code: AbsMTSlot, Value: 0},
		RawEvent{Type: EvAbs, Code: AbsMTTrackingID, Value: -1},
		RawEvent{Type: EvKey, Code: BtnToolDoubletap, Value: 0},
		RawEvent{Type: EvKey, Code: BtnToolFinger, Value: 1},
	), 1050)
	// Finger 2 lifts last.
	d.Dispatch(frame(
		RawEvent{Type: EvAbs, Code: AbsMTSlot, Value: 1},
		RawEvent{Type: EvAbs, Code: AbsMTTrackingID, Value: -1},
		RawEvent{Type: EvKey, Code: BtnToolFinger, Value: 0},
		RawEvent{Type: EvKey, Code: BtnTouch, Value: 0},
	), 1060)

	require.Empty(t, sink.buttons)
	d.HandleTimeout(Deadline{Slot: deviceSlot, Sub: SubsystemTap}, 1060+tapTimeoutMultiMs)

	require.Len(t, sink.buttons, 2)
	require.Equal(t, BtnRight, sink.buttons[0].Code)
	require.True(t, sink.buttons[0].Pressed)
	require.False(t, sink.buttons[1].Pressed)
}

func TestTapDoubleTapEmitsTwoClickPairsWithMonotoneTimestamps(t *testing.T) {
	d, sink := newTestDevice(tapTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 600, 350)...), 1000)
	d.Dispatch(frame(touchUp(0)...), 1050)
	require.Empty(t, sink.buttons, "first tap's click is held pending a possible chained tap")

	// A second tap lands and lifts again inside the TAPPED settle window,
	// without moving enough to become a drag: it chains into the same run.
	d.Dispatch(frame(touchDown(0, 2, 600, 350)...), 1100)
	require.Equal(t, TapDraggingOrTap, d.tap.state)
	d.Dispatch(frame(touchUp(0)...), 1130)
	require.Equal(t, TapTapped, d.tap.state)
	require.Empty(t, sink.buttons, "still nothing emitted until the run's window closes")

	d.HandleTimeout(Deadline{Slot: deviceSlot, Sub: SubsystemTap}, 1130+tapTimeoutSingleMs)

	require.Len(t, sink.buttons, 4)
	for _, c := range sink.buttons {
		require.Equal(t, BtnLeft, c.Code)
	}
	require.True(t, sink.buttons[0].Pressed)
	require.False(t, sink.buttons[1].Pressed)
	require.True(t, sink.buttons[2].Pressed)
	require.False(t, sink.buttons[3].Pressed)
	require.Equal(t, sink.buttons[0].Time, sink.buttons[1].Time, "each pair shares a timestamp")
	require.Equal(t, sink.buttons[2].Time, sink.buttons[3].Time, "each pair shares a timestamp")
	require.Less(t, sink.buttons[0].Time, sink.buttons[2].Time, "successive pairs get monotone timestamps")
}

func TestTapMotionCancelsTap(t *testing.T) {
	d, sink := newTestDevice(tapTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 600, 350)...), 1000)
	// Motion well past the ~2mm tap threshold before lifting.
	d.Dispatch(frame(touchMove(0, 750, 350)...), 1010)
	d.Dispatch(frame(touchUp(0)...), 1020)

	require.Empty(t, sink.buttons)
	require.Equal(t, TapIdle, d.tap.state)
}

func TestTapDragHoldsButtonAndForwardsMotion(t *testing.T) {
	d, sink := newTestDevice(tapTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 600, 350)...), 1000)
	d.Dispatch(frame(touchUp(0)...), 1050)
	d.Dispatch(frame(touchDown(0, 2, 600, 350)...), 1100)
	require.Equal(t, TapDraggingOrTap, d.tap.state)

	// Follower moves enough to commit to a drag: button goes down immediately.
	d.Dispatch(frame(touchMove(0, 750, 350)...), 1110)
	require.Equal(t, TapDragging, d.tap.state)
	require.Len(t, sink.buttons, 1)
	require.True(t, sink.buttons[0].Pressed)
	require.Equal(t, BtnLeft, sink.buttons[0].Code)

	// A few more dirty frames accumulate enough history for delta() to fire
	// and forward the drag touch's motion as pointer motion.
	x := int32(750)
	for i := 0; i < 4; i++ {
		x += 20
		d.Dispatch(frame(touchMove(0, x, 350)...), uint64(1110+10*(i+1)))
	}
	require.NotEmpty(t, sink.motion, "drag motion should be forwarded once enough history accumulates")

	d.Dispatch(frame(touchUp(0)...), 1200)
	require.Len(t, sink.buttons, 2)
	require.False(t, sink.buttons[1].Pressed)
}
