package touchpad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buttonTestTraits() DeviceTraits {
	return DeviceTraits{
		IsClickpad: true,
		NumSlots:   2,
		WidthMM:    120,
	}
}

// A stationary touch in the bottom-right soft-button area, with a physical
// BTN_LEFT press/release (the only code a clickpad legitimately reports),
// should resolve to a right click: testAbsY's BottomTopEdge is
// min(85%*700, 700-10mm) = min(595, 600) = 595, and BottomRightLeftEdge is
// width/2 = 600, so (900, 650) lands in the bottom-right quadrant.
func TestBottomRightAreaClickEmitsRightClick(t *testing.T) {
	d, sink := newTestDevice(buttonTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 900, 650)...), 1000)
	require.Empty(t, sink.buttons)

	d.Dispatch(frame(RawEvent{Type: EvKey, Code: BtnLeft, Value: 1}), 1010)
	require.Len(t, sink.buttons, 1)
	require.Equal(t, BtnRight, sink.buttons[0].Code)
	require.True(t, sink.buttons[0].Pressed)
	require.EqualValues(t, 1, sink.buttons[0].Seat)

	d.Dispatch(frame(RawEvent{Type: EvKey, Code: BtnLeft, Value: 0}), 1020)
	require.Len(t, sink.buttons, 2)
	require.Equal(t, BtnRight, sink.buttons[1].Code)
	require.False(t, sink.buttons[1].Pressed)
	require.EqualValues(t, 0, sink.buttons[1].Seat)

	d.Dispatch(frame(touchUp(0)...), 1030)
}

// A touch in the plain motion area (not over either bottom quadrant) always
// resolves to a left click regardless of click method.
func TestPlainAreaClickEmitsLeftClick(t *testing.T) {
	d, sink := newTestDevice(buttonTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 600, 350)...), 1000)
	d.Dispatch(frame(RawEvent{Type: EvKey, Code: BtnLeft, Value: 1}), 1010)

	require.Len(t, sink.buttons, 1)
	require.Equal(t, BtnLeft, sink.buttons[0].Code)
	require.True(t, sink.buttons[0].Pressed)

	d.Dispatch(frame(RawEvent{Type: EvKey, Code: BtnLeft, Value: 0}), 1020)
	require.Len(t, sink.buttons, 2)
	require.False(t, sink.buttons[1].Pressed)
}

// Left-handed remapping swaps the resolved left/right buttons.
func TestLeftHandedRemapsBottomAreaClick(t *testing.T) {
	d, sink := newTestDevice(buttonTestTraits())
	require.Equal(t, ConfigSuccess, d.SetLeftHanded(true))

	d.Dispatch(frame(touchDown(0, 1, 900, 650)...), 1000)
	d.Dispatch(frame(RawEvent{Type: EvKey, Code: BtnLeft, Value: 1}), 1010)

	require.Len(t, sink.buttons, 1)
	require.Equal(t, BtnLeft, sink.buttons[0].Code, "right-area click remaps to left when left-handed")
}
