package touchpad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// palmTestTraits gives a 120mm-wide clickpad with known resolution, which
// is what computePalmGeometry requires to enable palm-edge detection for a
// non-Apple device (spec.md §4.6).
func palmTestTraits() DeviceTraits {
	return DeviceTraits{IsClickpad: true, NumSlots: 2, WidthMM: 120}
}

// With testAbsX{0,1200,10}: LeftEdge = 1200*0.05 = 60, RightEdge = 1200-60 = 1140.
func TestPalmEdgeZoneReleasesOnHorizontalEscape(t *testing.T) {
	d, _ := newTestDevice(palmTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 30, 300)...), 1000)
	require.Equal(t, PalmEdge, d.touches[0].Palm.State)

	// Mostly-horizontal escape well within the 200ms reversibility window.
	d.Dispatch(frame(touchMove(0, 200, 300)...), 1050)
	require.Equal(t, PalmNone, d.touches[0].Palm.State)
}

func TestPalmEdgeZoneStaysHeldOnVerticalEscape(t *testing.T) {
	d, _ := newTestDevice(palmTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 30, 300)...), 1000)
	require.Equal(t, PalmEdge, d.touches[0].Palm.State)

	// Exits the edge band but the travel is mostly vertical, so the
	// reversibility test fails and the touch stays classified as palm.
	d.Dispatch(frame(touchMove(0, 70, 450)...), 1050)
	require.Equal(t, PalmEdge, d.touches[0].Palm.State)
}

// A touch that lands after the most recent keystroke stays suppressed once
// the quiet-period timer fires, until it's released.
func TestDWTSuppressesTouchLandingDuringTyping(t *testing.T) {
	d, sink := newTestDevice(palmTestTraits())

	d.NotifyKeyboardKey(30, true, 1000)
	d.Dispatch(frame(touchDown(0, 1, 600, 350)...), 1010)
	require.Equal(t, PalmTyping, d.touches[0].Palm.State)

	d.HandleTimeout(Deadline{Slot: deviceSlot, Sub: SubsystemDWT}, 1010+dwtShortTimeoutMs)
	require.Equal(t, PalmTyping, d.touches[0].Palm.State, "touch landed after the last keystroke, stays suppressed")
	require.Empty(t, sink.motion)
}

// A touch that landed mid-burst, before the final keystroke, is reactivated
// once the quiet period following that final keystroke elapses.
func TestDWTReactivatesTouchThatPredatesLastKeypress(t *testing.T) {
	d, _ := newTestDevice(palmTestTraits())

	d.NotifyKeyboardKey(30, true, 1000)
	d.Dispatch(frame(touchDown(0, 1, 600, 350)...), 1010)
	require.Equal(t, PalmTyping, d.touches[0].Palm.State)

	d.NotifyKeyboardKey(31, true, 1020)
	d.HandleTimeout(Deadline{Slot: deviceSlot, Sub: SubsystemDWT}, 1020+dwtLongTimeoutMs)
	require.Equal(t, PalmNone, d.touches[0].Palm.State)
}
