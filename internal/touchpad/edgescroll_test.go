package touchpad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// edgeScrollTestTraits describes single-finger hardware so ScrollMethod
// defaults to ScrollMethodEdge, with QuirkClickfinger so ClickMethod isn't
// ButtonAreas: edgeScrollSetTimer only arms the lock-in timer off
// ButtonAreas (a finger resting in the button strip is presumed to be there
// to click, not scroll).
func edgeScrollTestTraits() DeviceTraits {
	return DeviceTraits{
		IsClickpad:       true,
		NumSlots:         1,
		WidthMM:          120,
		QuirkClickfinger: true,
	}
}

// With testAbsX{0,1200,10} and testAbsY{0,700,10}: RightEdge = 1200 -
// 1200*0.04 = 1152, BottomEdge = 700 - 700*0.054 = 663. (1180, 300) sits
// purely in the right-edge zone, away from the bottom-right corner, so the
// vertical axis resolves unambiguously without the corner's escape rule.
func TestEdgeScrollLocksInAndEmitsVerticalAxis(t *testing.T) {
	d, sink := newTestDevice(edgeScrollTestTraits())
	require.Equal(t, ScrollMethodEdge, d.Options().ScrollMethod)

	d.Dispatch(frame(touchDown(0, 1, 1180, 300)...), 1000)
	require.Equal(t, EdgeStateNew, d.touches[0].Scroll.EdgeState)
	require.Empty(t, sink.axes, "no axis until enough history accumulates")

	d.HandleTimeout(Deadline{Slot: 0, Sub: SubsystemEdgeScroll}, 1000+scrollLockTimeoutMs)
	require.Equal(t, EdgeStateLocked, d.touches[0].Scroll.EdgeState)

	y := int32(300)
	for i := 0; i < 5; i++ {
		y -= 20
		d.Dispatch(frame(touchMove(0, 1180, y)...), uint64(1300+10*(i+1)))
	}

	require.NotEmpty(t, sink.axes)
	require.Equal(t, AxisVertical, sink.axes[0].Axis)
	require.NotZero(t, sink.axes[0].Value)

	d.Dispatch(frame(touchUp(0)...), 1400)
	require.Equal(t, AxisVertical, sink.axes[len(sink.axes)-1].Axis)
	require.Zero(t, sink.axes[len(sink.axes)-1].Value, "release posts a terminal zero-value event")
}

// A touch landing away from any edge goes straight to AREA and never
// emits a scroll axis.
func TestEdgeScrollIgnoresCenterTouch(t *testing.T) {
	d, sink := newTestDevice(edgeScrollTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 600, 350)...), 1000)
	require.Equal(t, EdgeStateArea, d.touches[0].Scroll.EdgeState)

	x := int32(600)
	for i := 0; i < 5; i++ {
		x += 20
		d.Dispatch(frame(touchMove(0, x, 350)...), uint64(1010+10*(i+1)))
	}
	require.Empty(t, sink.axes)
}
