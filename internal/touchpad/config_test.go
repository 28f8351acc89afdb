package touchpad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetTapEnabledIdempotent(t *testing.T) {
	d, _ := newTestDevice(tapTestTraits())
	require.True(t, d.Options().TapEnabled, "TouchpadNoPhysButton clickpad defaults tap-to-click on")

	require.Equal(t, ConfigSuccess, d.SetTapEnabled(true))
	require.True(t, d.Options().TapEnabled)

	require.Equal(t, ConfigSuccess, d.SetTapEnabled(false))
	require.False(t, d.Options().TapEnabled)
	// Calling it again with the same value must be a no-op, not merely
	// another successful call with a side effect.
	require.Equal(t, ConfigSuccess, d.SetTapEnabled(false))
	require.False(t, d.Options().TapEnabled)
}

func TestSetLeftHandedUnsupportedWhileButtonHeld(t *testing.T) {
	d, _ := newTestDevice(buttonTestTraits())

	d.Dispatch(frame(touchDown(0, 1, 600, 350)...), 1000)
	d.Dispatch(frame(RawEvent{Type: EvKey, Code: BtnLeft, Value: 1}), 1010)

	require.Equal(t, ConfigUnsupported, d.SetLeftHanded(true))
	require.False(t, d.Options().LeftHanded, "rejected change must not take effect")

	d.Dispatch(frame(RawEvent{Type: EvKey, Code: BtnLeft, Value: 0}), 1020)
	require.Equal(t, ConfigSuccess, d.SetLeftHanded(true))
	require.True(t, d.Options().LeftHanded)
}

func TestSetScrollMethodUnsupportedOnSingleFingerDevice(t *testing.T) {
	d, _ := newTestDevice(DeviceTraits{IsClickpad: true, NumSlots: 1, WidthMM: 100})

	require.Equal(t, ScrollMethodEdge, d.Options().ScrollMethod)
	require.Equal(t, ConfigUnsupported, d.SetScrollMethod(ScrollMethodTwoFinger))
	require.Equal(t, ScrollMethodEdge, d.Options().ScrollMethod, "rejected change leaves the default in place")

	require.Equal(t, ConfigSuccess, d.SetScrollMethod(ScrollMethodNone))
	require.Equal(t, ScrollMethodNone, d.Options().ScrollMethod)
}

func TestSetClickMethodClickfingerPushesBottomAreaOffscreen(t *testing.T) {
	d, _ := newTestDevice(buttonTestTraits())

	require.Equal(t, ConfigSuccess, d.SetClickMethod(ClickMethodClickfinger))
	require.Greater(t, d.buttonAreas.BottomTopEdge, d.geometry.Y.Max, "clickfinger retunes the bottom strip off-screen")
}
