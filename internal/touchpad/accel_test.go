package touchpad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcPenumbralGradientEndpoints(t *testing.T) {
	assert.InDelta(t, 0.0, calcPenumbralGradient(0), 1e-9)
	assert.InDelta(t, 0.5, calcPenumbralGradient(0.5), 1e-9)
	assert.InDelta(t, 1.0, calcPenumbralGradient(1), 1e-9)
}

func TestAccelProfileKnownPoints(t *testing.T) {
	assert.InDelta(t, 0.0, pointerAccelProfileSmoothSimple(0), 1e-9)
	assert.InDelta(t, 1.0, pointerAccelProfileSmoothSimple(defaultAccelThreshold), 1e-9)
	assert.InDelta(t, defaultAccelFactor,
		pointerAccelProfileSmoothSimple(defaultAccelThreshold*defaultAccelFactor), 1e-9)
	// Far beyond the plateau the factor clamps rather than growing further.
	assert.InDelta(t, defaultAccelFactor,
		pointerAccelProfileSmoothSimple(defaultAccelThreshold*defaultAccelFactor*10), 1e-9)
}

func TestFilterZeroMotionStaysZero(t *testing.T) {
	a := newPointerAccelerator(pointerAccelProfileSmoothSimple)
	ax, ay := a.filter(0, 0, 1000)
	assert.Zero(t, ax)
	assert.Zero(t, ay)
}

func TestFilterFastSteadyMotionAccelerates(t *testing.T) {
	a := newPointerAccelerator(pointerAccelProfileSmoothSimple)
	var ax, ay float64
	now := uint64(1000)
	for i := 0; i < 10; i++ {
		ax, ay = a.filter(50, 0, now)
		now += 10
	}
	// Sustained fast motion (50 units per 10ms, far past threshold) should be
	// amplified, not merely passed through.
	assert.Greater(t, ax, 50.0)
	assert.Zero(t, ay)
}

func TestFilterSlowSteadyMotionDecelerates(t *testing.T) {
	a := newPointerAccelerator(pointerAccelProfileSmoothSimple)
	var ax, ay float64
	now := uint64(1000)
	for i := 0; i < 10; i++ {
		ax, ay = a.filter(0.01, 0, now)
		now += 10
	}
	// Very slow, deliberate motion (sub-threshold/2 velocity) should be
	// damped for precision, not amplified.
	assert.Less(t, ax, 0.01)
	assert.Zero(t, ay)
}
