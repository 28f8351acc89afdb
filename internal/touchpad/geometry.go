package touchpad

import "math"

// AbsAxisInfo mirrors the subset of a kernel ABS_MT_POSITION_* absinfo the
// core needs: range and resolution in units/mm (0 if the kernel didn't
// report one).
type AbsAxisInfo struct {
	Min, Max   int32
	Resolution int32 // units per mm, 0 if unknown
}

// Geometry captures the per-device layout the button/edge/palm code needs,
// derived once at construction from the device's absinfo.
type Geometry struct {
	X, Y         AbsAxisInfo
	WidthMM      float64
	HeightMM     float64
	DiagonalMM   float64
}

func axisSpanMM(a AbsAxisInfo) float64 {
	span := float64(a.Max - a.Min)
	if a.Resolution > 0 {
		return span / float64(a.Resolution)
	}
	// Resolution-less devices: approximate 10 units/mm, a conservative
	// stand-in for geometry fallbacks; through DiagonalMM it also feeds
	// scaleCoeffs' delta normalisation.
	return span / 10.0
}

func NewGeometry(x, y AbsAxisInfo) Geometry {
	g := Geometry{X: x, Y: y}
	g.WidthMM = axisSpanMM(x)
	g.HeightMM = axisSpanMM(y)
	g.DiagonalMM = math.Sqrt(g.WidthMM*g.WidthMM + g.HeightMM*g.HeightMM)
	return g
}

// ButtonAreaGeometry is the soft-button zone layout of spec.md §4.3.
type ButtonAreaGeometry struct {
	BottomTopEdge       int32
	BottomRightLeftEdge int32

	HasTopButtons     bool
	TopBottomEdge     int32
	TopRightLeftEdge  int32
	TopLeftRightEdge  int32
}

// computeButtonAreas derives the bottom/top strip edges. Bottom spans from
// min(85% of height, height - 10mm) to the max; it is split left/right at
// the horizontal midpoint. The top strip, present only on topbuttonpad
// devices, is a 10mm band split at 42%/58% of width.
func computeButtonAreas(g Geometry, hasTopButtons bool) ButtonAreaGeometry {
	height := float64(g.Y.Max - g.Y.Min)
	width := float64(g.X.Max - g.X.Min)

	eightyFive := g.Y.Min + int32(height*0.85)
	tenMMFromBottom := g.Y.Max
	if g.Y.Resolution > 0 {
		tenMMFromBottom = g.Y.Max - int32(10*float64(g.Y.Resolution))
	}
	topEdge := eightyFive
	if tenMMFromBottom < topEdge {
		topEdge = tenMMFromBottom
	}

	bg := ButtonAreaGeometry{
		BottomTopEdge:       topEdge,
		BottomRightLeftEdge: g.X.Min + int32(width/2),
		HasTopButtons:       hasTopButtons,
	}

	if hasTopButtons {
		tenMM := height
		if g.Y.Resolution > 0 {
			tenMM = 10 * float64(g.Y.Resolution)
		}
		bg.TopBottomEdge = g.Y.Min + int32(tenMM)
		bg.TopLeftRightEdge = g.X.Min + int32(width*0.42)
		bg.TopRightLeftEdge = g.X.Min + int32(width*0.58)
	}

	return bg
}

// EdgeScrollGeometry holds the right/bottom scroll-edge thresholds.
type EdgeScrollGeometry struct {
	RightEdge  int32
	BottomEdge int32
}

// edgeFraction returns the width/height fraction used for this model's edge
// bands: larger on Apple and on any semi-MT hardware, as those trackpads
// report a wider bezel that users rest fingers on.
func edgeFraction(traits DeviceTraits) (wFrac, hFrac float64) {
	if traits.IsApple || traits.IsSemiMT {
		return 0.08, 0.09
	}
	return 0.04, 0.054
}

func computeEdgeScrollGeometry(g Geometry, traits DeviceTraits) EdgeScrollGeometry {
	wFrac, hFrac := edgeFraction(traits)
	width := float64(g.X.Max - g.X.Min)
	height := float64(g.Y.Max - g.Y.Min)
	return EdgeScrollGeometry{
		RightEdge:  g.X.Max - int32(width*wFrac),
		BottomEdge: g.Y.Max - int32(height*hFrac),
	}
}

// PalmGeometry holds the left/right palm-zone edges.
type PalmGeometry struct {
	Enabled   bool
	LeftEdge  int32
	RightEdge int32
	VertMid   int32
}

// palmDetectionEligible mirrors spec.md §4.6: palm detection needs a known
// resolution and a touchpad at least 70mm wide, or any Apple device.
func palmDetectionEligible(g Geometry, traits DeviceTraits) bool {
	if traits.IsApple {
		return true
	}
	return g.X.Resolution > 0 && g.WidthMM >= 70.0
}

func computePalmGeometry(g Geometry, traits DeviceTraits) PalmGeometry {
	if !palmDetectionEligible(g, traits) {
		return PalmGeometry{Enabled: false}
	}
	width := float64(g.X.Max - g.X.Min)
	height := float64(g.Y.Max - g.Y.Min)
	return PalmGeometry{
		Enabled:   true,
		LeftEdge:  g.X.Min + int32(width*0.05),
		RightEdge: g.X.Max - int32(width*0.05),
		VertMid:   g.Y.Min + int32(height*0.5),
	}
}

