package core

import (
	"math"

	"github.com/signalsfoundry/uwb-floorsim/model"
)

// Distance returns the straight-line distance between two points.
func Distance(a, b model.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BearingDegrees returns the angle of the ray from -> to in degrees,
// offset by +90 so that a vertical ray primitive pointing up renders
// aligned with the anchor-to-tag direction.
func BearingDegrees(from, to model.Point) float64 {
	dy := to.Y - from.Y
	dx := to.X - from.X
	return math.Atan2(dy, dx)*180.0/math.Pi + 90.0
}

// EaseInOutQuad applies a piecewise quadratic ease-in-out to a normalised
// progress value. Inputs outside [0,1] are clamped. The two halves meet at
// eased(0.5) = 0.5, so interpolation is continuous across the midpoint.
func EaseInOutQuad(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// Lerp interpolates linearly between a and b. t is expected to already be
// eased; no clamping is applied here.
func Lerp(a, b model.Point, t float64) model.Point {
	return model.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Bounds is a room rectangle shrunk by a padding, constraining where the
// wandering tag may render.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// InnerBounds shrinks the rectangle by padding on all sides. When the room
// is smaller than twice the padding the bounds invert (min > max); callers
// must check Degenerate before clamping against the result.
func InnerBounds(r model.Rect, padding float64) Bounds {
	return Bounds{
		MinX: r.X + padding,
		MaxX: r.X + r.W - padding,
		MinY: r.Y + padding,
		MaxY: r.Y + r.H - padding,
	}
}

// Degenerate reports whether the bounds have inverted on either axis.
func (b Bounds) Degenerate() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Clamp constrains p into the bounds. Degenerate bounds snap to the
// fallback point instead of producing an arbitrary corner.
func (b Bounds) Clamp(p, fallback model.Point) model.Point {
	if b.Degenerate() {
		return fallback
	}
	return model.Point{
		X: math.Max(b.MinX, math.Min(b.MaxX, p.X)),
		Y: math.Max(b.MinY, math.Min(b.MaxY, p.Y)),
	}
}
