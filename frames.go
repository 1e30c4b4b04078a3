package sheetview

import (
	"math"
	"time"
)

// FrameCallback is invoked on the event loop at a display frame.
type FrameCallback func(now time.Time)

// FrameScheduler delivers per-frame callbacks. A posted callback runs once, at
// the next frame; animations continue by posting again.
type FrameScheduler interface {
	PostFrame(callback FrameCallback)
}

// DefaultFrameInterval is the time between two frames (60 Hz).
const DefaultFrameInterval = time.Second / 60

// fastOutSlowIn is the cubic Bézier easing curve (0.4, 0, 0.2, 1) used for
// programmatic smooth scrolls.
func fastOutSlowIn(t float64) float64 {
	return cubicBezier(0.4, 0, 0.2, 1, t)
}

// cubicBezier evaluates the y value of the curve through (0,0), (x1,y1),
// (x2,y2), (1,1) at horizontal position x.
func cubicBezier(x1, y1, x2, y2, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	bezier := func(a, b, u float64) float64 {
		v := 1 - u
		return 3*v*v*u*a + 3*v*u*u*b + u*u*u
	}
	slope := func(a, b, u float64) float64 {
		v := 1 - u
		return 3*v*v*a + 6*v*u*(b-a) + 3*u*u*(1-b)
	}

	// Newton iterations on x(u) = x, with bisection when the slope vanishes.
	u := x
	low, high := 0.0, 1.0
	for range 8 {
		diff := bezier(x1, x2, u) - x
		if math.Abs(diff) < 1e-6 {
			return bezier(y1, y2, u)
		}
		if diff > 0 {
			high = u
		} else {
			low = u
		}
		d := slope(x1, x2, u)
		if math.Abs(d) < 1e-6 {
			break
		}
		u -= diff / d
		if u < low || u > high {
			u = (low + high) / 2
		}
	}
	for range 30 {
		diff := bezier(x1, x2, u) - x
		if math.Abs(diff) < 1e-6 {
			break
		}
		if diff > 0 {
			high = u
		} else {
			low = u
		}
		u = (low + high) / 2
	}
	return bezier(y1, y2, u)
}
