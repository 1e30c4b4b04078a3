package sheetview

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualFrames is a FrameScheduler driven by the test. Its clock only moves
// when a frame is stepped.
type manualFrames struct {
	pending []FrameCallback
	now     time.Time
	posted  int
}

func newManualFrames() *manualFrames {
	return &manualFrames{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *manualFrames) PostFrame(callback FrameCallback) {
	f.posted++
	f.pending = append(f.pending, callback)
}

func (f *manualFrames) clock() time.Time {
	return f.now
}

// step advances the clock by one frame and runs the callbacks pending before
// it. It returns the number of callbacks run.
func (f *manualFrames) step() int {
	f.now = f.now.Add(DefaultFrameInterval)
	callbacks := f.pending
	f.pending = nil
	for _, callback := range callbacks {
		callback(f.now)
	}
	return len(callbacks)
}

// drain steps until no callbacks are pending and returns the number of frames
// stepped.
func (f *manualFrames) drain(t *testing.T) int {
	t.Helper()
	frames := 0
	for len(f.pending) > 0 {
		f.step()
		frames++
		require.Less(t, frames, 10000, "animation never settled")
	}
	return frames
}

func TestFastOutSlowInEndpoints(t *testing.T) {
	assert.Equal(t, 0.0, fastOutSlowIn(0))
	assert.Equal(t, 1.0, fastOutSlowIn(1))
	assert.Equal(t, 0.0, fastOutSlowIn(-0.5))
	assert.Equal(t, 1.0, fastOutSlowIn(1.5))
}

func TestFastOutSlowInMonotonic(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := fastOutSlowIn(float64(i) / 100)
		require.GreaterOrEqual(t, v, prev, "at %d%%", i)
		prev = v
	}
}

func TestFastOutSlowInShape(t *testing.T) {
	// Slow start, fast middle, long settle.
	assert.Less(t, fastOutSlowIn(0.1), 0.1)
	assert.Greater(t, fastOutSlowIn(0.5), 0.7)
	assert.Greater(t, fastOutSlowIn(0.9), 0.98)
}

func TestCubicBezierLinear(t *testing.T) {
	// Control points on the diagonal give the identity.
	for _, x := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		assert.InDelta(t, x, cubicBezier(1.0/3, 1.0/3, 2.0/3, 2.0/3, x), 1e-4)
	}
}

func TestCubicBezierMatchesCurve(t *testing.T) {
	// Sample the curve parametrically and compare with the solved value.
	x1, y1, x2, y2 := 0.4, 0.0, 0.2, 1.0
	for _, u := range []float64{0.2, 0.4, 0.6, 0.8} {
		v := 1 - u
		x := 3*v*v*u*x1 + 3*v*u*u*x2 + u*u*u
		y := 3*v*v*u*y1 + 3*v*u*u*y2 + u*u*u
		assert.InDelta(t, y, cubicBezier(x1, y1, x2, y2, x), 1e-4, "u=%v", u)
	}
	assert.False(t, math.IsNaN(cubicBezier(x1, y1, x2, y2, 0.999999)))
}
