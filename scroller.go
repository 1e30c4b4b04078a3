package sheetview

import (
	"math"
	"time"
)

// Default simulation constants, in rows and seconds.
const (
	DefaultFriction        = 4.0
	DefaultRestingVelocity = 1.0
)

// Scroller simulates a decelerating fling. Velocity decays exponentially with
// the configured friction, so position approaches startY + velocity/friction.
//
// A Scroller does not read the clock itself; callers pass the frame time to
// ComputeScrollOffset. It is not safe for concurrent use.
type Scroller struct {
	friction        float64
	restingVelocity float64

	start     time.Time
	startY    float64
	velocity  float64
	duration  time.Duration
	currY     float64
	currV     float64
	finished  bool
	lastFrame time.Time
}

// NewScroller returns a finished scroller with the given friction (decay rate
// per second). Non-positive friction falls back to DefaultFriction.
func NewScroller(friction float64) *Scroller {
	if friction <= 0 {
		friction = DefaultFriction
	}
	return &Scroller{
		friction:        friction,
		restingVelocity: DefaultRestingVelocity,
		finished:        true,
	}
}

// SetRestingVelocity sets the speed, in rows per second, below which a fling
// counts as finished.
func (s *Scroller) SetRestingVelocity(velocity float64) *Scroller {
	if velocity > 0 {
		s.restingVelocity = velocity
	}
	return s
}

// Fling starts a fling at startY with the given velocity. Any running fling is
// replaced.
func (s *Scroller) Fling(start time.Time, startY, velocity float64) {
	s.start = start
	s.lastFrame = start
	s.startY = startY
	s.velocity = velocity
	s.currY = startY
	s.currV = velocity
	s.duration = s.flingDuration(velocity)
	s.finished = s.duration <= 0
}

// flingDuration is the time until |v(t)| drops to the resting velocity.
func (s *Scroller) flingDuration(velocity float64) time.Duration {
	speed := math.Abs(velocity)
	if speed <= s.restingVelocity {
		return 0
	}
	seconds := math.Log(speed/s.restingVelocity) / s.friction
	return time.Duration(seconds * float64(time.Second))
}

// ComputeScrollOffset advances the simulation to now. It returns false once the
// fling has finished; CurrY then holds the final position.
func (s *Scroller) ComputeScrollOffset(now time.Time) bool {
	if s.finished {
		return false
	}
	if now.Before(s.lastFrame) {
		now = s.lastFrame
	}
	s.lastFrame = now

	elapsed := now.Sub(s.start)
	if elapsed >= s.duration {
		elapsed = s.duration
		s.finished = true
	}
	t := elapsed.Seconds()
	decay := math.Exp(-s.friction * t)
	s.currY = s.startY + s.velocity/s.friction*(1-decay)
	s.currV = s.velocity * decay
	if s.finished {
		s.currV = 0
	}
	return true
}

// ForceFinished stops the fling where it is.
func (s *Scroller) ForceFinished() {
	s.finished = true
	s.currV = 0
}

// IsFinished reports whether the fling has finished.
func (s *Scroller) IsFinished() bool {
	return s.finished
}

// StartY returns the position the fling started from.
func (s *Scroller) StartY() float64 {
	return s.startY
}

// CurrY returns the position at the last computed frame.
func (s *Scroller) CurrY() float64 {
	return s.currY
}

// FinalY returns the position at which the fling will come to rest.
func (s *Scroller) FinalY() float64 {
	decay := math.Exp(-s.friction * s.duration.Seconds())
	return s.startY + s.velocity/s.friction*(1-decay)
}

// CurrVelocity returns the speed at the last computed frame. Like the
// position it is signed: it has the sign of the initial velocity.
func (s *Scroller) CurrVelocity() float64 {
	return s.currV
}
