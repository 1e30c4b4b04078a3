package sheetview

import (
	"math"
	"time"
)

// sheetFling is one run of the sheet's own fling. Replacing or clearing
// ScrollingSheet.fling cancels the run; its pending frame callback then does
// nothing.
type sheetFling struct {
	scroller *Scroller
	lastY    float64
	// Sign of the velocity the fling started with.
	velocity float64
}

type flingStep int

const (
	flingContinue flingStep = iota
	flingFinished
	flingTransfer
)

// step advances the simulation to now and offers the new delta to the sheet.
// The fling is handed to the list once the sheet sits at offset 0 and stops
// consuming.
func (f *sheetFling) step(s *ScrollingSheet, now time.Time) flingStep {
	if !f.scroller.ComputeScrollOffset(now) {
		return flingFinished
	}
	dy := f.scroller.CurrY() - f.lastY
	f.lastY = f.scroller.CurrY()

	if s.consumeScrollY(dy) == 0 && s.HasReachedTop() {
		return flingTransfer
	}
	if f.scroller.IsFinished() {
		return flingFinished
	}
	return flingContinue
}

// remainingVelocity is the current speed carrying the sign of the original
// fling.
func (f *sheetFling) remainingVelocity() float64 {
	return math.Copysign(math.Abs(f.scroller.CurrVelocity()), f.velocity)
}

// smoothScroll is one programmatic animation between two offsets.
type smoothScroll struct {
	from     float64
	to       float64
	start    time.Time
	duration time.Duration
}

// at returns the eased offset at now and whether the animation is complete.
func (a *smoothScroll) at(now time.Time) (float64, bool) {
	t := 1.0
	if a.duration > 0 {
		t = clamp(float64(now.Sub(a.start))/float64(a.duration), 0, 1)
	}
	return a.from + (a.to-a.from)*fastOutSlowIn(t), t >= 1
}

func (s *ScrollingSheet) startFling(velocity float64) {
	run := &sheetFling{
		scroller: NewScroller(s.config.Friction),
		velocity: velocity,
	}
	run.scroller.Fling(s.now(), 0, velocity)
	s.fling = run
	s.flingState = FlingSheet
	s.frames.PostFrame(func(now time.Time) {
		s.onFlingFrame(run, now)
	})
}

// cancelFling force-finishes the sheet's fling. A fling already handed to the
// list keeps running.
func (s *ScrollingSheet) cancelFling() {
	if s.fling != nil {
		s.fling.scroller.ForceFinished()
		s.fling = nil
	}
	s.flingState = FlingIdle
}

func (s *ScrollingSheet) onFlingFrame(run *sheetFling, now time.Time) {
	if s.fling != run {
		return
	}
	result := run.step(s, now)
	// A listener may have cancelled or replaced the run.
	if s.fling != run {
		return
	}

	switch result {
	case flingContinue:
		s.frames.PostFrame(func(now time.Time) {
			s.onFlingFrame(run, now)
		})
	case flingFinished:
		s.fling = nil
		s.flingState = FlingIdle
	case flingTransfer:
		velocity := run.remainingVelocity()
		run.scroller.ForceFinished()
		s.fling = nil
		if s.child != nil && s.child.Fling(velocity) {
			s.logger.Debug("handing fling to list", "velocity", velocity)
			s.flingState = FlingTransferredToList
		} else {
			s.flingState = FlingIdle
		}
	}
}

func (s *ScrollingSheet) onSmoothFrame(run *smoothScroll, now time.Time) {
	if s.smooth != run {
		return
	}
	value, done := run.at(now)
	s.consumeScrollY(s.offsetY - value)
	if s.smooth != run {
		return
	}
	if done {
		s.smooth = nil
		return
	}
	s.frames.PostFrame(func(now time.Time) {
		s.onSmoothFrame(run, now)
	})
}
