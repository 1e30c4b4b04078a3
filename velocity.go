package sheetview

import "time"

const (
	velocityWindow     = 100 * time.Millisecond
	velocityMaxSamples = 20
)

type velocitySample struct {
	at time.Time
	y  float64
}

// VelocityTracker estimates pointer velocity from timestamped positions. The
// estimate is the least-squares slope of the samples recorded within the last
// 100ms before the newest sample.
type VelocityTracker struct {
	samples []velocitySample
}

// NewVelocityTracker returns an empty tracker.
func NewVelocityTracker() *VelocityTracker {
	return &VelocityTracker{}
}

// AddMovement records the pointer at row y at the given time.
func (t *VelocityTracker) AddMovement(at time.Time, y float64) {
	if n := len(t.samples); n > 0 && at.Before(t.samples[n-1].at) {
		// Out-of-order events restart the estimate.
		t.samples = t.samples[:0]
	}
	t.samples = append(t.samples, velocitySample{at: at, y: y})
	if len(t.samples) > velocityMaxSamples {
		t.samples = t.samples[len(t.samples)-velocityMaxSamples:]
	}
}

// Clear drops all samples.
func (t *VelocityTracker) Clear() {
	t.samples = t.samples[:0]
}

// Velocity returns the estimated velocity in rows per second. Positive values
// mean the pointer moved down the screen. It returns 0 with fewer than two
// samples in the window.
func (t *VelocityTracker) Velocity() float64 {
	n := len(t.samples)
	if n < 2 {
		return 0
	}
	newest := t.samples[n-1].at

	var (
		count        float64
		sumT, sumY   float64
		sumTT, sumTY float64
	)
	for i := n - 1; i >= 0; i-- {
		sample := t.samples[i]
		age := newest.Sub(sample.at)
		if age > velocityWindow {
			break
		}
		x := -age.Seconds()
		count++
		sumT += x
		sumY += sample.y
		sumTT += x * x
		sumTY += x * sample.y
	}
	if count < 2 {
		return 0
	}
	denominator := count*sumTT - sumT*sumT
	if denominator == 0 {
		return 0
	}
	return (count*sumTY - sumT*sumY) / denominator
}
