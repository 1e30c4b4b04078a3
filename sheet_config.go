package sheetview

import (
	"errors"
	"fmt"
	"time"
)

// SheetConfig tunes the fling and animation behavior of a ScrollingSheet and
// of the ScrollList it wraps. Velocities are in rows per second.
type SheetConfig struct {
	// Flings slower than MinFlingVelocity or faster than MaxFlingVelocity are
	// not claimed by the sheet.
	MinFlingVelocity float64
	MaxFlingVelocity float64

	// TransferDamping divides the list's fling velocity when a fling is handed
	// back from the list to the sheet. The sheet otherwise picks the fling up
	// much faster than the list was moving. The default of 4 is empirical.
	TransferDamping float64

	// Friction is the exponential decay rate of fling velocity per second.
	Friction float64

	// SmoothScrollDuration is the length of programmatic smooth scrolls.
	SmoothScrollDuration time.Duration
}

// DefaultSheetConfig returns the default tuning.
func DefaultSheetConfig() SheetConfig {
	return SheetConfig{
		MinFlingVelocity:     5,
		MaxFlingVelocity:     400,
		TransferDamping:      4,
		Friction:             DefaultFriction,
		SmoothScrollDuration: 300 * time.Millisecond,
	}
}

var (
	ErrInvalidFlingBounds    = errors.New("min fling velocity must be non-negative and below max fling velocity")
	ErrInvalidDamping        = errors.New("transfer damping must be positive")
	ErrInvalidFriction       = errors.New("friction must be positive")
	ErrInvalidSmoothDuration = errors.New("smooth scroll duration must be positive")
)

// Validate reports the first invalid field.
func (c SheetConfig) Validate() error {
	if c.MinFlingVelocity < 0 || c.MinFlingVelocity >= c.MaxFlingVelocity {
		return fmt.Errorf("fling bounds [%v, %v]: %w", c.MinFlingVelocity, c.MaxFlingVelocity, ErrInvalidFlingBounds)
	}
	if c.TransferDamping <= 0 {
		return fmt.Errorf("transfer damping %v: %w", c.TransferDamping, ErrInvalidDamping)
	}
	if c.Friction <= 0 {
		return fmt.Errorf("friction %v: %w", c.Friction, ErrInvalidFriction)
	}
	if c.SmoothScrollDuration <= 0 {
		return fmt.Errorf("smooth scroll duration %v: %w", c.SmoothScrollDuration, ErrInvalidSmoothDuration)
	}
	return nil
}

// acceptsFling reports whether |velocity| lies strictly inside the fling
// bounds.
func (c SheetConfig) acceptsFling(velocity float64) bool {
	speed := velocity
	if speed < 0 {
		speed = -speed
	}
	return speed > c.MinFlingVelocity && speed < c.MaxFlingVelocity
}
