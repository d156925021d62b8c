// Package clock provides the simulation clock shared by all per-frame systems.
//
// The clock is an explicit object handed to the lifecycle controller and to
// every consumer (physics step, script updates, script Time bindings). Nothing
// in the runtime reads wall time directly, so a zero scale freezes the
// simulation completely.
package clock

import (
	"errors"
	"fmt"
)

// ErrNegativeScale is returned by SetScale for scales below zero
var ErrNegativeScale = errors.New("clock scale must not be negative")

// Clock tracks scaled simulation time
type Clock struct {
	elapsed float64 // seconds of simulation time since last Reset
	scale   float64
	delta   float64 // last scaled delta handed out by Advance
	frames  uint64
}

// New creates a clock at zero elapsed time with scale 1
func New() *Clock {
	return &Clock{scale: 1}
}

// Reset zeroes elapsed time and the last delta. The scale is kept.
func (c *Clock) Reset() {
	c.elapsed = 0
	c.delta = 0
	c.frames = 0
}

// SetScale sets the multiplier applied to every real delta.
// 0 freezes time, 1 is normal speed; other values are for tooling.
func (c *Clock) SetScale(scale float64) error {
	if scale < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeScale, scale)
	}
	c.scale = scale
	return nil
}

// Scale returns the current time scale
func (c *Clock) Scale() float64 {
	return c.scale
}

// Advance consumes realDelta seconds of frame time and returns the scaled
// delta that consumers must use for this frame.
func (c *Clock) Advance(realDelta float64) float64 {
	if realDelta < 0 {
		realDelta = 0
	}
	c.delta = realDelta * c.scale
	c.elapsed += c.delta
	c.frames++
	return c.delta
}

// Delta returns the scaled delta of the last Advance
func (c *Clock) Delta() float64 {
	return c.delta
}

// Elapsed returns scaled seconds since the last Reset
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

// Frames returns the number of Advance calls since the last Reset
func (c *Clock) Frames() uint64 {
	return c.frames
}

// Paused reports whether the clock is frozen
func (c *Clock) Paused() bool {
	return c.scale == 0
}
