package logic

import "math"

// LidController keeps the lid open while an object is in range and closes it
// only after the object has been absent for closeCycles consecutive samples.
type LidController struct {
	openDistanceCm float64
	closeCycles    int
	state          LidState
	counts         LidCounts
}

// NewLidController creates a controller for the given open threshold (cm) and
// debounce length in poll cycles. The lid is assumed closed at startup.
func NewLidController(openDistanceCm float64, closeCycles int) *LidController {
	if closeCycles < 0 {
		closeCycles = 0
	}
	return &LidController{
		openDistanceCm: openDistanceCm,
		closeCycles:    closeCycles,
		state:          LidState{Position: LidClosed},
	}
}

// Process takes a distance sample and returns the command for the actuator.
// Open and Close are re-issued on every qualifying cycle; both are idempotent.
func (c *LidController) Process(distanceCm float64) LidCommand {
	if c.inRange(distanceCm) {
		c.state.Counter = 0
		c.setPosition(LidOpened)
		return LidOpen
	}

	if c.state.Counter < c.closeCycles {
		c.state.Counter++
	}
	if c.state.Counter < c.closeCycles {
		// Object recently left, still inside the grace period
		return LidHold
	}

	c.setPosition(LidClosed)
	return LidClose
}

// inRange reports whether a reading means an object is within the open range.
// NaN, infinite, zero and negative readings are implausible and count as absent.
func (c *LidController) inRange(d float64) bool {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return false
	}
	return d <= c.openDistanceCm
}

func (c *LidController) setPosition(p LidPosition) {
	if c.state.Position == p {
		return
	}
	c.state.Position = p
	switch p {
	case LidOpened:
		c.counts.Opened++
	case LidClosed:
		c.counts.Closed++
	}
}

// State returns a copy of the current lid state.
func (c *LidController) State() LidState {
	return c.state
}

// CloseCycles returns the debounce length in poll cycles.
func (c *LidController) CloseCycles() int {
	return c.closeCycles
}

// Counts returns the lid transition counts since startup.
func (c *LidController) Counts() LidCounts {
	return c.counts
}
