// Package controller runs the two independent polling loops of the bin: the
// distance-driven lid loop and the weight-driven fill/disinfect loop. Each
// loop exclusively owns its logic state and its actuators; the loops share
// nothing and never synchronise with each other.
package controller

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Lid positions the lid actuator.
type Lid interface {
	// MoveLid commands an absolute angle in degrees.
	MoveLid(angle int) error
}

// Indicators drives the green and red status LEDs.
type Indicators interface {
	SetGreen(on bool) error
	SetRed(on bool) error
	// Toggle flips both LEDs.
	Toggle() error
}

// Pulser activates an output for a fixed width, then deactivates it.
type Pulser interface {
	Pulse(ctx context.Context) error
}

// faultReporter is implemented by guarded sensors.
type faultReporter interface {
	Faulted() bool
}

// readingOrNaN turns a failed read into NaN, which the decision logic treats
// as "condition not met". Returns false if the read was cut short by shutdown.
func readingOrNaN(ctx context.Context, log zerolog.Logger, what string, v float64, err error) (float64, bool) {
	if err == nil {
		return v, true
	}
	if ctx.Err() != nil {
		return 0, false
	}

	ev := log.Warn()
	if errors.Is(err, gobreaker.ErrOpenState) {
		// Already reported when the breaker opened
		ev = log.Debug()
	}
	ev.Err(err).Str("sensor", what).Msg("sensor read failed")
	return math.NaN(), true
}

func sensorFaulted(s any) bool {
	if fr, ok := s.(faultReporter); ok {
		return fr.Faulted()
	}
	return false
}
