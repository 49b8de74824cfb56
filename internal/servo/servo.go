// Package servo drives the lid servo with hardware PWM through periph.io.
package servo

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// DefaultPin is a hardware PWM capable pin on the Raspberry Pi (PWM0).
const DefaultPin = "GPIO18"

const (
	frequency = 50 * physic.Hertz
	period    = 20 * time.Millisecond

	// SG90 style servos: 0.5ms at -90°, 2.5ms at +90°.
	minPulse = 500 * time.Microsecond
	maxPulse = 2500 * time.Microsecond

	MinAngle = -90
	MaxAngle = 90
)

// PWMPin is the subset of gpio.PinIO the servo needs.
type PWMPin interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
	Out(l gpio.Level) error
	Halt() error
}

// Servo positions the lid. Only the lid loop writes to it.
type Servo struct {
	pin     PWMPin
	current int
	moved   bool
}

// Open initialises periph.io and returns a Servo on the named pin.
func Open(pinName string) (*Servo, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p := gpioreg.ByName(pinName)
	if p == nil {
		return nil, fmt.Errorf("servo pin %s not found in hardware", pinName)
	}
	return New(p), nil
}

// New creates a Servo on an already resolved pin.
func New(pin PWMPin) *Servo {
	return &Servo{pin: pin}
}

// MoveLid commands an absolute angle in degrees, clamped to [-90, 90].
// Repeating the current angle does not touch the PWM.
func (s *Servo) MoveLid(angle int) error {
	angle = clamp(angle)
	if s.moved && angle == s.current {
		return nil
	}

	if err := s.pin.PWM(Duty(angle), frequency); err != nil {
		return fmt.Errorf("servo pwm %d°: %w", angle, err)
	}
	s.current = angle
	s.moved = true
	return nil
}

// Close stops the PWM and drives the pin low.
func (s *Servo) Close() error {
	if err := s.pin.Halt(); err != nil {
		return fmt.Errorf("halt servo pwm: %w", err)
	}
	return s.pin.Out(gpio.Low)
}

// Duty returns the PWM duty cycle for an angle.
func Duty(angle int) gpio.Duty {
	angle = clamp(angle)
	pulse := minPulse + time.Duration(angle-MinAngle)*(maxPulse-minPulse)/(MaxAngle-MinAngle)
	return gpio.Duty(int64(gpio.DutyMax) * int64(pulse) / int64(period))
}

func clamp(angle int) int {
	if angle < MinAngle {
		return MinAngle
	}
	if angle > MaxAngle {
		return MaxAngle
	}
	return angle
}
