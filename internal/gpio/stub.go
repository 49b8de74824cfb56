//go:build !linux

package gpio

import (
	"context"
	"errors"
	"time"
)

var errNotSupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Indicators is not available on non-Linux platforms.
type Indicators struct{}

// NewIndicators returns an error on non-Linux platforms.
func NewIndicators(chip string, pinGreen, pinRed int) (*Indicators, error) {
	return nil, errNotSupported
}

func (i *Indicators) SetGreen(on bool) error { return errNotSupported }
func (i *Indicators) SetRed(on bool) error   { return errNotSupported }
func (i *Indicators) Toggle() error          { return errNotSupported }
func (i *Indicators) Close() error           { return nil }

// Pulser is not available on non-Linux platforms.
type Pulser struct{}

// NewPulser returns an error on non-Linux platforms.
func NewPulser(chip string, pin int, name string, width time.Duration) (*Pulser, error) {
	return nil, errNotSupported
}

func (p *Pulser) Pulse(ctx context.Context) error { return errNotSupported }
func (p *Pulser) Close() error                    { return nil }

// HCSR04 is not available on non-Linux platforms.
type HCSR04 struct{}

// NewHCSR04 returns an error on non-Linux platforms.
func NewHCSR04(chip string, pinTrigger, pinEcho int) (*HCSR04, error) {
	return nil, errNotSupported
}

func (h *HCSR04) ReadDistanceCm(ctx context.Context) (float64, error) { return 0, errNotSupported }
func (h *HCSR04) Close() error                                        { return nil }

// HX711Pins is not available on non-Linux platforms.
type HX711Pins struct{}

// NewHX711Pins returns an error on non-Linux platforms.
func NewHX711Pins(chip string, pinClock, pinData int) (*HX711Pins, error) {
	return nil, errNotSupported
}

func (p *HX711Pins) SetClock(high bool) error { return errNotSupported }
func (p *HX711Pins) Data() (bool, error)      { return false, errNotSupported }
func (p *HX711Pins) Close() error             { return nil }
