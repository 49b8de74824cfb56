// Package hx711 reads an HX711 load-cell amplifier by bit-banging its clock
// and data lines. It has no platform dependencies: callers supply the lines
// through the Pins interface (gpiocdev on Linux, machine pins on TinyGo).
package hx711

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotReady is returned when the chip does not signal a finished
// conversion before the ready timeout.
var ErrNotReady = errors.New("hx711: not ready")

// Pins is the pair of lines the HX711 is wired to.
type Pins interface {
	// SetClock drives PD_SCK.
	SetClock(high bool) error
	// Data samples DOUT.
	Data() (bool, error)
}

// Gain selects channel and gain for the NEXT conversion, encoded as the
// number of extra clock pulses after the 24 data bits.
type Gain int

const (
	GainA128 Gain = 1
	GainB32  Gain = 2
	GainA64  Gain = 3
)

const (
	dataBits = 24

	// At 10 SPS a conversion takes 100ms; allow some slack.
	defaultReadyTimeout = 500 * time.Millisecond
	defaultReadyPoll    = time.Millisecond

	// Holding PD_SCK high for more than 60µs powers the chip down.
	powerDownHold = 100 * time.Microsecond
)

// Device is a single HX711.
type Device struct {
	pins         Pins
	gain         Gain
	readyTimeout time.Duration
	readyPoll    time.Duration
}

// New creates a Device. An invalid gain falls back to GainA128.
func New(pins Pins, gain Gain) *Device {
	if gain < GainA128 || gain > GainA64 {
		gain = GainA128
	}
	return &Device{
		pins:         pins,
		gain:         gain,
		readyTimeout: defaultReadyTimeout,
		readyPoll:    defaultReadyPoll,
	}
}

// SetReadyTimeout changes how long ReadRaw waits for a conversion.
func (d *Device) SetReadyTimeout(timeout, poll time.Duration) {
	d.readyTimeout = timeout
	d.readyPoll = poll
}

// Ready reports whether a conversion is available (DOUT low).
func (d *Device) Ready() (bool, error) {
	high, err := d.pins.Data()
	if err != nil {
		return false, fmt.Errorf("read data line: %w", err)
	}
	return !high, nil
}

func (d *Device) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(d.readyTimeout)
	for {
		ready, err := d.Ready()
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrNotReady
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.readyPoll):
		}
	}
}

// ReadRaw waits for a conversion and returns it as a signed 24-bit value.
func (d *Device) ReadRaw(ctx context.Context) (int32, error) {
	if err := d.waitReady(ctx); err != nil {
		return 0, err
	}

	var raw uint32
	for i := 0; i < dataBits; i++ {
		bit, err := d.pulse(true)
		if err != nil {
			return 0, err
		}
		raw <<= 1
		if bit {
			raw |= 1
		}
	}

	for i := 0; i < int(d.gain); i++ {
		if _, err := d.pulse(false); err != nil {
			return 0, err
		}
	}

	return signExtend(raw), nil
}

// pulse clocks one bit, sampling DOUT while the clock is high when sample is set.
func (d *Device) pulse(sample bool) (bool, error) {
	if err := d.pins.SetClock(true); err != nil {
		return false, fmt.Errorf("set clock high: %w", err)
	}

	var bit bool
	if sample {
		var err error
		bit, err = d.pins.Data()
		if err != nil {
			d.pins.SetClock(false)
			return false, fmt.Errorf("read data line: %w", err)
		}
	}

	if err := d.pins.SetClock(false); err != nil {
		return false, fmt.Errorf("set clock low: %w", err)
	}
	return bit, nil
}

// PowerDown puts the chip into power-down mode.
func (d *Device) PowerDown() error {
	if err := d.pins.SetClock(false); err != nil {
		return err
	}
	if err := d.pins.SetClock(true); err != nil {
		return err
	}
	time.Sleep(powerDownHold)
	return nil
}

// PowerUp wakes the chip. The first conversion after power-up uses GainA128.
func (d *Device) PowerUp() error {
	return d.pins.SetClock(false)
}

func signExtend(raw uint32) int32 {
	raw &= 0xFFFFFF
	if raw&0x800000 != 0 {
		raw |= 0xFF000000
	}
	return int32(raw)
}
