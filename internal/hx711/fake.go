package hx711

import "errors"

// FakePins emulates the HX711 serial interface for tests. Each conversion
// shifts out the next value from Samples (repeating the last one) and
// consumes 24 + Gain clock pulses.
type FakePins struct {
	Samples []int32
	Gain    Gain

	// Busy makes DOUT stay high (no conversion ready).
	Busy bool
	// DataError, if set, is returned by Data.
	DataError error

	clockHigh bool
	edges     int // rising edges in the current conversion
	index     int
	// Conversions counts completed conversions.
	Conversions int
}

// NewFakePins creates FakePins for the given samples and gain.
func NewFakePins(gain Gain, samples ...int32) *FakePins {
	return &FakePins{Samples: samples, Gain: gain}
}

// SetClock records a clock transition.
func (f *FakePins) SetClock(high bool) error {
	if high && !f.clockHigh {
		f.edges++
	}
	if !high && f.clockHigh && f.edges == dataBits+int(f.Gain) {
		// Conversion finished on the falling edge of the last gain pulse
		f.edges = 0
		f.Conversions++
		if f.index < len(f.Samples)-1 {
			f.index++
		}
	}
	f.clockHigh = high
	return nil
}

// Data returns DOUT for the current clock position.
func (f *FakePins) Data() (bool, error) {
	if f.DataError != nil {
		return false, f.DataError
	}
	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}
	if f.edges == 0 {
		return f.Busy, nil
	}
	if f.edges > dataBits {
		return true, nil
	}
	v := uint32(f.Samples[f.index]) & 0xFFFFFF
	return v&(1<<(dataBits-f.edges)) != 0, nil
}

// ClockHigh reports the current clock level.
func (f *FakePins) ClockHigh() bool {
	return f.clockHigh
}
