package sensor

import (
	"context"
	"errors"
)

// FakeReader is a test double that returns scripted readings. It satisfies
// both DistanceSensor and WeightSensor.
type FakeReader struct {
	// Samples contains scripted readings.
	// Each read consumes the next sample; the last one repeats once exhausted.
	Samples []float64

	// index tracks current position in Samples
	index int

	// Calls counts reads, including failed ones.
	Calls int

	// ReadError, if set, will be returned by every read.
	ReadError error

	// FailCalls lists 0-based call indexes that return ErrScriptedFault.
	FailCalls map[int]bool
}

// ErrScriptedFault is returned for calls listed in FailCalls.
var ErrScriptedFault = errors.New("scripted sensor fault")

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...float64) *FakeReader {
	return &FakeReader{Samples: samples}
}

// ReadDistanceCm returns the next scripted sample.
func (f *FakeReader) ReadDistanceCm(ctx context.Context) (float64, error) {
	return f.next(ctx)
}

// ReadWeightGrams returns the next scripted sample.
func (f *FakeReader) ReadWeightGrams(ctx context.Context) (float64, error) {
	return f.next(ctx)
}

func (f *FakeReader) next(ctx context.Context) (float64, error) {
	call := f.Calls
	f.Calls++

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if f.FailCalls[call] {
		return 0, ErrScriptedFault
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// Reset rewinds the reader to the first sample.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Calls = 0
}
