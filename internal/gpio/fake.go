package gpio

import (
	"context"
	"sync"
)

// FakeIndicators records LED commands for test assertions.
type FakeIndicators struct {
	Green bool
	Red   bool

	// Toggles counts Toggle calls.
	Toggles int

	// Err, if set, will be returned by every command.
	Err error
}

// NewFakeIndicators creates FakeIndicators with both LEDs off.
func NewFakeIndicators() *FakeIndicators {
	return &FakeIndicators{}
}

// SetGreen records the green LED state.
func (f *FakeIndicators) SetGreen(on bool) error {
	if f.Err != nil {
		return f.Err
	}
	f.Green = on
	return nil
}

// SetRed records the red LED state.
func (f *FakeIndicators) SetRed(on bool) error {
	if f.Err != nil {
		return f.Err
	}
	f.Red = on
	return nil
}

// Toggle flips both LEDs.
func (f *FakeIndicators) Toggle() error {
	if f.Err != nil {
		return f.Err
	}
	f.Green = !f.Green
	f.Red = !f.Red
	f.Toggles++
	return nil
}

// Close is a no-op.
func (f *FakeIndicators) Close() error {
	return nil
}

// FakePulser counts pulses. It is safe for concurrent use so tests can poll
// it while a loop is running.
type FakePulser struct {
	mu     sync.Mutex
	pulses int

	// Err, if set, will be returned by Pulse.
	Err error
}

// NewFakePulser creates a FakePulser.
func NewFakePulser() *FakePulser {
	return &FakePulser{}
}

// Pulse records a pulse.
func (f *FakePulser) Pulse(ctx context.Context) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	f.pulses++
	f.mu.Unlock()
	return nil
}

// Pulses returns the number of recorded pulses.
func (f *FakePulser) Pulses() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulses
}

// Close is a no-op.
func (f *FakePulser) Close() error {
	return nil
}
