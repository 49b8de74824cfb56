package serialsensor

import (
	"bytes"
	"io"
)

// FakePort is an in-memory Port. Data is served in chunks of at most
// ChunkSize bytes to mimic short serial reads.
type FakePort struct {
	Data      []byte
	ChunkSize int

	r       *bytes.Reader
	Resets  int
	Closed  bool
	ReadErr error
}

// NewFakePort creates a FakePort serving data.
func NewFakePort(data []byte) *FakePort {
	return &FakePort{Data: data, ChunkSize: 3}
}

// Read implements io.Reader.
func (f *FakePort) Read(p []byte) (int, error) {
	if f.ReadErr != nil {
		return 0, f.ReadErr
	}
	if f.r == nil {
		f.r = bytes.NewReader(f.Data)
	}
	if f.ChunkSize > 0 && len(p) > f.ChunkSize {
		p = p[:f.ChunkSize]
	}
	n, err := f.r.Read(p)
	if err == io.EOF {
		// A serial port with a read timeout returns 0, nil when idle
		return n, nil
	}
	return n, err
}

// ResetInputBuffer records the flush. Buffered data is kept so tests can
// script the bytes that arrive after it.
func (f *FakePort) ResetInputBuffer() error {
	f.Resets++
	return nil
}

// Close marks the port closed.
func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}

// Frame builds a valid frame for a distance in millimeters.
func Frame(mm int) []byte {
	hi, lo := byte(mm>>8), byte(mm)
	return []byte{frameHeader, hi, lo, byte(int(frameHeader) + int(hi) + int(lo))}
}
