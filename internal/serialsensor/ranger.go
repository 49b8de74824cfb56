// Package serialsensor reads UART ultrasonic rangers (A02YYUW family) that
// stream 4-byte distance frames: 0xFF, high byte, low byte, checksum.
package serialsensor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

const (
	frameHeader = 0xFF
	frameLen    = 4

	// The sensor emits a frame roughly every 100ms.
	defaultFrameTimeout = 500 * time.Millisecond
	readChunk           = 32
)

var (
	// ErrBadFrame is returned by ParseFrame for a malformed frame.
	ErrBadFrame = errors.New("serialsensor: bad frame")
	// ErrNoFrame is returned when no valid frame arrives in time.
	ErrNoFrame = errors.New("serialsensor: no frame received")
)

// ParseFrame decodes one frame and returns the distance in millimeters.
func ParseFrame(b []byte) (int, error) {
	if len(b) != frameLen || b[0] != frameHeader {
		return 0, ErrBadFrame
	}
	if byte(int(b[0])+int(b[1])+int(b[2])) != b[3] {
		return 0, fmt.Errorf("%w: checksum mismatch", ErrBadFrame)
	}
	return int(b[1])<<8 | int(b[2]), nil
}

// Port is the subset of serial.Port the ranger uses.
type Port interface {
	io.Reader
	ResetInputBuffer() error
	Close() error
}

// Ranger reads distances from a UART ranger.
type Ranger struct {
	port         Port
	frameTimeout time.Duration
	buf          []byte
}

// Open opens the serial port at path and returns a Ranger on it.
func Open(path string, opts PortOptions) (*Ranger, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	return NewRanger(port), nil
}

// NewRanger creates a Ranger on an already opened port.
func NewRanger(port Port) *Ranger {
	return &Ranger{
		port:         port,
		frameTimeout: defaultFrameTimeout,
	}
}

// ReadDistanceCm discards buffered input and returns the next valid frame,
// converted to centimeters.
func (r *Ranger) ReadDistanceCm(ctx context.Context) (float64, error) {
	if err := r.port.ResetInputBuffer(); err != nil {
		return 0, fmt.Errorf("reset input buffer: %w", err)
	}
	r.buf = r.buf[:0]

	deadline := time.Now().Add(r.frameTimeout)
	chunk := make([]byte, readChunk)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		n, err := r.port.Read(chunk)
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("read serial: %w", err)
		}
		r.buf = append(r.buf, chunk[:n]...)

		if mm, ok := r.scan(); ok {
			return float64(mm) / 10, nil
		}
	}
	return 0, ErrNoFrame
}

// scan looks for a valid frame in the buffer, dropping bytes before it.
func (r *Ranger) scan() (int, bool) {
	for len(r.buf) >= frameLen {
		if r.buf[0] != frameHeader {
			r.buf = r.buf[1:]
			continue
		}
		mm, err := ParseFrame(r.buf[:frameLen])
		if err != nil {
			// Resync on the next byte
			r.buf = r.buf[1:]
			continue
		}
		r.buf = r.buf[frameLen:]
		return mm, true
	}
	return 0, false
}

// Close closes the serial port.
func (r *Ranger) Close() error {
	return r.port.Close()
}
