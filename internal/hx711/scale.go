package hx711

import (
	"context"
	"errors"
	"fmt"
)

// Scale converts raw HX711 readings into grams.
type Scale struct {
	dev           *Device
	countsPerGram float64
	offset        int32
}

// NewScale creates a Scale. countsPerGram is the calibration gain: raw
// counts per gram above the tare offset.
func NewScale(dev *Device, countsPerGram float64) *Scale {
	if countsPerGram == 0 {
		countsPerGram = 1
	}
	return &Scale{dev: dev, countsPerGram: countsPerGram}
}

// Tare averages samples raw readings and stores the result as the zero offset.
func (s *Scale) Tare(ctx context.Context, samples int) error {
	if samples <= 0 {
		return errors.New("hx711: tare needs at least one sample")
	}

	var sum int64
	for i := 0; i < samples; i++ {
		raw, err := s.dev.ReadRaw(ctx)
		if err != nil {
			return fmt.Errorf("tare sample %d: %w", i, err)
		}
		sum += int64(raw)
	}
	s.offset = int32(sum / int64(samples))
	return nil
}

// ReadWeightGrams reads one conversion and returns the weight above tare.
func (s *Scale) ReadWeightGrams(ctx context.Context) (float64, error) {
	raw, err := s.dev.ReadRaw(ctx)
	if err != nil {
		return 0, err
	}
	return float64(raw-s.offset) / s.countsPerGram, nil
}

// Offset returns the current tare offset in raw counts.
func (s *Scale) Offset() int32 {
	return s.offset
}

// Close powers the chip down. It stays down until the clock line next goes low.
func (s *Scale) Close() error {
	return s.dev.PowerDown()
}
