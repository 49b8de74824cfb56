// Package sensor defines the sensor ports consumed by the control loops and
// wraps them with fault isolation.
package sensor

import "context"

// DistanceSensor reads the proximity of an object in front of the lid.
type DistanceSensor interface {
	// ReadDistanceCm returns the current distance in centimeters.
	ReadDistanceCm(ctx context.Context) (float64, error)
}

// WeightSensor reads the content weight of the bin.
type WeightSensor interface {
	// ReadWeightGrams returns the current weight in grams above tare.
	ReadWeightGrams(ctx context.Context) (float64, error)
}
