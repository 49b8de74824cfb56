// Package status renders point-in-time views of the bin: a one-shot sensor
// read for -print-state and the loop summary logged at shutdown.
package status

import (
	"context"
	"time"

	"github.com/sweeney/smart-bin/internal/logic"
	"github.com/sweeney/smart-bin/internal/sensor"
)

// Config contains daemon configuration for display.
type Config struct {
	LidPollMs        int64
	CloseDelayMs     int64
	OpenDistanceCm   float64
	FillPollMs       int64
	MaxWeightGrams   float64
	DisinfectDelayMs int64
	HeartbeatMs      int64
	DistanceSource   string
}

// Reading is the outcome of a single sensor read.
type Reading struct {
	Value float64
	Err   error
}

// LidView is the lid loop's state and counters.
type LidView struct {
	State  logic.LidState
	Counts logic.LidCounts
}

// FillView is the fill loop's state and counters.
type FillView struct {
	State  logic.FillState
	Counts logic.FillCounts
}

// Snapshot is a point-in-time view of the bin. Nil parts are omitted from
// the output.
type Snapshot struct {
	StartTime time.Time
	Now       time.Time
	Distance  *Reading
	Weight    *Reading
	Lid       *LidView
	Fill      *FillView
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// ReadOnce reads each sensor once. A failed read is recorded, not returned.
func ReadOnce(ctx context.Context, distance sensor.DistanceSensor, weight sensor.WeightSensor) (dist, w Reading) {
	dist.Value, dist.Err = distance.ReadDistanceCm(ctx)
	w.Value, w.Err = weight.ReadWeightGrams(ctx)
	return dist, w
}
