package sensor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Default breaker settings.
const (
	defaultMaxFailures uint32        = 5
	defaultTimeout     time.Duration = 10 * time.Second
)

// BreakerConfig configures sensor fault isolation.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive read failures that marks the sensor faulted.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long a faulted sensor is left alone before a trial read.
	Timeout time.Duration `yaml:"timeout"`
}

// Guard routes sensor reads through a circuit breaker. While the breaker is
// open, reads fail fast with gobreaker.ErrOpenState instead of touching the
// hardware, and Faulted reports true.
type Guard struct {
	cb *gobreaker.CircuitBreaker[float64]
}

// NewGuard creates a Guard. Zero-valued config fields take defaults.
func NewGuard(name string, cfg BreakerConfig, log zerolog.Logger) *Guard {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cb := gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        "sensor:" + name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ev := log.Warn()
			if to == gobreaker.StateClosed {
				ev = log.Info()
			}
			ev.Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("sensor breaker state change")
		},
		IsSuccessful: func(err error) bool {
			// Shutdown is not a sensor fault
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Guard{cb: cb}
}

// Read executes read through the breaker.
func (g *Guard) Read(ctx context.Context, read func(context.Context) (float64, error)) (float64, error) {
	return g.cb.Execute(func() (float64, error) {
		return read(ctx)
	})
}

// Faulted reports whether the sensor is currently considered faulted.
func (g *Guard) Faulted() bool {
	return g.cb.State() == gobreaker.StateOpen
}

// GuardedDistance is a DistanceSensor behind a Guard.
type GuardedDistance struct {
	*Guard
	inner DistanceSensor
}

// GuardDistance wraps inner with a circuit breaker.
func GuardDistance(inner DistanceSensor, cfg BreakerConfig, log zerolog.Logger) *GuardedDistance {
	return &GuardedDistance{Guard: NewGuard("distance", cfg, log), inner: inner}
}

// ReadDistanceCm implements DistanceSensor.
func (s *GuardedDistance) ReadDistanceCm(ctx context.Context) (float64, error) {
	return s.Read(ctx, s.inner.ReadDistanceCm)
}

// GuardedWeight is a WeightSensor behind a Guard.
type GuardedWeight struct {
	*Guard
	inner WeightSensor
}

// GuardWeight wraps inner with a circuit breaker.
func GuardWeight(inner WeightSensor, cfg BreakerConfig, log zerolog.Logger) *GuardedWeight {
	return &GuardedWeight{Guard: NewGuard("weight", cfg, log), inner: inner}
}

// ReadWeightGrams implements WeightSensor.
func (s *GuardedWeight) ReadWeightGrams(ctx context.Context) (float64, error) {
	return s.Read(ctx, s.inner.ReadWeightGrams)
}
