package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/smart-bin/internal/logic"
	"github.com/sweeney/smart-bin/internal/sensor"
)

// FillConfig configures the fill/disinfect loop.
type FillConfig struct {
	Poll           time.Duration
	MaxWeightGrams float64
	DisinfectDelay time.Duration
	Heartbeat      time.Duration
}

// FillLoop watches the bin weight, raises the full alert and disinfects the
// bin once it has been emptied.
type FillLoop struct {
	cfg        FillConfig
	sensor     sensor.WeightSensor
	indicators Indicators
	disinfect  Pulser
	buzzer     Pulser // optional
	machine    *logic.FillMachine
	heartbeat  *logic.Heartbeat
	now        func() time.Time
	log        zerolog.Logger
}

// NewFillLoop creates the fill loop. buzzer may be nil.
func NewFillLoop(cfg FillConfig, s sensor.WeightSensor, indicators Indicators, disinfect, buzzer Pulser, log zerolog.Logger, now func() time.Time) *FillLoop {
	return &FillLoop{
		cfg:        cfg,
		sensor:     s,
		indicators: indicators,
		disinfect:  disinfect,
		buzzer:     buzzer,
		machine:    logic.NewFillMachine(cfg.MaxWeightGrams, logic.Cycles(cfg.DisinfectDelay, cfg.Poll)),
		heartbeat:  logic.NewHeartbeat(cfg.Heartbeat, now()),
		now:        now,
		log:        log.With().Str("loop", "fill").Logger(),
	}
}

// Step runs one read-decide-act iteration and returns the applied actions.
func (f *FillLoop) Step(ctx context.Context) []logic.Action {
	raw, err := f.sensor.ReadWeightGrams(ctx)
	w, ok := readingOrNaN(ctx, f.log, "weight", raw, err)
	if !ok {
		return nil
	}

	before := f.machine.Phase()
	actions := f.machine.Process(w)

	for _, a := range actions {
		if err := f.apply(ctx, a); err != nil {
			f.log.Error().Err(err).Str("action", string(a)).Msg("fill actuator failed")
		}
	}

	st := f.machine.State()
	if st.Phase != before {
		counts := f.machine.Counts()
		f.log.Info().
			Str("from", string(before)).
			Str("to", string(st.Phase)).
			Float64("weight_g", w).
			Int("filled", counts.Filled).
			Int("disinfected", counts.Disinfected).
			Int("aborted", counts.Aborted).
			Msg("fill phase changed")
	} else {
		f.log.Debug().
			Str("phase", string(st.Phase)).
			Float64("weight_g", w).
			Int("disinfect_counter", st.DisinfectCounter).
			Msg("weight sample")
	}

	if hb := f.heartbeat.Check(f.now()); hb != nil {
		counts := f.machine.Counts()
		f.log.Info().
			Dur("uptime", hb.Uptime).
			Str("phase", string(st.Phase)).
			Int("filled", counts.Filled).
			Int("disinfected", counts.Disinfected).
			Int("aborted", counts.Aborted).
			Bool("sensor_faulted", sensorFaulted(f.sensor)).
			Msg("heartbeat")
	}

	return actions
}

func (f *FillLoop) apply(ctx context.Context, a logic.Action) error {
	switch a {
	case logic.ActionShowRed:
		// Both writes are attempted so a dead green line cannot hide the alert
		return errors.Join(f.indicators.SetGreen(false), f.indicators.SetRed(true))
	case logic.ActionShowGreen:
		return errors.Join(f.indicators.SetRed(false), f.indicators.SetGreen(true))
	case logic.ActionToggleIndicators:
		return f.indicators.Toggle()
	case logic.ActionSoundAlert:
		if f.buzzer == nil {
			return nil
		}
		f.log.Info().Msg("bin full, sounding alert")
		return f.buzzer.Pulse(ctx)
	case logic.ActionPulseDisinfect:
		f.log.Info().Msg("disinfecting")
		return f.disinfect.Pulse(ctx)
	}
	return fmt.Errorf("unknown action %q", a)
}

// Run calls Step on every tick until ctx is cancelled.
func (f *FillLoop) Run(ctx context.Context, tick <-chan time.Time) error {
	f.log.Info().
		Dur("poll", f.cfg.Poll).
		Float64("max_weight_g", f.cfg.MaxWeightGrams).
		Int("disinfect_cycles", f.machine.DisinfectCycles()).
		Msg("fill loop started")

	for {
		select {
		case <-ctx.Done():
			f.log.Info().Msg("fill loop stopped")
			return nil
		case <-tick:
			f.Step(ctx)
		}
	}
}

// State returns the fill state. Only call it from the loop's goroutine or
// after Run has returned.
func (f *FillLoop) State() logic.FillState {
	return f.machine.State()
}

// Counts returns the fill cycle counts. Same restriction as State.
func (f *FillLoop) Counts() logic.FillCounts {
	return f.machine.Counts()
}
