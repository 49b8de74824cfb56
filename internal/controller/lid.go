package controller

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/smart-bin/internal/logic"
	"github.com/sweeney/smart-bin/internal/sensor"
)

// LidConfig configures the lid loop.
type LidConfig struct {
	Poll           time.Duration
	CloseDelay     time.Duration
	OpenDistanceCm float64
	OpenedAngle    int
	ClosedAngle    int
	Heartbeat      time.Duration
}

// LidLoop keeps the lid open while something is in front of the bin.
type LidLoop struct {
	cfg       LidConfig
	sensor    sensor.DistanceSensor
	lid       Lid
	ctrl      *logic.LidController
	heartbeat *logic.Heartbeat
	now       func() time.Time
	log       zerolog.Logger
}

// NewLidLoop creates the lid loop. now is the clock used for heartbeats.
func NewLidLoop(cfg LidConfig, s sensor.DistanceSensor, lid Lid, log zerolog.Logger, now func() time.Time) *LidLoop {
	return &LidLoop{
		cfg:       cfg,
		sensor:    s,
		lid:       lid,
		ctrl:      logic.NewLidController(cfg.OpenDistanceCm, logic.Cycles(cfg.CloseDelay, cfg.Poll)),
		heartbeat: logic.NewHeartbeat(cfg.Heartbeat, now()),
		now:       now,
		log:       log.With().Str("loop", "lid").Logger(),
	}
}

// Step runs one read-decide-act iteration.
func (l *LidLoop) Step(ctx context.Context) logic.LidCommand {
	raw, err := l.sensor.ReadDistanceCm(ctx)
	d, ok := readingOrNaN(ctx, l.log, "distance", raw, err)
	if !ok {
		return logic.LidHold
	}

	before := l.ctrl.State().Position
	cmd := l.ctrl.Process(d)

	switch cmd {
	case logic.LidOpen:
		l.move(l.cfg.OpenedAngle)
	case logic.LidClose:
		l.move(l.cfg.ClosedAngle)
	}

	st := l.ctrl.State()
	if st.Position != before {
		l.log.Info().
			Str("position", string(st.Position)).
			Float64("distance_cm", d).
			Msg("lid moved")
	} else {
		l.log.Debug().
			Str("command", string(cmd)).
			Float64("distance_cm", d).
			Int("counter", st.Counter).
			Msg("lid sample")
	}

	if hb := l.heartbeat.Check(l.now()); hb != nil {
		counts := l.ctrl.Counts()
		l.log.Info().
			Dur("uptime", hb.Uptime).
			Str("position", string(st.Position)).
			Int("opened", counts.Opened).
			Int("closed", counts.Closed).
			Bool("sensor_faulted", sensorFaulted(l.sensor)).
			Msg("heartbeat")
	}

	return cmd
}

func (l *LidLoop) move(angle int) {
	if err := l.lid.MoveLid(angle); err != nil {
		l.log.Error().Err(err).Int("angle", angle).Msg("lid actuator failed")
	}
}

// Run calls Step on every tick until ctx is cancelled.
func (l *LidLoop) Run(ctx context.Context, tick <-chan time.Time) error {
	l.log.Info().
		Dur("poll", l.cfg.Poll).
		Float64("open_distance_cm", l.cfg.OpenDistanceCm).
		Int("close_cycles", l.ctrl.CloseCycles()).
		Msg("lid loop started")

	for {
		select {
		case <-ctx.Done():
			l.log.Info().Msg("lid loop stopped")
			return nil
		case <-tick:
			l.Step(ctx)
		}
	}
}

// State returns the lid state. Only call it from the loop's goroutine or
// after Run has returned.
func (l *LidLoop) State() logic.LidState {
	return l.ctrl.State()
}

// Counts returns the lid transition counts. Same restriction as State.
func (l *LidLoop) Counts() logic.LidCounts {
	return l.ctrl.Counts()
}
