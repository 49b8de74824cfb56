// Command smart-bin runs an automatic trash bin: the lid opens when something
// is in front of it, and the bin raises a full alert and disinfects itself
// once it has been emptied.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/smart-bin/internal/config"
	"github.com/sweeney/smart-bin/internal/controller"
	"github.com/sweeney/smart-bin/internal/status"
)

func main() {
	configPath := flag.String("config", "/etc/smart-bin.yaml", "YAML config file (missing file uses defaults)")
	printState := flag.Bool("print-state", false, "Read both sensors once, print JSON and exit")
	overrides := registerOverrides(flag.CommandLine)

	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339Nano
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := loadConfig(*configPath, flag.CommandLine, overrides)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Validate has already rejected unknown levels
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *printState, os.Stdout, log); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

// loadConfig applies defaults, then the YAML file, then flags explicitly set
// on the command line, and validates the result.
func loadConfig(path string, fs *flag.FlagSet, o *overrides) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	o.apply(fs, cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, printState bool, out io.Writer, log zerolog.Logger) error {
	hw, err := openHardware(cfg, log)
	if err != nil {
		return err
	}
	defer hw.Close(log)

	if printState {
		return printSnapshot(ctx, cfg, hw, out, time.Now)
	}

	lidTicker := time.NewTicker(cfg.Lid.Poll)
	defer lidTicker.Stop()
	fillTicker := time.NewTicker(cfg.Fill.Poll)
	defer fillTicker.Stop()

	return runLoops(ctx, cfg, hw, log, time.Now, lidTicker.C, fillTicker.C)
}

func printSnapshot(ctx context.Context, cfg *config.Config, hw *hardware, out io.Writer, now func() time.Time) error {
	t := now()
	if err := hw.scale.Tare(ctx, cfg.Scale.TareSamples); err != nil {
		return fmt.Errorf("tare scale: %w", err)
	}
	dist, weight := status.ReadOnce(ctx, hw.distance, hw.weight)

	snap := status.Snapshot{
		StartTime: t,
		Now:       t,
		Distance:  &dist,
		Weight:    &weight,
		Config:    statusConfig(cfg),
	}
	_, err := fmt.Fprintln(out, string(status.FormatJSON(snap)))
	return err
}

// runLoops brings the bin to its initial state and runs both loops until
// ctx is cancelled. The loops share nothing.
func runLoops(ctx context.Context, cfg *config.Config, hw *hardware, log zerolog.Logger, now func() time.Time, lidTick, fillTick <-chan time.Time) error {
	startTime := now()

	if err := hw.lid.MoveLid(cfg.Lid.ClosedAngle); err != nil {
		return fmt.Errorf("close lid: %w", err)
	}
	if err := hw.scale.Tare(ctx, cfg.Scale.TareSamples); err != nil {
		return fmt.Errorf("tare scale: %w", err)
	}
	log.Info().Int32("offset", hw.scale.Offset()).Int("samples", cfg.Scale.TareSamples).Msg("scale tared")
	log.Info().
		Str("distance_source", cfg.Distance.Source).
		Bool("buzzer", hw.buzzer != nil).
		Msg("started")

	lidLoop := controller.NewLidLoop(cfg.LidLoop(), hw.distance, hw.lid, log, now)
	fillLoop := controller.NewFillLoop(cfg.FillLoop(), hw.weight, hw.indicators, hw.disinfect, hw.buzzer, log, now)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return lidLoop.Run(gctx, lidTick) })
	g.Go(func() error { return fillLoop.Run(gctx, fillTick) })
	err := g.Wait()

	// Both loops have returned, so their state is safe to read
	snap := status.Snapshot{
		StartTime: startTime,
		Now:       now(),
		Lid:       &status.LidView{State: lidLoop.State(), Counts: lidLoop.Counts()},
		Fill:      &status.FillView{State: fillLoop.State(), Counts: fillLoop.Counts()},
		Config:    statusConfig(cfg),
	}
	log.Info().RawJSON("summary", status.FormatCompact(snap)).Msg("shutting down")
	return err
}

func statusConfig(cfg *config.Config) status.Config {
	return status.Config{
		LidPollMs:        cfg.Lid.Poll.Milliseconds(),
		CloseDelayMs:     cfg.Lid.CloseDelay.Milliseconds(),
		OpenDistanceCm:   cfg.Lid.OpenDistanceCm,
		FillPollMs:       cfg.Fill.Poll.Milliseconds(),
		MaxWeightGrams:   cfg.Fill.MaxWeightGrams,
		DisinfectDelayMs: cfg.Fill.DisinfectDelay.Milliseconds(),
		HeartbeatMs:      cfg.Heartbeat.Milliseconds(),
		DistanceSource:   cfg.Distance.Source,
	}
}
