package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/sweeney/smart-bin/internal/config"
	"github.com/sweeney/smart-bin/internal/controller"
	"github.com/sweeney/smart-bin/internal/gpio"
	"github.com/sweeney/smart-bin/internal/hx711"
	"github.com/sweeney/smart-bin/internal/sensor"
	"github.com/sweeney/smart-bin/internal/serialsensor"
	"github.com/sweeney/smart-bin/internal/servo"
)

// tareScale zeroes the load cell.
type tareScale interface {
	Tare(ctx context.Context, samples int) error
	Offset() int32
}

type namedCloser struct {
	name string
	c    io.Closer
}

// hardware is everything the loops drive. Fields are interfaces so tests
// can substitute fakes.
type hardware struct {
	distance   sensor.DistanceSensor
	weight     sensor.WeightSensor
	scale      tareScale
	lid        controller.Lid
	indicators controller.Indicators
	disinfect  controller.Pulser
	buzzer     controller.Pulser // nil when not fitted

	closers []namedCloser
}

func (h *hardware) track(name string, c io.Closer) {
	h.closers = append(h.closers, namedCloser{name: name, c: c})
}

// Close releases everything in reverse order of opening.
func (h *hardware) Close(log zerolog.Logger) {
	for i := len(h.closers) - 1; i >= 0; i-- {
		nc := h.closers[i]
		if err := nc.c.Close(); err != nil {
			log.Warn().Err(err).Str("device", nc.name).Msg("release failed")
		}
	}
	h.closers = nil
}

// openHardware initialises every device named in cfg. On error, whatever
// was already opened is released.
func openHardware(cfg *config.Config, log zerolog.Logger) (_ *hardware, err error) {
	hw := &hardware{}
	defer func() {
		if err != nil {
			hw.Close(log)
		}
	}()

	chip := cfg.Pins.Chip

	var rawDistance sensor.DistanceSensor
	switch cfg.Distance.Source {
	case config.SourceSerial:
		ranger, err := serialsensor.Open(cfg.Distance.SerialPort, cfg.Distance.Serial)
		if err != nil {
			return nil, fmt.Errorf("init serial ranger: %w", err)
		}
		hw.track("serial ranger", ranger)
		rawDistance = ranger
	default:
		hcsr04, err := gpio.NewHCSR04(chip, cfg.Pins.Trigger, cfg.Pins.Echo)
		if err != nil {
			return nil, fmt.Errorf("init hc-sr04: %w", err)
		}
		hw.track("hc-sr04", hcsr04)
		rawDistance = hcsr04
	}
	hw.distance = sensor.GuardDistance(rawDistance, cfg.Breaker, log.With().Str("sensor", "distance").Logger())

	pins, err := gpio.NewHX711Pins(chip, cfg.Pins.HX711SCK, cfg.Pins.HX711DOUT)
	if err != nil {
		return nil, fmt.Errorf("init hx711: %w", err)
	}
	hw.track("hx711", pins)
	dev := hx711.New(pins, cfg.HX711Gain())
	if err := dev.PowerUp(); err != nil {
		return nil, fmt.Errorf("power up hx711: %w", err)
	}
	loadCell := hx711.NewScale(dev, cfg.Scale.CountsPerGram)
	// Closed before the pins are released
	hw.track("hx711 power", loadCell)
	hw.scale = loadCell
	hw.weight = sensor.GuardWeight(loadCell, cfg.Breaker, log.With().Str("sensor", "weight").Logger())

	lid, err := servo.Open(cfg.Lid.ServoPin)
	if err != nil {
		return nil, fmt.Errorf("init servo: %w", err)
	}
	hw.track("servo", lid)
	hw.lid = lid

	leds, err := gpio.NewIndicators(chip, cfg.Pins.Green, cfg.Pins.Red)
	if err != nil {
		return nil, fmt.Errorf("init indicators: %w", err)
	}
	hw.track("indicators", leds)
	hw.indicators = leds

	disinfect, err := gpio.NewPulser(chip, cfg.Pins.Disinfect, "smart-bin-disinfect", cfg.Fill.DisinfectPulse)
	if err != nil {
		return nil, fmt.Errorf("init disinfect output: %w", err)
	}
	hw.track("disinfect", disinfect)
	hw.disinfect = disinfect

	if cfg.BuzzerEnabled() {
		buzzer, err := gpio.NewPulser(chip, cfg.Pins.Buzzer, "smart-bin-buzzer", cfg.Fill.BuzzerPulse)
		if err != nil {
			return nil, fmt.Errorf("init buzzer: %w", err)
		}
		hw.track("buzzer", buzzer)
		hw.buzzer = buzzer
	}

	return hw, nil
}
