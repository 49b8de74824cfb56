//go:build tinygo

// Firmware for the bin on an RP2040 board. It runs the same decision logic
// as the Linux daemon, with each loop in its own goroutine.
package main

import (
	"context"
	"errors"
	"machine"
	"math"
	"time"

	"tinygo.org/x/drivers/hcsr04"
	"tinygo.org/x/drivers/servo"

	"github.com/sweeney/smart-bin/internal/hx711"
	"github.com/sweeney/smart-bin/internal/logic"
)

func main() {
	pins := PinConfig{
		Trigger:   machine.GP2,
		Echo:      machine.GP3,
		ServoPWM:  machine.PWM3,
		Servo:     machine.GP22,
		HX711SCK:  machine.GP4,
		HX711DOUT: machine.GP5,
		Green:     machine.GP14,
		Red:       machine.GP15,
		Disinfect: machine.GP16,
		Buzzer:    machine.GP17,
	}

	cfg := BinConfig{
		DistancePoll:   100 * time.Millisecond,
		CloseDelay:     3000 * time.Millisecond,
		OpenDistanceCm: 15,
		OpenedAngle:    90,
		ClosedAngle:    -90,
		WeightPoll:     300 * time.Millisecond,
		MaxWeightGrams: 300,
		DisinfectDelay: 5000 * time.Millisecond,
		DisinfectPulse: 100 * time.Millisecond,
		BuzzerPulse:    200 * time.Millisecond,
		CountsPerGram:  100,
		TareSamples:    10,
	}

	b, err := newBin(pins, cfg)
	if err != nil {
		panic(err)
	}

	go b.lidLoop()
	go b.fillLoop()
	select {}
}

type bin struct {
	cfg    BinConfig
	ranger hcsr04.Device
	lid    servo.Servo
	scale  *hx711.Scale

	green, red, disinfect, buzzer machine.Pin
	greenOn, redOn                bool
}

func newBin(pins PinConfig, cfg BinConfig) (*bin, error) {
	b := &bin{
		cfg:       cfg,
		ranger:    hcsr04.New(pins.Trigger, pins.Echo),
		green:     pins.Green,
		red:       pins.Red,
		disinfect: pins.Disinfect,
		buzzer:    pins.Buzzer,
	}
	b.ranger.Configure()

	for _, p := range []machine.Pin{b.green, b.red, b.disinfect, b.buzzer} {
		if p == machine.NoPin {
			continue
		}
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}

	lid, err := servo.New(pins.ServoPWM, pins.Servo)
	if err != nil {
		return nil, errors.New("error creating servo: " + err.Error())
	}
	b.lid = lid
	if err := b.moveLid(cfg.ClosedAngle); err != nil {
		return nil, errors.New("error closing lid: " + err.Error())
	}

	pins.HX711SCK.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pins.HX711DOUT.Configure(machine.PinConfig{Mode: machine.PinInput})
	dev := hx711.New(hx711Pins{clock: pins.HX711SCK, data: pins.HX711DOUT}, hx711.GainA128)
	b.scale = hx711.NewScale(dev, cfg.CountsPerGram)
	if err := b.scale.Tare(context.Background(), cfg.TareSamples); err != nil {
		return nil, errors.New("error taring scale: " + err.Error())
	}

	return b, nil
}

// moveLid takes an angle in [-90, 90]; the servo driver counts from 0.
func (b *bin) moveLid(angle int) error {
	return b.lid.SetAngle(angle + 90)
}

func (b *bin) lidLoop() {
	ctrl := logic.NewLidController(b.cfg.OpenDistanceCm, logic.Cycles(b.cfg.CloseDelay, b.cfg.DistancePoll))

	for {
		// The driver reports 0 when no echo came back
		d := math.NaN()
		if mm := b.ranger.ReadDistance(); mm > 0 {
			d = float64(mm) / 10
		}

		var err error
		switch ctrl.Process(d) {
		case logic.LidOpen:
			err = b.moveLid(b.cfg.OpenedAngle)
		case logic.LidClose:
			err = b.moveLid(b.cfg.ClosedAngle)
		}
		if err != nil {
			println("error moving lid:", err.Error())
		}

		time.Sleep(b.cfg.DistancePoll)
	}
}

func (b *bin) fillLoop() {
	fill := logic.NewFillMachine(b.cfg.MaxWeightGrams, logic.Cycles(b.cfg.DisinfectDelay, b.cfg.WeightPoll))
	ctx := context.Background()

	for {
		w, err := b.scale.ReadWeightGrams(ctx)
		if err != nil {
			println("error reading weight:", err.Error())
			w = math.NaN()
		}

		before := fill.Phase()
		for _, a := range fill.Process(w) {
			b.apply(a)
		}
		if after := fill.Phase(); after != before {
			println("fill:", string(before), "->", string(after))
		}

		time.Sleep(b.cfg.WeightPoll)
	}
}

func (b *bin) apply(a logic.Action) {
	switch a {
	case logic.ActionShowRed:
		b.setLEDs(false, true)
	case logic.ActionShowGreen:
		b.setLEDs(true, false)
	case logic.ActionToggleIndicators:
		b.setLEDs(!b.greenOn, !b.redOn)
	case logic.ActionSoundAlert:
		pulse(b.buzzer, b.cfg.BuzzerPulse)
	case logic.ActionPulseDisinfect:
		pulse(b.disinfect, b.cfg.DisinfectPulse)
	}
}

func (b *bin) setLEDs(green, red bool) {
	b.greenOn, b.redOn = green, red
	b.green.Set(green)
	b.red.Set(red)
}

func pulse(p machine.Pin, width time.Duration) {
	if p == machine.NoPin {
		return
	}
	p.High()
	time.Sleep(width)
	p.Low()
}

// hx711Pins drives the HX711 from two GPIO pins.
type hx711Pins struct {
	clock, data machine.Pin
}

func (p hx711Pins) SetClock(high bool) error {
	p.clock.Set(high)
	return nil
}

func (p hx711Pins) Data() (bool, error) {
	return p.data.Get(), nil
}
