//go:build linux

package gpio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// release reconfigures a line to input with pull-down (matching Pi boot
// defaults) and closes it, so actuators are left de-energised.
func release(line *gpiocdev.Line, name string, errs []error) []error {
	if line == nil {
		return errs
	}
	if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
	}
	if err := line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
	}
	return errs
}

func joinErrs(errs []error) error {
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}

// Indicators drives the green and red status LEDs.
// Only the fill loop writes to it, so it holds no lock.
type Indicators struct {
	green   *gpiocdev.Line
	red     *gpiocdev.Line
	greenOn bool
	redOn   bool
}

// NewIndicators requests both LED lines as outputs, initially off.
func NewIndicators(chip string, pinGreen, pinRed int) (*Indicators, error) {
	green, err := gpiocdev.RequestLine(chip, pinGreen, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request green pin %d: %w", pinGreen, err)
	}

	red, err := gpiocdev.RequestLine(chip, pinRed, gpiocdev.AsOutput(0))
	if err != nil {
		green.Close()
		return nil, fmt.Errorf("request red pin %d: %w", pinRed, err)
	}

	return &Indicators{green: green, red: red}, nil
}

// SetGreen sets the green LED.
func (i *Indicators) SetGreen(on bool) error {
	if err := i.green.SetValue(level(on)); err != nil {
		return fmt.Errorf("set green pin: %w", err)
	}
	i.greenOn = on
	return nil
}

// SetRed sets the red LED.
func (i *Indicators) SetRed(on bool) error {
	if err := i.red.SetValue(level(on)); err != nil {
		return fmt.Errorf("set red pin: %w", err)
	}
	i.redOn = on
	return nil
}

// Toggle flips both LEDs.
func (i *Indicators) Toggle() error {
	if err := i.SetGreen(!i.greenOn); err != nil {
		return err
	}
	return i.SetRed(!i.redOn)
}

// Close turns the LEDs off and releases the lines.
func (i *Indicators) Close() error {
	var errs []error
	errs = release(i.green, "green", errs)
	errs = release(i.red, "red", errs)
	return joinErrs(errs)
}

// Pulser drives an output high for a fixed width. Used for the disinfect
// valve and the buzzer.
type Pulser struct {
	line  *gpiocdev.Line
	name  string
	width time.Duration
}

// NewPulser requests pin as an output, initially low.
func NewPulser(chip string, pin int, name string, width time.Duration) (*Pulser, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request %s pin %d: %w", name, pin, err)
	}
	return &Pulser{line: line, name: name, width: width}, nil
}

// Pulse drives the line high for the configured width, then low. The line is
// driven low even if ctx is cancelled mid-pulse.
func (p *Pulser) Pulse(ctx context.Context) error {
	if err := p.line.SetValue(1); err != nil {
		return fmt.Errorf("set %s pin high: %w", p.name, err)
	}

	timer := time.NewTimer(p.width)
	select {
	case <-ctx.Done():
		timer.Stop()
	case <-timer.C:
	}

	if err := p.line.SetValue(0); err != nil {
		return fmt.Errorf("set %s pin low: %w", p.name, err)
	}
	return ctx.Err()
}

// Close releases the line.
func (p *Pulser) Close() error {
	return joinErrs(release(p.line, p.name, nil))
}

// HCSR04 measures distance with an HC-SR04 ultrasonic ranger. The echo
// width is taken from kernel edge timestamps rather than user-space timing.
type HCSR04 struct {
	trigger *gpiocdev.Line
	echo    *gpiocdev.Line
	events  chan gpiocdev.LineEvent
	timeout time.Duration
}

// NewHCSR04 requests the trigger line as output and the echo line with edge
// detection on both edges.
func NewHCSR04(chip string, pinTrigger, pinEcho int) (*HCSR04, error) {
	h := &HCSR04{
		events:  make(chan gpiocdev.LineEvent, 8),
		timeout: echoTimeout,
	}

	trigger, err := gpiocdev.RequestLine(chip, pinTrigger, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request trigger pin %d: %w", pinTrigger, err)
	}

	echo, err := gpiocdev.RequestLine(chip, pinEcho,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(h.handleEvent))
	if err != nil {
		trigger.Close()
		return nil, fmt.Errorf("request echo pin %d: %w", pinEcho, err)
	}

	h.trigger = trigger
	h.echo = echo
	return h, nil
}

// handleEvent runs on the gpiocdev watcher goroutine.
func (h *HCSR04) handleEvent(evt gpiocdev.LineEvent) {
	select {
	case h.events <- evt:
	default:
		// Reader is not waiting; stale edges are dropped
	}
}

// ReadDistanceCm triggers one measurement and returns the distance.
func (h *HCSR04) ReadDistanceCm(ctx context.Context) (float64, error) {
	h.drain()

	if err := h.trigger.SetValue(1); err != nil {
		return 0, fmt.Errorf("set trigger high: %w", err)
	}
	time.Sleep(triggerWidth)
	if err := h.trigger.SetValue(0); err != nil {
		return 0, fmt.Errorf("set trigger low: %w", err)
	}

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	var rise time.Duration
	var gotRise bool
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
			return 0, ErrNoEcho
		case evt := <-h.events:
			switch evt.Type {
			case gpiocdev.LineEventRisingEdge:
				rise = evt.Timestamp
				gotRise = true
			case gpiocdev.LineEventFallingEdge:
				if !gotRise {
					continue
				}
				return EchoToCm(evt.Timestamp - rise), nil
			}
		}
	}
}

func (h *HCSR04) drain() {
	for {
		select {
		case <-h.events:
		default:
			return
		}
	}
}

// Close releases both lines.
func (h *HCSR04) Close() error {
	var errs []error
	errs = release(h.trigger, "trigger", errs)
	errs = release(h.echo, "echo", errs)
	return joinErrs(errs)
}

// HX711Pins exposes the HX711 clock and data lines to the hx711 package.
type HX711Pins struct {
	clock *gpiocdev.Line
	data  *gpiocdev.Line
}

// NewHX711Pins requests PD_SCK as output (low, chip powered) and DOUT as input.
func NewHX711Pins(chip string, pinClock, pinData int) (*HX711Pins, error) {
	clock, err := gpiocdev.RequestLine(chip, pinClock, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request hx711 clock pin %d: %w", pinClock, err)
	}

	data, err := gpiocdev.RequestLine(chip, pinData, gpiocdev.AsInput)
	if err != nil {
		clock.Close()
		return nil, fmt.Errorf("request hx711 data pin %d: %w", pinData, err)
	}

	return &HX711Pins{clock: clock, data: data}, nil
}

// SetClock drives PD_SCK.
func (p *HX711Pins) SetClock(high bool) error {
	return p.clock.SetValue(level(high))
}

// Data samples DOUT.
func (p *HX711Pins) Data() (bool, error) {
	v, err := p.data.Value()
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// Close releases both lines.
func (p *HX711Pins) Close() error {
	var errs []error
	errs = release(p.clock, "hx711 clock", errs)
	errs = release(p.data, "hx711 data", errs)
	return joinErrs(errs)
}
