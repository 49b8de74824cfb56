// Package gpio drives the bin's GPIO lines through the Linux GPIO character
// device: status LEDs, the disinfect and buzzer outputs, the HC-SR04 ranger
// and the HX711 clock/data pair.
// The fake implementations allow testing without hardware.
package gpio

import (
	"errors"
	"time"
)

// ErrNoEcho is returned when the HC-SR04 does not answer a trigger in time.
var ErrNoEcho = errors.New("gpio: no echo")

// DefaultChip is the GPIO character device used on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// Pin definitions (BCM numbering)
const (
	DefaultPinTrigger   = 23 // HC-SR04 TRIG
	DefaultPinEcho      = 24 // HC-SR04 ECHO (through a 5V -> 3.3V divider)
	DefaultPinHX711SCK  = 5
	DefaultPinHX711DOUT = 6
	DefaultPinGreen     = 17
	DefaultPinRed       = 27
	DefaultPinDisinfect = 22
	DefaultPinBuzzer    = 25
)

const (
	// triggerWidth is the HC-SR04 trigger pulse length (datasheet minimum 10µs).
	triggerWidth = 10 * time.Microsecond

	// echoTimeout bounds a measurement. The HC-SR04 echo is at most ~38ms
	// (no obstacle), beyond that no edge is coming.
	echoTimeout = 60 * time.Millisecond

	// usPerCm is the round-trip time of sound per centimeter at ~20°C.
	usPerCm = 58.0
)

// EchoToCm converts an HC-SR04 echo pulse width into centimeters.
func EchoToCm(echo time.Duration) float64 {
	return float64(echo.Microseconds()) / usPerCm
}
