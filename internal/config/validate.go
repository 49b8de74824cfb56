package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sweeney/smart-bin/internal/servo"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for correctness. It returns a *ValidationError
// listing every problem found.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateGeneral(cfg, ve)
	validateLid(cfg, ve)
	validateFill(cfg, ve)
	validateScale(cfg, ve)
	validateDistance(cfg, ve)
	validatePins(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateGeneral(cfg *Config, ve *ValidationError) {
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		ve.Add("log_level %q is not a valid level", cfg.LogLevel)
	}
	if cfg.Heartbeat < 0 {
		ve.Add("heartbeat must be >= 0")
	}
	if cfg.Breaker.Timeout < 0 {
		ve.Add("breaker.timeout must be >= 0")
	}
}

func validateLid(cfg *Config, ve *ValidationError) {
	if cfg.Lid.Poll <= 0 {
		ve.Add("lid.poll must be > 0")
	}
	if cfg.Lid.CloseDelay < 0 {
		ve.Add("lid.close_delay must be >= 0")
	}
	if cfg.Lid.OpenDistanceCm <= 0 {
		ve.Add("lid.open_distance_cm must be > 0")
	}
	checkAngle(ve, "lid.opened_angle", cfg.Lid.OpenedAngle)
	checkAngle(ve, "lid.closed_angle", cfg.Lid.ClosedAngle)
	if cfg.Lid.OpenedAngle == cfg.Lid.ClosedAngle {
		ve.Add("lid.opened_angle and lid.closed_angle must differ")
	}
	if cfg.Lid.ServoPin == "" {
		ve.Add("lid.servo_pin must not be empty")
	}
}

func checkAngle(ve *ValidationError, name string, angle int) {
	if angle < servo.MinAngle || angle > servo.MaxAngle {
		ve.Add("%s must be within [%d, %d]", name, servo.MinAngle, servo.MaxAngle)
	}
}

func validateFill(cfg *Config, ve *ValidationError) {
	if cfg.Fill.Poll <= 0 {
		ve.Add("fill.poll must be > 0")
	}
	if cfg.Fill.MaxWeightGrams <= 0 {
		ve.Add("fill.max_weight_grams must be > 0")
	}
	if cfg.Fill.DisinfectDelay < 0 {
		ve.Add("fill.disinfect_delay must be >= 0")
	}
	if cfg.Fill.DisinfectPulse <= 0 {
		ve.Add("fill.disinfect_pulse must be > 0")
	}
	if cfg.BuzzerEnabled() && cfg.Fill.BuzzerPulse <= 0 {
		ve.Add("fill.buzzer_pulse must be > 0")
	}
}

func validateScale(cfg *Config, ve *ValidationError) {
	if cfg.Scale.CountsPerGram == 0 {
		ve.Add("scale.counts_per_gram must not be 0")
	}
	if cfg.Scale.TareSamples <= 0 {
		ve.Add("scale.tare_samples must be > 0")
	}
	switch cfg.Scale.Gain {
	case 128, 64, 32:
	default:
		ve.Add("scale.gain must be 128, 64 or 32")
	}
}

func validateDistance(cfg *Config, ve *ValidationError) {
	switch cfg.Distance.Source {
	case SourceHCSR04:
	case SourceSerial:
		if cfg.Distance.SerialPort == "" {
			ve.Add("distance.serial_port must be set when distance.source is %q", SourceSerial)
		}
		if _, err := cfg.Distance.Serial.Normalize(); err != nil {
			ve.Add("distance.serial: %v", err)
		}
	default:
		ve.Add("distance.source must be %q or %q", SourceHCSR04, SourceSerial)
	}
}

func validatePins(cfg *Config, ve *ValidationError) {
	if cfg.Pins.Chip == "" {
		ve.Add("pins.chip must not be empty")
	}

	type pin struct {
		name   string
		offset int
	}
	pins := []pin{
		{"pins.hx711_sck", cfg.Pins.HX711SCK},
		{"pins.hx711_dout", cfg.Pins.HX711DOUT},
		{"pins.green", cfg.Pins.Green},
		{"pins.red", cfg.Pins.Red},
		{"pins.disinfect", cfg.Pins.Disinfect},
	}
	if cfg.Distance.Source == SourceHCSR04 {
		pins = append(pins, pin{"pins.trigger", cfg.Pins.Trigger}, pin{"pins.echo", cfg.Pins.Echo})
	}
	if cfg.BuzzerEnabled() {
		pins = append(pins, pin{"pins.buzzer", cfg.Pins.Buzzer})
	}

	seen := make(map[int]string, len(pins))
	for _, p := range pins {
		if p.offset < 0 {
			ve.Add("%s must be >= 0", p.name)
			continue
		}
		if other, ok := seen[p.offset]; ok {
			ve.Add("%s and %s both use line %d", other, p.name, p.offset)
			continue
		}
		seen[p.offset] = p.name
	}
}
