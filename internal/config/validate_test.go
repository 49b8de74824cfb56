package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireInvalid(t *testing.T, cfg *Config, want string) {
	t.Helper()
	err := Validate(cfg)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Errors, want)
}

func TestValidateDefaultsPass(t *testing.T) {
	assert.NoError(t, Validate(Defaults()))
}

func TestValidateZeroDelaysPass(t *testing.T) {
	cfg := Defaults()
	cfg.Lid.CloseDelay = 0
	cfg.Fill.DisinfectDelay = 0
	cfg.Heartbeat = 0
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"lid poll", func(c *Config) { c.Lid.Poll = 0 }, "lid.poll must be > 0"},
		{"fill poll", func(c *Config) { c.Fill.Poll = -1 }, "fill.poll must be > 0"},
		{"close delay", func(c *Config) { c.Lid.CloseDelay = -1 }, "lid.close_delay must be >= 0"},
		{"disinfect delay", func(c *Config) { c.Fill.DisinfectDelay = -1 }, "fill.disinfect_delay must be >= 0"},
		{"open distance", func(c *Config) { c.Lid.OpenDistanceCm = 0 }, "lid.open_distance_cm must be > 0"},
		{"angle range", func(c *Config) { c.Lid.OpenedAngle = 120 }, "lid.opened_angle must be within [-90, 90]"},
		{"angles equal", func(c *Config) { c.Lid.ClosedAngle = 90 }, "lid.opened_angle and lid.closed_angle must differ"},
		{"max weight", func(c *Config) { c.Fill.MaxWeightGrams = 0 }, "fill.max_weight_grams must be > 0"},
		{"disinfect pulse", func(c *Config) { c.Fill.DisinfectPulse = 0 }, "fill.disinfect_pulse must be > 0"},
		{"buzzer pulse", func(c *Config) { c.Fill.BuzzerPulse = 0 }, "fill.buzzer_pulse must be > 0"},
		{"counts per gram", func(c *Config) { c.Scale.CountsPerGram = 0 }, "scale.counts_per_gram must not be 0"},
		{"tare samples", func(c *Config) { c.Scale.TareSamples = 0 }, "scale.tare_samples must be > 0"},
		{"gain", func(c *Config) { c.Scale.Gain = 16 }, "scale.gain must be 128, 64 or 32"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, `log_level "loud" is not a valid level`},
		{"source", func(c *Config) { c.Distance.Source = "lidar" }, `distance.source must be "hcsr04" or "serial"`},
		{"serial port", func(c *Config) {
			c.Distance.Source = SourceSerial
			c.Distance.SerialPort = ""
		}, `distance.serial_port must be set when distance.source is "serial"`},
		{"pin conflict", func(c *Config) { c.Pins.Red = c.Pins.Green }, "pins.green and pins.red both use line 17"},
		{"negative pin", func(c *Config) { c.Pins.Disinfect = -3 }, "pins.disinfect must be >= 0"},
		{"chip", func(c *Config) { c.Pins.Chip = "" }, "pins.chip must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			requireInvalid(t, cfg, tt.want)
		})
	}
}

func TestValidateSerialSourceFreesRangerPins(t *testing.T) {
	cfg := Defaults()
	cfg.Distance.Source = SourceSerial
	cfg.Pins.Trigger = cfg.Pins.Green
	assert.NoError(t, Validate(cfg))
}

func TestValidateDisabledBuzzer(t *testing.T) {
	cfg := Defaults()
	cfg.Pins.Buzzer = PinDisabled
	cfg.Fill.BuzzerPulse = 0
	assert.NoError(t, Validate(cfg))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Lid.Poll = 0
	cfg.Fill.Poll = 0

	var ve *ValidationError
	require.True(t, errors.As(Validate(cfg), &ve))
	assert.Len(t, ve.Errors, 2)
	assert.Contains(t, ve.Error(), "config validation failed")
}
