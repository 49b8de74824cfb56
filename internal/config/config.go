// Package config holds the daemon's tunables. Values are fixed for the life
// of the process: defaults, then an optional YAML file, then command-line
// flags.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/smart-bin/internal/controller"
	"github.com/sweeney/smart-bin/internal/gpio"
	"github.com/sweeney/smart-bin/internal/hx711"
	"github.com/sweeney/smart-bin/internal/sensor"
	"github.com/sweeney/smart-bin/internal/serialsensor"
	"github.com/sweeney/smart-bin/internal/servo"
)

// Distance sources.
const (
	SourceHCSR04 = "hcsr04"
	SourceSerial = "serial"
)

// PinDisabled marks an optional output as not fitted.
const PinDisabled = -1

// Config is the complete daemon configuration.
type Config struct {
	LogLevel  string        `yaml:"log_level"`
	Heartbeat time.Duration `yaml:"heartbeat"`

	Lid      LidConfig            `yaml:"lid"`
	Fill     FillConfig           `yaml:"fill"`
	Scale    ScaleConfig          `yaml:"scale"`
	Distance DistanceConfig       `yaml:"distance"`
	Pins     PinConfig            `yaml:"pins"`
	Breaker  sensor.BreakerConfig `yaml:"breaker"`
}

// LidConfig configures the lid loop and the servo.
type LidConfig struct {
	Poll           time.Duration `yaml:"poll"`
	CloseDelay     time.Duration `yaml:"close_delay"`
	OpenDistanceCm float64       `yaml:"open_distance_cm"`
	OpenedAngle    int           `yaml:"opened_angle"`
	ClosedAngle    int           `yaml:"closed_angle"`
	ServoPin       string        `yaml:"servo_pin"`
}

// FillConfig configures the fill/disinfect loop and its outputs.
type FillConfig struct {
	Poll           time.Duration `yaml:"poll"`
	MaxWeightGrams float64       `yaml:"max_weight_grams"`
	DisinfectDelay time.Duration `yaml:"disinfect_delay"`
	DisinfectPulse time.Duration `yaml:"disinfect_pulse"`
	BuzzerPulse    time.Duration `yaml:"buzzer_pulse"`
}

// ScaleConfig configures the HX711 load cell amplifier.
type ScaleConfig struct {
	CountsPerGram float64 `yaml:"counts_per_gram"`
	TareSamples   int     `yaml:"tare_samples"`
	// Gain is the HX711 amplifier gain: 128 or 64 (channel A), 32 (channel B).
	Gain int `yaml:"gain"`
}

// DistanceConfig selects and configures the distance sensor.
type DistanceConfig struct {
	Source     string                   `yaml:"source"`
	SerialPort string                   `yaml:"serial_port"`
	Serial     serialsensor.PortOptions `yaml:"serial"`
}

// PinConfig holds BCM line offsets on Chip.
type PinConfig struct {
	Chip      string `yaml:"chip"`
	Trigger   int    `yaml:"trigger"`
	Echo      int    `yaml:"echo"`
	HX711SCK  int    `yaml:"hx711_sck"`
	HX711DOUT int    `yaml:"hx711_dout"`
	Green     int    `yaml:"green"`
	Red       int    `yaml:"red"`
	Disinfect int    `yaml:"disinfect"`
	// Buzzer may be PinDisabled.
	Buzzer int `yaml:"buzzer"`
}

// Defaults returns the stock configuration of the bin.
func Defaults() *Config {
	return &Config{
		LogLevel:  "info",
		Heartbeat: 15 * time.Minute,
		Lid: LidConfig{
			Poll:           100 * time.Millisecond,
			CloseDelay:     3 * time.Second,
			OpenDistanceCm: 15,
			OpenedAngle:    90,
			ClosedAngle:    -90,
			ServoPin:       servo.DefaultPin,
		},
		Fill: FillConfig{
			Poll:           300 * time.Millisecond,
			MaxWeightGrams: 300,
			DisinfectDelay: 5 * time.Second,
			DisinfectPulse: 100 * time.Millisecond,
			BuzzerPulse:    200 * time.Millisecond,
		},
		Scale: ScaleConfig{
			CountsPerGram: 100,
			TareSamples:   10,
			Gain:          128,
		},
		Distance: DistanceConfig{
			Source:     SourceHCSR04,
			SerialPort: "/dev/serial0",
		},
		Pins: PinConfig{
			Chip:      gpio.DefaultChip,
			Trigger:   gpio.DefaultPinTrigger,
			Echo:      gpio.DefaultPinEcho,
			HX711SCK:  gpio.DefaultPinHX711SCK,
			HX711DOUT: gpio.DefaultPinHX711DOUT,
			Green:     gpio.DefaultPinGreen,
			Red:       gpio.DefaultPinRed,
			Disinfect: gpio.DefaultPinDisinfect,
			Buzzer:    gpio.DefaultPinBuzzer,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file (or an
// empty path) yields the defaults. The result is not validated; callers
// apply their overrides first and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LidLoop returns the lid loop settings.
func (c *Config) LidLoop() controller.LidConfig {
	return controller.LidConfig{
		Poll:           c.Lid.Poll,
		CloseDelay:     c.Lid.CloseDelay,
		OpenDistanceCm: c.Lid.OpenDistanceCm,
		OpenedAngle:    c.Lid.OpenedAngle,
		ClosedAngle:    c.Lid.ClosedAngle,
		Heartbeat:      c.Heartbeat,
	}
}

// FillLoop returns the fill loop settings.
func (c *Config) FillLoop() controller.FillConfig {
	return controller.FillConfig{
		Poll:           c.Fill.Poll,
		MaxWeightGrams: c.Fill.MaxWeightGrams,
		DisinfectDelay: c.Fill.DisinfectDelay,
		Heartbeat:      c.Heartbeat,
	}
}

// HX711Gain maps the configured amplifier gain to the pulse encoding.
func (c *Config) HX711Gain() hx711.Gain {
	switch c.Scale.Gain {
	case 32:
		return hx711.GainB32
	case 64:
		return hx711.GainA64
	}
	return hx711.GainA128
}

// BuzzerEnabled reports whether a buzzer is fitted.
func (c *Config) BuzzerEnabled() bool {
	return c.Pins.Buzzer != PinDisabled
}
