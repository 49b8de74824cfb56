package main

import (
	"flag"

	"github.com/sweeney/smart-bin/internal/config"
)

// overrides holds command-line values. Only flags explicitly set on the
// command line are copied over the loaded config.
type overrides struct {
	v      *config.Config
	setter map[string]func(*config.Config)
}

func registerOverrides(fs *flag.FlagSet) *overrides {
	v := config.Defaults()
	o := &overrides{v: v, setter: make(map[string]func(*config.Config))}

	fs.StringVar(&v.LogLevel, "log-level", v.LogLevel, "Log level (trace, debug, info, warn, error)")
	o.setter["log-level"] = func(c *config.Config) { c.LogLevel = v.LogLevel }

	fs.DurationVar(&v.Heartbeat, "heartbeat", v.Heartbeat, "Heartbeat interval (0 to disable)")
	o.setter["heartbeat"] = func(c *config.Config) { c.Heartbeat = v.Heartbeat }

	fs.DurationVar(&v.Lid.Poll, "lid-poll", v.Lid.Poll, "Distance polling interval")
	o.setter["lid-poll"] = func(c *config.Config) { c.Lid.Poll = v.Lid.Poll }

	fs.DurationVar(&v.Lid.CloseDelay, "close-delay", v.Lid.CloseDelay, "Time without presence before the lid closes")
	o.setter["close-delay"] = func(c *config.Config) { c.Lid.CloseDelay = v.Lid.CloseDelay }

	fs.Float64Var(&v.Lid.OpenDistanceCm, "open-distance", v.Lid.OpenDistanceCm, "Presence threshold in cm")
	o.setter["open-distance"] = func(c *config.Config) { c.Lid.OpenDistanceCm = v.Lid.OpenDistanceCm }

	fs.DurationVar(&v.Fill.Poll, "fill-poll", v.Fill.Poll, "Weight polling interval")
	o.setter["fill-poll"] = func(c *config.Config) { c.Fill.Poll = v.Fill.Poll }

	fs.Float64Var(&v.Fill.MaxWeightGrams, "max-weight", v.Fill.MaxWeightGrams, "Full threshold in grams")
	o.setter["max-weight"] = func(c *config.Config) { c.Fill.MaxWeightGrams = v.Fill.MaxWeightGrams }

	fs.DurationVar(&v.Fill.DisinfectDelay, "disinfect-delay", v.Fill.DisinfectDelay, "Time after emptying before disinfection")
	o.setter["disinfect-delay"] = func(c *config.Config) { c.Fill.DisinfectDelay = v.Fill.DisinfectDelay }

	fs.StringVar(&v.Distance.Source, "distance-source", v.Distance.Source, `Distance sensor: "hcsr04" or "serial"`)
	o.setter["distance-source"] = func(c *config.Config) { c.Distance.Source = v.Distance.Source }

	fs.StringVar(&v.Distance.SerialPort, "serial-port", v.Distance.SerialPort, "Serial device of the UART ranger")
	o.setter["serial-port"] = func(c *config.Config) { c.Distance.SerialPort = v.Distance.SerialPort }

	fs.StringVar(&v.Pins.Chip, "chip", v.Pins.Chip, "GPIO character device")
	o.setter["chip"] = func(c *config.Config) { c.Pins.Chip = v.Pins.Chip }

	return o
}

// apply copies every explicitly set flag onto cfg.
func (o *overrides) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		if set, ok := o.setter[f.Name]; ok {
			set(cfg)
		}
	})
}
