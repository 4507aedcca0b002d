// Package config holds the deployment-side settings: which sink to use, how
// the pins are wired, and where the monitor listens. The modulation
// parameters themselves (channel count, resolutions, envelope tables) are
// compile-time constants and deliberately absent from here.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/dsglow/internal/led"
)

type Config struct {
	Driver string `yaml:"driver"` // "gpio" | "sim"

	// Pins names the GPIO line per channel; InvertMask flags the
	// common-anode channels whose level must be flipped.
	Pins       []string `yaml:"pins,omitempty"`
	InvertMask uint16   `yaml:"invert_mask"`

	TickHz int `yaml:"tick_hz"` // bit clock, Hz

	Addr     string `yaml:"addr"`      // monitor HTTP listen address
	LogLevel string `yaml:"log_level"` // zerolog level name
}

// Default returns the reference deployment: GPIO driver, reference pin map
// and polarity, 2 kHz bit clock.
func Default() *Config {
	return &Config{
		Driver:     "gpio",
		Pins:       led.DefaultPins[:],
		InvertMask: led.DefaultInvertMask,
		TickHz:     2000,
		Addr:       ":8080",
		LogLevel:   "info",
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "gpio", "sim":
	default:
		return errors.Errorf("unknown driver %q", c.Driver)
	}
	if c.Driver == "gpio" && len(c.Pins) != led.NumPins {
		return errors.Errorf("need %d pins, got %d", led.NumPins, len(c.Pins))
	}
	if c.TickHz <= 0 {
		return errors.Errorf("tick_hz must be positive, got %d", c.TickHz)
	}
	return nil
}
