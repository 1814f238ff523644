// Package config handles phasesync configuration loading.
//
// Configuration is YAML with defaults overlay: Load starts from Default
// and unmarshals the file over it, so a config file only needs the keys
// it wants to change. Band presets merge key-by-key with the built-in
// set, letting a file add bands without restating the defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phaselab/phasesync/measure/phase"
)

// Package-level errors.
var (
	ErrInvalid     = errors.New("config: invalid configuration")
	ErrUnknownBand = errors.New("config: unknown band")
)

// Band is a named frequency range in Hz.
type Band struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// String renders the band as "low-high Hz" with trailing zeros trimmed.
func (b Band) String() string {
	return fmt.Sprintf("%g-%g Hz", b.Low, b.High)
}

// FilterConfig holds band-pass filter settings.
type FilterConfig struct {
	Order int `yaml:"order"`
}

// Config is the root configuration structure.
type Config struct {
	Listen string          `yaml:"listen"`
	Method string          `yaml:"method"`
	Filter FilterConfig    `yaml:"filter"`
	Bands  map[string]Band `yaml:"bands"`
}

// Default returns the default configuration: the conventional EEG band
// presets, PLV as the default measure, and an order-4 filter.
func Default() *Config {
	return &Config{
		Listen: "localhost:8080",
		Method: phase.MethodPLV.String(),
		Filter: FilterConfig{Order: 4},
		Bands: map[string]Band{
			"delta": {Low: 1, High: 4},
			"theta": {Low: 4, High: 8},
			"alpha": {Low: 8, High: 12},
			"beta":  {Low: 12, High: 30},
			"gamma": {Low: 30, High: 80},
		},
	}
}

// Load loads configuration from a YAML file, applying it over the
// defaults and validating the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.normalizeBandNames()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the defaults when
// path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("%w: listen address must not be empty", ErrInvalid)
	}
	if _, err := phase.ParseMethod(c.Method); err != nil {
		return fmt.Errorf("%w: method: %v", ErrInvalid, err)
	}
	if c.Filter.Order < 1 {
		return fmt.Errorf("%w: filter order must be >= 1, got %d", ErrInvalid, c.Filter.Order)
	}
	for _, name := range c.BandNames() {
		b := c.Bands[name]
		switch {
		case !(b.Low > 0):
			return fmt.Errorf("%w: band %q: low cutoff must be > 0, got %g", ErrInvalid, name, b.Low)
		case !(b.High > b.Low):
			return fmt.Errorf("%w: band %q: high cutoff must exceed low (%g-%g)", ErrInvalid, name, b.Low, b.High)
		case math.IsInf(b.High, 0):
			return fmt.Errorf("%w: band %q: high cutoff must be finite", ErrInvalid, name)
		}
	}
	return nil
}

// Band returns the frequency band registered under name. Lookup is
// case-insensitive and ignores surrounding whitespace.
func (c *Config) Band(name string) (Band, error) {
	b, ok := c.Bands[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Band{}, fmt.Errorf("%w %q (have %s)",
			ErrUnknownBand, name, strings.Join(c.BandNames(), ", "))
	}
	return b, nil
}

// BandNames returns the registered band names in alphabetical order.
func (c *Config) BandNames() []string {
	names := make([]string, 0, len(c.Bands))
	for name := range c.Bands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalizeBandNames lowercases band keys so YAML capitalization does
// not split "Alpha" and "alpha" into distinct presets.
func (c *Config) normalizeBandNames() {
	for name, b := range c.Bands {
		lower := strings.ToLower(name)
		if lower != name {
			delete(c.Bands, name)
			c.Bands[lower] = b
		}
	}
}
