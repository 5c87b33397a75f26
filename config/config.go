// Package config holds the settings of the d6t command line tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mklimuk/d6t"
	"github.com/mklimuk/d6t/libd6t"
)

// Version is set at build time.
var Version = "dev"

type Adapter string

const (
	AdapterI2C     Adapter = "i2c"
	AdapterMCP2221 Adapter = "mcp2221"
	AdapterNanoPi  Adapter = "nanopi"
	AdapterLibD6T  Adapter = "libd6t"
	AdapterMock    Adapter = "mock"
)

var adapters = []Adapter{AdapterI2C, AdapterMCP2221, AdapterNanoPi, AdapterLibD6T, AdapterMock}

// Adapters lists the supported adapter names.
func Adapters() []Adapter {
	return append([]Adapter(nil), adapters...)
}

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Adapter  Adapter       `yaml:"adapter"`
	Sensor   string        `yaml:"sensor"`
	Device   string        `yaml:"device"`
	Library  string        `yaml:"library"`
	VoidRead bool          `yaml:"void_read"`
	Address  byte          `yaml:"address"`
	Interval time.Duration `yaml:"interval"`
}

func Default() *Config {
	return &Config{
		Adapter:  AdapterI2C,
		Library:  libd6t.DefaultPath,
		Address:  0x0A,
		Interval: time.Second,
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration. An empty sensor is accepted; the caller
// decides how to obtain one.
func (c *Config) Validate() error {
	known := false
	for _, a := range adapters {
		if c.Adapter == a {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown adapter %q", ErrInvalidConfig, c.Adapter)
	}
	if c.Sensor != "" {
		if _, err := d6t.ParseSensorType(c.Sensor); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.Address == 0 || c.Address > 0x7F {
		return fmt.Errorf("%w: i2c address %#x out of range", ErrInvalidConfig, c.Address)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidConfig, c.Interval)
	}
	return nil
}

// SensorType parses the configured sensor.
func (c *Config) SensorType() (d6t.SensorType, error) {
	if c.Sensor == "" {
		return 0, fmt.Errorf("%w: sensor type not set", ErrInvalidConfig)
	}
	return d6t.ParseSensorType(c.Sensor)
}

// Encode writes the configuration as YAML.
func (c *Config) Encode() ([]byte, error) {
	return yaml.Marshal(c)
}
