package sensor

import (
	"fmt"

	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

const (
	DriverDS18B20 = "ds18b20"
	DriverSim     = "sim"
)

// Config selects and parameterizes the temperature source.
type Config struct {
	Driver       string  `yaml:"driver"`
	W1Dir        string  `yaml:"w1_dir"`
	Device       string  `yaml:"device"`
	SimBaseC     float64 `yaml:"sim_base_c"`
	SimVarianceC float64 `yaml:"sim_variance_c"`
}

func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverDS18B20
	}
	if c.W1Dir == "" {
		c.W1Dir = "/sys/bus/w1/devices"
	}
	if c.SimBaseC == 0 {
		c.SimBaseC = 37.5
	}
	if c.SimVarianceC == 0 {
		c.SimVarianceC = 2.0
	}
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverDS18B20, DriverSim:
		return nil
	default:
		return fmt.Errorf("unknown sensor driver %q", c.Driver)
	}
}

// New builds the driver named by cfg.
func New(cfg Config, clock ports.Clock) (ports.Sensor, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case DriverSim:
		return NewSim(cfg.SimBaseC, cfg.SimVarianceC, clock), nil
	default:
		return NewDS18B20(cfg.W1Dir, cfg.Device, clock), nil
	}
}
