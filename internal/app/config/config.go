package config

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Hao-Tec/egg-guardian/internal/adapters/observability"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/sensor"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/timesync"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/transport"
)

type Config struct {
	DeviceID          string                  `yaml:"device_id"`
	SampleIntervalMS  uint                    `yaml:"sample_interval_ms"`
	PublishIntervalMS uint                    `yaml:"publish_interval_ms"`
	TickIntervalMS    uint                    `yaml:"tick_interval_ms"`
	BufferCapacity    int                     `yaml:"buffer_capacity"`
	Sensor            sensor.Config           `yaml:"sensor"`
	MQTT              transport.Config        `yaml:"mqtt"`
	NTP               timesync.Config         `yaml:"ntp"`
	Log               observability.LogConfig `yaml:"log"`
	Metrics           MetricsConfig           `yaml:"metrics"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads path, layers environment overrides on top, fills defaults, and
// validates.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv lets per-device identity and credentials come from the
// environment, so one config file can serve a whole fleet.
func (c *Config) applyEnv() {
	if v := os.Getenv("EGG_DEVICE_ID"); v != "" {
		c.DeviceID = v
	}
	if v := os.Getenv("EGG_MQTT_HOST"); v != "" {
		c.MQTT.Host = v
	}
	if v := os.Getenv("EGG_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTT.Port = port
		}
	}
	if v := os.Getenv("EGG_MQTT_USERNAME"); v != "" {
		c.MQTT.Username = v
	}
	if v := os.Getenv("EGG_MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.SampleIntervalMS == 0 {
		c.SampleIntervalMS = 5000
	}
	if c.PublishIntervalMS == 0 {
		c.PublishIntervalMS = 10_000
	}
	if c.TickIntervalMS == 0 {
		c.TickIntervalMS = 100
	}
	if c.BufferCapacity == 0 {
		c.BufferCapacity = 20
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}

	c.Sensor.ApplyDefaults()
	c.MQTT.ApplyDefaults()
	c.NTP.ApplyDefaults()
	c.Log.ApplyDefaults()

	if c.MQTT.ClientID == "" && c.DeviceID != "" {
		// Random suffix keeps a crashed agent's half-open broker session
		// from colliding with its replacement.
		c.MQTT.ClientID = fmt.Sprintf("%s-%04d", c.DeviceID, 1000+rand.Intn(9000))
	}
}

func (c *Config) validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	if c.BufferCapacity < 1 {
		return fmt.Errorf("buffer_capacity must be at least 1")
	}
	if err := c.Sensor.Validate(); err != nil {
		return fmt.Errorf("sensor config: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt config: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalMS) * time.Millisecond
}

func (c *Config) PublishInterval() time.Duration {
	return time.Duration(c.PublishIntervalMS) * time.Millisecond
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}
