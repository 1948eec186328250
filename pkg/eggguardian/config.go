package eggguardian

import (
	"github.com/Hao-Tec/egg-guardian/internal/adapters/observability"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/sensor"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/timesync"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/transport"
	"github.com/Hao-Tec/egg-guardian/internal/app/config"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// SensorConfig selects and parameterizes the temperature source.
	SensorConfig = sensor.Config
	// MQTTConfig holds broker session details.
	MQTTConfig = transport.Config
	// NTPConfig configures the wall-clock health checker.
	NTPConfig = timesync.Config
	// LogConfig configures log level, destination, and rotation.
	LogConfig = observability.LogConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
