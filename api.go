package eggguardian

import (
	base "github.com/Hao-Tec/egg-guardian/pkg/eggguardian"
)

// Re-exported errors for convenience.
var (
	ErrBuffered               = base.ErrBuffered
	ErrChannelTransportClosed = base.ErrChannelTransportClosed
	ErrSensorUnavailable      = base.ErrSensorUnavailable
)

// Type aliases so consumers can import github.com/Hao-Tec/egg-guardian directly.
type (
	Config          = base.Config
	SensorConfig    = base.SensorConfig
	MQTTConfig      = base.MQTTConfig
	NTPConfig       = base.NTPConfig
	LogConfig       = base.LogConfig
	MetricsConfig   = base.MetricsConfig
	Agent           = base.Agent
	AgentOption     = base.AgentOption
	SourceOption    = base.SourceOption
	DeliverOption   = base.DeliverOption
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	Sample          = base.Sample
	Telemetry       = base.Telemetry
	Sensor          = base.Sensor
	SensorFunc      = base.SensorFunc
	Transport       = base.Transport
	NetworkProbe    = base.NetworkProbe
	SampleBuffer    = base.SampleBuffer
	Observability   = base.Observability
	Field           = base.Field
	Clock           = base.Clock
	RealClock       = base.RealClock
	ConnState       = base.ConnState
	NTPStatus       = base.NTPStatus
	Published       = base.Published
	PublishFunc     = base.PublishFunc
	Publisher       = base.Publisher
	PublisherConfig = base.PublisherConfig
	PublisherOption = base.PublisherOption
)

// Connection ladder states, in bring-up order.
const (
	StateDisconnected      = base.StateDisconnected
	StateConnectingNetwork = base.StateConnectingNetwork
	StateConnectingBroker  = base.StateConnectingBroker
	StateConnected         = base.StateConnected
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// TelemetryTopic returns the topic telemetry for deviceID is published on.
func TelemetryTopic(deviceID string) string {
	return base.TelemetryTopic(deviceID)
}

// Agent builder helpers.
func Conf(path string, opts ...AgentOption) (*Agent, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...AgentOption) (*Agent, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithAgentOptions(opts ...RuntimeOption) AgentOption {
	return base.WithAgentOptions(opts...)
}

func SourceSensor(s Sensor) SourceOption {
	return base.SourceSensor(s)
}

func SourceBuffer(b SampleBuffer) SourceOption {
	return base.SourceBuffer(b)
}

func SourceClock(c Clock) SourceOption {
	return base.SourceClock(c)
}

func SourceObservability(obs Observability) SourceOption {
	return base.SourceObservability(obs)
}

func DeliverTransport(t Transport) DeliverOption {
	return base.DeliverTransport(t)
}

func DeliverProbe(p NetworkProbe) DeliverOption {
	return base.DeliverProbe(p)
}

func DeliverObservability(obs Observability) DeliverOption {
	return base.DeliverObservability(obs)
}

func DeliverCallback(name string, fn PublishFunc) DeliverOption {
	return base.DeliverCallback(name, fn)
}

func DeliverStateHandler(fn func(from, to ConnState)) DeliverOption {
	return base.DeliverStateHandler(fn)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithSensor(s Sensor) RuntimeOption {
	return base.WithSensor(s)
}

func WithTransport(t Transport) RuntimeOption {
	return base.WithTransport(t)
}

func WithNetworkProbe(p NetworkProbe) RuntimeOption {
	return base.WithNetworkProbe(p)
}

func WithBuffer(b SampleBuffer) RuntimeOption {
	return base.WithBuffer(b)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

func WithClock(c Clock) RuntimeOption {
	return base.WithClock(c)
}

func WithStateChangeHandler(fn func(from, to ConnState)) RuntimeOption {
	return base.WithStateChangeHandler(fn)
}

// Transport adapters.
func NewCallbackTransport(name string, fn PublishFunc) Transport {
	return base.NewCallbackTransport(name, fn)
}

func NewChannelTransport(name string, buffer int) (Transport, <-chan Published) {
	return base.NewChannelTransport(name, buffer)
}

// Standalone publisher.
func NewPublisher(cfg *PublisherConfig, opts ...PublisherOption) (*Publisher, error) {
	return base.NewPublisher(cfg, opts...)
}

func WithPublisherTransport(t Transport) PublisherOption {
	return base.WithPublisherTransport(t)
}

func WithPublisherObservability(obs Observability) PublisherOption {
	return base.WithPublisherObservability(obs)
}

func WithPublisherClock(c Clock) PublisherOption {
	return base.WithPublisherClock(c)
}
