package eggguardian

import (
	"github.com/Hao-Tec/egg-guardian/internal/adapters/sensor"
	"github.com/Hao-Tec/egg-guardian/internal/app/pipeline"
	"github.com/Hao-Tec/egg-guardian/internal/domain"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// Sample is a single temperature reading flowing through the agent.
// It mirrors internal/domain.Sample but is exported so custom adapters can reference it.
type Sample = domain.Sample

// Telemetry is the wire payload published for every sample.
type Telemetry = domain.Telemetry

// Sensor produces samples from any temperature source (1-Wire probes, simulators, bench rigs).
type Sensor = ports.Sensor

// SensorFunc adapts an ordinary function into a Sensor.
type SensorFunc = sensor.Func

// Transport carries encoded telemetry to the broker or any custom destination.
type Transport = ports.Transport

// NetworkProbe answers the cheap reachability question asked before a broker connect.
type NetworkProbe = ports.NetworkProbe

// SampleBuffer holds samples taken while the link is down.
type SampleBuffer = ports.SampleBuffer

// Observability emits metrics/logs about sampling, buffering, and delivery.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Clock abstracts wall-clock reads so embedders can drive deterministic tests.
type Clock = ports.Clock

// RealClock is the production Clock backed by time.Now.
type RealClock = ports.RealClock

// ConnState is the position of the broker link in its bring-up ladder.
type ConnState = pipeline.State

// Connection ladder states, in bring-up order.
const (
	StateDisconnected      = pipeline.StateDisconnected
	StateConnectingNetwork = pipeline.StateConnectingNetwork
	StateConnectingBroker  = pipeline.StateConnectingBroker
	StateConnected         = pipeline.StateConnected
)

// ErrSensorUnavailable is returned by sensors when no reading can be taken.
var ErrSensorUnavailable = ports.ErrSensorUnavailable

// TelemetryTopic returns the topic telemetry for deviceID is published on.
func TelemetryTopic(deviceID string) string {
	return domain.TelemetryTopic(deviceID)
}
