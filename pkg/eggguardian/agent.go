package eggguardian

import (
	"context"
	"fmt"
)

// Agent is a convenience builder that lets callers say Conf → Source → Deliver
// without touching the underlying hexagonal wiring.
type Agent struct {
	cfg  *Config
	opts []RuntimeOption
}

// AgentOption mutates the Agent after configuration is loaded.
type AgentOption func(*Agent)

// SourceOption configures the sensor/buffer side of the pipeline.
type SourceOption func(*Agent)

// DeliverOption configures the transport/observability side of the pipeline.
type DeliverOption func(*Agent)

// Conf loads YAML from disk, applies AgentOption values, and returns an Agent builder.
func Conf(path string, opts ...AgentOption) (*Agent, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps an Agent from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...AgentOption) (*Agent, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	a := &Agent{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Config returns the underlying configuration so callers can tweak it before building a runtime.
func (a *Agent) Config() *Config {
	if a == nil {
		return nil
	}
	return a.cfg
}

// Options appends raw RuntimeOption values to the builder for advanced scenarios.
func (a *Agent) Options(opts ...RuntimeOption) *Agent {
	if a == nil {
		return nil
	}
	a.appendOptions(opts...)
	return a
}

// Source records sensor-side overrides (sensor, buffer, clock, observability).
func (a *Agent) Source(opts ...SourceOption) *Agent {
	if a == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Deliver records transport-side overrides and builds a Runtime ready to run.
func (a *Agent) Deliver(opts ...DeliverOption) (*Runtime, error) {
	if a == nil {
		return nil, fmt.Errorf("agent is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return NewRuntime(a.cfg, a.opts...)
}

// Run is a shortcut for Deliver + runtime.Run.
func (a *Agent) Run(ctx context.Context, opts ...DeliverOption) error {
	rt, err := a.Deliver(opts...)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

// WithAgentOptions appends RuntimeOption values during Conf.
func WithAgentOptions(opts ...RuntimeOption) AgentOption {
	return func(a *Agent) {
		if a != nil {
			a.appendOptions(opts...)
		}
	}
}

// SourceSensor injects a custom sample source (bench rigs, recorded traces, etc.).
func SourceSensor(s Sensor) SourceOption {
	return func(a *Agent) {
		if a != nil && s != nil {
			a.appendOptions(WithSensor(s))
		}
	}
}

// SourceBuffer swaps the offline ring buffer for a caller-provided implementation.
func SourceBuffer(b SampleBuffer) SourceOption {
	return func(a *Agent) {
		if a != nil && b != nil {
			a.appendOptions(WithBuffer(b))
		}
	}
}

// SourceClock replaces the wall clock used for sampling and scheduling.
func SourceClock(c Clock) SourceOption {
	return func(a *Agent) {
		if a != nil && c != nil {
			a.appendOptions(WithClock(c))
		}
	}
}

// SourceObservability overrides the default Prometheus-based observability stack.
func SourceObservability(obs Observability) SourceOption {
	return func(a *Agent) {
		if a != nil && obs != nil {
			a.appendOptions(WithObservability(obs))
		}
	}
}

// DeliverTransport injects a custom transport implementation.
func DeliverTransport(t Transport) DeliverOption {
	return func(a *Agent) {
		if a != nil && t != nil {
			a.appendOptions(WithTransport(t))
		}
	}
}

// DeliverProbe overrides the network reachability probe.
func DeliverProbe(p NetworkProbe) DeliverOption {
	return func(a *Agent) {
		if a != nil && p != nil {
			a.appendOptions(WithNetworkProbe(p))
		}
	}
}

// DeliverObservability replaces the default observability backend.
func DeliverObservability(obs Observability) DeliverOption {
	return func(a *Agent) {
		if a != nil && obs != nil {
			a.appendOptions(WithObservability(obs))
		}
	}
}

// DeliverCallback installs a transport built from a simple publish function.
func DeliverCallback(name string, fn PublishFunc) DeliverOption {
	return func(a *Agent) {
		if a != nil {
			a.appendOptions(WithTransport(NewCallbackTransport(name, fn)))
		}
	}
}

// DeliverStateHandler registers a connection ladder transition callback.
func DeliverStateHandler(fn func(from, to ConnState)) DeliverOption {
	return func(a *Agent) {
		if a != nil && fn != nil {
			a.appendOptions(WithStateChangeHandler(fn))
		}
	}
}

func (a *Agent) appendOptions(opts ...RuntimeOption) {
	for _, opt := range opts {
		if opt != nil {
			a.opts = append(a.opts, opt)
		}
	}
}
