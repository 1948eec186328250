package eggguardian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Hao-Tec/egg-guardian/internal/adapters/buffer"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/transport"
	"github.com/Hao-Tec/egg-guardian/internal/domain"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// ErrBuffered indicates the broker was unreachable and the sample was queued
// for the next successful publish.
var ErrBuffered = errors.New("eggguardian: broker unreachable, sample buffered")

// PublisherConfig configures the standalone telemetry publisher.
type PublisherConfig struct {
	DeviceID       string
	MQTT           MQTTConfig
	BufferCapacity int
}

// applyDefaults fills in the same buffer depth the agent uses.
func (c *PublisherConfig) applyDefaults() {
	if c.BufferCapacity == 0 {
		c.BufferCapacity = 20
	}
	c.MQTT.ApplyDefaults()
}

func (c *PublisherConfig) validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	if c.BufferCapacity < 1 {
		return fmt.Errorf("buffer_capacity must be >= 1")
	}
	return c.MQTT.Validate()
}

// PublisherOption overrides a Publisher dependency.
type PublisherOption func(*Publisher)

// WithPublisherTransport replaces the default MQTT transport.
func WithPublisherTransport(t Transport) PublisherOption {
	return func(p *Publisher) {
		if t != nil {
			p.tr = t
		}
	}
}

// WithPublisherObservability wires loss accounting and logs into an existing backend.
func WithPublisherObservability(obs Observability) PublisherOption {
	return func(p *Publisher) {
		if obs != nil {
			p.obs = obs
		}
	}
}

// WithPublisherClock replaces the wall clock used to stamp readings.
func WithPublisherClock(c Clock) PublisherOption {
	return func(p *Publisher) {
		if c != nil {
			p.clock = c
		}
	}
}

// Publisher lets external producers push readings onto the canonical telemetry
// topic while reusing the agent's buffer-when-offline behavior. Delivery stays
// at most once: a send that fails after connecting is dropped, not retried.
type Publisher struct {
	deviceID string
	topic    string

	mu    sync.Mutex
	tr    ports.Transport
	buf   ports.SampleBuffer
	clock ports.Clock
	obs   ports.Observability
}

// NewPublisher wires an MQTT session + ring buffer so callers can push
// readings at will without running the full agent. Observability defaults to a
// no-op backend so a Publisher can live alongside a Runtime without
// double-registering the Prometheus collectors.
func NewPublisher(cfg *PublisherConfig, opts ...PublisherOption) (*Publisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Publisher{
		deviceID: cfg.DeviceID,
		topic:    domain.TelemetryTopic(cfg.DeviceID),
		buf:      buffer.NewRing(cfg.BufferCapacity),
		clock:    ports.RealClock{},
		obs:      nopObservability{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if p.tr == nil {
		tr, err := transport.NewMQTT(cfg.MQTT)
		if err != nil {
			return nil, err
		}
		p.tr = tr
	}
	return p, nil
}

// Publish stamps tempC with the current clock and sends it.
func (p *Publisher) Publish(ctx context.Context, tempC float64) error {
	return p.PublishSample(ctx, Sample{TempC: tempC, CapturedAt: p.clock.Now()})
}

// PublishSample sends one reading. When the broker is unreachable the sample
// lands in the ring buffer and ErrBuffered is returned; the backlog is flushed
// oldest first ahead of the next successful publish.
func (p *Publisher) PublishSample(ctx context.Context, s Sample) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.CapturedAt.IsZero() {
		s.CapturedAt = p.clock.Now()
	}

	if !p.tr.IsConnected() {
		if err := p.tr.Connect(ctx); err != nil {
			if evicted, overwrote := p.buf.Push(s); overwrote {
				p.obs.RecordLoss("buffer_overwrite", evicted)
			}
			p.obs.IncCounter("egg_samples_buffered_total", 1)
			return fmt.Errorf("%w: %v", ErrBuffered, err)
		}
	}

	for _, queued := range p.buf.DrainAll() {
		p.send(ctx, queued)
	}
	return p.send(ctx, s)
}

// Buffered reports how many samples await the next successful publish.
func (p *Publisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Len()
}

// Close tears down the broker session. Buffered samples do not survive Close.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tr.Close()
}

func (p *Publisher) send(ctx context.Context, s Sample) error {
	payload, err := json.Marshal(domain.NewTelemetry(p.deviceID, s))
	if err != nil {
		p.obs.RecordLoss("encode_failed", s)
		return err
	}
	if err := p.tr.Publish(ctx, p.topic, payload); err != nil {
		p.obs.IncCounter("egg_publish_failures_total", 1)
		p.obs.RecordLoss("publish_failed", s)
		return err
	}
	p.obs.IncCounter("egg_samples_published_total", 1)
	return nil
}

type nopObservability struct{}

func (nopObservability) LogInfo(string, ...Field)            {}
func (nopObservability) LogError(string, error, ...Field)    {}
func (nopObservability) LogCritical(string, error, ...Field) {}
func (nopObservability) IncCounter(string, float64)          {}
func (nopObservability) ObserveLatency(string, float64)      {}
func (nopObservability) SetGauge(string, float64)            {}
func (nopObservability) RecordLoss(string, Sample)           {}
