package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Hao-Tec/egg-guardian/internal/domain"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// Pipeline drives one device. Every tick advances the connection ladder,
// samples on the sample cadence, and runs a publish round on the publish
// cadence when the link is up. Delivery is at most once: a sample that fails
// to publish is recorded as lost, never re-buffered.
type Pipeline struct {
	deviceID  string
	topic     string
	sensor    ports.Sensor
	transport ports.Transport
	buffer    ports.SampleBuffer
	conn      *ConnTracker
	sched     *Schedule
	obs       ports.Observability
}

func New(deviceID string, sensor ports.Sensor, transport ports.Transport, buf ports.SampleBuffer, conn *ConnTracker, sched *Schedule, obs ports.Observability) *Pipeline {
	return &Pipeline{
		deviceID:  deviceID,
		topic:     domain.TelemetryTopic(deviceID),
		sensor:    sensor,
		transport: transport,
		buffer:    buf,
		conn:      conn,
		sched:     sched,
		obs:       obs,
	}
}

// Tick runs one step. Calling it twice with the same now only advances the
// connection ladder; the timers fire at most once per instant.
func (p *Pipeline) Tick(ctx context.Context, now time.Time) {
	p.conn.Tick(ctx, now)
	publishable := p.conn.Publishable()

	if p.sched.SampleDue(now) {
		p.sample(ctx, publishable)
	}

	if p.sched.PublishDue(now) && publishable {
		p.publishRound(ctx)
	}
}

func (p *Pipeline) sample(ctx context.Context, publishable bool) {
	s, err := p.read(ctx)
	if err != nil {
		return
	}
	if publishable {
		// Online reads feed the gauge only; publishing rides its own cadence.
		return
	}

	if evicted, overwrote := p.buffer.Push(s); overwrote {
		p.obs.RecordLoss("buffer_overwrite", evicted)
	}
	p.obs.IncCounter("egg_samples_buffered_total", 1)
	p.obs.SetGauge("egg_buffer_length", float64(p.buffer.Len()))
	p.obs.LogInfo("sample_buffered",
		ports.Field{Key: "temp_c", Value: s.TempC},
		ports.Field{Key: "buffered", Value: p.buffer.Len()})
}

// publishRound flushes the backlog oldest first, then publishes one fresh
// sample. Each publish is independent: a failure is accounted for and the
// round keeps going.
func (p *Pipeline) publishRound(ctx context.Context) {
	if batch := p.buffer.DrainAll(); len(batch) > 0 {
		p.obs.LogInfo("draining_buffer", ports.Field{Key: "samples", Value: len(batch)})
		p.obs.SetGauge("egg_buffer_length", 0)
		for _, s := range batch {
			p.publish(ctx, s)
		}
	}

	fresh, err := p.read(ctx)
	if err != nil {
		return
	}
	p.publish(ctx, fresh)
}

func (p *Pipeline) read(ctx context.Context) (domain.Sample, error) {
	s, err := p.sensor.Read(ctx)
	if err != nil {
		p.obs.IncCounter("egg_sensor_failures_total", 1)
		p.obs.LogError("sensor_read_failed", err)
		return domain.Sample{}, err
	}
	p.obs.IncCounter("egg_samples_read_total", 1)
	p.obs.SetGauge("egg_temperature_celsius", s.TempC)
	return s, nil
}

func (p *Pipeline) publish(ctx context.Context, s domain.Sample) {
	payload, err := json.Marshal(domain.NewTelemetry(p.deviceID, s))
	if err != nil {
		p.obs.LogError("telemetry_encode_failed", err)
		p.obs.RecordLoss("encode_failed", s)
		return
	}

	start := time.Now()
	if err := p.transport.Publish(ctx, p.topic, payload); err != nil {
		p.obs.IncCounter("egg_publish_failures_total", 1)
		p.obs.LogError("publish_failed", err, ports.Field{Key: "topic", Value: p.topic})
		p.obs.RecordLoss("publish_failed", s)
		return
	}
	p.obs.ObserveLatency("egg_publish_latency_seconds", time.Since(start).Seconds())
	p.obs.IncCounter("egg_samples_published_total", 1)
}
