package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Hao-Tec/egg-guardian/internal/domain"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// PromObs backs the observability port with Prometheus metrics and zap logs.
type PromObs struct {
	log      *zap.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
	losses   *prometheus.CounterVec
}

func NewPromObs(logger *zap.Logger) *PromObs {
	if logger == nil {
		logger = zap.NewNop()
	}

	read := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "egg_samples_read_total",
		Help: "Samples successfully read from the sensor.",
	})
	buffered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "egg_samples_buffered_total",
		Help: "Samples pushed into the offline ring buffer.",
	})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "egg_samples_published_total",
		Help: "Samples delivered to the broker.",
	})
	publishFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "egg_publish_failures_total",
		Help: "Publish attempts that returned an error.",
	})
	sensorFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "egg_sensor_failures_total",
		Help: "Sensor reads that returned an error.",
	})
	connectAttempts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "egg_connect_attempts_total",
		Help: "Network probes and broker connects performed by the connection ladder.",
	})
	connectionLosses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "egg_connection_losses_total",
		Help: "Falls from connected back to disconnected.",
	})
	losses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "egg_samples_lost_total",
		Help: "Samples that will never reach the broker, by cause.",
	}, []string{"cause"})

	bufferLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "egg_buffer_length",
		Help: "Samples currently held in the offline ring buffer.",
	})
	connState := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "egg_connection_state",
		Help: "Connection ladder position (0 disconnected .. 3 connected).",
	})
	temperature := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "egg_temperature_celsius",
		Help: "Most recent temperature reading.",
	})
	ntpOffset := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "egg_ntp_offset_seconds",
		Help: "Clock offset against the NTP pool at the last check.",
	})
	uptime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "egg_uptime_seconds",
		Help: "Seconds since the agent runtime started.",
	})

	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "egg_publish_latency_seconds",
		Help:    "Broker publish round-trip latency.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	prometheus.MustRegister(read, buffered, published, publishFailures,
		sensorFailures, connectAttempts, connectionLosses, losses,
		bufferLen, connState, temperature, ntpOffset, uptime, latency)

	return &PromObs{
		log: logger,
		counters: map[string]prometheus.Counter{
			"egg_samples_read_total":      read,
			"egg_samples_buffered_total":  buffered,
			"egg_samples_published_total": published,
			"egg_publish_failures_total":  publishFailures,
			"egg_sensor_failures_total":   sensorFailures,
			"egg_connect_attempts_total":  connectAttempts,
			"egg_connection_losses_total": connectionLosses,
		},
		gauges: map[string]prometheus.Gauge{
			"egg_buffer_length":       bufferLen,
			"egg_connection_state":    connState,
			"egg_temperature_celsius": temperature,
			"egg_ntp_offset_seconds":  ntpOffset,
			"egg_uptime_seconds":      uptime,
		},
		histos: map[string]prometheus.Observer{
			"egg_publish_latency_seconds": latency,
		},
		losses: losses,
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, zapFields(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

// LogCritical marks conditions worth paging over. It never exits: a dying
// sensor or broker must not take the tick loop down with it.
func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(zapFields(fields), zap.Error(err), zap.Bool("critical", true))...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordLoss(cause string, s domain.Sample) {
	p.losses.WithLabelValues(cause).Inc()
	p.log.Warn("sample_lost",
		zap.String("cause", cause),
		zap.Float64("temp_c", s.TempC),
		zap.Time("captured_at", s.CapturedAt))
}

func zapFields(fields []ports.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
