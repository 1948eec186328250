package eggguardian

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Hao-Tec/egg-guardian/internal/adapters/buffer"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/observability"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/sensor"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/timesync"
	"github.com/Hao-Tec/egg-guardian/internal/adapters/transport"
	"github.com/Hao-Tec/egg-guardian/internal/app/pipeline"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// NTPStatus is the latest wall-clock health snapshot from the NTP checker.
type NTPStatus = timesync.Status

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	sensor        Sensor
	transport     Transport
	probe         NetworkProbe
	buffer        SampleBuffer
	observability Observability
	clock         Clock
	onStateChange func(from, to ConnState)
}

// WithSensor injects a custom sample source (bench rigs, recorded traces, other probe hardware).
func WithSensor(s Sensor) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.sensor = s
	}
}

// WithTransport injects a custom delivery path so telemetry can go anywhere an MQTT broker isn't.
func WithTransport(t Transport) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.transport = t
	}
}

// WithNetworkProbe overrides the TCP reachability check that gates broker connects.
func WithNetworkProbe(p NetworkProbe) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.probe = p
	}
}

// WithBuffer swaps the offline ring buffer for a caller-provided implementation.
func WithBuffer(b SampleBuffer) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.buffer = b
	}
}

// WithObservability plugs in a custom observability backend (OpenTelemetry, structured logs, etc.).
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithClock replaces the wall clock, which makes scheduling deterministic in tests.
func WithClock(c Clock) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.clock = c
	}
}

// WithStateChangeHandler registers fn to run on every connection ladder
// transition. fn is called from the tick goroutine.
func WithStateChangeHandler(fn func(from, to ConnState)) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.onStateChange = fn
	}
}

// Runtime wires up the sensor → buffer → broker pipeline and exposes simple
// lifecycle hooks for embedding the agent inside any Go service.
type Runtime struct {
	cfg       *Config
	obs       ports.Observability
	clock     ports.Clock
	sensor    ports.Sensor
	transport ports.Transport
	probe     ports.NetworkProbe
	buffer    ports.SampleBuffer
	tracker   *pipeline.ConnTracker
	pipe      *pipeline.Pipeline
	ntp       *timesync.Checker

	metricsSrv *http.Server
	state      atomic.Int32
	startedAt  time.Time
	cancel     context.CancelFunc
	tickDone   chan struct{}
	ntpDone    chan struct{}
	stopOnce   sync.Once
}

// NewRuntime bootstraps the default adapters (DS18B20 sensor, paho MQTT
// transport, TCP network probe, in-memory ring buffer, Prometheus + zap
// observability). Callers can use RuntimeOption values to override any
// dependency and point the agent at custom sensors, transports, or telemetry
// backends.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		logger, err := observability.NewLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		obs = observability.NewPromObs(logger)
	}

	clock := overrides.clock
	if clock == nil {
		clock = ports.RealClock{}
	}

	sens := overrides.sensor
	if sens == nil {
		var err error
		sens, err = sensor.New(cfg.Sensor, clock)
		if err != nil {
			return nil, err
		}
	}

	tr := overrides.transport
	if tr == nil {
		var err error
		tr, err = transport.NewMQTT(cfg.MQTT)
		if err != nil {
			return nil, err
		}
	}

	probe := overrides.probe
	if probe == nil {
		probe = &transport.TCPProbe{Addr: cfg.MQTT.Addr(), Timeout: cfg.MQTT.ConnectTimeout()}
	}

	buf := overrides.buffer
	if buf == nil {
		buf = buffer.NewRing(cfg.BufferCapacity)
	}

	rt := &Runtime{
		cfg:       cfg,
		obs:       obs,
		clock:     clock,
		sensor:    sens,
		transport: tr,
		probe:     probe,
		buffer:    buf,
		tracker:   pipeline.NewConnTracker(probe, tr, cfg.MQTT.RetryBackoff(), obs),
	}

	// The tracker is only touched from the tick goroutine; the mirror makes
	// State readable from anywhere.
	onChange := overrides.onStateChange
	rt.tracker.SetStateChangeHandler(func(from, to ConnState) {
		rt.state.Store(int32(to))
		if onChange != nil {
			onChange(from, to)
		}
	})

	sched := pipeline.NewSchedule(cfg.SampleInterval(), cfg.PublishInterval(), clock.Now())
	rt.pipe = pipeline.New(cfg.DeviceID, sens, tr, buf, rt.tracker, sched, obs)

	if !cfg.NTP.Disabled {
		rt.ntp = timesync.NewChecker(cfg.NTP, clock, obs)
	}

	return rt, nil
}

// Start launches the tick loop, the metrics endpoint, and the NTP checker.
// It returns immediately; call Run to block on a context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.startedAt = r.clock.Now()

	r.tickDone = make(chan struct{})
	go r.runTicks(ctx)

	if r.ntp != nil {
		r.ntpDone = make(chan struct{})
		go func() {
			defer close(r.ntpDone)
			r.ntp.Run(ctx)
		}()
	}

	r.startMetrics()

	r.obs.LogInfo("agent_started",
		ports.Field{Key: "device_id", Value: r.cfg.DeviceID},
		ports.Field{Key: "broker", Value: r.cfg.MQTT.Addr()})
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled.
// Upon cancellation it attempts a graceful shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops the tick loop, the metrics server, and the broker session.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	r.stopOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
	})

	for _, done := range []chan struct{}{r.tickDone, r.ntpDone} {
		if done == nil {
			continue
		}
		select {
		case <-done:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if r.transport != nil {
		r.transport.Close()
	}

	return errors.Join(errs...)
}

// State reports the connection ladder position. Safe to call from any goroutine.
func (r *Runtime) State() ConnState {
	return ConnState(r.state.Load())
}

// NTPStatus returns the latest wall-clock health snapshot. ok is false when
// the checker is disabled.
func (r *Runtime) NTPStatus() (status NTPStatus, ok bool) {
	if r.ntp == nil {
		return NTPStatus{}, false
	}
	return r.ntp.Status(), true
}

func (r *Runtime) runTicks(ctx context.Context) {
	defer close(r.tickDone)

	interval := r.cfg.TickInterval()
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := r.clock.Now()
			r.pipe.Tick(ctx, now)
			r.obs.SetGauge("egg_uptime_seconds", now.Sub(r.startedAt).Seconds())
		}
	}
}

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("metrics_server_exited", err)
		}
	}()
}
