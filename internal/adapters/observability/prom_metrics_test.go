package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/Hao-Tec/egg-guardian/internal/domain"
)

func swapRegistry(t *testing.T) {
	t.Helper()
	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
}

func TestPromObsMetrics(t *testing.T) {
	swapRegistry(t)
	obs := NewPromObs(zap.NewNop())

	obs.IncCounter("egg_samples_published_total", 5)
	if got := testutil.ToFloat64(obs.counters["egg_samples_published_total"]); got != 5 {
		t.Fatalf("expected published counter 5, got %f", got)
	}

	obs.SetGauge("egg_buffer_length", 7)
	if got := testutil.ToFloat64(obs.gauges["egg_buffer_length"]); got != 7 {
		t.Fatalf("expected buffer gauge 7, got %f", got)
	}

	obs.ObserveLatency("egg_publish_latency_seconds", 0.25)
	hCollector := obs.histos["egg_publish_latency_seconds"].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	// Unknown names are dropped, not registered on the fly.
	obs.IncCounter("egg_no_such_counter_total", 1)
	obs.SetGauge("egg_no_such_gauge", 1)
	obs.ObserveLatency("egg_no_such_histogram", 1)
}

func TestRecordLossCountsByCause(t *testing.T) {
	swapRegistry(t)
	obs := NewPromObs(zap.NewNop())

	s := domain.Sample{TempC: 37.5, CapturedAt: time.Unix(1000, 0)}
	obs.RecordLoss("buffer_overwrite", s)
	obs.RecordLoss("publish_failed", s)
	obs.RecordLoss("publish_failed", s)

	if got := testutil.ToFloat64(obs.losses.WithLabelValues("buffer_overwrite")); got != 1 {
		t.Fatalf("expected 1 buffer_overwrite loss, got %f", got)
	}
	if got := testutil.ToFloat64(obs.losses.WithLabelValues("publish_failed")); got != 2 {
		t.Fatalf("expected 2 publish_failed losses, got %f", got)
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	logger, err := NewLogger(LogConfig{File: path, Level: "debug"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log output in %s", path)
	}
}

func TestLogConfigValidate(t *testing.T) {
	cfg := LogConfig{Level: "verbose"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for bad level")
	}
	cfg = LogConfig{Level: "warn"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected warn to parse, got %v", err)
	}
}
