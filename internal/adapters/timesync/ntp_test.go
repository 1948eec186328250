package timesync

import (
	"errors"
	"testing"
	"time"

	"github.com/beevik/ntp"

	"github.com/Hao-Tec/egg-guardian/internal/domain"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

func TestCheckHealthyWithinThreshold(t *testing.T) {
	obs := &stubObs{}
	c := NewChecker(Config{}, stubClock{now: time.Unix(5000, 0)}, obs)
	c.queryFn = func(string) (*ntp.Response, error) {
		return &ntp.Response{ClockOffset: 10 * time.Millisecond}, nil
	}

	c.check()

	st := c.Status()
	if !st.Healthy {
		t.Fatalf("expected healthy status, got %+v", st)
	}
	if st.Offset != 10*time.Millisecond {
		t.Fatalf("expected offset 10ms, got %s", st.Offset)
	}
	if !st.CheckedAt.Equal(time.Unix(5000, 0)) {
		t.Fatalf("expected checked-at from clock, got %v", st.CheckedAt)
	}
	if obs.gauges["egg_ntp_offset_seconds"] != 0.01 {
		t.Fatalf("expected offset gauge 0.01, got %v", obs.gauges["egg_ntp_offset_seconds"])
	}
}

func TestCheckFlagsDrift(t *testing.T) {
	obs := &stubObs{}
	c := NewChecker(Config{OffsetThresholdMS: 500}, stubClock{}, obs)
	c.queryFn = func(string) (*ntp.Response, error) {
		return &ntp.Response{ClockOffset: -2 * time.Second}, nil
	}

	c.check()

	if st := c.Status(); st.Healthy {
		t.Fatalf("expected drift to be unhealthy, got %+v", st)
	}
	if len(obs.errors) != 1 {
		t.Fatalf("expected one drift error logged, got %d", len(obs.errors))
	}
}

func TestCheckRecordsQueryFailure(t *testing.T) {
	obs := &stubObs{}
	c := NewChecker(Config{}, stubClock{}, obs)
	c.queryFn = func(string) (*ntp.Response, error) {
		return nil, errors.New("no route to pool")
	}

	c.check()

	st := c.Status()
	if st.Healthy {
		t.Fatalf("expected unhealthy on query failure")
	}
	if st.Error != "no route to pool" {
		t.Fatalf("expected error recorded, got %q", st.Error)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Pool != "pool.ntp.org" {
		t.Fatalf("expected pool.ntp.org, got %s", cfg.Pool)
	}
	if cfg.Interval() != time.Minute {
		t.Fatalf("expected 1m interval, got %s", cfg.Interval())
	}
	if cfg.Threshold() != 500*time.Millisecond {
		t.Fatalf("expected 500ms threshold, got %s", cfg.Threshold())
	}
	if cfg.Disabled {
		t.Fatalf("expected checker enabled by default")
	}
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time { return s.now }

type stubObs struct {
	gauges map[string]float64
	errors []error
}

func (s *stubObs) LogInfo(string, ...ports.Field) {}

func (s *stubObs) LogError(_ string, err error, _ ...ports.Field) {
	s.errors = append(s.errors, err)
}

func (s *stubObs) LogCritical(string, error, ...ports.Field) {}
func (s *stubObs) IncCounter(string, float64)                {}
func (s *stubObs) ObserveLatency(string, float64)            {}

func (s *stubObs) SetGauge(name string, v float64) {
	if s.gauges == nil {
		s.gauges = map[string]float64{}
	}
	s.gauges[name] = v
}

func (s *stubObs) RecordLoss(string, domain.Sample) {}
