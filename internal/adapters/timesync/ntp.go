package timesync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"

	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// Config tunes the wall-clock health check.
type Config struct {
	Pool              string `yaml:"pool"`
	CheckIntervalMS   uint   `yaml:"check_interval_ms"`
	OffsetThresholdMS uint   `yaml:"offset_threshold_ms"`
	Disabled          bool   `yaml:"disabled"`
}

func (c *Config) ApplyDefaults() {
	if c.Pool == "" {
		c.Pool = "pool.ntp.org"
	}
	if c.CheckIntervalMS == 0 {
		c.CheckIntervalMS = 60_000
	}
	if c.OffsetThresholdMS == 0 {
		c.OffsetThresholdMS = 500
	}
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.CheckIntervalMS) * time.Millisecond
}

func (c *Config) Threshold() time.Duration {
	return time.Duration(c.OffsetThresholdMS) * time.Millisecond
}

type Status struct {
	Offset    time.Duration
	Healthy   bool
	Error     string
	CheckedAt time.Time
}

// Checker watches wall-clock trustworthiness. Telemetry timestamps come from
// the system clock; a drifting clock produces plausible-looking but wrong
// chronology, so the agent surfaces drift instead of silently shipping it.
type Checker struct {
	mu        sync.RWMutex
	status    Status
	pool      string
	interval  time.Duration
	threshold time.Duration
	clock     ports.Clock
	obs       ports.Observability
	queryFn   func(host string) (*ntp.Response, error)
}

func NewChecker(cfg Config, clock ports.Clock, obs ports.Observability) *Checker {
	cfg.ApplyDefaults()
	return &Checker{
		pool:      cfg.Pool,
		interval:  cfg.Interval(),
		threshold: cfg.Threshold(),
		clock:     clock,
		obs:       obs,
		queryFn:   ntp.Query,
	}
}

// Run checks once immediately, then on every interval until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	c.check()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.check()
		}
	}
}

func (c *Checker) check() {
	resp, err := c.queryFn(c.pool)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if err != nil {
		c.status = Status{Error: err.Error(), Healthy: false, CheckedAt: now}
		c.obs.LogError("ntp_query_failed", err, ports.Field{Key: "pool", Value: c.pool})
		return
	}

	offset := resp.ClockOffset
	abs := offset
	if abs < 0 {
		abs = -abs
	}

	c.status = Status{Offset: offset, Healthy: abs < c.threshold, CheckedAt: now}
	c.obs.SetGauge("egg_ntp_offset_seconds", offset.Seconds())
	if !c.status.Healthy {
		c.obs.LogError("clock_drift_detected",
			fmt.Errorf("offset %s exceeds %s", offset, c.threshold),
			ports.Field{Key: "pool", Value: c.pool})
	}
}

func (c *Checker) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}
