package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// State is the position of the link in its bring-up ladder.
type State uint8

const (
	StateDisconnected State = iota
	StateConnectingNetwork
	StateConnectingBroker
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnectingNetwork:
		return "connecting_network"
	case StateConnectingBroker:
		return "connecting_broker"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// ConnTracker walks the link up the ladder one transition per tick and drops
// it straight back to disconnected on any failure. The ladder is never
// skipped on the way up: connected is only ever entered from
// connecting_broker. At most one connection attempt (network probe or broker
// connect) happens per tick.
type ConnTracker struct {
	probe     ports.NetworkProbe
	transport ports.Transport
	obs       ports.Observability
	backoff   time.Duration

	state     State
	enteredAt time.Time
	attempts  int
	onChange  func(from, to State)
}

// NewConnTracker starts in disconnected with no backoff pending, so the first
// tick begins connecting immediately. After a failure the tracker holds in
// disconnected for backoff before trying again.
func NewConnTracker(probe ports.NetworkProbe, transport ports.Transport, backoff time.Duration, obs ports.Observability) *ConnTracker {
	return &ConnTracker{
		probe:     probe,
		transport: transport,
		backoff:   backoff,
		obs:       obs,
	}
}

// SetStateChangeHandler registers fn to run on every transition. fn is called
// from the tick goroutine.
func (c *ConnTracker) SetStateChangeHandler(fn func(from, to State)) {
	c.onChange = fn
}

func (c *ConnTracker) State() State { return c.state }

// Publishable reports whether telemetry can be handed to the transport.
func (c *ConnTracker) Publishable() bool { return c.state == StateConnected }

// Attempts returns the number of connection attempts since the last
// successful broker connect.
func (c *ConnTracker) Attempts() int { return c.attempts }

func (c *ConnTracker) Tick(ctx context.Context, now time.Time) State {
	switch c.state {
	case StateDisconnected:
		if c.enteredAt.IsZero() || now.Sub(c.enteredAt) >= c.backoff {
			c.to(StateConnectingNetwork, now)
		}

	case StateConnectingNetwork:
		c.attempts++
		c.obs.IncCounter("egg_connect_attempts_total", 1)
		if c.probe.Reachable(ctx) {
			c.to(StateConnectingBroker, now)
		} else {
			c.obs.LogError("network_unreachable", fmt.Errorf("probe failed (attempt %d)", c.attempts))
			c.to(StateDisconnected, now)
		}

	case StateConnectingBroker:
		if c.transport.IsConnected() {
			c.attempts = 0
			c.to(StateConnected, now)
			break
		}
		c.attempts++
		c.obs.IncCounter("egg_connect_attempts_total", 1)
		if err := c.transport.Connect(ctx); err != nil {
			c.obs.LogError("broker_connect_failed", err, ports.Field{Key: "attempts", Value: c.attempts})
			c.to(StateDisconnected, now)
		} else {
			c.attempts = 0
			c.to(StateConnected, now)
		}

	case StateConnected:
		if !c.transport.IsConnected() {
			c.obs.IncCounter("egg_connection_losses_total", 1)
			c.obs.LogError("connection_lost", fmt.Errorf("broker session dropped"))
			c.to(StateDisconnected, now)
		}
	}
	return c.state
}

func (c *ConnTracker) to(next State, now time.Time) {
	prev := c.state
	c.state = next
	c.enteredAt = now
	c.obs.SetGauge("egg_connection_state", float64(next))
	c.obs.LogInfo("connection_state_changed",
		ports.Field{Key: "from", Value: prev.String()},
		ports.Field{Key: "to", Value: next.String()})
	if c.onChange != nil {
		c.onChange(prev, next)
	}
}
