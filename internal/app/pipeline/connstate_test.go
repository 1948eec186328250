package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLadderClimbsOneTransitionPerTick(t *testing.T) {
	probe := &mockProbe{reachable: true}
	tr := &mockTransport{}
	conn := NewConnTracker(probe, tr, 5*time.Second, &mockObs{})

	ctx := context.Background()
	now := time.Unix(1000, 0)

	if got := conn.Tick(ctx, now); got != StateConnectingNetwork {
		t.Fatalf("tick 1: expected connecting_network, got %s", got)
	}
	if got := conn.Tick(ctx, now.Add(time.Second)); got != StateConnectingBroker {
		t.Fatalf("tick 2: expected connecting_broker, got %s", got)
	}
	if got := conn.Tick(ctx, now.Add(2*time.Second)); got != StateConnected {
		t.Fatalf("tick 3: expected connected, got %s", got)
	}
	if probe.calls != 1 {
		t.Fatalf("expected one probe, got %d", probe.calls)
	}
	if tr.connectCalls != 1 {
		t.Fatalf("expected one connect attempt, got %d", tr.connectCalls)
	}
	if conn.Attempts() != 0 {
		t.Fatalf("expected attempts reset after connect, got %d", conn.Attempts())
	}
}

func TestLadderNeverSkipsStates(t *testing.T) {
	probe := &mockProbe{reachable: true}
	tr := &mockTransport{}
	conn := NewConnTracker(probe, tr, 5*time.Second, &mockObs{})

	var hops [][2]State
	conn.SetStateChangeHandler(func(from, to State) {
		hops = append(hops, [2]State{from, to})
	})

	ctx := context.Background()
	now := time.Unix(1000, 0)
	for i := 0; i < 5; i++ {
		conn.Tick(ctx, now.Add(time.Duration(i)*time.Second))
	}

	for _, hop := range hops {
		if hop[0] == StateDisconnected && hop[1] == StateConnected {
			t.Fatalf("ladder skipped straight from disconnected to connected")
		}
		if hop[1] == StateConnected && hop[0] != StateConnectingBroker {
			t.Fatalf("connected entered from %s", hop[0])
		}
	}
	want := [][2]State{
		{StateDisconnected, StateConnectingNetwork},
		{StateConnectingNetwork, StateConnectingBroker},
		{StateConnectingBroker, StateConnected},
	}
	if len(hops) != len(want) {
		t.Fatalf("expected %d transitions, got %d", len(want), len(hops))
	}
	for i := range want {
		if hops[i] != want[i] {
			t.Fatalf("transition %d: expected %v, got %v", i, want[i], hops[i])
		}
	}
}

func TestProbeFailureFallsBackWithoutBrokerAttempt(t *testing.T) {
	probe := &mockProbe{reachable: false}
	tr := &mockTransport{}
	conn := NewConnTracker(probe, tr, 5*time.Second, &mockObs{})

	ctx := context.Background()
	now := time.Unix(1000, 0)

	conn.Tick(ctx, now)
	if got := conn.Tick(ctx, now.Add(time.Second)); got != StateDisconnected {
		t.Fatalf("expected fallback to disconnected, got %s", got)
	}
	if tr.connectCalls != 0 {
		t.Fatalf("expected no broker attempt after probe failure, got %d", tr.connectCalls)
	}
}

func TestBrokerFailureBacksOffBeforeRetry(t *testing.T) {
	probe := &mockProbe{reachable: true}
	tr := &mockTransport{connectErr: errors.New("connack refused")}
	conn := NewConnTracker(probe, tr, 5*time.Second, &mockObs{})

	ctx := context.Background()
	now := time.Unix(1000, 0)

	conn.Tick(ctx, now)                    // -> connecting_network
	conn.Tick(ctx, now.Add(time.Second))   // -> connecting_broker
	conn.Tick(ctx, now.Add(2*time.Second)) // connect fails -> disconnected

	if got := conn.State(); got != StateDisconnected {
		t.Fatalf("expected disconnected after refused connect, got %s", got)
	}
	if got := conn.Tick(ctx, now.Add(4*time.Second)); got != StateDisconnected {
		t.Fatalf("expected backoff hold, got %s", got)
	}
	if got := conn.Tick(ctx, now.Add(7*time.Second)); got != StateConnectingNetwork {
		t.Fatalf("expected retry after backoff, got %s", got)
	}
	if conn.Attempts() != 2 {
		t.Fatalf("expected 2 attempts so far, got %d", conn.Attempts())
	}
}

func TestFirstTickStartsConnectingImmediately(t *testing.T) {
	conn := NewConnTracker(&mockProbe{reachable: true}, &mockTransport{}, time.Hour, &mockObs{})
	if got := conn.Tick(context.Background(), time.Unix(1000, 0)); got != StateConnectingNetwork {
		t.Fatalf("expected immediate first attempt, got %s", got)
	}
}

func TestConnectionLossFallsStraightToDisconnected(t *testing.T) {
	probe := &mockProbe{reachable: true}
	tr := &mockTransport{}
	obs := &mockObs{}
	conn := NewConnTracker(probe, tr, 5*time.Second, obs)

	ctx := context.Background()
	now := time.Unix(1000, 0)
	conn.Tick(ctx, now)
	conn.Tick(ctx, now.Add(time.Second))
	conn.Tick(ctx, now.Add(2*time.Second))
	if !conn.Publishable() {
		t.Fatalf("expected publishable while connected")
	}

	tr.connected = false
	if got := conn.Tick(ctx, now.Add(3*time.Second)); got != StateDisconnected {
		t.Fatalf("expected immediate fall to disconnected, got %s", got)
	}
	if conn.Publishable() {
		t.Fatalf("expected not publishable after loss")
	}
	if obs.counters["egg_connection_losses_total"] != 1 {
		t.Fatalf("expected loss counter 1, got %v", obs.counters["egg_connection_losses_total"])
	}
}

func TestAlreadyConnectedTransportSkipsConnect(t *testing.T) {
	probe := &mockProbe{reachable: true}
	tr := &mockTransport{connected: true}
	conn := NewConnTracker(probe, tr, 5*time.Second, &mockObs{})

	ctx := context.Background()
	now := time.Unix(1000, 0)
	conn.Tick(ctx, now)
	conn.Tick(ctx, now.Add(time.Second))
	if got := conn.Tick(ctx, now.Add(2*time.Second)); got != StateConnected {
		t.Fatalf("expected connected, got %s", got)
	}
	if tr.connectCalls != 0 {
		t.Fatalf("expected no connect on a live session, got %d", tr.connectCalls)
	}
}

func TestStateStrings(t *testing.T) {
	cases := map[State]string{
		StateDisconnected:      "disconnected",
		StateConnectingNetwork: "connecting_network",
		StateConnectingBroker:  "connecting_broker",
		StateConnected:         "connected",
		State(9):               "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
