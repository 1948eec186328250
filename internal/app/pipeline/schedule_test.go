package pipeline

import (
	"testing"
	"time"
)

func TestScheduleDueOnExactBoundary(t *testing.T) {
	start := time.Unix(1000, 0)
	sched := NewSchedule(5*time.Second, 10*time.Second, start)

	if sched.SampleDue(start.Add(4 * time.Second)) {
		t.Fatalf("expected sample not due before the interval")
	}
	if !sched.SampleDue(start.Add(5 * time.Second)) {
		t.Fatalf("expected a tie to count as due")
	}
}

func TestScheduleResetsToObservedNow(t *testing.T) {
	start := time.Unix(1000, 0)
	sched := NewSchedule(5*time.Second, time.Hour, start)

	// Fires late at +7s; the next firing is measured from +7s, not +5s.
	if !sched.SampleDue(start.Add(7 * time.Second)) {
		t.Fatalf("expected late tick to be due")
	}
	if sched.SampleDue(start.Add(11 * time.Second)) {
		t.Fatalf("expected no firing 4s after the late one")
	}
	if !sched.SampleDue(start.Add(12 * time.Second)) {
		t.Fatalf("expected firing 5s after the late one")
	}
}

func TestScheduleStallYieldsSingleFiring(t *testing.T) {
	start := time.Unix(1000, 0)
	sched := NewSchedule(5*time.Second, time.Hour, start)

	stalled := start.Add(47 * time.Second)
	if !sched.SampleDue(stalled) {
		t.Fatalf("expected stalled timer to be due")
	}
	if sched.SampleDue(stalled) {
		t.Fatalf("expected exactly one firing per instant, got a second")
	}
	if sched.SampleDue(stalled.Add(4 * time.Second)) {
		t.Fatalf("expected no catch-up burst after a stall")
	}
}

func TestScheduleTimersAreIndependent(t *testing.T) {
	start := time.Unix(1000, 0)
	sched := NewSchedule(5*time.Second, 10*time.Second, start)

	at5 := start.Add(5 * time.Second)
	if !sched.SampleDue(at5) {
		t.Fatalf("expected sample due at +5s")
	}
	if sched.PublishDue(at5) {
		t.Fatalf("expected publish not due at +5s")
	}

	at10 := start.Add(10 * time.Second)
	if !sched.SampleDue(at10) {
		t.Fatalf("expected sample due at +10s")
	}
	if !sched.PublishDue(at10) {
		t.Fatalf("expected publish due at +10s")
	}
}
