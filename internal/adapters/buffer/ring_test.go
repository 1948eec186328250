package buffer

import (
	"testing"
	"time"

	"github.com/Hao-Tec/egg-guardian/internal/domain"
)

func sampleAt(temp float64, sec int) domain.Sample {
	return domain.Sample{TempC: temp, CapturedAt: time.Unix(int64(sec), 0)}
}

func temps(batch []domain.Sample) []float64 {
	out := make([]float64, len(batch))
	for i, s := range batch {
		out[i] = s.TempC
	}
	return out
}

func TestPushThenDrainPreservesOrder(t *testing.T) {
	r := NewRing(5)
	for i := 1; i <= 3; i++ {
		if _, overwrote := r.Push(sampleAt(float64(i), i)); overwrote {
			t.Fatalf("push %d overwrote on a non-full ring", i)
		}
	}
	if r.Len() != 3 {
		t.Fatalf("expected len 3, got %d", r.Len())
	}

	got := temps(r.DrainAll())
	want := []float64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected drain order %v, got %v", want, got)
		}
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty ring after drain, got len %d", r.Len())
	}
}

func TestOverflowKeepsMostRecent(t *testing.T) {
	r := NewRing(3)
	labels := []float64{1, 2, 3, 4} // A B C D

	var evictions []float64
	for i, temp := range labels {
		evicted, overwrote := r.Push(sampleAt(temp, i))
		if overwrote {
			evictions = append(evictions, evicted.TempC)
		}
	}

	if len(evictions) != 1 || evictions[0] != 1 {
		t.Fatalf("expected exactly sample A evicted, got %v", evictions)
	}

	got := temps(r.DrainAll())
	want := []float64{2, 3, 4} // B C D
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestLongOverflowHoldsCapMostRecent(t *testing.T) {
	r := NewRing(4)
	for i := 0; i < 23; i++ {
		r.Push(sampleAt(float64(i), i))
	}
	if r.Len() != 4 {
		t.Fatalf("expected len to stay at cap 4, got %d", r.Len())
	}

	got := temps(r.DrainAll())
	want := []float64{19, 20, 21, 22}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDrainEmptyReturnsNil(t *testing.T) {
	r := NewRing(2)
	if batch := r.DrainAll(); batch != nil {
		t.Fatalf("expected nil from empty drain, got %v", batch)
	}
}

func TestReuseAfterDrain(t *testing.T) {
	r := NewRing(2)
	r.Push(sampleAt(1, 1))
	r.Push(sampleAt(2, 2))
	r.Push(sampleAt(3, 3))
	r.DrainAll()

	r.Push(sampleAt(9, 9))
	got := temps(r.DrainAll())
	if len(got) != 1 || got[0] != 9 {
		t.Fatalf("expected [9] after reuse, got %v", got)
	}
}

func TestCapReportsCapacity(t *testing.T) {
	if got := NewRing(20).Cap(); got != 20 {
		t.Fatalf("expected cap 20, got %d", got)
	}
	if got := NewRing(0).Cap(); got != 1 {
		t.Fatalf("expected degenerate capacity clamped to 1, got %d", got)
	}
}
