package buffer

import (
	"github.com/Hao-Tec/egg-guardian/internal/domain"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// Ring is a fixed-capacity circular buffer that keeps the most recent samples,
// overwriting the oldest when full. It is owned by the pipeline tick goroutine
// and therefore unlocked.
type Ring struct {
	data []domain.Sample
	head int
	size int
}

func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{data: make([]domain.Sample, capacity)}
}

// Push stores s. When the ring is full the oldest sample is displaced and
// returned so the caller can record the loss.
func (r *Ring) Push(s domain.Sample) (domain.Sample, bool) {
	if r.size < len(r.data) {
		r.data[(r.head+r.size)%len(r.data)] = s
		r.size++
		return domain.Sample{}, false
	}
	evicted := r.data[r.head]
	r.data[r.head] = s
	r.head = (r.head + 1) % len(r.data)
	return evicted, true
}

// DrainAll removes every buffered sample and returns them oldest first.
func (r *Ring) DrainAll() []domain.Sample {
	if r.size == 0 {
		return nil
	}
	out := make([]domain.Sample, r.size)
	for i := range out {
		out[i] = r.data[(r.head+i)%len(r.data)]
	}
	r.head = 0
	r.size = 0
	return out
}

func (r *Ring) Len() int { return r.size }

func (r *Ring) Cap() int { return len(r.data) }

var _ ports.SampleBuffer = (*Ring)(nil)
