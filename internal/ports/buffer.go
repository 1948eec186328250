package ports

import "github.com/Hao-Tec/egg-guardian/internal/domain"

// SampleBuffer holds readings taken while the broker is unreachable. Push
// always succeeds; when the buffer is full it returns the displaced sample so
// the caller can account for the loss. Implementations are owned by a single
// goroutine and carry no locking.
type SampleBuffer interface {
	Push(s domain.Sample) (evicted domain.Sample, overwrote bool)
	DrainAll() []domain.Sample
	Len() int
	Cap() int
}
