package sensor

import (
	"context"
	"math/rand"

	"github.com/Hao-Tec/egg-guardian/internal/domain"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// Sim emits plausible incubation temperatures without hardware: a setpoint
// plus bounded uniform noise.
type Sim struct {
	base     float64
	variance float64
	clock    ports.Clock
}

func NewSim(base, variance float64, clock ports.Clock) *Sim {
	return &Sim{base: base, variance: variance, clock: clock}
}

func (s *Sim) Read(context.Context) (domain.Sample, error) {
	noise := (rand.Float64()*2 - 1) * s.variance
	return domain.Sample{TempC: s.base + noise, CapturedAt: s.clock.Now()}, nil
}

var _ ports.Sensor = (*Sim)(nil)
