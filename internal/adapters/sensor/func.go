package sensor

import (
	"context"

	"github.com/Hao-Tec/egg-guardian/internal/domain"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// Func adapts a plain function to the Sensor port.
type Func func(ctx context.Context) (domain.Sample, error)

func (f Func) Read(ctx context.Context) (domain.Sample, error) { return f(ctx) }

var _ ports.Sensor = (Func)(nil)
