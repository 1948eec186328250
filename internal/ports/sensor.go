package ports

import (
	"context"
	"errors"

	"github.com/Hao-Tec/egg-guardian/internal/domain"
)

// ErrSensorUnavailable reports that the probe could not produce a reading.
// Adapters wrap it so callers can treat every read failure uniformly.
var ErrSensorUnavailable = errors.New("sensor unavailable")

type Sensor interface {
	Read(ctx context.Context) (domain.Sample, error)
}
