package ports

import "github.com/Hao-Tec/egg-guardian/internal/domain"

type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)
	LogCritical(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)

	SetGauge(name string, v float64)

	// RecordLoss accounts for a sample that will never reach the broker.
	// cause is a short stable token (buffer_overwrite, publish_failed).
	RecordLoss(cause string, s domain.Sample)
}

type Field struct {
	Key   string
	Value any
}
