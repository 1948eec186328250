package domain

import "time"

// Sample is the canonical unit of telemetry in Egg Guardian: one temperature
// reading and the wall-clock instant it was captured.
type Sample struct {
	TempC      float64
	CapturedAt time.Time
}
