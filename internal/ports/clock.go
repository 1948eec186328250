package ports

import "time"

// Clock abstracts wall-clock access so the pipeline can be driven
// deterministically in tests. Production: RealClock. Testing: a manual fake.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

var _ Clock = RealClock{}
