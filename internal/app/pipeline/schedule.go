package pipeline

import "time"

// Schedule owns the two independent cadences of the agent: how often a sample
// is taken and how often a publish round runs. A firing resets its timer to
// the observed now, so a late tick shifts the cadence forward instead of
// producing catch-up bursts.
type Schedule struct {
	sample  intervalTimer
	publish intervalTimer
}

func NewSchedule(sampleEvery, publishEvery time.Duration, start time.Time) *Schedule {
	return &Schedule{
		sample:  intervalTimer{every: sampleEvery, last: start},
		publish: intervalTimer{every: publishEvery, last: start},
	}
}

func (s *Schedule) SampleDue(now time.Time) bool { return s.sample.due(now) }

func (s *Schedule) PublishDue(now time.Time) bool { return s.publish.due(now) }

type intervalTimer struct {
	every time.Duration
	last  time.Time
}

// due reports whether the interval has elapsed; a tie counts. Multiple missed
// intervals still yield a single firing.
func (t *intervalTimer) due(now time.Time) bool {
	if now.Sub(t.last) < t.every {
		return false
	}
	t.last = now
	return true
}
