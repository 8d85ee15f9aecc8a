package limiter

import "time"

// timing state of one politeness lane
type laneTiming struct {
	nextAllowedAt time.Time
	backoffDelay  time.Duration
	backoffCount  int
}

func (l laneTiming) NextAllowedAt() time.Time {
	return l.nextAllowedAt
}

func (l laneTiming) BackoffDelay() time.Duration {
	return l.backoffDelay
}

func (l laneTiming) BackoffCount() int {
	return l.backoffCount
}
