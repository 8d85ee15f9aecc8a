package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// BackoffParam describes an exponential backoff curve:
//
//	initialDuration := 1 * time.Second // first delay
//	multiplier := 2.0                  // 1s, 2s, 4s, ...
//	maxDuration := 30 * time.Second    // cap
type BackoffParam struct {
	initialDuration time.Duration
	multiplier      float64
	maxDuration     time.Duration
}

func NewBackoffParam(
	initialDuration time.Duration,
	multiplier float64,
	maxDuration time.Duration,
) BackoffParam {
	return BackoffParam{
		initialDuration: initialDuration,
		multiplier:      multiplier,
		maxDuration:     maxDuration,
	}
}

func (b BackoffParam) InitialDuration() time.Duration {
	return b.initialDuration
}

func (b BackoffParam) Multiplier() float64 {
	return b.multiplier
}

func (b BackoffParam) MaxDuration() time.Duration {
	return b.maxDuration
}

// ExponentialBackoffDelay returns initial * multiplier^(count-1), capped at
// the max duration, plus a jitter in [0, jitter).
// count starts at 1 for the first backoff.
func ExponentialBackoffDelay(
	count int,
	jitter time.Duration,
	rng *rand.Rand,
	param BackoffParam,
) time.Duration {
	if count < 1 {
		count = 1
	}
	delay := float64(param.initialDuration) * math.Pow(param.multiplier, float64(count-1))
	if param.maxDuration > 0 && delay > float64(param.maxDuration) {
		delay = float64(param.maxDuration)
	}
	return time.Duration(delay) + ComputeJitter(jitter, rng)
}

// ComputeJitter returns a pseudo-random duration in [0, max).
// A nil rng or a non-positive max yields zero.
func ComputeJitter(max time.Duration, rng *rand.Rand) time.Duration {
	if max <= 0 || rng == nil {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}
