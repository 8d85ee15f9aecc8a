package limiter

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/pkg/timeutil"
)

// RateLimiter spaces out requests that share a lane (for example all listing
// pages of one portal). Each lane keeps its own schedule and backoff.
type RateLimiter interface {
	SetBaseDelay(baseDelay time.Duration)
	SetJitter(jitter time.Duration)
	SetRandomSeed(randomSeed int64)
	Backoff(lane string)
	ResetBackoff(lane string)
	Reserve(lane string) time.Duration
	Wait(ctx context.Context, lane string) error
}

type ConcurrentRateLimiter struct {
	mu           sync.Mutex
	baseDelay    time.Duration
	jitter       time.Duration
	backoffParam timeutil.BackoffParam
	lanes        map[string]laneTiming
	rng          *rand.Rand
	now          func() time.Time
}

func NewConcurrentRateLimiter() *ConcurrentRateLimiter {
	return &ConcurrentRateLimiter{
		lanes:        make(map[string]laneTiming),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		backoffParam: timeutil.NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
		now:          time.Now,
	}
}

func (r *ConcurrentRateLimiter) SetBaseDelay(baseDelay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseDelay = baseDelay
}

func (r *ConcurrentRateLimiter) SetJitter(jitter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jitter = jitter
}

func (r *ConcurrentRateLimiter) SetRandomSeed(randomSeed int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng = rand.New(rand.NewSource(randomSeed))
}

func (r *ConcurrentRateLimiter) SetBackoffParam(param timeutil.BackoffParam) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backoffParam = param
}

// SetClock replaces the time source. Tests only.
func (r *ConcurrentRateLimiter) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Backoff widens the spacing of a lane after a failed request.
func (r *ConcurrentRateLimiter) Backoff(lane string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing := r.lanes[lane]
	timing.backoffCount++
	timing.backoffDelay = timeutil.ExponentialBackoffDelay(timing.backoffCount, 0, nil, r.backoffParam)
	r.lanes[lane] = timing
}

// ResetBackoff clears the backoff of a lane after a successful request.
func (r *ConcurrentRateLimiter) ResetBackoff(lane string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing, exists := r.lanes[lane]
	if !exists {
		return
	}
	timing.backoffCount = 0
	timing.backoffDelay = 0
	r.lanes[lane] = timing
}

// Reserve books the next slot of a lane and returns how long the caller must
// wait before using it. Concurrent callers get distinct, spaced slots.
// The first reservation of a lane is immediate.
func (r *ConcurrentRateLimiter) Reserve(lane string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	timing, exists := r.lanes[lane]

	slot := now
	if exists && timing.nextAllowedAt.After(now) {
		slot = timing.nextAllowedAt
	}

	spacing := timeutil.MaxDuration([]time.Duration{r.baseDelay, timing.backoffDelay})
	spacing += timeutil.ComputeJitter(r.jitter, r.rng)

	timing.nextAllowedAt = slot.Add(spacing)
	r.lanes[lane] = timing

	return slot.Sub(now)
}

// Wait reserves a slot and sleeps until it starts or ctx is done.
func (r *ConcurrentRateLimiter) Wait(ctx context.Context, lane string) error {
	return timeutil.SleepContext(ctx, r.Reserve(lane))
}

func (r *ConcurrentRateLimiter) BaseDelay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.baseDelay
}

func (r *ConcurrentRateLimiter) Jitter() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jitter
}

// Lanes returns a copy of the per-lane timings.
func (r *ConcurrentRateLimiter) Lanes() map[string]laneTiming {
	r.mu.Lock()
	defer r.mu.Unlock()

	copyMap := make(map[string]laneTiming, len(r.lanes))
	for k, v := range r.lanes {
		copyMap[k] = v
	}
	return copyMap
}
