package limiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/pkg/limiter"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestLimiter(baseDelay time.Duration) (*limiter.ConcurrentRateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(baseDelay)
	rl.SetJitter(0)
	rl.SetRandomSeed(42)
	rl.SetClock(clock.Now)
	return rl, clock
}

func TestNewConcurrentRateLimiter(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(3 * time.Second)
	rl.SetJitter(100 * time.Millisecond)

	assert.Equal(t, 3*time.Second, rl.BaseDelay())
	assert.Equal(t, 100*time.Millisecond, rl.Jitter())
	assert.NotNil(t, rl.Lanes())
}

func TestReserve_FirstSlotIsImmediate(t *testing.T) {
	rl, _ := newTestLimiter(3 * time.Second)

	assert.Zero(t, rl.Reserve("vbpl:listing"))
}

func TestReserve_ConsecutiveSlotsAreSpaced(t *testing.T) {
	rl, _ := newTestLimiter(3 * time.Second)

	assert.Zero(t, rl.Reserve("vbpl:listing"))
	assert.Equal(t, 3*time.Second, rl.Reserve("vbpl:listing"))
	assert.Equal(t, 6*time.Second, rl.Reserve("vbpl:listing"))
}

func TestReserve_ElapsedTimeIsCredited(t *testing.T) {
	rl, clock := newTestLimiter(3 * time.Second)

	rl.Reserve("lane")
	clock.Advance(2 * time.Second)
	assert.Equal(t, 1*time.Second, rl.Reserve("lane"))

	clock.Advance(10 * time.Second)
	assert.Zero(t, rl.Reserve("lane"))
}

func TestReserve_LanesAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(3 * time.Second)

	rl.Reserve("vbpl:listing")
	assert.Zero(t, rl.Reserve("vbpl:graph"))
}

func TestBackoff_WidensSpacing(t *testing.T) {
	rl, _ := newTestLimiter(1 * time.Second)
	rl.SetBackoffParam(timeutil.NewBackoffParam(2*time.Second, 2.0, 30*time.Second))

	rl.Backoff("lane")
	rl.Backoff("lane")

	timing := rl.Lanes()["lane"]
	assert.Equal(t, 2, timing.BackoffCount())
	assert.Equal(t, 4*time.Second, timing.BackoffDelay())

	rl.Reserve("lane")
	assert.Equal(t, 4*time.Second, rl.Reserve("lane"))
}

func TestResetBackoff_RestoresBaseDelay(t *testing.T) {
	rl, _ := newTestLimiter(1 * time.Second)

	rl.Backoff("lane")
	rl.Backoff("lane")
	rl.ResetBackoff("lane")

	timing := rl.Lanes()["lane"]
	assert.Zero(t, timing.BackoffCount())
	assert.Zero(t, timing.BackoffDelay())
}

func TestResetBackoff_UnknownLaneIsNoop(t *testing.T) {
	rl, _ := newTestLimiter(1 * time.Second)

	rl.ResetBackoff("missing")
	_, exists := rl.Lanes()["missing"]
	assert.False(t, exists)
}

func TestWait_HonoursContext(t *testing.T) {
	rl, _ := newTestLimiter(time.Hour)
	rl.Reserve("lane")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx, "lane")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
