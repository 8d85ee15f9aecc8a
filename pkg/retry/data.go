package retry

import (
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/timeutil"
)

// RetryParam holds the parameters for retry logic.
// They come from config; the retry handler never decides them itself.
type RetryParam struct {
	Jitter       time.Duration
	RandomSeed   int64
	MaxAttempts  int
	BackoffParam timeutil.BackoffParam

	onRetry func(attempt int, delay time.Duration, err failure.ClassifiedError)
}

func NewRetryParam(
	jitter time.Duration,
	randomSeed int64,
	maxAttempts int,
	backoffParam timeutil.BackoffParam,
) RetryParam {
	return RetryParam{
		Jitter:       jitter,
		RandomSeed:   randomSeed,
		MaxAttempts:  maxAttempts,
		BackoffParam: backoffParam,
	}
}

// WithOnRetry returns a copy of the param that calls fn before every
// backoff wait. attempt is the attempt that just failed.
func (p RetryParam) WithOnRetry(fn func(attempt int, delay time.Duration, err failure.ClassifiedError)) RetryParam {
	p.onRetry = fn
	return p
}

// Result is the outcome of a retried task.
type Result[T any] struct {
	value    T
	err      failure.ClassifiedError
	attempts int
	delays   []time.Duration
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() failure.ClassifiedError {
	return r.err
}

// Attempts is the number of times the task ran.
func (r Result[T]) Attempts() int {
	return r.attempts
}

// Delays lists the backoff waits applied between attempts, in order.
func (r Result[T]) Delays() []time.Duration {
	return r.delays
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

func (r Result[T]) IsFailure() bool {
	return r.err != nil
}
