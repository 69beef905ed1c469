package chain

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds retries of idempotent reads.
type RetryPolicy struct {
	Attempts    uint
	CallTimeout time.Duration
	NewBackOff  func() backoff.BackOff
}

// ExponentialRetry retries with exponentially growing delay starting at initial.
func ExponentialRetry(attempts uint, initial, callTimeout time.Duration) RetryPolicy {
	return RetryPolicy{
		Attempts:    attempts,
		CallTimeout: callTimeout,
		NewBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.RandomizationFactor = 0
			b.Multiplier = 2
			b.MaxInterval = initial * 16
			return b
		},
	}
}

// FixedRetry retries with a constant delay between attempts.
func FixedRetry(attempts uint, delay, callTimeout time.Duration) RetryPolicy {
	return RetryPolicy{
		Attempts:    attempts,
		CallTimeout: callTimeout,
		NewBackOff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(delay)
		},
	}
}

// Retry runs op under the policy. Each attempt gets its own CallTimeout.
// ErrNotFound and backoff.Permanent errors stop retrying immediately.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context) (T, error), notify func(error, time.Duration)) (T, error) {
	opts := []backoff.RetryOption{
		backoff.WithMaxTries(max(p.Attempts, 1)),
	}
	if p.NewBackOff != nil {
		opts = append(opts, backoff.WithBackOff(p.NewBackOff()))
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(notify))
	}

	return backoff.Retry(ctx, func() (T, error) {
		callCtx := ctx
		if p.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, p.CallTimeout)
			defer cancel()
		}
		v, err := op(callCtx)
		if errors.Is(err, ErrNotFound) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, opts...)
}
