// Package clock holds the time helpers shared by chain adapters and feed listeners.
package clock

import (
	"context"
	"time"
)

// SleepWithContext pauses for d. It returns ctx.Err() when ctx ends first.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FromUnix converts a chain timestamp in seconds to UTC.
func FromUnix[T ~int64 | ~uint64](sec T) time.Time {
	return time.Unix(int64(sec), 0).UTC()
}
