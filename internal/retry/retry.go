// Package retry holds the fixed-delay retry policy shared by the fetcher
// and the batched loader.
package retry

import (
	"context"
	"time"
)

// Policy controls how many times an operation is attempted and how long to
// wait between attempts. Sleep is injectable so tests run without real
// delays; when nil, time.Sleep is used.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       func(time.Duration)
}

// Wait blocks for the policy delay, honoring context cancellation when no
// custom sleep function is installed.
func (p Policy) Wait(ctx context.Context) error {
	if p.Sleep != nil {
		p.Sleep(p.Delay)
		return nil
	}
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
