package service

import (
	"context"
	"time"
)

// RetryPolicy controls how LookupRate retries the DOR service
type RetryPolicy struct {
	MaxAttempts    int           // total attempts including the first
	AttemptTimeout time.Duration // per attempt deadline, 0 means none
	Backoff        time.Duration // pause between attempts, 0 means none
}

// DefaultRetryPolicy returns three attempts of 2.5s each
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		AttemptTimeout: 2500 * time.Millisecond,
		Backoff:        250 * time.Millisecond,
	}
}

// normalized repairs negative or missing values
// Zero AttemptTimeout and Backoff are kept and mean no deadline and no pause
func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.AttemptTimeout < 0 {
		p.AttemptTimeout = def.AttemptTimeout
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
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
