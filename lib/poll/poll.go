// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relaykit/codexbridge/lib/clock"
)

// Policy bounds a polling loop. At least one of Timeout or Attempts
// must be positive; a loop with neither would never give up.
type Policy struct {
	// Interval is the wait between consecutive attempts.
	Interval time.Duration

	// Timeout caps total elapsed time measured on the injected clock.
	// Zero means no time bound.
	Timeout time.Duration

	// Attempts caps the number of calls to the polled function. Zero
	// means no attempt bound.
	Attempts int
}

// ErrExhausted is wrapped by the error Until returns when the policy
// runs out before the function succeeds.
var ErrExhausted = errors.New("polling exhausted")

// Until calls fn until it returns nil, the policy is exhausted, or ctx
// is cancelled. The first attempt happens immediately. On exhaustion
// the returned error wraps both ErrExhausted and the last error fn
// returned, and names the attempt count. On cancellation it returns
// ctx.Err().
func Until(ctx context.Context, c clock.Clock, policy Policy, fn func(context.Context) error) error {
	if policy.Timeout <= 0 && policy.Attempts <= 0 {
		return fmt.Errorf("poll policy needs a timeout or an attempt cap")
	}

	var deadline time.Time
	if policy.Timeout > 0 {
		deadline = c.Now().Add(policy.Timeout)
	}

	var lastErr error
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		attempt++
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if policy.Attempts > 0 && attempt >= policy.Attempts {
			break
		}
		if !deadline.IsZero() && !c.Now().Add(policy.Interval).Before(deadline) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.After(policy.Interval):
		}
	}

	return fmt.Errorf("%w after %d attempt(s): %w", ErrExhausted, attempt, lastErr)
}
