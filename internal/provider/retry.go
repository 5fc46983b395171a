// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package provider implements spec.md §4.8: wire-format adapters for each
// completion backend behind the agent.Provider interface, so the turn
// loop never knows which vendor it's talking to.
package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// maxRetryAttempts bounds the total number of attempts, the first call
// included, made when a 429/5xx response comes back, matching every original_source adapter's "attempts < 3" loop.
const maxRetryAttempts = 3

// backoffDelay returns the exponential backoff for a retry attempt
// (1s, 2s, 4s), the same `1 << (attempts - 1)` schedule every
// original_source/.../api/*.rs adapter uses.
func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

// withRetry invokes call until it succeeds, call reports the response as
// non-retryable, or maxRetryAttempts is exhausted. limiter additionally
// paces outbound requests client-side, ahead of the server ever returning
// a 429 (SPEC_FULL.md's rate.Limiter wrapping of each adapter).
func withRetry(ctx context.Context, limiter *rate.Limiter, call func() (retryable bool, err error)) error {
	var err error
	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		if limiter != nil {
			if werr := limiter.Wait(ctx); werr != nil {
				return werr
			}
		}
		var retryable bool
		retryable, err = call()
		if err == nil {
			return nil
		}
		if !retryable || attempt == maxRetryAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDelay(attempt)):
		}
	}
	return err
}
