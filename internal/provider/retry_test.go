// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), nil, func() (bool, error) {
		calls++
		return false, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestWithRetryStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	sentinel := errors.New("fatal")
	err := withRetry(context.Background(), nil, func() (bool, error) {
		calls++
		return false, sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, calls)
}

func TestWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	sentinel := errors.New("rate limited")
	err := withRetry(context.Background(), nil, func() (bool, error) {
		calls++
		return true, sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, maxRetryAttempts, calls)
}

func TestWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), nil, func() (bool, error) {
		calls++
		if calls < 2 {
			return true, errors.New("429")
		}
		return false, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestBackoffDelaySchedule(t *testing.T) {
	require.Equal(t, "1s", backoffDelay(1).String())
	require.Equal(t, "2s", backoffDelay(2).String())
	require.Equal(t, "4s", backoffDelay(3).String())
}
