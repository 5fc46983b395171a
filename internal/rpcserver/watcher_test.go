// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package rpcserver

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) InvalidateAll() error {
	c.calls.Add(1)
	return nil
}

func TestWorkspaceWatcher_InvalidatesAfterFileChange(t *testing.T) {
	dir := t.TempDir()
	inv := &countingInvalidator{}

	w, err := newWorkspaceWatcher(dir, inv)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.start(ctx))
	defer w.stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "changed.txt"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		return inv.calls.Load() > 0
	}, time.Second, 10*time.Millisecond)
}

func TestWorkspaceWatcher_IgnoresDotGit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	w, err := newWorkspaceWatcher(dir, &countingInvalidator{})
	require.NoError(t, err)

	assert.True(t, w.ignored(filepath.Join(dir, ".git", "HEAD")))
	assert.False(t, w.ignored(filepath.Join(dir, "main.go")))
}
