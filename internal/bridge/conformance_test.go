// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package bridge_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/rpcserver"
)

// conformance runs the same assertions the agent's tool handlers rely on
// against any Bridge implementation: the point of the interface (spec.md
// §4.1's "must not depend on which implementation is active") is that
// OSBridge and RPCBridge are interchangeable here.
func conformance(t *testing.T, b bridge.Bridge) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, b.WriteFile(ctx, "notes/todo.txt", "buy milk"))
	content, err := b.ReadFile(ctx, "notes/todo.txt")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", content)

	entries, err := b.ReadDir(ctx, "notes")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "todo.txt", entries[0].Name)

	require.NoError(t, b.CreateDir(ctx, "archive"))
	require.NoError(t, b.Rename(ctx, "notes/todo.txt", "archive/todo.txt"))
	_, err = b.ReadFile(ctx, "notes/todo.txt")
	assert.Error(t, err)

	defs, err := b.Definition(ctx, "archive/todo.txt", 1, 1)
	require.NoError(t, err)
	assert.Empty(t, defs)

	require.NoError(t, b.Delete(ctx, "archive"))
}

func TestConformance_OSBridge(t *testing.T) {
	conformance(t, bridge.NewOSBridge(t.TempDir()))
}

func TestConformance_RPCBridge(t *testing.T) {
	root := t.TempDir()
	osBridge := bridge.NewOSBridge(root)
	srv := rpcserver.New(osBridge, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	conformance(t, bridge.NewRPCBridge(ts.URL, osBridge.WorkspaceRoot()))
}
