// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/toolregistry"
)

func TestHandlerFromDef_RunsAgainstRealRegistry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0o644))

	b := bridge.NewOSBridge(dir)
	reg := toolregistry.RegisterAll(toolregistry.Deps{Bridge: b})

	def, ok := reg.Lookup("read_file")
	require.True(t, ok)

	handler := handlerFromDef(reg, def, dir)
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]any{"path": "a.txt"}},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
}

func TestHandlerFromDef_ReportsToolFailureAsMCPError(t *testing.T) {
	dir := t.TempDir()
	b := bridge.NewOSBridge(dir)
	reg := toolregistry.RegisterAll(toolregistry.Deps{Bridge: b})

	def, ok := reg.Lookup("read_file")
	require.True(t, ok)

	handler := handlerFromDef(reg, def, dir)
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]any{"path": "missing.txt"}},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestToolFromDef_CarriesNameAndDescription(t *testing.T) {
	reg := toolregistry.RegisterAll(toolregistry.Deps{Bridge: bridge.NewOSBridge(t.TempDir())})
	def, ok := reg.Lookup("read_file")
	require.True(t, ok)

	tool := toolFromDef(def)
	assert.Equal(t, "read_file", tool.Name)
	assert.NotEmpty(t, tool.Description)
}
