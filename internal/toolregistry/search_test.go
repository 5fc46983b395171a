// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package toolregistry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrepDef_FindsLiteralMatch(t *testing.T) {
	b, dir := newTestBridge(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\n\nfunc validateToken() {}\n"), 0o644))

	def := grepDef(b)
	res := def.Handler(context.Background(), map[string]any{"pattern": "validateToken"}, dir, false)
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "a.go")
	assert.Contains(t, res.Output, "validateToken")
}

func TestGrepDef_NoMatchesReportsCleanly(t *testing.T) {
	b, dir := newTestBridge(t)
	def := grepDef(b)
	res := def.Handler(context.Background(), map[string]any{"pattern": "nonexistentSymbolXYZ"}, dir, false)
	require.True(t, res.Success)
	assert.Equal(t, "no matches", res.Output)
}

func TestGrepDef_MissingPatternFails(t *testing.T) {
	b, dir := newTestBridge(t)
	def := grepDef(b)
	res := def.Handler(context.Background(), map[string]any{}, dir, false)
	assert.False(t, res.Success)
}

func TestCodebaseSearchDef_UnavailableWithoutIndex(t *testing.T) {
	def := codebaseSearchDef(nil)
	res := def.Handler(context.Background(), map[string]any{"query": "how does auth work"}, "", false)
	assert.False(t, res.Success)
	assert.Contains(t, res.Output, "unavailable")
}
