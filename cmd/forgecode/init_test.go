// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/memory"
)

func TestCheckedInitPrompt_ReturnsPromptWhenNoMemoryFile(t *testing.T) {
	dir := t.TempDir()
	prompt, err := checkedInitPrompt(dir)
	require.NoError(t, err)
	assert.Contains(t, prompt, memory.FileName)
}

func TestCheckedInitPrompt_RefusesWhenMemoryFileExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, memory.FileName), []byte("# existing"), 0o644))

	_, err := checkedInitPrompt(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
