// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package embedindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexWorkspaceSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(
		"package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"), 0o644))

	store, err := Open(filepath.Join(dir, "embeddings.db"))
	require.NoError(t, err)
	defer store.Close()

	embedder := NewLocalEmbedder(32)
	ix := NewIndex(store, embedder, dir)

	indexed, skipped, err := ix.IndexWorkspace(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, indexed)
	require.Equal(t, 0, skipped)

	indexed, skipped, err = ix.IndexWorkspace(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, indexed)
	require.Equal(t, 1, skipped)
}

func TestIndexWorkspaceReindexesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.py")
	require.NoError(t, os.WriteFile(path, []byte("def greet():\n    return 'hi'\n"), 0o644))

	store, err := Open(filepath.Join(dir, "embeddings.db"))
	require.NoError(t, err)
	defer store.Close()

	ix := NewIndex(store, NewLocalEmbedder(16), dir)
	_, _, err = ix.IndexWorkspace(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("def greet():\n    return 'hello there'\n"), 0o644))
	indexed, _, err := ix.IndexWorkspace(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, indexed)
}

func TestIndexSearchRanksRelevantChunkHighest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.go"), []byte(
		"package auth\n\nfunc ValidateToken(tok string) bool {\n\treturn len(tok) > 0\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math.go"), []byte(
		"package mathutil\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n"), 0o644))

	store, err := Open(filepath.Join(dir, "embeddings.db"))
	require.NoError(t, err)
	defer store.Close()

	ix := NewIndex(store, NewLocalEmbedder(64), dir)
	_, _, err = ix.IndexWorkspace(context.Background())
	require.NoError(t, err)

	results, err := ix.Search(context.Background(), "ValidateToken", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Contains(t, results[0].Chunk.File, "auth.go")
}

func TestIsCodeFile(t *testing.T) {
	require.True(t, isCodeFile("main.go"))
	require.True(t, isCodeFile("README.md"))
	require.False(t, isCodeFile("binary.exe"))
	require.False(t, isCodeFile("image.png"))
}
