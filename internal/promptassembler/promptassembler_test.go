// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package promptassembler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/bridge"
)

func newTestWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example\n\ngo 1.22\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "internal", "foo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "internal", "foo", "foo.go"), []byte("package foo\n\nfunc validateToken(t string) bool { return true }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# example\n"), 0o644))
	return dir
}

func TestBuildProducesAllOrderedSections(t *testing.T) {
	dir := newTestWorkspace(t)
	b := bridge.NewOSBridge(dir)
	asm := New(b, nil, nil)

	systemPrompt, block, err := asm.Build(context.Background(), "how does validateToken work?")
	require.NoError(t, err)
	require.Contains(t, systemPrompt, "attempt_completion")

	// user_query must always be present, even when other sections are empty.
	require.Contains(t, block, "<user_query>\nhow does validateToken work?\n</user_query>")

	userInfoIdx := indexOf(t, block, "<user_info>")
	layoutIdx := indexOf(t, block, "<project_layout>")
	queryIdx := indexOf(t, block, "<user_query>")
	require.Less(t, userInfoIdx, layoutIdx, "user_info must precede project_layout")
	require.Less(t, layoutIdx, queryIdx, "project_layout must precede user_query")
}

func TestRenderUserInfoDetectsGoWorkspace(t *testing.T) {
	dir := newTestWorkspace(t)
	b := bridge.NewOSBridge(dir)
	asm := New(b, nil, nil)

	info := asm.renderUserInfoSection(dir)
	require.Contains(t, info, "primary_language: Go")
	require.Contains(t, info, dir)
}

func TestRenderLayoutSectionListsTopLevelEntries(t *testing.T) {
	dir := newTestWorkspace(t)
	b := bridge.NewOSBridge(dir)
	asm := New(b, nil, nil)

	layout := asm.renderLayoutSection(context.Background(), dir)
	require.Contains(t, layout, "internal/")
	require.Contains(t, layout, "README.md")
	require.Contains(t, layout, "go.mod")
}

func TestRenderGitInfoSectionDegradesOutsideRepo(t *testing.T) {
	dir := newTestWorkspace(t)
	b := bridge.NewOSBridge(dir)
	asm := New(b, nil, nil)

	// dir has no .git directory, so GitStatus should error and the section
	// should degrade to empty rather than panicking.
	git := asm.renderGitInfoSection(context.Background())
	require.Empty(t, git)
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := -1
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0, "expected %q to contain %q", haystack, needle)
	return idx
}
