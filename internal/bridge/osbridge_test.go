package bridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSBridge_FileLifecycle(t *testing.T) {
	dir := t.TempDir()
	b := NewOSBridge(dir)
	ctx := context.Background()

	require.NoError(t, b.WriteFile(ctx, "a/b/c.txt", "hello"))
	content, err := b.ReadFile(ctx, "a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	entries, err := b.ReadDir(ctx, "a/b")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c.txt", entries[0].Name)

	require.NoError(t, b.Rename(ctx, "a/b/c.txt", "a/b/d.txt"))
	_, err = b.ReadFile(ctx, "a/b/c.txt")
	assert.Error(t, err)
	content, err = b.ReadFile(ctx, "a/b/d.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	require.NoError(t, b.Delete(ctx, "a"))
	_, err = os.Stat(filepath.Join(dir, "a"))
	assert.True(t, os.IsNotExist(err))
}

func TestOSBridge_WorkspaceRoot(t *testing.T) {
	dir := t.TempDir()
	b := NewOSBridge(dir)
	assert.Equal(t, filepath.Clean(dir), b.WorkspaceRoot())
}

func TestOSBridge_NoLanguageServerReturnsEmpty(t *testing.T) {
	b := NewOSBridge(t.TempDir())
	ctx := context.Background()

	defs, err := b.Definition(ctx, "a.go", 1, 1)
	require.NoError(t, err)
	assert.Empty(t, defs)

	refs, err := b.References(ctx, "a.go", 1, 1)
	require.NoError(t, err)
	assert.Empty(t, refs)

	hover, err := b.Hover(ctx, "a.go", 1, 1)
	require.NoError(t, err)
	assert.Nil(t, hover)

	diags, err := b.Diagnostics(ctx, "a.go")
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestOSBridge_GitLifecycle(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	b := NewOSBridge(dir)
	ctx := context.Background()
	require.NoError(t, b.WriteFile(ctx, "README.md", "# hello"))
	require.NoError(t, b.GitStage(ctx, []string{"README.md"}))

	status, err := b.GitStatus(ctx)
	require.NoError(t, err)
	require.Len(t, status, 1)

	hash, err := b.GitCommit(ctx, "initial commit")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log, err := b.GitLog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "initial commit", log[0].Message)
}
