package toolregistry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/editengine"
)

func newTestBridge(t *testing.T) (bridge.Bridge, string) {
	t.Helper()
	dir := t.TempDir()
	return bridge.NewOSBridge(dir), dir
}

func TestReadFileDef_ReadsExistingFile(t *testing.T) {
	b, dir := newTestBridge(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))

	def := readFileDef(b)
	res := def.Handler(context.Background(), map[string]any{"path": "a.txt"}, dir, false)
	assert.True(t, res.Success)
	assert.Equal(t, "hello", res.Output)
}

func TestReadFileDef_MissingPathArgument(t *testing.T) {
	b, _ := newTestBridge(t)
	def := readFileDef(b)
	res := def.Handler(context.Background(), map[string]any{}, "", false)
	assert.False(t, res.Success)
}

func TestWriteToFileDef_ProposesEditWithoutTouchingDisk(t *testing.T) {
	b, dir := newTestBridge(t)
	def := writeToFileDef(b)
	res := def.Handler(context.Background(), map[string]any{"path": "new.txt", "content": "world"}, dir, false)
	require.True(t, res.Success)
	require.NotNil(t, res.Edit)
	assert.Equal(t, "", res.Edit.OldContent)
	assert.Equal(t, "world", res.Edit.NewContent)

	_, err := os.Stat(filepath.Join(dir, "new.txt"))
	assert.True(t, os.IsNotExist(err), "write_to_file must not write to disk directly")
}

func TestReplaceInFileDef_ProposesEditViaExactMatch(t *testing.T) {
	b, dir := newTestBridge(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	engine := editengine.NewEngine(nil)
	def := replaceInFileDef(b, engine)
	res := def.Handler(context.Background(), map[string]any{
		"path":    "a.go",
		"old_str": "func main() {}",
		"new_str": "func main() { println(1) }",
	}, dir, false)
	require.True(t, res.Success)
	require.NotNil(t, res.Edit)
	assert.Contains(t, res.Edit.NewContent, "println(1)")
}

func TestReplaceInFileDef_NoMatchFailsWithoutFixer(t *testing.T) {
	b, dir := newTestBridge(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\n"), 0o644))

	engine := editengine.NewEngine(nil)
	def := replaceInFileDef(b, engine)
	res := def.Handler(context.Background(), map[string]any{
		"path":    "a.go",
		"old_str": "nonexistent",
		"new_str": "x",
	}, dir, false)
	assert.False(t, res.Success)
}

func TestDeleteFileDef_RemovesFile(t *testing.T) {
	b, dir := newTestBridge(t)
	path := filepath.Join(dir, "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	def := deleteFileDef(b)
	res := def.Handler(context.Background(), map[string]any{"path": "gone.txt"}, dir, false)
	assert.True(t, res.Success)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestListFilesDef_ListsDirectoryEntries(t *testing.T) {
	b, dir := newTestBridge(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	def := listFilesDef(b)
	res := def.Handler(context.Background(), map[string]any{"path": "."}, dir, false)
	assert.True(t, res.Success)
	assert.Contains(t, res.Output, "a.txt")
	assert.Contains(t, res.Output, "sub")
}

func TestGlobFilesDef_MatchesNestedFiles(t *testing.T) {
	b, dir := newTestBridge(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "a.go"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "sub", "b.go"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "c.txt"), []byte("x"), 0o644))

	def := globFilesDef(b)
	res := def.Handler(context.Background(), map[string]any{"pattern": "**/*.go"}, dir, false)
	assert.True(t, res.Success)
	assert.Contains(t, res.Output, filepath.Join("pkg", "a.go"))
	assert.Contains(t, res.Output, filepath.Join("pkg", "sub", "b.go"))
	assert.NotContains(t, res.Output, "c.txt")
}

func TestGlobMatch_DoubleStarMatchesZeroOrMoreDirs(t *testing.T) {
	assert.True(t, globMatch([]string{"**", "*.go"}, []string{"a.go"}))
	assert.True(t, globMatch([]string{"**", "*.go"}, []string{"pkg", "sub", "a.go"}))
	assert.False(t, globMatch([]string{"**", "*.go"}, []string{"pkg", "a.txt"}))
}

func TestApplyPatchDef_AppliesUnifiedDiff(t *testing.T) {
	b, dir := newTestBridge(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\nthree\n"), 0o644))

	patch := "--- a/a.txt\n+++ b/a.txt\n@@ -1,3 +1,3 @@\n one\n-two\n+TWO\n three\n"
	def := applyPatchDef(b)
	res := def.Handler(context.Background(), map[string]any{"patch": patch}, dir, false)
	require.True(t, res.Success)
	require.NotNil(t, res.Edit)
	assert.Equal(t, "one\nTWO\nthree\n", res.Edit.NewContent)
}

func TestApplyPatchDef_RejectsInvalidDiff(t *testing.T) {
	b, _ := newTestBridge(t)
	def := applyPatchDef(b)
	res := def.Handler(context.Background(), map[string]any{"patch": "not a diff"}, "", false)
	assert.False(t, res.Success)
}

func TestReadManyFilesDef_ReadsEachLabeled(t *testing.T) {
	b, dir := newTestBridge(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("B"), 0o644))

	def := readManyFilesDef(b)
	res := def.Handler(context.Background(), map[string]any{"paths": []any{"a.txt", "b.txt"}}, dir, false)
	assert.True(t, res.Success)
	assert.Contains(t, res.Output, "a.txt")
	assert.Contains(t, res.Output, "A")
	assert.Contains(t, res.Output, "b.txt")
	assert.Contains(t, res.Output, "B")
}

func TestReadManyFilesDef_MissingPathsFails(t *testing.T) {
	b, _ := newTestBridge(t)
	def := readManyFilesDef(b)
	res := def.Handler(context.Background(), map[string]any{}, "", false)
	assert.False(t, res.Success)
}
