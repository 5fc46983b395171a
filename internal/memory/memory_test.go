package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadWorkspace_MissingFileReturnsNilEntry(t *testing.T) {
	ws := t.TempDir()
	s := NewStore(t.TempDir(), ws)
	e, err := s.LoadWorkspace()
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestStore_LoadWorkspace_ExtractsSectionOnly(t *testing.T) {
	ws := t.TempDir()
	content := "# Notes\nhuman stuff here\n\n" + SectionHeader + "\n- use go modules\n- tests live alongside code\n"
	require.NoError(t, os.WriteFile(filepath.Join(ws, FileName), []byte(content), 0o644))

	s := NewStore(t.TempDir(), ws)
	e, err := s.LoadWorkspace()
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.NotContains(t, e.Content, "human stuff here")
	assert.Contains(t, e.Content, "use go modules")
}

func TestStore_LoadWorkspace_TruncatesLongSection(t *testing.T) {
	ws := t.TempDir()
	long := make([]byte, MaxTierChars*2)
	for i := range long {
		long[i] = 'x'
	}
	content := SectionHeader + "\n" + string(long) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(ws, FileName), []byte(content), 0o644))

	s := NewStore(t.TempDir(), ws)
	e, err := s.LoadWorkspace()
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.LessOrEqual(t, len(e.Content), MaxTierChars)
	assert.Contains(t, e.Content, "truncated")
}

func TestStore_DiscoverSubdirectoryTiers_StopsBeforeWorkspaceRoot(t *testing.T) {
	ws := t.TempDir()
	sub := filepath.Join(ws, "pkg", "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(ws, "pkg", FileName), []byte(SectionHeader+"\n- pkg level note\n"), 0o644))
	// workspace-root FORGE.md must NOT be returned by subdirectory discovery
	require.NoError(t, os.WriteFile(filepath.Join(ws, FileName), []byte(SectionHeader+"\n- root level note\n"), 0o644))

	s := NewStore(t.TempDir(), ws)
	entries, err := s.DiscoverSubdirectoryTiers(filepath.Join(sub, "file.go"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Content, "pkg level note")
}

func TestSaveMemory_SanitizesAndAppends(t *testing.T) {
	ws := t.TempDir()
	s := NewStore(t.TempDir(), ws)

	require.NoError(t, s.SaveMemory(TierWorkspace, "", "- already bulleted note\r\n"))
	require.NoError(t, s.SaveMemory(TierWorkspace, "", "second note"))

	e, err := s.LoadWorkspace()
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Contains(t, e.Content, "- already bulleted note")
	assert.NotContains(t, e.Content, "- - already")
	assert.Contains(t, e.Content, "- second note")
}

func TestSaveMemory_CreatesHeaderWhenFileAbsent(t *testing.T) {
	ws := t.TempDir()
	s := NewStore(t.TempDir(), ws)

	require.NoError(t, s.SaveMemory(TierWorkspace, "", "first ever note"))

	data, err := os.ReadFile(filepath.Join(ws, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), SectionHeader)
	assert.Contains(t, string(data), "- first ever note")
}

func TestRenderMemory_OrdersTiersAndTagsSource(t *testing.T) {
	rendered := RenderMemory([]*Entry{
		{Tier: TierGlobal, Path: "/g/FORGE.md", Content: "global note"},
		{Tier: TierWorkspace, Path: "/ws/FORGE.md", Content: "workspace note"},
	})
	gIdx := indexOf(rendered, "global note")
	wIdx := indexOf(rendered, "workspace note")
	require.NotEqual(t, -1, gIdx)
	require.NotEqual(t, -1, wIdx)
	assert.Less(t, gIdx, wIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
