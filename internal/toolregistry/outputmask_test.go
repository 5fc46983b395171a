package toolregistry

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func TestMaskOutput_DisplayNeverTruncates(t *testing.T) {
	big := strings.Repeat("x", 50000)
	out, err := MaskOutput(KindDisplay, big, "")
	require.NoError(t, err)
	assert.Equal(t, big, out)
}

func TestMaskOutput_ShortPassesThrough(t *testing.T) {
	short := strings.Repeat("a", 100)
	out, err := MaskOutput(KindDefault, short, "")
	require.NoError(t, err)
	assert.Equal(t, short, out)
}

func TestMaskOutput_PassthroughLimitBoundary(t *testing.T) {
	exact := strings.Repeat("a", passthroughLimit)
	out, err := MaskOutput(KindDefault, exact, "")
	require.NoError(t, err)
	assert.Equal(t, exact, out)

	over := strings.Repeat("a", passthroughLimit+1)
	out, err = MaskOutput(KindDefault, over, "")
	require.NoError(t, err)
	assert.NotEqual(t, over, out)
	assert.Contains(t, out, "omitted")
}

func TestMaskOutput_MidRangeKeepsHeadAndTail(t *testing.T) {
	body := strings.Repeat("H", 3000) + strings.Repeat("M", 3000) + strings.Repeat("T", 3000)
	out, err := MaskOutput(KindDefault, body, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, strings.Repeat("H", 2000)))
	assert.True(t, strings.HasSuffix(out, strings.Repeat("T", 1000)))
	assert.Contains(t, out, "characters omitted")
}

func TestMaskOutput_BigSavesToDisk(t *testing.T) {
	body := strings.Repeat("Z", 20000)
	dir := t.TempDir()
	out, err := MaskOutput(KindDefault, body, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Full output saved to:")
}

func TestMaskOutput_ShellLiftsExitCodeMetadata(t *testing.T) {
	body := "exit code: 1\n" + strings.Repeat("line of output\n", 2000)
	out, err := MaskOutput(KindShell, body, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "exit code: 1\n"))
}

func TestMaskOutput_RotationKeepsAtMost20(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 25; i++ {
		_, err := MaskOutput(KindDefault, strings.Repeat("q", 20000), dir)
		require.NoError(t, err)
	}
	entries, err := readDirNames(dir)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(entries), savedOutputsKeep)
}
