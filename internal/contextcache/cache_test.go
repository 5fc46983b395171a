package contextcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RepoMapRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SetRepoMap("ws-1", "rendered repo map content"))
	v, ok, err := c.GetRepoMap("ws-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "rendered repo map content", v)
}

func TestCache_MissReturnsNotOk(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.GetRepoMap("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_PreSearchIsSeparateNamespaceFromRepoMap(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SetRepoMap("k", "repo-map-value"))
	require.NoError(t, c.SetPreSearch("k", "pre-search-value"))

	rm, ok, err := c.GetRepoMap("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "repo-map-value", rm)

	ps, ok, err := c.GetPreSearch("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pre-search-value", ps)
}
