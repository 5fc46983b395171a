package editengine

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFixerClient struct {
	calls    int
	response string
	err      error
}

func (f *fakeFixerClient) Complete(_ context.Context, _, _, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

func TestFixer_QueryAndCacheHit(t *testing.T) {
	client := &fakeFixerClient{response: `{"search":"foo","replace":"bar","explanation":"renamed","no_changes_required":false}`}
	fx := NewFixer(client)

	result, err := fx.Fix(context.Background(), "openai", "foo baz", "fo", "ba")
	require.NoError(t, err)
	assert.Equal(t, "foo", result.Search)
	assert.Equal(t, 1, client.calls)

	// second call with identical inputs should hit the cache, not the client.
	_, err = fx.Fix(context.Background(), "openai", "foo baz", "fo", "ba")
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestFixer_StripsMarkdownFences(t *testing.T) {
	client := &fakeFixerClient{response: "```json\n{\"search\":\"foo\",\"replace\":\"bar\",\"explanation\":\"x\",\"no_changes_required\":false}\n```"}
	fx := NewFixer(client)

	result, err := fx.Fix(context.Background(), "gemini", "foo baz", "fo", "ba")
	require.NoError(t, err)
	assert.Equal(t, "bar", result.Replace)
}

func TestFixer_RejectsSearchNotInFile(t *testing.T) {
	client := &fakeFixerClient{response: `{"search":"nowhere","replace":"x","explanation":"x","no_changes_required":false}`}
	fx := NewFixer(client)

	_, err := fx.Fix(context.Background(), "anthropic", "foo baz", "fo", "ba")
	require.Error(t, err)
}

func TestFixer_NoChangesRequiredSkipsSubstringCheck(t *testing.T) {
	client := &fakeFixerClient{response: `{"search":"","replace":"","explanation":"already applied","no_changes_required":true}`}
	fx := NewFixer(client)

	result, err := fx.Fix(context.Background(), "openai", "foo baz", "fo", "ba")
	require.NoError(t, err)
	assert.True(t, result.NoChangesRequired)
}

func TestFixer_UnknownProviderErrors(t *testing.T) {
	client := &fakeFixerClient{}
	fx := NewFixer(client)

	_, err := fx.Fix(context.Background(), "unknown-provider", "foo", "fo", "ba")
	require.Error(t, err)
	assert.Equal(t, 0, client.calls)
}

func TestFixer_ClientErrorPropagates(t *testing.T) {
	client := &fakeFixerClient{err: errors.New("network down")}
	fx := NewFixer(client)

	_, err := fx.Fix(context.Background(), "openai", "foo", "fo", "ba")
	require.Error(t, err)
}

func TestFixer_CapacityEvictsOldestEntry(t *testing.T) {
	client := &fakeFixerClient{response: `{"search":"foo","replace":"bar","explanation":"x","no_changes_required":false}`}
	fx := NewFixer(client)

	for i := 0; i < fixerCacheCapacity+1; i++ {
		content := "foo" + strconv.Itoa(i)
		_, _ = fx.Fix(context.Background(), "openai", content, "fo", "ba")
	}
	assert.LessOrEqual(t, len(fx.cache), fixerCacheCapacity)
	assert.Equal(t, fixerCacheCapacity, len(fx.cache))
	_, oldestCached := fx.cache[cacheKey("foo0", "fo", "ba")]
	assert.False(t, oldestCached)
}

func TestCapContent_LeavesSmallFilesUntouched(t *testing.T) {
	assert.Equal(t, "short", capContent("short"))
}
