package editengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMatch_ExactSingleOccurrence(t *testing.T) {
	content := "func main() {\n\treturn x;\n}\n"
	m, err := FindMatch(content, "return x;", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, TierExact, m.Tier)
}

func TestFindMatch_AmbiguousReportsLines(t *testing.T) {
	content := "func a() {\n\treturn x;\n}\nfunc b() {\n\treturn x;\n}\n"
	_, err := FindMatch(content, "return x;", 0, 0)
	require.Error(t, err)
	var ambErr *AmbiguousMatchError
	require.ErrorAs(t, err, &ambErr)
	assert.ElementsMatch(t, []int{2, 5}, ambErr.Lines)
}

func TestFindMatch_FlexibleWhitespaceTolerance(t *testing.T) {
	content := "func f() {\n    if true {\n        return   1\n    }\n}\n"
	m, err := FindMatch(content, "if true {\nreturn 1\n}", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, TierFlexibleWhitespace, m.Tier)
}

func TestFindMatch_NoMatchAnywhere(t *testing.T) {
	content := "package main\n"
	_, err := FindMatch(content, "totally absent text", 0, 0)
	require.Error(t, err)
	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
}

func TestFindMatch_StartEndLineBoundsDisambiguate(t *testing.T) {
	content := "func a() {\n\treturn x;\n}\nfunc b() {\n\treturn x;\n}\n"
	m, err := FindMatch(content, "return x;", 4, 6)
	require.NoError(t, err)
	assert.Equal(t, TierExact, m.Tier)
	assert.Equal(t, "func a() {\n\treturn x;\n}\nfunc b() {\n\treturn y;\n}\n", ApplyMatch(content, m, "return y;"))
}

func TestApplyMatch_SplicesReplacement(t *testing.T) {
	content := "hello world"
	m := MatchResult{Start: 6, End: 11}
	assert.Equal(t, "hello there", ApplyMatch(content, m, "there"))
}
