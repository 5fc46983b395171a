// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package provider

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/agent"
)

func TestBuildGeminiFunctionDeclarations(t *testing.T) {
	tools := []agent.ToolSpec{
		{Name: "read_file", Description: "reads a file", Parameters: map[string]any{"type": "object"}},
	}
	decls := buildGeminiFunctionDeclarations(tools)
	require.Len(t, decls, 1)
	require.Equal(t, "read_file", decls[0].Name)
	require.Equal(t, "reads a file", decls[0].Description)
}

func TestJoinLines(t *testing.T) {
	require.Equal(t, "", joinLines(nil))
	require.Equal(t, "a", joinLines([]string{"a"}))
	require.Equal(t, "a\nb", joinLines([]string{"a", "b"}))
}

func TestCompletionArgDefaultsWhenMissing(t *testing.T) {
	require.Equal(t, "Done", completionArg(map[string]any{}))
	require.Equal(t, "finished", completionArg(map[string]any{"result": "finished"}))
}

func TestQuestionArgDefaultsToEmpty(t *testing.T) {
	require.Equal(t, "", questionArg(map[string]any{}))
	require.Equal(t, "which one?", questionArg(map[string]any{"question": "which one?"}))
}

func TestBuildGeminiContentsSkipsEmptyUserMessages(t *testing.T) {
	contents := buildGeminiContents([]agent.Message{
		{Role: agent.RoleUser, Content: ""},
		{Role: agent.RoleUser, Content: "hi"},
	})
	require.Len(t, contents, 1)
}
