// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package toolregistry

import (
	"context"
	"fmt"
	"strings"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/embedindex"
)

// SearchDefs returns grep and codebase_search (spec.md §4.5's "Search"
// group; glob_files already lives in fileio.go alongside the rest of the
// file-I/O catalogue). index may be nil when no embedding backend was
// configured, in which case codebase_search reports that it's disabled
// rather than failing the whole catalogue registration.
func SearchDefs(b bridge.Bridge, index *embedindex.Index) []Def {
	return []Def{
		grepDef(b),
		codebaseSearchDef(index),
	}
}

func grepDef(b bridge.Bridge) Def {
	return Def{
		Name:        "grep",
		Description: "Search the workspace for a literal or regular-expression pattern. Use for exact text matches (function names, error strings, TODOs); use codebase_search for conceptual queries.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern":        map[string]any{"type": "string"},
				"path":           map[string]any{"type": "string"},
				"case_sensitive": map[string]any{"type": "boolean"},
				"whole_word":     map[string]any{"type": "boolean"},
				"max_results":    map[string]any{"type": "integer"},
			},
			"required": []string{"pattern"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, workspace string, _ bool) agent.ToolResult {
			pattern, err := requireString(args, "pattern")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			root := argStringOr(args, "path", workspace)
			matches, err := b.Search(ctx, bridge.SearchOptions{
				Pattern:       pattern,
				Root:          root,
				CaseSensitive: argBoolOr(args, "case_sensitive", false),
				WholeWord:     argBoolOr(args, "whole_word", false),
				MaxResults:    argIntOr(args, "max_results", 200),
			})
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			if len(matches) == 0 {
				return agent.ToolResult{Success: true, Output: "no matches"}
			}
			var sb strings.Builder
			for _, m := range matches {
				fmt.Fprintf(&sb, "%s:%d: %s\n", m.Path, m.Line, m.Content)
			}
			return agent.ToolResult{Success: true, Output: sb.String()}
		},
	}
}

func codebaseSearchDef(index *embedindex.Index) Def {
	return Def{
		Name:        "codebase_search",
		Description: "Find code related to a concept or question by meaning rather than exact text, e.g. \"how does X work\" or \"where do we validate Y\".",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string"},
				"top_k": map[string]any{"type": "integer"},
			},
			"required": []string{"query"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			if index == nil {
				return agent.ToolResult{Success: false, Output: "codebase_search is unavailable: no embedding index configured"}
			}
			query, err := requireString(args, "query")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			topK := argIntOr(args, "top_k", 8)
			results, err := index.Search(ctx, query, topK)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			if len(results) == 0 {
				return agent.ToolResult{Success: true, Output: "no relevant chunks found"}
			}
			var sb strings.Builder
			for _, r := range results {
				fmt.Fprintf(&sb, "--- %s:%d-%d (score %.3f) ---\n%s\n\n",
					r.Chunk.File, r.Chunk.StartLine, r.Chunk.EndLine, r.Score, r.Chunk.Content)
			}
			return agent.ToolResult{Success: true, Output: sb.String()}
		},
	}
}
