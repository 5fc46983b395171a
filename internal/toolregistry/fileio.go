// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package toolregistry

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	diff "github.com/sourcegraph/go-diff/diff"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/editengine"
)

// FileIODefs returns the catalogue entries backed by b and resolved
// through engine's match ladder. None of these handlers write to disk
// directly: write_to_file, replace_in_file and apply_patch all return a
// FileEdit for the host's diff-preview protocol (spec.md §3) to resolve
// and commit via bridge.WriteFile once the user accepts at least one hunk.
func FileIODefs(b bridge.Bridge, engine *editengine.Engine) []Def {
	return []Def{
		readFileDef(b),
		writeToFileDef(b),
		replaceInFileDef(b, engine),
		deleteFileDef(b),
		listFilesDef(b),
		globFilesDef(b),
		applyPatchDef(b),
		readManyFilesDef(b),
	}
}

func readFileDef(b bridge.Bridge) Def {
	return Def{
		Name:        "read_file",
		Description: "Read the full content of a file in the workspace.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"path": map[string]any{"type": "string"}},
			"required":   []string{"path"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			path, err := requireString(args, "path")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			content, err := b.ReadFile(ctx, path)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: content}
		},
	}
}

func writeToFileDef(b bridge.Bridge) Def {
	return Def{
		Name:        "write_to_file",
		Description: "Create a new file or overwrite an existing one with the given content. Proposed as a diff for approval; nothing is written until accepted.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string"},
				"content": map[string]any{"type": "string"},
			},
			"required": []string{"path", "content"},
		},
		IsMutating: true,
		Category:   CategoryWrite,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			path, err := requireString(args, "path")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			content, _ := argString(args, "content")

			old, err := b.ReadFile(ctx, path)
			if err != nil {
				old = "" // new file: no prior content
			}
			return agent.ToolResult{
				Success: true,
				Output:  fmt.Sprintf("proposed write to %s (%d bytes)", path, len(content)),
				Edit:    &agent.FileEdit{Path: path, OldContent: old, NewContent: content},
			}
		},
	}
}

func replaceInFileDef(b bridge.Bridge, engine *editengine.Engine) Def {
	return Def{
		Name:        "replace_in_file",
		Description: "Replace one occurrence of old_str with new_str in a file, using exact, whitespace-tolerant, and regex matching in turn, with an LLM-assisted repair as a last resort.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":       map[string]any{"type": "string"},
				"old_str":    map[string]any{"type": "string"},
				"new_str":    map[string]any{"type": "string"},
				"start_line": map[string]any{"type": "integer"},
				"end_line":   map[string]any{"type": "integer"},
			},
			"required": []string{"path", "old_str", "new_str"},
		},
		IsMutating: true,
		Category:   CategoryWrite,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			path, err := requireString(args, "path")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			oldStr, err := requireString(args, "old_str")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			newStr, _ := argString(args, "new_str")
			provider, _ := argString(args, "provider")

			content, err := b.ReadFile(ctx, path)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}

			outcome, err := engine.Resolve(ctx, content, editengine.ReplaceRequest{
				Path:      path,
				OldStr:    oldStr,
				NewStr:    newStr,
				StartLine: argIntOr(args, "start_line", 0),
				EndLine:   argIntOr(args, "end_line", 0),
				Provider:  provider,
			})
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{
				Success: true,
				Output:  fmt.Sprintf("proposed edit to %s via %s match", path, outcome.Tier),
				Edit:    &agent.FileEdit{Path: path, OldContent: content, NewContent: outcome.NewContent},
			}
		},
	}
}

func deleteFileDef(b bridge.Bridge) Def {
	return Def{
		Name:        "delete_file",
		Description: "Delete a file or directory from the workspace.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"path": map[string]any{"type": "string"}},
			"required":   []string{"path"},
		},
		IsMutating: true,
		Category:   CategoryWrite,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			path, err := requireString(args, "path")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			if err := b.Delete(ctx, path); err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: fmt.Sprintf("deleted %s", path)}
		},
	}
}

func listFilesDef(b bridge.Bridge) Def {
	return Def{
		Name:        "list_files",
		Description: "List the entries of a directory in the workspace.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"path": map[string]any{"type": "string"}},
			"required":   []string{"path"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			path := argStringOr(args, "path", ".")
			entries, err := b.ReadDir(ctx, path)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			var sb strings.Builder
			for _, e := range entries {
				kind := "file"
				if e.IsDir {
					kind = "dir"
				}
				fmt.Fprintf(&sb, "%s\t%s\t%d\n", kind, e.Name, e.Size)
			}
			return agent.ToolResult{Success: true, Output: sb.String()}
		},
	}
}

func globFilesDef(b bridge.Bridge) Def {
	return Def{
		Name:        "glob_files",
		Description: "Find files matching a glob pattern (e.g. **/*.go), relative to the workspace root.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern": map[string]any{"type": "string"},
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
			matches, err := globWorkspace(workspace, pattern)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: strings.Join(matches, "\n")}
		},
	}
}

// globWorkspace implements the ** recursive-directory wildcard glob_files
// needs on top of filepath.Match, which only matches within one path
// segment. No example repo in the corpus wires a doublestar-style glob
// library, so this stays on the standard library (DESIGN.md).
func globWorkspace(root, pattern string) ([]string, error) {
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if globMatch(parts, strings.Split(filepath.ToSlash(rel), "/")) {
			matches = append(matches, rel)
		}
		return nil
	})
	sort.Strings(matches)
	return matches, err
}

func globMatch(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	if pattern[0] == "**" {
		if globMatch(pattern[1:], path) {
			return true
		}
		if len(path) == 0 {
			return false
		}
		return globMatch(pattern, path[1:])
	}
	if len(path) == 0 {
		return false
	}
	ok, err := filepath.Match(pattern[0], path[0])
	if err != nil || !ok {
		return false
	}
	return globMatch(pattern[1:], path[1:])
}

func applyPatchDef(b bridge.Bridge) Def {
	return Def{
		Name:        "apply_patch",
		Description: "Apply a unified diff to a single file in the workspace, proposing the result for approval.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"patch": map[string]any{"type": "string"},
			},
			"required": []string{"patch"},
		},
		IsMutating: true,
		Category:   CategoryWrite,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			patch, err := requireString(args, "patch")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(patch)).ReadAllFiles()
			if err != nil {
				return agent.ToolResult{Success: false, Output: fmt.Sprintf("invalid unified diff: %v", err)}
			}
			if len(fileDiffs) != 1 {
				return agent.ToolResult{Success: false, Output: "apply_patch accepts exactly one file's hunks per call; split multi-file patches"}
			}
			fd := fileDiffs[0]
			path := strings.TrimPrefix(fd.NewName, "b/")
			old, err := b.ReadFile(ctx, path)
			if err != nil {
				old = ""
			}
			newContent, err := applyFileDiff(old, fd)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{
				Success: true,
				Output:  fmt.Sprintf("proposed patch to %s (%d hunks)", path, len(fd.Hunks)),
				Edit:    &agent.FileEdit{Path: path, OldContent: old, NewContent: newContent},
			}
		},
	}
}

// applyFileDiff applies a parsed unified-diff FileDiff to old content,
// honoring each hunk's original starting line. Ported from the hunk-walk
// in services/code_buddy/validate/patch.go's applyDiff.
func applyFileDiff(old string, fd *diff.FileDiff) (string, error) {
	oldLines := strings.Split(old, "\n")
	var result []string
	cursor := 0

	for _, hunk := range fd.Hunks {
		start := int(hunk.OrigStartLine) - 1
		for cursor < start && cursor < len(oldLines) {
			result = append(result, oldLines[cursor])
			cursor++
		}
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			switch {
			case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
				result = append(result, strings.TrimPrefix(line, "+"))
			case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
				cursor++
			case strings.HasPrefix(line, " ") || line == "":
				if cursor < len(oldLines) {
					result = append(result, oldLines[cursor])
					cursor++
				}
			}
		}
	}
	for cursor < len(oldLines) {
		result = append(result, oldLines[cursor])
		cursor++
	}
	return strings.Join(result, "\n"), nil
}

func readManyFilesDef(b bridge.Bridge) Def {
	return Def{
		Name:        "read_many_files",
		Description: "Read the content of several files at once, each labeled with its path.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"paths": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required": []string{"paths"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			paths := argStringSlice(args, "paths")
			if len(paths) == 0 {
				return agent.ToolResult{Success: false, Output: "missing required argument \"paths\""}
			}
			var sb strings.Builder
			for _, p := range paths {
				content, err := b.ReadFile(ctx, p)
				if err != nil {
					fmt.Fprintf(&sb, "--- %s ---\n<error: %v>\n\n", p, err)
					continue
				}
				fmt.Fprintf(&sb, "--- %s ---\n%s\n\n", p, content)
			}
			return agent.ToolResult{Success: true, Output: sb.String()}
		},
	}
}
