// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package toolregistry

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/repomap"
)

// CodeIntelDefs returns the "Code intel" group of spec.md §4.5
// (list_definitions, get_definition, find_references, diagnostics) plus
// the supplemental lint tool (SPEC_FULL.md §4.5).
func CodeIntelDefs(b bridge.Bridge) []Def {
	return []Def{
		listDefinitionsDef(b),
		getDefinitionDef(b),
		findReferencesDef(b),
		diagnosticsDef(b),
		lintDef(b),
	}
}

func listDefinitionsDef(b bridge.Bridge) Def {
	return Def{
		Name:        "list_definitions",
		Description: "List every top-level function, type, and other definition in a file with its line range.",
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
			extractor, ok := repomap.ExtractorFor(filepath.Ext(path))
			if !ok {
				return agent.ToolResult{Success: false, Output: fmt.Sprintf("no definition extractor for %s", filepath.Ext(path))}
			}
			content, err := b.ReadFile(ctx, path)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			symbols, _, err := extractor.Extract(path, []byte(content))
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			if len(symbols) == 0 {
				return agent.ToolResult{Success: true, Output: "no definitions found"}
			}
			var sb strings.Builder
			for _, s := range symbols {
				fmt.Fprintf(&sb, "%s %s %d-%d\n", s.Kind, s.Name, s.StartLine, s.EndLine)
			}
			return agent.ToolResult{Success: true, Output: sb.String()}
		},
	}
}

func getDefinitionDef(b bridge.Bridge) Def {
	return Def{
		Name:        "get_definition",
		Description: "Jump to the definition site of the symbol at a given file position.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string"},
				"line": map[string]any{"type": "integer"},
				"col":  map[string]any{"type": "integer"},
			},
			"required": []string{"path", "line", "col"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			path, err := requireString(args, "path")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			line := argIntOr(args, "line", 0)
			col := argIntOr(args, "col", 0)
			locations, err := b.Definition(ctx, path, line, col)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: renderLocations(locations)}
		},
	}
}

func findReferencesDef(b bridge.Bridge) Def {
	return Def{
		Name:        "find_references",
		Description: "Find every reference to the symbol at a given file position.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string"},
				"line": map[string]any{"type": "integer"},
				"col":  map[string]any{"type": "integer"},
			},
			"required": []string{"path", "line", "col"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			path, err := requireString(args, "path")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			line := argIntOr(args, "line", 0)
			col := argIntOr(args, "col", 0)
			locations, err := b.References(ctx, path, line, col)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			if len(locations) == 0 {
				return agent.ToolResult{Success: true, Output: "no references found"}
			}
			return agent.ToolResult{Success: true, Output: renderLocations(locations)}
		},
	}
}

func diagnosticsDef(b bridge.Bridge) Def {
	return Def{
		Name:        "diagnostics",
		Description: "Report language-server diagnostics (errors, warnings) for a file.",
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
			diags, err := b.Diagnostics(ctx, path)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: renderDiagnostics(diags)}
		},
	}
}

// lintDef reports the same LspDiagnostic shape as diagnostics, but when
// the bridge has no language server attached (Diagnostics returns empty)
// it falls back to a static heuristic pass over Go source: a bridge.Execute
// call to `go vet`, with its stderr parsed into LspDiagnostic entries. No
// corpus example wires a general-purpose linting library, so this stays on
// bridge.Execute plus the standard library rather than adding an unneeded
// dependency (DESIGN.md).
func lintDef(b bridge.Bridge) Def {
	return Def{
		Name:        "lint",
		Description: "Run static checks on a file or package and report findings in the same shape as diagnostics.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"path": map[string]any{"type": "string"}},
			"required":   []string{"path"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, workspace string, _ bool) agent.ToolResult {
			path, err := requireString(args, "path")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			diags, err := b.Diagnostics(ctx, path)
			if err == nil && len(diags) > 0 {
				return agent.ToolResult{Success: true, Output: renderDiagnostics(diags)}
			}
			if filepath.Ext(path) != ".go" {
				return agent.ToolResult{Success: true, Output: "no diagnostics and no static fallback for this file type"}
			}
			out, err := b.Execute(ctx, "go vet ./"+filepath.Dir(path), workspace)
			if err != nil && out.Stderr == "" {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			findings := parseGoVetOutput(out.Stderr)
			if len(findings) == 0 {
				return agent.ToolResult{Success: true, Output: "no findings"}
			}
			return agent.ToolResult{Success: true, Output: renderDiagnostics(findings)}
		},
	}
}

// goVetLineRE matches go vet's "path:line:col: message" output lines.
var goVetLineRE = regexp.MustCompile(`^(.+):(\d+):(\d+): (.+)$`)

func parseGoVetOutput(stderr string) []bridge.LspDiagnostic {
	var out []bridge.LspDiagnostic
	for _, line := range strings.Split(stderr, "\n") {
		m := goVetLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		out = append(out, bridge.LspDiagnostic{
			Path:     m[1],
			Line:     lineNo,
			Col:      col,
			Severity: bridge.SeverityWarning,
			Message:  m[4],
			Source:   "go vet",
		})
	}
	return out
}

func renderLocations(locations []bridge.CodeLocation) string {
	if len(locations) == 0 {
		return "not found"
	}
	var sb strings.Builder
	for _, l := range locations {
		fmt.Fprintf(&sb, "%s:%d:%d-%d:%d\n", l.Path, l.StartLine, l.StartCol, l.EndLine, l.EndCol)
	}
	return sb.String()
}

func renderDiagnostics(diags []bridge.LspDiagnostic) string {
	if len(diags) == 0 {
		return "no diagnostics"
	}
	var sb strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&sb, "%s:%d:%d: [%s] %s (%s)\n", d.Path, d.Line, d.Col, severityLabel(d.Severity), d.Message, d.Source)
	}
	return sb.String()
}

func severityLabel(s bridge.DiagnosticSeverity) string {
	switch s {
	case bridge.SeverityError:
		return "error"
	case bridge.SeverityWarning:
		return "warning"
	case bridge.SeverityInformation:
		return "info"
	case bridge.SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}
