// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package promptassembler

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
)

// layoutIgnoreDirs lists the vendored, generated and editor-metadata
// directories the layout tree skips, so it doesn't drown in them.
var layoutIgnoreDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, ".idea": true, ".vscode": true,
}

// renderLayoutSection walks the workspace to layoutMaxDepth, rendering an
// indented tree and stopping early at layoutMaxLines with a truncation
// sentinel rather than silently dropping entries.
func (a *Assembler) renderLayoutSection(ctx context.Context, workspace string) string {
	var b strings.Builder
	lines := 0
	truncated := false
	var walk func(dir string, depth int, prefix string)
	walk = func(dir string, depth int, prefix string) {
		if truncated || depth > layoutMaxDepth {
			return
		}
		entries, err := a.Bridge.ReadDir(ctx, dir)
		if err != nil {
			return
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].IsDir != entries[j].IsDir {
				return entries[i].IsDir
			}
			return entries[i].Name < entries[j].Name
		})
		for _, e := range entries {
			if truncated {
				return
			}
			if e.IsDir && layoutIgnoreDirs[e.Name] {
				continue
			}
			if lines >= layoutMaxLines {
				b.WriteString(prefix + "(truncated)\n")
				truncated = true
				return
			}
			name := e.Name
			if e.IsDir {
				name += "/"
			}
			fmt.Fprintf(&b, "%s%s\n", prefix, name)
			lines++
			if e.IsDir {
				walk(path.Join(dir, e.Name), depth+1, prefix+"  ")
			}
		}
	}
	walk(workspace, 1, "")
	return strings.TrimRight(b.String(), "\n")
}
