// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package repomap

import (
	"os"
	"path/filepath"
	"strings"
)

// ignoreDirs is the conventional ignore list from spec.md §4.2.
var ignoreDirs = map[string]bool{
	"node_modules":    true,
	"target":          true,
	".git":            true,
	"vendor":          true,
	"dist":            true,
	"build":           true,
	"__pycache__":     true,
	".venv":           true,
	"reference-repos": true,
}

const maxWalkDepth = 12

// walkSourceFiles visits every regular file under root whose extension is
// in extractors, up to maxWalkDepth, skipping ignoreDirs, and calls fn
// with its relative path and content. Read errors for individual files
// are skipped rather than aborting the walk (a repo map is best-effort).
func walkSourceFiles(root string, extractors map[string]Extractor, fn func(relPath string, content []byte, ext Extractor)) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // best-effort walk
		}
		rel, _ := filepath.Rel(root, path)
		if rel == "." {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if d.IsDir() {
			if ignoreDirs[d.Name()] || depth > maxWalkDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if depth > maxWalkDepth {
			return nil
		}
		ext, ok := extractors[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		fn(filepath.ToSlash(rel), content, ext)
		return nil
	})
}
