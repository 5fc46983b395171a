// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package promptassembler

import (
	"context"
	"runtime"

	"github.com/forge-ide/forge-agent/internal/bridge"
)

func hostOS() string {
	return runtime.GOOS
}

// languageMarkers maps a signature file found at the workspace root to the
// language it indicates, checked in order so the first match wins when a
// workspace carries more than one (e.g. a Go backend with a JS frontend).
var languageMarkers = []struct {
	file string
	lang string
}{
	{"go.mod", "Go"},
	{"Cargo.toml", "Rust"},
	{"package.json", "JavaScript/TypeScript"},
	{"pyproject.toml", "Python"},
	{"requirements.txt", "Python"},
	{"setup.py", "Python"},
	{"pom.xml", "Java"},
	{"build.gradle", "Java/Kotlin"},
	{"Gemfile", "Ruby"},
	{"composer.json", "PHP"},
}

// detectPrimaryLanguage inspects the workspace root's immediate children
// for well-known build-manifest files; it never walks subdirectories, so
// it stays cheap even on very large repos.
func detectPrimaryLanguage(b bridge.Bridge, workspace string) string {
	entries, err := b.ReadDir(context.Background(), workspace)
	if err != nil {
		return "unknown"
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name] = true
	}
	for _, m := range languageMarkers {
		if names[m.file] {
			return m.lang
		}
	}
	return "unknown"
}
