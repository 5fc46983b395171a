// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package toolregistry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// OutputKind distinguishes tool output that must never be truncated
// (Display, e.g. a diff rendered for the user to review) from output
// that can be (KindDefault, the default for everything else, and Shell,
// whose exit-code/metadata lines are kept when it is truncated). Ported from
// original_source/forge-agent/src/output_masking.rs.
type OutputKind int

const (
	KindDefault OutputKind = iota
	KindDisplay
	KindShell
)

const (
	passthroughLimit = 4000
	midHeadChars     = 2000
	midTailChars     = 1000
	midThreshold     = 12000
	bigHeadChars     = 1500
	bigTailChars     = 500

	savedOutputsKeep = 20
)

var shellMetadataPrefixRE = regexp.MustCompile(`(?i)^(exit code:|exit_code:|exitcode:|signal:|error:|stderr:|status:)`)

// MaskOutput renders a tool's raw output for inclusion in a ToolResult,
// applying the size policy for kind. saveDir is where overflow output is
// written to disk (only ever used above midThreshold); pass "" to disable
// disk-saving (the caller then gets the big-output message without a
// reference path).
func MaskOutput(kind OutputKind, raw string, saveDir string) (string, error) {
	if kind == KindDisplay {
		return raw, nil
	}

	var metadata, body string
	if kind == KindShell {
		metadata, body = extractShellMetadata(raw)
	} else {
		body = raw
	}

	switch {
	case len(body) <= passthroughLimit:
		return joinMetadata(metadata, body), nil

	case len(body) <= midThreshold:
		omitted := len(body) - midHeadChars - midTailChars
		masked := fmt.Sprintf("%s\n\n... [%d characters omitted] ...\n\n%s",
			body[:midHeadChars], omitted, body[len(body)-midTailChars:])
		return joinMetadata(metadata, masked), nil

	default:
		head := body[:bigHeadChars]
		tail := body[len(body)-bigTailChars:]
		omitted := len(body) - bigHeadChars - bigTailChars

		ref := ""
		if saveDir != "" {
			path, err := saveOverflow(saveDir, body)
			if err != nil {
				return "", err
			}
			ref = fmt.Sprintf("\n\nFull output saved to: %s", path)
		}

		masked := fmt.Sprintf("%s\n\n... [%d characters omitted]%s ...\n\n%s", head, omitted, ref, tail)
		return joinMetadata(metadata, masked), nil
	}
}

func joinMetadata(metadata, body string) string {
	if metadata == "" {
		return body
	}
	return metadata + "\n" + body
}

// extractShellMetadata lifts any leading lines that match
// shellMetadataPrefixRE out of raw into a preserved metadata block, so
// exit-code/signal/error lines always survive truncation regardless of
// where they fall in the original output.
func extractShellMetadata(raw string) (metadata, body string) {
	lines := strings.Split(raw, "\n")
	var metaLines, bodyLines []string
	for _, line := range lines {
		if shellMetadataPrefixRE.MatchString(strings.TrimSpace(line)) {
			metaLines = append(metaLines, line)
		} else {
			bodyLines = append(bodyLines, line)
		}
	}
	return strings.Join(metaLines, "\n"), strings.Join(bodyLines, "\n")
}

// saveOverflow writes body to a timestamped file under dir, then rotates
// dir so at most savedOutputsKeep files remain (oldest by mtime removed
// first).
func saveOverflow(dir, body string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("outputmask: create save dir: %w", err)
	}
	name := fmt.Sprintf("output-%d.txt", time.Now().UnixNano())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("outputmask: write %s: %w", path, err)
	}
	if err := rotate(dir); err != nil {
		return "", err
	}
	return path, nil
}

func rotate(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("outputmask: read save dir: %w", err)
	}
	type fi struct {
		name    string
		modTime time.Time
	}
	var files []fi
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fi{name: e.Name(), modTime: info.ModTime()})
	}
	if len(files) <= savedOutputsKeep {
		return nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	excess := len(files) - savedOutputsKeep
	for i := 0; i < excess; i++ {
		_ = os.Remove(filepath.Join(dir, files[i].name))
	}
	return nil
}
