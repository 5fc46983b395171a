// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package memory implements the hierarchical project-memory tiers: a
// Global tier (user-wide, outside any workspace), a Workspace tier (the
// repo root), and Subdirectory tiers discovered just-in-time as the agent
// touches files deeper in the tree. Ported from
// original_source/forge-agent/src/project_memory.rs.
package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the on-disk memory file name for every tier.
const FileName = "FORGE.md"

// SectionHeader marks the agent-managed block inside a FORGE.md file. Only
// content after this header is loaded into the prompt and is subject to
// the per-tier truncation cap; anything above it is treated as
// human-authored and passed through untouched.
const SectionHeader = "## Forge Learned Memories"

// MaxTierChars caps how much of a single tier's learned-memory section is
// injected into the prompt.
const MaxTierChars = 4000

const truncationMarker = "\n...(truncated)\n"

// Tier identifies which level of the hierarchy a memory file belongs to.
type Tier int

const (
	TierGlobal Tier = iota
	TierWorkspace
	TierSubdirectory
)

func (t Tier) String() string {
	switch t {
	case TierGlobal:
		return "global"
	case TierWorkspace:
		return "workspace"
	default:
		return "subdirectory"
	}
}

// Entry is one loaded memory file, ready for prompt assembly.
type Entry struct {
	Tier    Tier
	Path    string
	Content string // already truncated to MaxTierChars
}

// Store locates and loads FORGE.md files across the hierarchy and
// persists learned memories back to them.
type Store struct {
	globalDir string // e.g. ~/.config/forge
	workspace string // repo root
}

// NewStore builds a Store for a given global config directory and
// workspace root.
func NewStore(globalDir, workspace string) *Store {
	return &Store{globalDir: globalDir, workspace: workspace}
}

// LoadGlobal reads the user-wide memory tier, if present.
func (s *Store) LoadGlobal() (*Entry, error) {
	return s.loadTier(TierGlobal, filepath.Join(s.globalDir, FileName))
}

// LoadWorkspace reads the workspace-root memory tier, if present.
func (s *Store) LoadWorkspace() (*Entry, error) {
	return s.loadTier(TierWorkspace, filepath.Join(s.workspace, FileName))
}

// DiscoverSubdirectoryTiers walks upward from the directory containing
// accessedFile, stopping before (not including) the workspace root, and
// returns every FORGE.md found along the way, nearest-first. Intended to
// be called once per newly-touched file per session, gated by
// agent.Session.HasLoadedMemory to avoid re-discovery.
func (s *Store) DiscoverSubdirectoryTiers(accessedFile string) ([]*Entry, error) {
	dir := filepath.Dir(accessedFile)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.workspace, dir)
	}
	dir = filepath.Clean(dir)

	root := filepath.Clean(s.workspace)
	var entries []*Entry
	for dir != root && len(dir) > len(root) && strings.HasPrefix(dir, root) {
		candidate := filepath.Join(dir, FileName)
		if fileExists(candidate) {
			entry, err := s.loadTier(TierSubdirectory, candidate)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				entries = append(entries, entry)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return entries, nil
}

func (s *Store) loadTier(tier Tier, path string) (*Entry, error) {
	if !fileExists(path) {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memory: read %s: %w", path, err)
	}
	section := extractSection(string(raw))
	if section == "" {
		return nil, nil
	}
	return &Entry{Tier: tier, Path: path, Content: truncate(section, MaxTierChars)}, nil
}

// extractSection returns the content following SectionHeader, or "" if the
// header isn't present.
func extractSection(content string) string {
	idx := strings.Index(content, SectionHeader)
	if idx < 0 {
		return ""
	}
	section := content[idx+len(SectionHeader):]
	return strings.TrimSpace(section)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - len(truncationMarker)
	if cut < 0 {
		cut = 0
	}
	return s[:cut] + truncationMarker
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// RenderMemory concatenates loaded tiers (in Global, Workspace,
// Subdirectory order) into a single prompt section, each tagged with its
// source path for traceability.
func RenderMemory(entries []*Entry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entries {
		if e == nil {
			continue
		}
		fmt.Fprintf(&b, "# Memory (%s: %s)\n%s\n\n", e.Tier, e.Path, e.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
