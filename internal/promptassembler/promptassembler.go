// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package promptassembler builds the enriched user turn described in
// spec.md §4.13: an ordered set of XML-tagged sections (project memory,
// user/environment info, project layout, repo map, pre-searched relevant
// context, git status, and the verbatim user query) plus a fixed system
// prompt, assembled from internal/memory, internal/contextcache,
// internal/repomap, and internal/bridge without any of those packages
// knowing about one another.
package promptassembler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/contextcache"
	"github.com/forge-ide/forge-agent/internal/memory"
	"github.com/forge-ide/forge-agent/internal/repomap"
)

// repoMapTokenBudget bounds how many tokens of internal/repomap's
// formatted output get embedded in the <repo_map> section.
const repoMapTokenBudget = 2000

// layoutMaxLines / layoutMaxDepth bound the <project_layout> tree (spec.md
// §4.13 item 3: "depth-3 file tree ... capped at 80 lines").
const (
	layoutMaxDepth = 3
	layoutMaxLines = 80
)

// Assembler holds the collaborators needed to build every section; it has
// no mutable state of its own and is safe to share across sessions.
type Assembler struct {
	Bridge bridge.Bridge
	Cache  *contextcache.Cache
	Memory *memory.Store
}

// New builds an Assembler. cache may be nil to disable repo-map/pre-search
// caching (every Build call recomputes both).
func New(b bridge.Bridge, cache *contextcache.Cache, mem *memory.Store) *Assembler {
	return &Assembler{Bridge: b, Cache: cache, Memory: mem}
}

// Build renders the full enriched user turn for userQuery, returning the
// fixed system prompt and the XML-tagged context block that replaces the
// caller's plain user message (spec.md §4.13).
func (a *Assembler) Build(ctx context.Context, userQuery string) (systemPrompt, contextBlock string, err error) {
	workspace := a.Bridge.WorkspaceRoot()

	memSection := a.renderMemorySection()
	userInfoSection := a.renderUserInfoSection(workspace)
	layoutSection := a.renderLayoutSection(ctx, workspace)
	repoMapSection := a.renderRepoMapSection(workspace)
	relevantSection := a.renderRelevantContextSection(ctx, workspace, userQuery)
	gitSection := a.renderGitInfoSection(ctx)

	var b strings.Builder
	writeSection(&b, "project_memory", memSection)
	writeSection(&b, "user_info", userInfoSection)
	writeSection(&b, "project_layout", layoutSection)
	writeSection(&b, "repo_map", repoMapSection)
	writeSection(&b, "relevant_context", relevantSection)
	writeSection(&b, "git_info", gitSection)
	writeSection(&b, "user_query", userQuery)

	return systemPromptText, strings.TrimRight(b.String(), "\n"), nil
}

func writeSection(b *strings.Builder, tag, content string) {
	if strings.TrimSpace(content) == "" && tag != "user_query" {
		return
	}
	fmt.Fprintf(b, "<%s>\n%s\n</%s>\n\n", tag, content, tag)
}

func (a *Assembler) renderMemorySection() string {
	if a.Memory == nil {
		return ""
	}
	var entries []*memory.Entry
	if g, err := a.Memory.LoadGlobal(); err == nil && g != nil {
		entries = append(entries, g)
	}
	if w, err := a.Memory.LoadWorkspace(); err == nil && w != nil {
		entries = append(entries, w)
	}
	return memory.RenderMemory(entries)
}

func (a *Assembler) renderUserInfoSection(workspace string) string {
	return fmt.Sprintf(
		"os: %s\nworkspace: %s\ndate: %s\nprimary_language: %s",
		hostOS(), workspace, time.Now().Format("2006-01-02"), detectPrimaryLanguage(a.Bridge, workspace),
	)
}

func (a *Assembler) renderRepoMapSection(workspace string) string {
	if a.Cache != nil {
		if cached, ok, err := a.Cache.GetRepoMap(workspace); err == nil && ok {
			return "repo map (cached, highest-ranked symbols first):\n" + cached
		}
	}
	rendered, err := repomap.Build(workspace, repoMapTokenBudget)
	if err != nil || rendered == "" {
		return ""
	}
	if a.Cache != nil {
		_ = a.Cache.SetRepoMap(workspace, rendered)
	}
	return "repo map (highest-ranked symbols first):\n" + rendered
}

func (a *Assembler) renderRelevantContextSection(ctx context.Context, workspace, userQuery string) string {
	out, err := contextcache.PreSearch(ctx, a.Cache, a.Bridge, workspace, userQuery)
	if err != nil {
		return ""
	}
	return out
}

func (a *Assembler) renderGitInfoSection(ctx context.Context) string {
	status, err := a.Bridge.GitStatus(ctx)
	if err != nil {
		return ""
	}
	commits, _ := a.Bridge.GitLog(ctx, 1)

	var b strings.Builder
	if len(commits) > 0 {
		fmt.Fprintf(&b, "last commit: %s %s\n", commits[0].Hash, commits[0].Message)
	}
	if len(status) == 0 {
		b.WriteString("working tree clean")
	} else {
		fmt.Fprintf(&b, "%d file(s) changed:\n", len(status))
		for _, s := range status {
			fmt.Fprintf(&b, "  %s%s %s\n", s.Staged, s.Worktree, s.Path)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
