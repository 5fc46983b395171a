// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package contextcache

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/forge-ide/forge-agent/internal/bridge"
)

// maxMatchesPerKeyword caps how many hits of one keyword's search are
// rendered, matching original_source/.../context_cache.rs's rg_search
// invocation ("--max-count 3").
const maxMatchesPerKeyword = 3

// maxContentChars truncates a single match's line content, matching the
// original's 150-character cap.
const maxContentChars = 150

// Searcher is the subset of bridge.Bridge the pre-search needs, kept
// narrow so callers don't have to construct a full Bridge for tests.
type Searcher interface {
	Search(ctx context.Context, opts bridge.SearchOptions) ([]bridge.SearchMatch, error)
}

// PreSearch extracts keywords from query, checks the cache for a prior
// result keyed by the workspace and the sorted keyword set, and otherwise
// fans out one bridge.Search per keyword (bounded by
// golang.org/x/sync/errgroup, at most MaxKeywords concurrent searches) so
// wall-clock tracks the slowest single search rather than their sum.
func PreSearch(ctx context.Context, cache *Cache, searcher Searcher, workspace, query string) (string, error) {
	keywords := ExtractKeywords(query)
	if len(keywords) == 0 {
		return "", nil
	}

	cacheKey := presearchCacheKey(workspace, keywords)
	if cache != nil {
		if cached, ok, err := cache.GetPreSearch(cacheKey); err == nil && ok {
			return cached, nil
		}
	}

	results := make([][]bridge.SearchMatch, len(keywords))
	g, gctx := errgroup.WithContext(ctx)
	for i, kw := range keywords {
		i, kw := i, kw
		g.Go(func() error {
			matches, err := searcher.Search(gctx, bridge.SearchOptions{
				Pattern:    kw,
				Root:       workspace,
				MaxResults: maxMatchesPerKeyword,
			})
			if err != nil {
				return nil // a failed keyword search degrades gracefully, doesn't abort the others
			}
			results[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	rendered := renderPreSearch(keywords, results)
	if cache != nil && rendered != "" {
		_ = cache.SetPreSearch(cacheKey, rendered)
	}
	return rendered, nil
}

func presearchCacheKey(workspace string, keywords []string) string {
	sorted := append([]string(nil), keywords...)
	sort.Strings(sorted)
	return workspace + ":" + strings.Join(sorted, ",")
}

func renderPreSearch(keywords []string, results [][]bridge.SearchMatch) string {
	var b strings.Builder
	any := false
	for i, kw := range keywords {
		matches := results[i]
		if len(matches) == 0 {
			continue
		}
		any = true
		fmt.Fprintf(&b, "matches for %q:\n", kw)
		for _, m := range matches {
			content := m.Content
			if len(content) > maxContentChars {
				content = content[:maxContentChars] + "..."
			}
			fmt.Fprintf(&b, "  %s:%d: %s\n", m.Path, m.Line, content)
		}
	}
	if !any {
		return ""
	}
	return strings.TrimRight(b.String(), "\n")
}
