// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package repomap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forge-ide/forge-agent/internal/tokenbudget"
)

// Build walks root, extracts symbols and references for every recognized
// grammar, ranks the resulting reference graph with PageRank, and emits a
// formatted listing of the highest-ranked symbols grouped by file, cut
// off once tokenBudget is exhausted (spec.md §4.2).
func Build(root string, tokenBudgetN int) (string, error) {
	extractors := defaultExtractors()
	g := newGraph()

	type fileSyms struct {
		file string
		syms []Symbol
	}
	var perFile []fileSyms

	walkErr := walkSourceFiles(root, extractors, func(rel string, content []byte, ext Extractor) {
		syms, refs, err := ext.Extract(rel, content)
		if err != nil {
			return
		}
		g.addFile(rel, syms, refs)
		perFile = append(perFile, fileSyms{file: rel, syms: syms})
	})
	if walkErr != nil {
		return "", walkErr
	}

	ranks := pageRank(g)

	// Assign each arena symbol its node's rank.
	for i := range g.arena {
		id := g.idFor(node{file: g.arena[i].File, symbolIdx: i})
		g.arena[i].Rank = ranks[id]
	}

	sort.SliceStable(g.arena, func(a, b int) bool {
		return g.arena[a].Rank > g.arena[b].Rank
	})

	counter := tokenbudget.Default()
	return format(g.arena, tokenBudgetN, counter), nil
}

// format groups symbols by file in descending-rank order (a file's
// position is determined by its single highest-ranked symbol, so the
// most important files lead) and emits them until tokenBudgetN is
// exhausted.
func format(symbols []Symbol, tokenBudgetN int, counter tokenbudget.Counter) string {
	if len(symbols) == 0 {
		return ""
	}

	fileOrder := make([]string, 0)
	seen := map[string]bool{}
	byFile := map[string][]Symbol{}
	for _, s := range symbols {
		if !seen[s.File] {
			seen[s.File] = true
			fileOrder = append(fileOrder, s.File)
		}
		byFile[s.File] = append(byFile[s.File], s)
	}

	var b strings.Builder
	used := 0
	for _, file := range fileOrder {
		header := fmt.Sprintf("%s:\n", file)
		if used+counter.Count(header) > tokenBudgetN {
			break
		}
		b.WriteString(header)
		used += counter.Count(header)

		syms := byFile[file]
		sort.SliceStable(syms, func(a, b int) bool { return syms[a].StartLine < syms[b].StartLine })

		for _, s := range syms {
			line := fmt.Sprintf("  %s %s  (L%d-%d)\n", s.Kind, symbolLabel(s), s.StartLine, s.EndLine)
			if used+counter.Count(line) > tokenBudgetN {
				return b.String()
			}
			b.WriteString(line)
			used += counter.Count(line)
		}
	}
	return b.String()
}

func symbolLabel(s Symbol) string {
	if s.Signature != "" {
		return s.Signature
	}
	return s.Name
}
