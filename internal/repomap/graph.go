// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// (at your option) any later version.

package repomap

import "sort"

// node is one vertex of the reference graph: either a real definition
// (symbolIdx >= 0, indexing into arena) or a synthetic per-file module
// node (symbolIdx == -1) that absorbs top-level references with no
// enclosing definition (spec.md §4.2 edge case).
type node struct {
	file      string
	symbolIdx int
}

// graph is the directed reference graph spec.md §4.2 describes: nodes are
// (file, symbol); edges run from an enclosing definition to the symbol it
// references.
type graph struct {
	arena   []Symbol          // all definitions across the workspace
	byFile  map[string][]int  // file -> sorted arena indices (by StartLine), for the binary-search enclosing lookup (spec.md §9)
	byName  map[string][]int  // symbol name -> arena indices defining it (handles homonyms)
	module  map[string]int    // file -> synthetic module-node id (a dense id like any other; its node has symbolIdx -1)
	edges   map[int][]int     // node id -> node ids it references
	nodeIDs map[node]int      // node -> dense id
	idNodes []node            // dense id -> node
}

func newGraph() *graph {
	return &graph{
		byFile:  map[string][]int{},
		byName:  map[string][]int{},
		module:  map[string]int{},
		edges:   map[int][]int{},
		nodeIDs: map[node]int{},
	}
}

func (g *graph) idFor(n node) int {
	if id, ok := g.nodeIDs[n]; ok {
		return id
	}
	id := len(g.idNodes)
	g.idNodes = append(g.idNodes, n)
	g.nodeIDs[n] = id
	return id
}

// addFile registers file's definitions and builds its sorted start-line
// index, then resolves refs against the full per-file symbol arena to
// find each reference's enclosing definition (or the synthetic module
// node when none contains it), and records an edge per homonymous
// definition site of the referenced name.
func (g *graph) addFile(file string, syms []Symbol, refs []rawRef) {
	base := len(g.arena)
	g.arena = append(g.arena, syms...)

	indices := make([]int, len(syms))
	for i := range syms {
		idx := base + i
		indices[i] = idx
		g.byName[syms[i].Name] = append(g.byName[syms[i].Name], idx)
	}
	sort.Slice(indices, func(a, b int) bool {
		return g.arena[indices[a]].StartLine < g.arena[indices[b]].StartLine
	})
	g.byFile[file] = indices

	moduleNodeID := g.idFor(node{file: file, symbolIdx: -1})
	g.module[file] = moduleNodeID

	for _, ref := range refs {
		enclosingIdx := g.enclosingDef(file, ref.Line)
		var fromID int
		if enclosingIdx < 0 {
			fromID = moduleNodeID
		} else {
			fromID = g.idFor(node{file: file, symbolIdx: enclosingIdx})
		}

		for _, targetIdx := range g.byName[ref.Name] {
			target := g.arena[targetIdx]
			// Self-references within the same function are dropped
			// (spec.md §4.2 edge case).
			if enclosingIdx == targetIdx {
				continue
			}
			toID := g.idFor(node{file: target.File, symbolIdx: targetIdx})
			g.edges[fromID] = append(g.edges[fromID], toID)
		}
	}
}

// enclosingDef returns the arena index of the definition in file whose
// span contains line: the definition with the greatest StartLine <= line
// among those whose EndLine >= line, found by binary search over the
// sorted-by-StartLine index per spec.md §9's design note. Returns -1 when
// no definition contains the line (synthetic module node applies).
func (g *graph) enclosingDef(file string, line int) int {
	indices := g.byFile[file]
	if len(indices) == 0 {
		return -1
	}
	// Binary search for the greatest StartLine <= line.
	lo, hi := 0, len(indices)-1
	best := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if g.arena[indices[mid]].StartLine <= line {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	// Walk backwards from best since multiple defs can share a StartLine
	// (rare) or an earlier-starting def can still be the tightest
	// enclosing span (e.g. a struct containing a method-like field).
	for i := best; i >= 0; i-- {
		idx := indices[i]
		s := g.arena[idx]
		if s.StartLine <= line && s.EndLine >= line {
			return idx
		}
		if i < best-4 {
			// Don't degrade to an O(n) scan for pathological inputs.
			break
		}
	}
	return -1
}
