// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package repomap

import "testing"

func TestPageRankFavorsMoreReferencedSymbol(t *testing.T) {
	g := newGraph()
	g.addFile("a.go", []Symbol{
		{Name: "Helper", Kind: KindFunction, File: "a.go", StartLine: 1, EndLine: 2},
		{Name: "Caller1", Kind: KindFunction, File: "a.go", StartLine: 4, EndLine: 6},
		{Name: "Caller2", Kind: KindFunction, File: "a.go", StartLine: 8, EndLine: 10},
		{Name: "Lonely", Kind: KindFunction, File: "a.go", StartLine: 12, EndLine: 14},
	}, []rawRef{
		{Name: "Helper", Line: 5},
		{Name: "Helper", Line: 9},
	})

	ranks := pageRank(g)
	if ranks == nil {
		t.Fatal("expected non-nil ranks")
	}

	helperID := g.idFor(node{file: "a.go", symbolIdx: 0})
	lonelyID := g.idFor(node{file: "a.go", symbolIdx: 3})

	if ranks[helperID] <= ranks[lonelyID] {
		t.Errorf("expected Helper (referenced twice) to outrank Lonely (never referenced): helper=%v lonely=%v",
			ranks[helperID], ranks[lonelyID])
	}
}

func TestPageRankEmptyGraph(t *testing.T) {
	g := newGraph()
	if ranks := pageRank(g); ranks != nil {
		t.Errorf("expected nil ranks for empty graph, got %v", ranks)
	}
}
