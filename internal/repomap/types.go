// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package repomap implements spec.md §4.2: AST symbol extraction across
// the workspace, a directed reference graph between definitions, PageRank
// ranking over that graph, and a token-budgeted formatted listing of the
// highest-ranked symbols grouped by file.
//
// Extraction is grounded on the teacher's services/code_buddy/ast parsers
// (one Parser per language, tree-sitter-backed, returning language-agnostic
// Symbol values); RepoMap adds the reference side (what does each
// definition's body *call*) that the teacher's AST package never needed.
package repomap

// Kind is spec.md §3's Symbol.kind enum.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindModule    Kind = "module"
	KindMacro     Kind = "macro"
	KindStruct    Kind = "struct"
	KindEnum      Kind = "enum"
	KindType      Kind = "type"
	KindConstant  Kind = "constant"
)

// Symbol is spec.md §3's RepoMap Symbol: a definition site extracted from
// source, eligible to be both a graph node and a reference target.
type Symbol struct {
	Name      string
	Kind      Kind
	File      string
	StartLine int
	EndLine   int
	Signature string
	Rank      float64
}

// reference is one use of an identifier found inside some enclosing
// definition's span (or the file's synthetic module node when there is no
// enclosing definition — spec.md §4.2's "top-level" edge case).
type reference struct {
	name      string
	file      string
	line      int
	enclosing int // index into the file's symbol arena; -1 for none found
}

// Extractor is implemented once per supported language grammar.
type Extractor interface {
	// Extensions lists the file extensions this extractor handles, e.g.
	// []string{".go"}.
	Extensions() []string
	// Extract parses content and returns every definition and every
	// identifier reference it contains. References are raw identifier
	// occurrences; enclosing-definition attribution happens in the graph
	// builder (graph.go), not here, since that needs the full per-file
	// symbol arena (spec.md §9's cyclic-reference design note).
	Extract(file string, content []byte) ([]Symbol, []rawRef, error)
}

// rawRef is an Extractor's raw output before enclosing-def attribution:
// just the identifier text and the line it appears on.
type rawRef struct {
	Name string
	Line int
}
