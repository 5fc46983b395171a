// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package repomap

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// defRule maps one tree-sitter node type to the Symbol Kind it defines,
// plus the set of child node types that hold its identifier. This is the
// "small per-language query" SPEC_FULL.md §4.2 describes — table-driven
// rather than literal .scm query strings, matching the teacher's own
// child-loop traversal style (services/code_buddy/ast/go_parser.go) rather
// than tree-sitter's separate query API, which no example repo uses.
type defRule struct {
	nodeType  string
	kind      Kind
	nameTypes []string
}

// genericLang drives extraction for one grammar from a table of defRules
// plus the set of node types that count as identifier references.
type genericLang struct {
	lang       *sitter.Language
	defs       []defRule
	refTypes   map[string]bool
	extensions []string
}

func (g genericLang) Extensions() []string { return g.extensions }

func (g genericLang) Extract(file string, content []byte) ([]Symbol, []rawRef, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(g.lang)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, nil, nil
	}

	var syms []Symbol
	var refs []rawRef
	// nameNodes tracks byte ranges already claimed as a definition's own
	// name, so the reference pass doesn't also report "function Foo" as a
	// reference to Foo (spec.md §4.2: "self-references... are dropped").
	nameNodes := map[[2]uint32]bool{}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		t := n.Type()
		for _, r := range g.defs {
			if t != r.nodeType {
				continue
			}
			nameNode, name := findChildName(n, r.nameTypes, content)
			if name == "" {
				break
			}
			nameNodes[[2]uint32{nameNode.StartByte(), nameNode.EndByte()}] = true
			syms = append(syms, Symbol{
				Name:      name,
				Kind:      r.kind,
				File:      file,
				StartLine: int(n.StartPoint().Row) + 1,
				EndLine:   int(n.EndPoint().Row) + 1,
				Signature: signatureLine(content, n),
			})
			break
		}
		if g.refTypes[t] {
			key := [2]uint32{n.StartByte(), n.EndByte()}
			if !nameNodes[key] {
				refs = append(refs, rawRef{
					Name: string(content[n.StartByte():n.EndByte()]),
					Line: int(n.StartPoint().Row) + 1,
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return syms, refs, nil
}

// findChildName searches n's direct children (and one level into any
// "declarator"-ish wrapper child) for the first node whose type is in
// nameTypes.
func findChildName(n *sitter.Node, nameTypes []string, content []byte) (*sitter.Node, string) {
	want := make(map[string]bool, len(nameTypes))
	for _, t := range nameTypes {
		want[t] = true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if want[c.Type()] {
			return c, string(content[c.StartByte():c.EndByte()])
		}
	}
	// One level deeper, for languages that wrap the name in a declarator
	// node (e.g. Rust's function_item -> identifier is direct, but some
	// grammars nest one level for qualified/decorated forms).
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		for j := 0; j < int(c.ChildCount()); j++ {
			gc := c.Child(j)
			if want[gc.Type()] {
				return gc, string(content[gc.StartByte():gc.EndByte()])
			}
		}
	}
	return nil, ""
}

// signatureLine returns the node's first source line, trimmed, capped to
// keep the repo map compact.
func signatureLine(content []byte, n *sitter.Node) string {
	start := n.StartByte()
	end := n.EndByte()
	text := string(content[start:end])
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	const maxLen = 160
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}
	return text
}
