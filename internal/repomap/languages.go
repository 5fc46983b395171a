// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package repomap

import (
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// defaultExtractors maps file extensions to Extractors. Files with no registered
// grammar are skipped (spec.md §4.2) — not chunked as plain text, which is
// the EmbeddingIndex's fallback (§4.7), not RepoMap's.
func defaultExtractors() map[string]Extractor {
	m := map[string]Extractor{}
	register := func(e genericLang) {
		for _, ext := range e.extensions {
			m[ext] = e
		}
	}

	register(genericLang{
		lang:       golang.GetLanguage(),
		extensions: []string{".go"},
		defs: []defRule{
			{"function_declaration", KindFunction, []string{"identifier"}},
			{"method_declaration", KindMethod, []string{"field_identifier"}},
			{"type_spec", KindStruct, []string{"type_identifier"}},
			{"const_declaration", KindConstant, []string{"identifier"}},
		},
		refTypes: map[string]bool{"identifier": true, "field_identifier": true, "type_identifier": true},
	})

	register(genericLang{
		lang:       python.GetLanguage(),
		extensions: []string{".py"},
		defs: []defRule{
			{"function_definition", KindFunction, []string{"identifier"}},
			{"class_definition", KindClass, []string{"identifier"}},
		},
		refTypes: map[string]bool{"identifier": true},
	})

	register(genericLang{
		lang:       javascript.GetLanguage(),
		extensions: []string{".js", ".jsx", ".mjs"},
		defs: []defRule{
			{"function_declaration", KindFunction, []string{"identifier"}},
			{"method_definition", KindMethod, []string{"property_identifier"}},
			{"class_declaration", KindClass, []string{"identifier"}},
		},
		refTypes: map[string]bool{"identifier": true, "property_identifier": true},
	})

	register(genericLang{
		lang:       typescript.GetLanguage(),
		extensions: []string{".ts", ".tsx"},
		defs: []defRule{
			{"function_declaration", KindFunction, []string{"identifier"}},
			{"method_definition", KindMethod, []string{"property_identifier"}},
			{"class_declaration", KindClass, []string{"identifier"}},
			{"interface_declaration", KindInterface, []string{"type_identifier"}},
			{"type_alias_declaration", KindType, []string{"type_identifier"}},
		},
		refTypes: map[string]bool{"identifier": true, "property_identifier": true, "type_identifier": true},
	})

	register(genericLang{
		lang:       rust.GetLanguage(),
		extensions: []string{".rs"},
		defs: []defRule{
			{"function_item", KindFunction, []string{"identifier"}},
			{"struct_item", KindStruct, []string{"type_identifier"}},
			{"enum_item", KindEnum, []string{"type_identifier"}},
			{"trait_item", KindInterface, []string{"type_identifier"}},
			{"macro_definition", KindMacro, []string{"identifier"}},
			{"mod_item", KindModule, []string{"identifier"}},
		},
		refTypes: map[string]bool{"identifier": true, "type_identifier": true, "field_identifier": true},
	})

	return m
}

// extractorsOnce memoizes defaultExtractors' table since tree-sitter
// grammar registration has a fixed cost worth paying once per process.
var extractorsOnce = struct {
	m    map[string]Extractor
	done bool
}{}

// ExtractorFor returns the registered Extractor for a file extension
// (e.g. ".go"), for callers outside this package that want AST-aware
// chunking without reimplementing the grammar table — the EmbeddingIndex
// (internal/embedindex) is the one consumer today.
func ExtractorFor(ext string) (Extractor, bool) {
	if !extractorsOnce.done {
		extractorsOnce.m = defaultExtractors()
		extractorsOnce.done = true
	}
	e, ok := extractorsOnce.m[ext]
	return e, ok
}
