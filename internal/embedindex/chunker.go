// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package embedindex

import (
	"path/filepath"
	"strings"

	"github.com/forge-ide/forge-agent/internal/repomap"
)

const (
	blockSize    = 40
	blockOverlap = 8
	minBlockLen  = 5
	minDefLines  = 3
)

// chunkFile splits a file's content into Chunks: one per top-level or
// method-level definition of at least minDefLines lines when an AST
// extractor is registered for its extension (spec.md §4.7 step 2),
// falling back to blockChunk's sliding window when there's no grammar or
// the grammar found nothing.
func chunkFile(relPath string, content []byte) []Chunk {
	ext := strings.ToLower(filepath.Ext(relPath))
	if extractor, ok := repomap.ExtractorFor(ext); ok {
		syms, _, err := extractor.Extract(relPath, content)
		if err == nil {
			if chunks := chunksFromSymbols(relPath, content, syms); len(chunks) > 0 {
				return chunks
			}
		}
	}
	return blockChunk(relPath, content)
}

func chunksFromSymbols(relPath string, content []byte, syms []repomap.Symbol) []Chunk {
	lines := strings.Split(string(content), "\n")
	var chunks []Chunk
	for _, s := range syms {
		start := s.StartLine - 1
		end := s.EndLine
		if start < 0 {
			start = 0
		}
		if end > len(lines) {
			end = len(lines)
		}
		if start >= end || end-start < minDefLines {
			continue
		}
		chunks = append(chunks, Chunk{
			File:      relPath,
			ChunkType: string(s.Kind),
			Name:      s.Name,
			StartLine: s.StartLine,
			EndLine:   s.EndLine,
			Content:   strings.Join(lines[start:end], "\n"),
		})
	}
	return chunks
}

// blockChunk is the language-agnostic fallback: fixed-size sliding
// windows with overlap (spec.md §4.7: "40-line sliding blocks with 8-line
// overlap, minimum 5 lines"), grounded on
// original_source/.../embeddings_store.rs's block_chunk.
func blockChunk(relPath string, content []byte) []Chunk {
	lines := strings.Split(string(content), "\n")
	var chunks []Chunk
	for i := 0; i < len(lines); i += blockSize - blockOverlap {
		end := i + blockSize
		if end > len(lines) {
			end = len(lines)
		}
		if end-i < minBlockLen {
			break
		}
		text := strings.Join(lines[i:end], "\n")
		if strings.TrimSpace(text) != "" {
			chunks = append(chunks, Chunk{
				File:      relPath,
				ChunkType: "block",
				StartLine: i + 1,
				EndLine:   end,
				Content:   text,
			})
		}
		if end == len(lines) {
			break
		}
	}
	return chunks
}
