// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package embedindex implements spec.md §4.7: a persistent, chunked
// embedding store over the workspace, backed by modernc.org/sqlite (the
// external file-format contract in spec.md §6 fixes SQLite with
// little-endian packed f32 embeddings), with cosine-similarity search.
//
// Grounded on the teacher's services/code_buddy/ast parsers for the
// "function-level chunking, fall back to sliding windows" shape and on
// original_source/forge-agent/src/tools/embeddings_store.rs for the exact
// schema and blob packing this port keeps byte-compatible with.
package embedindex

import "context"

// Chunk is spec.md §3's EmbeddingIndex Chunk.
type Chunk struct {
	ID         int64
	File       string
	ChunkType  string // semantic kind (e.g. "function") or "block"
	Name       string // symbol name, empty for block chunks
	StartLine  int
	EndLine    int
	Content    string
	Embedding  []float32
	FileHash   string
}

// ScoredChunk pairs a Chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// Embedder computes embedding vectors for a batch of texts. Three
// implementations ship (gemini, openai-compatible, local) selected by
// config, per spec.md §4.7.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
