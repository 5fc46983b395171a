// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package embedindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxIndexWorkers bounds how many files are chunked/embedded concurrently,
// matching SPEC_FULL.md's "batched embedding computation across files uses
// golang.org/x/sync/errgroup with a bounded worker count".
const maxIndexWorkers = 4

// embedBatchSize caps how many chunk texts go into one Embedder.Embed call.
const embedBatchSize = 16

var ignoreDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "target": true,
	"dist": true, "build": true, "__pycache__": true, ".venv": true, ".forge": true,
}

// Index ties a Store, an Embedder and the chunker together into the
// per-workspace indexing and search pipeline described in spec.md §4.7.
type Index struct {
	store    *Store
	embedder Embedder
	root     string
}

// NewIndex wraps an already-open Store and Embedder for workspace root.
func NewIndex(store *Store, embedder Embedder, root string) *Index {
	return &Index{store: store, embedder: embedder, root: root}
}

// IndexWorkspace walks root, skipping ignored directories, and for every
// file whose content hash differs from what's stored, re-chunks and
// re-embeds it (spec.md §4.7 steps 1-4: hash check, chunk, embed in
// batches, transactionally replace). Files whose hash is unchanged are
// skipped entirely — the index's central cost-saving property.
func (ix *Index) IndexWorkspace(ctx context.Context) (indexed int, skipped int, err error) {
	var files []string
	walkErr := filepath.WalkDir(ix.root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if ignoreDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !isCodeFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return 0, 0, fmt.Errorf("embedindex: walk %s: %w", ix.root, walkErr)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxIndexWorkers)

	type result struct {
		indexed bool
	}
	results := make([]result, len(files))

	for i, abs := range files {
		i, abs := i, abs
		g.Go(func() error {
			did, err := ix.indexFile(gctx, abs)
			if err != nil {
				return fmt.Errorf("embedindex: %s: %w", abs, err)
			}
			results[i] = result{indexed: did}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	for _, r := range results {
		if r.indexed {
			indexed++
		} else {
			skipped++
		}
	}
	return indexed, skipped, nil
}

// indexFile re-chunks and re-embeds one file if its content changed since
// the last index run, returning whether it actually re-indexed.
func (ix *Index) indexFile(ctx context.Context, absPath string) (bool, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(ix.root, absPath)
	if err != nil {
		rel = absPath
	}
	rel = filepath.ToSlash(rel)

	hash := contentHash(content)
	prior, ok, err := ix.store.FileHash(ctx, rel)
	if err != nil {
		return false, err
	}
	if ok && prior == hash {
		return false, nil
	}

	chunks := chunkFile(rel, content)
	if err := ix.embedChunks(ctx, chunks); err != nil {
		return false, err
	}
	if err := ix.store.ReplaceFile(ctx, rel, hash, chunks, 0); err != nil {
		return false, err
	}
	return true, nil
}

// embedChunks fills in each chunk's Embedding in place, in batches of
// embedBatchSize texts per Embedder.Embed call.
func (ix *Index) embedChunks(ctx context.Context, chunks []Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, end-start)
		for i, c := range chunks[start:end] {
			texts[i] = c.Content
		}
		vecs, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return err
		}
		if len(vecs) != len(texts) {
			return fmt.Errorf("embedindex: embedder returned %d vectors for %d texts", len(vecs), len(texts))
		}
		for i := range texts {
			chunks[start+i].Embedding = vecs[i]
		}
	}
	return nil
}

// Search embeds query once and ranks every stored chunk against it by
// cosine similarity, returning the top-K (spec.md §4.7's codebase_search
// path).
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]ScoredChunk, error) {
	vecs, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedindex: embedder returned no vector for query")
	}
	return ix.store.Search(ctx, vecs[0], topK)
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

var codeExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".jsx": true, ".mjs": true,
	".ts": true, ".tsx": true, ".rs": true, ".java": true, ".c": true,
	".h": true, ".cpp": true, ".hpp": true, ".cc": true, ".rb": true,
	".php": true, ".cs": true, ".swift": true, ".kt": true, ".scala": true,
	".sh": true, ".md": true, ".json": true, ".yaml": true, ".yml": true,
	".toml": true,
}

// isCodeFile matches original_source/.../embeddings.rs's is_code_file
// extension allowlist, which the EmbeddingIndex walk uses to decide what's
// worth chunking and embedding at all.
func isCodeFile(path string) bool {
	return codeExtensions[strings.ToLower(filepath.Ext(path))]
}
