// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package embedindex

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver, pure-Go (no cgo)
)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file TEXT NOT NULL,
	chunk_type TEXT NOT NULL,
	name TEXT,
	start_line INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	content TEXT NOT NULL,
	embedding BLOB,
	file_hash TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file);
CREATE INDEX IF NOT EXISTS idx_chunks_hash ON chunks(file_hash);

CREATE TABLE IF NOT EXISTS file_index (
	file TEXT PRIMARY KEY,
	file_hash TEXT NOT NULL,
	indexed_at INTEGER NOT NULL
);
`

// Store is the persistent chunk database for one workspace (spec.md §6:
// "local SQLite with the schema in §4.7; embeddings stored as
// little-endian packed f32").
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path and ensures
// its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("embedindex: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("embedindex: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// FileHash returns the stored content hash for file, and whether an entry
// exists at all.
func (s *Store) FileHash(ctx context.Context, file string) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT file_hash FROM file_index WHERE file = ?`, file).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

// ReplaceFile transactionally replaces every chunk belonging to file and
// updates file_index, per spec.md §4.7 step 4 ("Transactionally replace
// all prior chunks for that file and update file_index").
func (s *Store) ReplaceFile(ctx context.Context, file, fileHash string, chunks []Chunk, indexedAtUnix int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE file = ?`, file); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks
		(file, chunk_type, name, start_line, end_line, content, embedding, file_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		var name any
		if c.Name != "" {
			name = c.Name
		}
		if _, err := stmt.ExecContext(ctx, file, c.ChunkType, name, c.StartLine, c.EndLine,
			c.Content, encodeEmbedding(c.Embedding), fileHash); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO file_index (file, file_hash, indexed_at) VALUES (?, ?, ?)
		 ON CONFLICT(file) DO UPDATE SET file_hash = excluded.file_hash, indexed_at = excluded.indexed_at`,
		file, fileHash, indexedAtUnix); err != nil {
		return err
	}

	return tx.Commit()
}

// AllChunks returns every chunk with a non-null embedding, for Search to
// score against. A production-scale index would push the similarity
// computation into SQL or a side vector index; spec.md §4.7 specifies a
// flat "embed query once, compute cosine similarity against every active
// chunk" search, so this mirrors that directly.
func (s *Store) AllChunks(ctx context.Context) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, file, chunk_type, name, start_line, end_line, content, embedding, file_hash
		FROM chunks WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		var name sql.NullString
		var blob []byte
		if err := rows.Scan(&c.ID, &c.File, &c.ChunkType, &name, &c.StartLine, &c.EndLine, &c.Content, &blob, &c.FileHash); err != nil {
			return nil, err
		}
		c.Name = name.String
		c.Embedding = decodeEmbedding(blob)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Search embeds nothing itself — callers pass a precomputed query vector
// (Index.Search embeds the query once per spec.md §4.7) — and ranks every
// stored chunk by cosine similarity, returning the top-K.
func (s *Store) Search(ctx context.Context, query []float32, topK int) ([]ScoredChunk, error) {
	chunks, err := s.AllChunks(ctx)
	if err != nil {
		return nil, err
	}
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, ScoredChunk{Chunk: c, Score: cosineSimilarity(query, c.Embedding)})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
