// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package session persists agent.Session records as one JSON file per
// session under <data_dir>/<namespace>/sessions/<id>.json, with
// create-then-rename atomic writes.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/forge-ide/forge-agent/internal/agent"
)

// Store is a namespaced, file-backed collection of sessions.
type Store struct {
	mu   sync.Mutex
	root string // <data_dir>/<namespace>/sessions
}

// NewStore returns a Store rooted at <dataDir>/<namespace>/sessions,
// creating the directory tree if it doesn't exist.
func NewStore(dataDir, namespace string) (*Store, error) {
	root := filepath.Join(dataDir, namespace, "sessions")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("session: create store dir: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, id+".json")
}

// New creates and immediately persists a brand new session.
func (s *Store) New(workspace, provider, model string) (*agent.Session, error) {
	sess := agent.NewSession(workspace, provider, model)
	if err := s.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load reads the session with the given id.
func (s *Store) Load(id string) (*agent.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(id)
}

func (s *Store) loadLocked(id string) (*agent.Session, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, agent.NewTaxonomyError(agent.ErrSessionNotFound, "session_not_found", false, err)
		}
		return nil, fmt.Errorf("session: read %s: %w", id, err)
	}
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return rec.toSession(), nil
}

// LoadLatest returns the most recently updated session for a workspace, or
// agent.ErrSessionNotFound if none exist.
func (s *Store) LoadLatest(workspace string) (*agent.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.listLocked()
	if err != nil {
		return nil, err
	}
	var best *sessionRecord
	for i := range entries {
		rec := &entries[i]
		if workspace != "" && rec.Workspace != workspace {
			continue
		}
		if best == nil || rec.UpdatedAt.After(best.UpdatedAt) {
			best = rec
		}
	}
	if best == nil {
		return nil, agent.NewTaxonomyError(agent.ErrSessionNotFound, "session_not_found", false, nil)
	}
	return best.toSession(), nil
}

// Save atomically persists sess: it writes to a temp file in the same
// directory and renames over the destination, so a crash mid-write never
// corrupts the previous version on disk.
func (s *Store) Save(sess *agent.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(sess)
}

func (s *Store) saveLocked(sess *agent.Session) error {
	rec := fromSession(sess)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", sess.ID, err)
	}

	dest := s.path(sess.ID)
	tmp, err := os.CreateTemp(s.root, sess.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("session: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("session: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("session: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("session: rename into place: %w", err)
	}
	return nil
}

// List returns summaries of every persisted session, most recently updated
// first.
func (s *Store) List() ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.listLocked()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(entries))
	for i, rec := range entries {
		out[i] = Summary{
			ID:        rec.ID,
			Title:     rec.Title,
			Workspace: rec.Workspace,
			Provider:  rec.Provider,
			Model:     rec.Model,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *Store) listLocked() ([]sessionRecord, error) {
	files, err := filepath.Glob(filepath.Join(s.root, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("session: glob store dir: %w", err)
	}
	recs := make([]sessionRecord, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		var rec sessionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Delete removes the session with the given id. It is not an error to
// delete a session that doesn't exist.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	return nil
}

// Summary is the lightweight projection of a Session used for listings.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Workspace string    `json:"workdir"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
