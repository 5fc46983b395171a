// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package rpcserver

import (
	"net/http"

	"github.com/forge-ide/forge-agent/internal/bridge"
)

// Each handler below is a direct JSON transcription of one bridge.Bridge
// method: decode the request body (or query params for the two no-arg
// GETs), call straight through to the wrapped bridge, and encode the
// result or error. No business logic lives here — RPCBridge on the other
// side reconstructs the same bridge.Bridge interface from these replies.

func (s *Server) handleWorkspaceRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"root": s.bridge.WorkspaceRoot()})
}

type pathReq struct {
	Path string `json:"path"`
}

func (s *Server) handleReadFile(w http.ResponseWriter, r *http.Request) {
	var req pathReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	content, err := s.bridge.ReadFile(r.Context(), req.Path)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

type writeFileReq struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (s *Server) handleWriteFile(w http.ResponseWriter, r *http.Request) {
	var req writeFileReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if err := s.bridge.WriteFile(r.Context(), req.Path, req.Content); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleCreateDir(w http.ResponseWriter, r *http.Request) {
	var req pathReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if err := s.bridge.CreateDir(r.Context(), req.Path); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleReadDir(w http.ResponseWriter, r *http.Request) {
	var req pathReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	entries, err := s.bridge.ReadDir(r.Context(), req.Path)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]bridge.DirEntry{"entries": entries})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req pathReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if err := s.bridge.Delete(r.Context(), req.Path); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type renameReq struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if err := s.bridge.Rename(r.Context(), req.OldPath, req.NewPath); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req bridge.SearchOptions
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	matches, err := s.bridge.Search(r.Context(), req)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]bridge.SearchMatch{"matches": matches})
}

type positionReq struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

func (s *Server) handleDefinition(w http.ResponseWriter, r *http.Request) {
	var req positionReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	locs, err := s.bridge.Definition(r.Context(), req.Path, req.Line, req.Col)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]bridge.CodeLocation{"locations": locs})
}

func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	var req positionReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	locs, err := s.bridge.References(r.Context(), req.Path, req.Line, req.Col)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]bridge.CodeLocation{"locations": locs})
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req positionReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	info, err := s.bridge.Hover(r.Context(), req.Path, req.Line, req.Col)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*bridge.HoverInfo{"hover": info})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	var req pathReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	syms, err := s.bridge.Symbols(r.Context(), req.Path)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]bridge.DocSymbol{"symbols": syms})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	var req pathReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	diags, err := s.bridge.Diagnostics(r.Context(), req.Path)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]bridge.LspDiagnostic{"diagnostics": diags})
}

type renameSymbolReq struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	NewName string `json:"new_name"`
}

func (s *Server) handleRenameSymbol(w http.ResponseWriter, r *http.Request) {
	var req renameSymbolReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if err := s.bridge.RenameSymbol(r.Context(), req.Path, req.Line, req.Col, req.NewName); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type executeReq struct {
	Command string `json:"command"`
	Cwd     string `json:"cwd"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	out, err := s.bridge.Execute(r.Context(), req.Command, req.Cwd)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGitStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.bridge.GitStatus(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]bridge.GitFileStatus{"status": st})
}

type gitLogReq struct {
	MaxEntries int `json:"max_entries"`
}

func (s *Server) handleGitLog(w http.ResponseWriter, r *http.Request) {
	var req gitLogReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	commits, err := s.bridge.GitLog(r.Context(), req.MaxEntries)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]bridge.GitCommit{"commits": commits})
}

type gitStageReq struct {
	Paths []string `json:"paths"`
}

func (s *Server) handleGitStage(w http.ResponseWriter, r *http.Request) {
	var req gitStageReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if err := s.bridge.GitStage(r.Context(), req.Paths); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type gitCommitReq struct {
	Message string `json:"message"`
}

func (s *Server) handleGitCommit(w http.ResponseWriter, r *http.Request) {
	var req gitCommitReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	hash, err := s.bridge.GitCommit(r.Context(), req.Message)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hash": hash})
}

type gitTagReq struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (s *Server) handleGitTag(w http.ResponseWriter, r *http.Request) {
	var req gitTagReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if err := s.bridge.GitTag(r.Context(), req.Name, req.Message); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type gitResetReq struct {
	Ref  string `json:"ref"`
	Hard bool   `json:"hard"`
}

func (s *Server) handleGitReset(w http.ResponseWriter, r *http.Request) {
	var req gitResetReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if err := s.bridge.GitReset(r.Context(), req.Ref, req.Hard); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type gitDiffReq struct {
	Ref string `json:"ref"`
}

func (s *Server) handleGitDiff(w http.ResponseWriter, r *http.Request) {
	var req gitDiffReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	diff, err := s.bridge.GitDiff(r.Context(), req.Ref)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"diff": diff})
}
