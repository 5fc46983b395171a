// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// RPCBridge implements Bridge as a thin HTTP client against
// internal/rpcserver's endpoints, for the case where an IDE-like host
// drives the agent out-of-process and keeps the real filesystem/VCS/LSP
// access on its own side of a network boundary. Tool handlers depend
// only on the Bridge interface, so swapping OSBridge for RPCBridge is
// invisible to every handler in internal/toolregistry.
type RPCBridge struct {
	baseURL string
	root    string
	client  *http.Client
}

// NewRPCBridge builds a client against an internal/rpcserver instance
// listening at baseURL (e.g. "http://127.0.0.1:7420"). root is reported
// back as WorkspaceRoot() without a round trip, since it is static for
// the lifetime of one run.
func NewRPCBridge(baseURL, root string) *RPCBridge {
	return &RPCBridge{baseURL: baseURL, root: root, client: &http.Client{}}
}

func (b *RPCBridge) WorkspaceRoot() string { return b.root }

func (b *RPCBridge) call(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("rpcbridge: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("rpcbridge: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("rpcbridge: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = resp.Status
		}
		return fmt.Errorf("rpcbridge: %s %s: %s", method, path, errBody.Error)
	}
	if respBody == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(respBody)
}

func (b *RPCBridge) ReadFile(ctx context.Context, path string) (string, error) {
	var resp struct {
		Content string `json:"content"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/read-file", map[string]string{"path": path}, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (b *RPCBridge) WriteFile(ctx context.Context, path, content string) error {
	return b.call(ctx, http.MethodPost, "/v1/bridge/write-file", map[string]string{"path": path, "content": content}, nil)
}

func (b *RPCBridge) CreateDir(ctx context.Context, path string) error {
	return b.call(ctx, http.MethodPost, "/v1/bridge/create-dir", map[string]string{"path": path}, nil)
}

func (b *RPCBridge) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	var resp struct {
		Entries []DirEntry `json:"entries"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/read-dir", map[string]string{"path": path}, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (b *RPCBridge) Delete(ctx context.Context, path string) error {
	return b.call(ctx, http.MethodPost, "/v1/bridge/delete", map[string]string{"path": path}, nil)
}

func (b *RPCBridge) Rename(ctx context.Context, oldPath, newPath string) error {
	return b.call(ctx, http.MethodPost, "/v1/bridge/rename", map[string]string{"old_path": oldPath, "new_path": newPath}, nil)
}

func (b *RPCBridge) Search(ctx context.Context, opts SearchOptions) ([]SearchMatch, error) {
	var resp struct {
		Matches []SearchMatch `json:"matches"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/search", opts, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

type positionReq struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

func (b *RPCBridge) Definition(ctx context.Context, path string, line, col int) ([]CodeLocation, error) {
	var resp struct {
		Locations []CodeLocation `json:"locations"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/definition", positionReq{path, line, col}, &resp); err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

func (b *RPCBridge) References(ctx context.Context, path string, line, col int) ([]CodeLocation, error) {
	var resp struct {
		Locations []CodeLocation `json:"locations"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/references", positionReq{path, line, col}, &resp); err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

func (b *RPCBridge) Hover(ctx context.Context, path string, line, col int) (*HoverInfo, error) {
	var resp struct {
		Hover *HoverInfo `json:"hover"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/hover", positionReq{path, line, col}, &resp); err != nil {
		return nil, err
	}
	return resp.Hover, nil
}

func (b *RPCBridge) Symbols(ctx context.Context, path string) ([]DocSymbol, error) {
	var resp struct {
		Symbols []DocSymbol `json:"symbols"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/symbols", map[string]string{"path": path}, &resp); err != nil {
		return nil, err
	}
	return resp.Symbols, nil
}

func (b *RPCBridge) Diagnostics(ctx context.Context, path string) ([]LspDiagnostic, error) {
	var resp struct {
		Diagnostics []LspDiagnostic `json:"diagnostics"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/diagnostics", map[string]string{"path": path}, &resp); err != nil {
		return nil, err
	}
	return resp.Diagnostics, nil
}

func (b *RPCBridge) RenameSymbol(ctx context.Context, path string, line, col int, newName string) error {
	req := struct {
		Path    string `json:"path"`
		Line    int    `json:"line"`
		Col     int    `json:"col"`
		NewName string `json:"new_name"`
	}{path, line, col, newName}
	return b.call(ctx, http.MethodPost, "/v1/bridge/rename-symbol", req, nil)
}

func (b *RPCBridge) Execute(ctx context.Context, command, cwd string) (CommandOutput, error) {
	var out CommandOutput
	err := b.call(ctx, http.MethodPost, "/v1/bridge/execute", map[string]string{"command": command, "cwd": cwd}, &out)
	return out, err
}

func (b *RPCBridge) GitStatus(ctx context.Context) ([]GitFileStatus, error) {
	var resp struct {
		Status []GitFileStatus `json:"status"`
	}
	if err := b.call(ctx, http.MethodGet, "/v1/bridge/git/status", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Status, nil
}

func (b *RPCBridge) GitLog(ctx context.Context, maxEntries int) ([]GitCommit, error) {
	var resp struct {
		Commits []GitCommit `json:"commits"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/git/log", map[string]int{"max_entries": maxEntries}, &resp); err != nil {
		return nil, err
	}
	return resp.Commits, nil
}

func (b *RPCBridge) GitStage(ctx context.Context, paths []string) error {
	return b.call(ctx, http.MethodPost, "/v1/bridge/git/stage", map[string][]string{"paths": paths}, nil)
}

func (b *RPCBridge) GitCommit(ctx context.Context, message string) (string, error) {
	var resp struct {
		Hash string `json:"hash"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/git/commit", map[string]string{"message": message}, &resp); err != nil {
		return "", err
	}
	return resp.Hash, nil
}

func (b *RPCBridge) GitTag(ctx context.Context, name, message string) error {
	return b.call(ctx, http.MethodPost, "/v1/bridge/git/tag", map[string]string{"name": name, "message": message}, nil)
}

func (b *RPCBridge) GitReset(ctx context.Context, ref string, hard bool) error {
	return b.call(ctx, http.MethodPost, "/v1/bridge/git/reset", map[string]any{"ref": ref, "hard": hard}, nil)
}

func (b *RPCBridge) GitDiff(ctx context.Context, ref string) (string, error) {
	var resp struct {
		Diff string `json:"diff"`
	}
	if err := b.call(ctx, http.MethodPost, "/v1/bridge/git/diff", map[string]string{"ref": ref}, &resp); err != nil {
		return "", err
	}
	return resp.Diff, nil
}

var _ Bridge = (*RPCBridge)(nil)
