// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package rpcserver is the concrete form of "routes through the IDE's
// RPC layer" (spec.md §4.1): it exposes a bridge.Bridge over HTTP as a
// set of JSON request/response endpoints (one per Bridge method), plus
// a WebSocket endpoint that broadcasts agent.Hooks events so a host
// process can watch a run live instead of tailing a JSONL trace file.
// internal/bridge/rpc_bridge.go is the client half; both sides agree on
// the wire shapes defined in this package.
package rpcserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forge-ide/forge-agent/internal/bridge"
)

// Server wraps a bridge.Bridge with an HTTP/WS surface. It holds no
// agent-loop state of its own — it is a transport adapter, not a second
// implementation of the agent pipeline.
type Server struct {
	bridge bridge.Bridge
	router chi.Router
	hub    *eventHub
	log    *slog.Logger
}

// New builds a Server fronting b. log defaults to slog.Default() when nil.
func New(b bridge.Bridge, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{bridge: b, hub: newEventHub(), log: log}
	s.router = s.buildRouter()
	return s
}

// Router returns the http.Handler to mount or pass to http.ListenAndServe.
func (s *Server) Router() http.Handler { return s.router }

// Hooks returns an agent.Hooks implementation that fans run events out to
// every connected /v1/events WebSocket client.
func (s *Server) Hooks() *EventHooks { return &EventHooks{hub: s.hub} }

// WatchWorkspace starts an fsnotify-backed watch over the bridge's
// workspace root that invalidates cache whenever the tree changes,
// running until ctx is cancelled. Only meaningful for long-running
// server processes — a single forgecode CLI invocation lives for one
// prompt and re-reads the workspace fresh every time anyway.
func (s *Server) WatchWorkspace(ctx context.Context, cache invalidator) error {
	w, err := newWorkspaceWatcher(s.bridge.WorkspaceRoot(), cache)
	if err != nil {
		return err
	}
	if err := w.start(ctx); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		w.stop()
	}()
	return nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/v1/bridge", func(r chi.Router) {
		r.Get("/workspace-root", s.handleWorkspaceRoot)
		r.Post("/read-file", s.handleReadFile)
		r.Post("/write-file", s.handleWriteFile)
		r.Post("/create-dir", s.handleCreateDir)
		r.Post("/read-dir", s.handleReadDir)
		r.Post("/delete", s.handleDelete)
		r.Post("/rename", s.handleRename)
		r.Post("/search", s.handleSearch)
		r.Post("/definition", s.handleDefinition)
		r.Post("/references", s.handleReferences)
		r.Post("/hover", s.handleHover)
		r.Post("/symbols", s.handleSymbols)
		r.Post("/diagnostics", s.handleDiagnostics)
		r.Post("/rename-symbol", s.handleRenameSymbol)
		r.Post("/execute", s.handleExecute)
		r.Get("/git/status", s.handleGitStatus)
		r.Post("/git/log", s.handleGitLog)
		r.Post("/git/stage", s.handleGitStage)
		r.Post("/git/commit", s.handleGitCommit)
		r.Post("/git/tag", s.handleGitTag)
		r.Post("/git/reset", s.handleGitReset)
		r.Post("/git/diff", s.handleGitDiff)
	})

	r.Get("/v1/events", s.handleEvents)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

type errorBody struct {
	Error string `json:"error"`
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// handleEvents upgrades to a WebSocket and streams every broadcast event
// as a JSON text frame until the client disconnects. No compression is
// negotiated, matching the pattern already used for coder/websocket
// elsewhere in the corpus this package is grounded on.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Error("rpcserver: ws accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	sub := s.hub.subscribe()
	defer s.hub.unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "client context done")
			return
		case payload, ok := <-sub:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "server closing")
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
		}
	}
}
