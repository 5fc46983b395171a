// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/contextcache"
	"github.com/forge-ide/forge-agent/internal/mcpserver"
	"github.com/forge-ide/forge-agent/internal/rpcserver"
	"github.com/forge-ide/forge-agent/internal/toolregistry"
)

// runServeRPC hosts the workspace over internal/rpcserver instead of
// running a single prompt: an external IDE process can then point its own
// --bridge=rpc agent (or this binary's) at addr and drive the same
// OSBridge this process holds locally. Blocks until the process receives
// SIGINT/SIGTERM.
func runServeRPC(addr, workspace string) error {
	absWorkspace, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("bad workspace path %q: %w", workspace, err)
	}

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	cache, err := contextcache.Open(filepath.Join(dataDir, "contextcache.db"))
	if err != nil {
		return fmt.Errorf("open context cache: %w", err)
	}
	defer cache.Close()

	osBridge := bridge.NewOSBridge(absWorkspace)
	srv := rpcserver.New(osBridge, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.WatchWorkspace(ctx, cache); err != nil {
		fmt.Fprintln(os.Stderr, styleWarning.Render(fmt.Sprintf("[warn] workspace watcher disabled: %v", err)))
	}

	fmt.Fprintln(os.Stderr, styleContext.Render(fmt.Sprintf(
		"[rpcserver] listening on %s, workspace=%s (metrics at /metrics)", addr, absWorkspace)))

	httpSrv := &http.Server{Addr: addr, Handler: srv.Router()}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Close()
	}()
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("rpcserver: %w", err)
	}
	return nil
}

// runServeMCP exports the tool catalogue as an MCP server over stdio and
// blocks until the client disconnects or stdin closes.
func runServeMCP(workspace string) error {
	absWorkspace, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("bad workspace path %q: %w", workspace, err)
	}

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}

	osBridge := bridge.NewOSBridge(absWorkspace)
	procs := bridge.NewProcessSupervisor()
	registry := toolregistry.RegisterAll(toolregistry.Deps{
		Bridge:  osBridge,
		Procs:   procs,
		SaveDir: filepath.Join(dataDir, "tool-output"),
	})

	fmt.Fprintln(os.Stderr, styleContext.Render(fmt.Sprintf("[mcpserver] exporting %d tool(s) over stdio", len(registry.Names()))))
	return mcpserver.ServeStdio(mcpserver.New(registry, absWorkspace))
}
