// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/contextcache"
	"github.com/forge-ide/forge-agent/internal/editengine"
	"github.com/forge-ide/forge-agent/internal/embedindex"
	"github.com/forge-ide/forge-agent/internal/loopdetect"
	"github.com/forge-ide/forge-agent/internal/memory"
	"github.com/forge-ide/forge-agent/internal/promptassembler"
	"github.com/forge-ide/forge-agent/internal/provider"
	"github.com/forge-ide/forge-agent/internal/session"
	"github.com/forge-ide/forge-agent/internal/toolregistry"
)

// stack bundles every collaborator one forgecode invocation needs, built
// in one place by buildStack for run.go.
type stack struct {
	bridge      bridge.Bridge
	cache       *contextcache.Cache
	memoryStore *memory.Store
	embedStore  *embedindex.Store
	index       *embedindex.Index
	registry    *toolregistry.Registry
	assembler   *promptassembler.Assembler
	sessions    *session.Store
	detector    *loopdetect.Detector
	dataDir     string

	close func()
}

// buildStack resolves workspace to an absolute path and wires the full
// dependency graph: bridge, caches, tool catalogue, prompt assembler, and
// session store. Callers must defer s.close().
func buildStack(ctx context.Context, workspace string, fam provider.Family, apiKey, model, baseURL string) (*stack, agent.Provider, error) {
	absWorkspace, err := filepath.Abs(workspace)
	if err != nil {
		return nil, nil, fmt.Errorf("bad workspace path %q: %w", workspace, err)
	}
	if info, err := os.Stat(absWorkspace); err != nil || !info.IsDir() {
		return nil, nil, fmt.Errorf("workspace %q is not a directory", absWorkspace)
	}

	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, nil, err
	}

	var activeBridge bridge.Bridge
	switch flagBridge {
	case "", "os":
		activeBridge = bridge.NewOSBridge(absWorkspace)
	case "rpc":
		activeBridge = bridge.NewRPCBridge(flagRPCAddr, absWorkspace)
	default:
		return nil, nil, fmt.Errorf("unknown --bridge %q (want os or rpc)", flagBridge)
	}
	procs := bridge.NewProcessSupervisor()

	cache, err := contextcache.Open(filepath.Join(dataDir, "contextcache.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open context cache: %w", err)
	}

	embedStore, err := embedindex.Open(filepath.Join(dataDir, "embedindex.db"))
	if err != nil {
		cache.Close()
		return nil, nil, fmt.Errorf("open embedding index: %w", err)
	}
	// forgecode's flag surface has no dedicated embedding-provider flag
	// (spec.md §6 names only --provider/--model/--api-key for chat
	// completion), so codebase_search always runs on the offline
	// LocalEmbedder rather than spending the chat provider's key on a
	// second, unrelated API surface.
	index := embedindex.NewIndex(embedStore, embedindex.NewLocalEmbedder(0), absWorkspace)

	memoryStore := memory.NewStore(dataDir, absWorkspace)

	sessionStore, err := session.NewStore(dataDir, "forgecode")
	if err != nil {
		embedStore.Close()
		cache.Close()
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}

	llmProvider, err := provider.New(ctx, provider.Config{Family: fam, APIKey: apiKey, Model: model, BaseURL: baseURL})
	if err != nil {
		embedStore.Close()
		cache.Close()
		return nil, nil, fmt.Errorf("build provider: %w", err)
	}

	fixer := editengine.NewFixer(newFixerClient(fam, apiKey, baseURL))
	engine := editengine.NewEngine(fixer)

	registry := toolregistry.RegisterAll(toolregistry.Deps{
		Bridge:  activeBridge,
		Engine:  engine,
		Procs:   procs,
		Index:   index,
		Memory:  memoryStore,
		SaveDir: filepath.Join(dataDir, "tool-output"),
	})

	assembler := promptassembler.New(activeBridge, cache, memoryStore)

	s := &stack{
		bridge:      activeBridge,
		cache:       cache,
		memoryStore: memoryStore,
		embedStore:  embedStore,
		index:       index,
		registry:    registry,
		assembler:   assembler,
		sessions:    sessionStore,
		detector:    loopdetect.New(),
		dataDir:     dataDir,
		close: func() {
			embedStore.Close()
			cache.Close()
		},
	}
	return s, llmProvider, nil
}

// resolveDataDir returns (and creates) the per-user directory forgecode
// persists sessions, caches, and traces under. This is pure OS-path
// plumbing with no domain concern behind it, so it stays on the standard
// library rather than reaching for a directories-style crate.
func resolveDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".forgecode")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir %q: %w", dir, err)
	}
	return dir, nil
}

// providerFamily maps the CLI's single-letter --provider value (spec.md
// §6) to the internal provider.Family.
func providerFamily(code string) (provider.Family, error) {
	switch code {
	case "g", "google", "gemini":
		return provider.FamilyGoogle, nil
	case "a", "anthropic":
		return provider.FamilyAnthropic, nil
	case "o", "openai":
		return provider.FamilyOpenAI, nil
	default:
		return "", fmt.Errorf("unknown --provider %q (want g, a, or o)", code)
	}
}

// resolveAPIKey prefers an explicit --api-key flag, falling back to the
// provider family's conventional environment variable.
func resolveAPIKey(flagKey string, fam provider.Family) (string, error) {
	if flagKey != "" {
		return flagKey, nil
	}
	envVar := envVarFor(fam)
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no API key: pass --api-key or set %s", envVar)
}

func envVarFor(fam provider.Family) string {
	switch fam {
	case provider.FamilyGoogle:
		return "GEMINI_API_KEY"
	case provider.FamilyAnthropic:
		return "ANTHROPIC_API_KEY"
	case provider.FamilyOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "LLM_API_KEY"
	}
}
