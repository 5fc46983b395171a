// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package toolregistry

import (
	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/editengine"
	"github.com/forge-ide/forge-agent/internal/embedindex"
	"github.com/forge-ide/forge-agent/internal/memory"
)

// Deps bundles every collaborator the full tool catalogue can be built
// from. index and mem may be nil (codebase_search and save_memory report
// themselves unavailable rather than the whole registry failing to build).
type Deps struct {
	Bridge  bridge.Bridge
	Engine  *editengine.Engine
	Procs   *bridge.ProcessSupervisor
	Index   *embedindex.Index
	Memory  *memory.Store
	SaveDir string
}

// RegisterAll builds a Registry carrying spec.md §4.5's full minimum
// catalogue plus the supplemental lint tool (SPEC_FULL.md §4.5), wiring
// every Def group this package defines. Callers needing a narrower
// catalogue (e.g. a test harness) can call the per-group *Defs functions
// directly instead.
func RegisterAll(deps Deps) *Registry {
	r := New(deps.SaveDir)
	for _, group := range [][]Def{
		FileIODefs(deps.Bridge, deps.Engine),
		SearchDefs(deps.Bridge, deps.Index),
		CodeIntelDefs(deps.Bridge),
		ShellDefs(deps.Bridge, deps.Procs),
		WebDefs(),
		AgentControlDefs(deps.Memory),
	} {
		for _, def := range group {
			r.Register(def)
		}
	}
	return r
}
