// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package toolregistry owns the declarative tool catalogue, dispatch, and
// output masking described in spec.md §4.5: each tool is named,
// described, schema'd, flagged mutating-or-not, and backed by a handler
// that never returns a Go error — failures are encoded into
// agent.ToolResult so the model can see and react to them.
package toolregistry

import (
	"context"
	"fmt"
	"sync"

	"github.com/forge-ide/forge-agent/internal/agent"
)

// Category classifies a tool for the host's approval policy
// (read-only tools can auto-run; write/shell tools are typically
// prompted; terminal-control tools end the turn rather than dispatch).
type Category int

const (
	CategoryReadOnly Category = iota
	CategoryWrite
	CategoryShell
	CategoryTerminalControl
)

// Handler executes one tool invocation. workspace is the resolved
// absolute workspace root; planMode is informational here (Registry
// already enforces the plan-mode veto before calling Handler) so most
// handlers ignore it.
type Handler func(ctx context.Context, args map[string]any, workspace string, planMode bool) agent.ToolResult

// Def is one catalogue entry.
type Def struct {
	Name        string
	Description string
	Parameters  map[string]any
	IsMutating  bool
	Category    Category
	OutputKind  OutputKind
	Handler     Handler
}

// Registry is the tool catalogue plus dispatcher. It implements
// agent.ToolExecutor.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]*Def
	saveDir string // output-masking overflow directory; "" disables disk save
}

// New builds an empty Registry. saveDir is where over-threshold tool
// output is persisted by MaskOutput; pass "" to disable.
func New(saveDir string) *Registry {
	return &Registry{tools: make(map[string]*Def), saveDir: saveDir}
}

// Register adds or replaces a catalogue entry.
func (r *Registry) Register(def Def) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[def.Name] = &def
}

// Lookup returns the catalogue entry for name, if registered.
func (r *Registry) Lookup(name string) (*Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	return d, ok
}

// Specs returns the provider-facing tool catalogue. When planMode is
// true, mutating tools are omitted entirely (spec.md §4.5: "in plan mode,
// mutating tools are absent from the catalogue returned to the model").
func (r *Registry) Specs(planMode bool) []agent.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]agent.ToolSpec, 0, len(r.tools))
	for _, d := range r.tools {
		if planMode && d.IsMutating {
			continue
		}
		specs = append(specs, agent.ToolSpec{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		})
	}
	return specs
}

// Execute implements agent.ToolExecutor: it looks up the tool, rejects
// unknown names and (in plan mode) mutating ones, runs the handler, and
// masks its output before returning.
func (r *Registry) Execute(ctx context.Context, session *agent.Session, call agent.ToolCall) agent.ToolResult {
	def, ok := r.Lookup(call.Name)
	if !ok {
		return agent.ToolResult{
			ToolCallID: call.ID,
			Success:    false,
			Output:     fmt.Sprintf("unknown tool %q", call.Name),
		}
	}

	planMode := session.PlanMode()
	if planMode && def.IsMutating {
		return agent.ToolResult{
			ToolCallID: call.ID,
			Success:    false,
			Output:     fmt.Sprintf("Cannot modify files in plan mode: %s is disabled until plan mode is exited.", call.Name),
		}
	}

	result := def.Handler(ctx, call.Arguments, session.Workspace, planMode)
	result.ToolCallID = call.ID

	// plan_act_respond is the one tool that mutates session state rather
	// than the workspace: the handler just validates the requested mode,
	// and this is where it actually takes effect, since Handler has no
	// reference to the Session it's running under.
	if def.Name == toolPlanActRespond && result.Success {
		session.SetPlanMode(planActRequestedMode(call.Arguments))
	}

	masked, err := MaskOutput(def.OutputKind, result.Output, r.saveDir)
	if err != nil {
		return agent.ToolResult{ToolCallID: call.ID, Success: false, Output: fmt.Sprintf("output masking failed: %v", err)}
	}
	result.Output = masked
	return result
}

// Names returns every registered tool name, for diagnostics and the MCP
// export (C15).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}
