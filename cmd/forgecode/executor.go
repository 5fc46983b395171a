// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"context"
	"fmt"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/forge-ide/forge-agent/internal/bridge"
	"github.com/forge-ide/forge-agent/internal/diffproto"
	"github.com/forge-ide/forge-agent/internal/toolregistry"
)

// diffExecutor is the host-side half of the diff-preview protocol
// (spec.md §3): toolregistry.Registry.Execute never writes a file itself,
// it only attaches a FileEdit to the ToolResult for a host to resolve. This
// wraps the registry, intercepting every result that carries an Edit,
// running it through the interactive per-hunk review, and writing
// BuildResolvedContent back to disk via the bridge once at least one hunk
// is accepted.
type diffExecutor struct {
	registry   *toolregistry.Registry
	bridge     bridge.Bridge
	autoAccept bool
}

func newDiffExecutor(registry *toolregistry.Registry, b bridge.Bridge, autoAccept bool) *diffExecutor {
	return &diffExecutor{registry: registry, bridge: b, autoAccept: autoAccept}
}

func (e *diffExecutor) Execute(ctx context.Context, session *agent.Session, call agent.ToolCall) agent.ToolResult {
	result := e.registry.Execute(ctx, session, call)
	if result.Edit == nil {
		return result
	}

	edit := result.Edit
	pd := diffproto.NewPendingDiff(call.ID, edit.Path, edit.OldContent, edit.NewContent)
	if err := reviewDiff(pd, e.autoAccept); err != nil {
		return agent.ToolResult{ToolCallID: call.ID, Success: false, Output: fmt.Sprintf("diff review failed: %v", err)}
	}
	// Hunks the review left Pending are resolved as Rejected before any write.
	pd.RejectAll()

	if !pd.HasAcceptedHunk() {
		return agent.ToolResult{
			ToolCallID: call.ID,
			Success:    true,
			Output:     fmt.Sprintf("%s: every hunk rejected, no changes written", edit.Path),
		}
	}

	resolved := pd.BuildResolvedContent()
	if err := e.bridge.WriteFile(ctx, edit.Path, resolved); err != nil {
		return agent.ToolResult{ToolCallID: call.ID, Success: false, Output: fmt.Sprintf("write %s: %v", edit.Path, err)}
	}

	status := "some hunks rejected"
	if pd.IsFullyResolved() {
		allAccepted := true
		for _, h := range pd.Hunks() {
			if h.Status != diffproto.Accepted {
				allAccepted = false
				break
			}
		}
		if allAccepted {
			status = "all hunks accepted"
		}
	}
	return agent.ToolResult{
		ToolCallID: call.ID,
		Success:    true,
		Output:     fmt.Sprintf("%s: written (%s)", edit.Path, status),
	}
}
