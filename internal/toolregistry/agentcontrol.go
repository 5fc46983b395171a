// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package toolregistry

import (
	"context"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/forge-ide/forge-agent/internal/memory"
)

// toolAttemptCompletion and toolAskFollowupQuestion name the two terminal
// control tools (spec.md §4.5). Every provider adapter (internal/provider)
// intercepts these two tool names while parsing its response and returns
// early with a Message carrying no ToolCalls, so Registry.Execute never
// actually dispatches them in normal operation; their Def entries exist so
// Specs() still advertises them to the model and so an out-of-process
// caller (the MCP export, C15) has a well-defined handler to fall back on.
const (
	toolAttemptCompletion   = "attempt_completion"
	toolAskFollowupQuestion = "ask_followup_question"
	toolThink               = "think"
	toolPlanActRespond      = "plan_act_respond"
	toolFocusChain          = "focus_chain"
	toolSaveMemory          = "save_memory"
)

// AgentControlDefs returns spec.md §4.5's "Agent control" group.
func AgentControlDefs(mem *memory.Store) []Def {
	return []Def{
		attemptCompletionDef(),
		askFollowupQuestionDef(),
		thinkDef(),
		planActRespondDef(),
		focusChainDef(),
		saveMemoryDef(mem),
	}
}

func attemptCompletionDef() Def {
	return Def{
		Name:        toolAttemptCompletion,
		Description: "Signal that the requested task is complete, with a summary of what was done. Ends the turn.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"result": map[string]any{"type": "string"}},
			"required":   []string{"result"},
		},
		IsMutating: false,
		Category:   CategoryTerminalControl,
		OutputKind: KindDefault,
		Handler: func(_ context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			return agent.ToolResult{Success: true, Output: argStringOr(args, "result", "Done")}
		},
	}
}

func askFollowupQuestionDef() Def {
	return Def{
		Name:        toolAskFollowupQuestion,
		Description: "Ask the user a clarifying question before continuing. Ends the turn until the user replies.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"question": map[string]any{"type": "string"}},
			"required":   []string{"question"},
		},
		IsMutating: false,
		Category:   CategoryTerminalControl,
		OutputKind: KindDefault,
		Handler: func(_ context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			return agent.ToolResult{Success: true, Output: argStringOr(args, "question", "")}
		},
	}
}

// thinkDef is a deliberate no-op: the tool exists so the model has a place
// to put private reasoning between steps without it being treated as a
// file or shell action, per spec.md §4.5.
func thinkDef() Def {
	return Def{
		Name:        toolThink,
		Description: "Record a private reasoning note. Has no effect on the workspace; use it to plan before acting.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"thought": map[string]any{"type": "string"}},
			"required":   []string{"thought"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(_ context.Context, _ map[string]any, _ string, _ bool) agent.ToolResult {
			return agent.ToolResult{Success: true, Output: "noted"}
		},
	}
}

// planActRespondDef validates the requested mode; Registry.Execute is what
// actually flips Session.PlanMode once this handler reports success, since
// Handler has no Session reference of its own.
func planActRespondDef() Def {
	return Def{
		Name:        toolPlanActRespond,
		Description: "Switch between plan mode (read-only, for proposing an approach) and act mode (mutating tools enabled).",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"mode": map[string]any{"type": "string", "enum": []string{"plan", "act"}},
			},
			"required": []string{"mode"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(_ context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			mode := argStringOr(args, "mode", "")
			if mode != "plan" && mode != "act" {
				return agent.ToolResult{Success: false, Output: `mode must be "plan" or "act"`}
			}
			return agent.ToolResult{Success: true, Output: "switched to " + mode + " mode"}
		},
	}
}

func planActRequestedMode(args map[string]any) bool {
	return argStringOr(args, "mode", "") == "plan"
}

// focusChainDef is declared for catalogue completeness but not backed by
// real behavior: the teacher's source material never settles what a
// focus-chain update should do to session state, so it's left a
// documented no-op rather than guessed at (spec.md §9's open question).
func focusChainDef() Def {
	return Def{
		Name:        toolFocusChain,
		Description: "Update the current focus chain (task checklist). Not yet implemented; accepted and ignored.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"items": map[string]any{"type": "array", "items": map[string]any{"type": "string"}}},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(_ context.Context, _ map[string]any, _ string, _ bool) agent.ToolResult {
			return agent.ToolResult{Success: true, Output: "focus_chain is not yet implemented; ignored"}
		},
	}
}

func saveMemoryDef(mem *memory.Store) Def {
	return Def{
		Name:        toolSaveMemory,
		Description: "Save a durable fact learned this session to project memory for future turns to see.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"fact": map[string]any{"type": "string"},
				"tier": map[string]any{"type": "string", "enum": []string{"global", "workspace"}},
			},
			"required": []string{"fact"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(_ context.Context, args map[string]any, workspace string, _ bool) agent.ToolResult {
			if mem == nil {
				return agent.ToolResult{Success: false, Output: "save_memory is unavailable: no memory store configured"}
			}
			fact, err := requireString(args, "fact")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			tier := memory.TierWorkspace
			if argStringOr(args, "tier", "workspace") == "global" {
				tier = memory.TierGlobal
			}
			if err := mem.SaveMemory(tier, workspace, fact); err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: "saved"}
		},
	}
}
