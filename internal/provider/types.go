// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package provider

import "github.com/forge-ide/forge-agent/internal/agent"

// Agent-control tool names that short-circuit the turn loop instead of
// being dispatched through the ToolExecutor (spec.md §4.5). Every adapter
// recognizes these while parsing a response and folds them into the
// returned Message's Content with no ToolCalls, which is exactly what
// makes agent.Loop.Run treat them as a final assistant message.
const (
	toolAttemptCompletion   = "attempt_completion"
	toolAskFollowupQuestion = "ask_followup_question"
)

// splitSystemPrompt pulls the leading system message (if any) out of a
// message slice, since every wire format sends it through a dedicated
// channel (a top-level "system" field, or a system_instruction block)
// rather than as a regular turn in the conversation.
func splitSystemPrompt(messages []agent.Message) (systemPrompt string, rest []agent.Message) {
	for i, m := range messages {
		if m.Role == agent.RoleSystem {
			systemPrompt = m.Content
			rest = make([]agent.Message, 0, len(messages)-1)
			rest = append(rest, messages[:i]...)
			rest = append(rest, messages[i+1:]...)
			return systemPrompt, rest
		}
	}
	return "", messages
}

// completionArg/questionArg pull the conventional "result"/"question"
// string argument a model places in an attempt_completion or
// ask_followup_question call, falling back the same way every
// original_source adapter does ("Done" / "").
func completionArg(args map[string]any) string {
	if v, ok := args["result"].(string); ok {
		return v
	}
	return "Done"
}

func questionArg(args map[string]any) string {
	if v, ok := args["question"].(string); ok {
		return v
	}
	return ""
}
