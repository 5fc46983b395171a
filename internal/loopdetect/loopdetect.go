// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package loopdetect implements the agent.LoopDetector used to catch a
// model stuck repeating the same tool call, or chanting the same text,
// across consecutive turns.
package loopdetect

import (
	"fmt"
	"strings"

	"github.com/forge-ide/forge-agent/internal/agent"
)

const (
	// ToolRepetitionWindow is the number of most recent tool calls
	// inspected for a repeated (name, args) signature.
	ToolRepetitionWindow = 6

	// ToolRepetitionThreshold is how many times a single signature must
	// recur within the window before it is flagged a loop.
	ToolRepetitionThreshold = 4

	// ContentChantWindow is the number of most recent assistant text
	// messages inspected for a repeated substring.
	ContentChantWindow = 6

	// ContentChantMinLen is the minimum substring length considered when
	// looking for chanted content.
	ContentChantMinLen = 24

	// ContentChantThreshold is how many of the inspected messages must
	// share a ContentChantMinLen-or-longer substring before it is flagged.
	ContentChantThreshold = 3
)

// Detector implements agent.LoopDetector against a sliding window of the
// session's recent tool calls and assistant text.
type Detector struct {
	toolWindow    int
	toolThreshold int
	chantWindow   int
	chantMinLen   int
	chantThresh   int
}

// New builds a Detector using the package defaults.
func New() *Detector {
	return &Detector{
		toolWindow:    ToolRepetitionWindow,
		toolThreshold: ToolRepetitionThreshold,
		chantWindow:   ContentChantWindow,
		chantMinLen:   ContentChantMinLen,
		chantThresh:   ContentChantThreshold,
	}
}

// Check implements agent.LoopDetector.
func (d *Detector) Check(session *agent.Session) (bool, string) {
	messages := session.Snapshot()

	if isLoop, reason := d.checkToolRepetition(messages); isLoop {
		return true, reason
	}
	if isLoop, reason := d.checkContentChant(messages); isLoop {
		return true, reason
	}
	return false, ""
}

// checkToolRepetition looks at the last toolWindow tool calls (across all
// assistant messages) and flags if any single (name, canonical-args)
// signature recurs at least toolThreshold times.
func (d *Detector) checkToolRepetition(messages []agent.Message) (bool, string) {
	var calls []agent.ToolCall
	for _, m := range messages {
		if m.Role == agent.RoleAssistant {
			calls = append(calls, m.ToolCalls...)
		}
	}
	if len(calls) > d.toolWindow {
		calls = calls[len(calls)-d.toolWindow:]
	}

	counts := make(map[string]int, len(calls))
	for _, c := range calls {
		sig := c.Name + "|" + canonicalArgs(c.Arguments)
		counts[sig]++
	}
	for sig, n := range counts {
		if n >= d.toolThreshold {
			name := sig
			if idx := strings.IndexByte(sig, '|'); idx >= 0 {
				name = sig[:idx]
			}
			return true, fmt.Sprintf("tool %q called %d times with identical arguments in the last %d calls", name, n, d.toolWindow)
		}
	}
	return false, ""
}

// checkContentChant looks at the last chantWindow assistant text messages
// and flags if a substring of at least chantMinLen characters recurs in at
// least chantThresh of them.
func (d *Detector) checkContentChant(messages []agent.Message) (bool, string) {
	var texts []string
	for _, m := range messages {
		if m.Role == agent.RoleAssistant && m.Content != "" {
			texts = append(texts, m.Content)
		}
	}
	if len(texts) > d.chantWindow {
		texts = texts[len(texts)-d.chantWindow:]
	}
	if len(texts) < d.chantThresh {
		return false, ""
	}

	// Use the shortest text as the candidate source of substrings; any
	// chanted phrase must appear in every text it's chanted across, so it
	// must appear in the shortest one too.
	shortest := texts[0]
	for _, t := range texts[1:] {
		if len(t) < len(shortest) {
			shortest = t
		}
	}
	if len(shortest) < d.chantMinLen {
		return false, ""
	}

	for start := 0; start+d.chantMinLen <= len(shortest); start++ {
		candidate := shortest[start : start+d.chantMinLen]
		count := 0
		for _, t := range texts {
			if strings.Contains(t, candidate) {
				count++
			}
		}
		if count >= d.chantThresh {
			return true, fmt.Sprintf("assistant repeated the phrase %q across %d of the last %d responses", candidate, count, len(texts))
		}
	}
	return false, ""
}

// canonicalArgs produces a deterministic string for a tool-call argument
// map so that identical argument sets compare equal regardless of Go's
// randomized map iteration order.
func canonicalArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	// simple insertion sort: argument maps are small (tool parameter counts)
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, args[k])
	}
	return b.String()
}
