// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agent implements the provider-agnostic, tool-using conversational
// agent: the shared Message/Session data model, the turn-bounded loop, and
// the hook surface the rest of the module plugs into.
package agent

import (
	"fmt"
	"sync"
	"time"
)

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is an invocation the model asked the agent to perform.
//
// ReasoningToken carries a provider-opaque value (e.g. Gemini's
// thoughtSignature) that must be echoed back verbatim on the next turn for
// function-calling to continue; adapters that don't need it ignore it.
type ToolCall struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Arguments      map[string]any `json:"arguments"`
	ReasoningToken string         `json:"reasoning_token,omitempty"`
}

// FileEdit describes a mutation a tool produced, prior to disk write.
// Files are never written directly by a tool handler — every FileEdit is
// handed to the DiffProtocol and only reaches disk once every hunk is
// resolved with at least one Accepted (spec.md §3 invariants).
type FileEdit struct {
	Path        string `json:"path"`
	OldContent  string `json:"old_content"`
	NewContent  string `json:"new_content"`
}

// ToolResult is the outcome of dispatching a ToolCall.
type ToolResult struct {
	ToolCallID string    `json:"tool_call_id"`
	Success    bool      `json:"success"`
	Output     string    `json:"output"`
	Edit       *FileEdit `json:"edit,omitempty"`
}

// Message is one turn in the conversation. Assistant messages carrying tool
// calls are always immediately followed (after execution) by a Role=tool
// message carrying the correlated results, in the same order.
type Message struct {
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	ToolCalls []ToolCall   `json:"tool_calls,omitempty"`
	Results   []ToolResult `json:"tool_results,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Session is a persisted conversation against one workspace.
//
// Provider and Model are immutable after creation (spec.md §3 invariant);
// callers must not mutate them directly — there is deliberately no setter.
type Session struct {
	mu sync.Mutex

	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Workspace string    `json:"workdir"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`

	// loadedMemoryFiles tracks JIT subdirectory memory already injected
	// this session (spec.md §4.4).
	loadedMemoryFiles map[string]struct{}

	// turns/emptyResponses track the turn-bounded loop ceilings (spec.md §4.9).
	turns          int
	emptyResponses int

	cancelled bool
	planMode  bool
}

// NewSession creates a fresh session keyed by a timestamp-derived id.
func NewSession(workspace, provider, model string) *Session {
	now := time.Now()
	return &Session{
		ID:                fmt.Sprintf("%d", now.UnixNano()),
		CreatedAt:         now,
		UpdatedAt:         now,
		Workspace:         workspace,
		Provider:          provider,
		Model:             model,
		loadedMemoryFiles: make(map[string]struct{}),
	}
}

// Restore rebuilds a Session from persisted fields (session.Store's on-disk
// record). Transient per-run state (turn counters, empty-response streak,
// JIT memory cache, cancellation) always starts fresh, since it only ever
// made sense within the Run call that produced it.
func Restore(id string, createdAt, updatedAt time.Time, workspace, provider, model, title string, messages []Message) *Session {
	return &Session{
		ID:                id,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		Workspace:         workspace,
		Provider:          provider,
		Model:             model,
		Title:             title,
		Messages:          messages,
		loadedMemoryFiles: make(map[string]struct{}),
	}
}

// AppendMessage appends a message and bumps UpdatedAt. Safe for concurrent use.
func (s *Session) AppendMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	s.Messages = append(s.Messages, m)
	s.UpdatedAt = time.Now()
	if s.Title == "" && m.Role == RoleUser {
		s.Title = titleFromFirstLine(m.Content)
	}
}

// MarkMemoryLoaded records that a JIT subdirectory memory file has been
// injected for this session, so it is not re-discovered on every tool call.
func (s *Session) MarkMemoryLoaded(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadedMemoryFiles[path] = struct{}{}
}

// HasLoadedMemory reports whether path has already been injected.
func (s *Session) HasLoadedMemory(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loadedMemoryFiles[path]
	return ok
}

// IncrementTurn bumps the turn counter and returns the new value.
func (s *Session) IncrementTurn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns++
	return s.turns
}

// Turns returns the number of turns executed so far.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// NoteAssistantResponse tracks consecutive empty assistant responses used by
// the loop's empty-response ceiling (spec.md §4.9 step 7).
func (s *Session) NoteAssistantResponse(empty bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if empty {
		s.emptyResponses++
	} else {
		s.emptyResponses = 0
	}
	return s.emptyResponses
}

// SetPlanMode toggles plan/act mode (spec.md §4.2): in plan mode, mutating
// tools are hidden from the provider's catalogue and rejected at dispatch
// if invoked anyway.
func (s *Session) SetPlanMode(planMode bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planMode = planMode
}

// PlanMode reports the current plan/act mode.
func (s *Session) PlanMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planMode
}

// Cancel flips the session's cancellation flag (spec.md §5).
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
}

// Cancelled reports whether Cancel has been called.
func (s *Session) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Snapshot returns a deep-enough copy of the message history for read-only
// use (prompt assembly, persistence) without holding the session lock.
func (s *Session) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

func titleFromFirstLine(content string) string {
	line := content
	for i, r := range content {
		if r == '\n' {
			line = content[:i]
			break
		}
	}
	const maxLen = 60
	if len(line) > maxLen {
		return line[:maxLen]
	}
	return line
}
