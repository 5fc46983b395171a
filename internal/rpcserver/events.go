// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package rpcserver

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/forge-ide/forge-agent/internal/agent"
)

// eventHub fans a single stream of JSON-encoded events out to every
// currently-connected /v1/events WebSocket subscriber. Slow subscribers
// are dropped rather than allowed to block a broadcast — this mirrors
// the agent loop's own "hooks must never stall a turn" expectation.
type eventHub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[chan []byte]struct{})}
}

func (h *eventHub) subscribe() chan []byte {
	ch := make(chan []byte, 32)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *eventHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *eventHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- payload:
		default:
			// subscriber too far behind; drop this event for it rather than block.
		}
	}
}

// runEvent is the wire shape written to /v1/events, one JSON object per
// line-equivalent WebSocket text frame. Its field names are its own and
// differ from the records agent.JSONLTraceHooks writes.
type runEvent struct {
	Time   time.Time `json:"time"`
	Kind   string    `json:"kind"`
	ToolID string    `json:"tool_id,omitempty"`
	Tool   string    `json:"tool,omitempty"`
	Text   string    `json:"text,omitempty"`
	Model  string    `json:"model,omitempty"`
}

// EventHooks is an agent.Hooks implementation that broadcasts every
// OnToolCall/OnToolResult/OnCompletionCall event to the hub's WebSocket
// subscribers. Install it alongside agent.JSONLTraceHooks and
// agent.OtelHooks via agent.MultiHooks when running under rpcserver, the
// same composition cmd/forgecode already uses for file tracing and OTel.
type EventHooks struct {
	agent.NoopHooks
	hub *eventHub
}

func (h *EventHooks) OnCompletionCall(ctx context.Context, session *agent.Session, messages []agent.Message) {
	h.emit(runEvent{Time: time.Now(), Kind: "completion_call"})
}

func (h *EventHooks) OnToolCall(ctx context.Context, session *agent.Session, call agent.ToolCall) {
	h.emit(runEvent{Time: time.Now(), Kind: "tool_call", ToolID: call.ID, Tool: call.Name})
}

func (h *EventHooks) OnToolResult(ctx context.Context, session *agent.Session, result agent.ToolResult) {
	h.emit(runEvent{Time: time.Now(), Kind: "tool_result", ToolID: result.ToolCallID})
}

func (h *EventHooks) emit(ev runEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.hub.broadcast(payload)
}
