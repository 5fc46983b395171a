package agent

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"sync"
	"time"
)

// traceEvent is one line of the JSONL trace file.
type traceEvent struct {
	Time      time.Time `json:"time"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	ToolName  string    `json:"tool_name,omitempty"`
	ToolCall  string    `json:"tool_call_id,omitempty"`
	Success   *bool     `json:"success,omitempty"`
	Text      string    `json:"text,omitempty"`
}

// JSONLTraceHooks is the built-in ambient Hooks implementation: it appends
// one JSON object per event to an io.Writer (typically a per-session file
// under the data directory), for offline debugging and replay.
type JSONLTraceHooks struct {
	NoopHooks

	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLTraceHooks wraps w in a thread-safe streaming JSON encoder.
func NewJSONLTraceHooks(w io.Writer) *JSONLTraceHooks {
	return &JSONLTraceHooks{enc: json.NewEncoder(w)}
}

func (h *JSONLTraceHooks) write(ev traceEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Encoding errors are not actionable here: the trace is a best-effort
	// diagnostic sink, never load-bearing for agent correctness.
	_ = h.enc.Encode(ev)
}

func (h *JSONLTraceHooks) OnCompletionCall(_ context.Context, s *Session, messages []Message) {
	h.write(traceEvent{Time: time.Now(), SessionID: s.ID, Kind: "completion_call", Text: formatMessageCount(messages)})
}

func (h *JSONLTraceHooks) OnStreamCompletionResponseFinish(_ context.Context, s *Session, msg Message) {
	h.write(traceEvent{Time: time.Now(), SessionID: s.ID, Kind: "completion_finish", Text: msg.Content})
}

func (h *JSONLTraceHooks) OnToolCall(_ context.Context, s *Session, call ToolCall) {
	h.write(traceEvent{Time: time.Now(), SessionID: s.ID, Kind: "tool_call", ToolName: call.Name, ToolCall: call.ID})
}

func (h *JSONLTraceHooks) OnToolResult(_ context.Context, s *Session, result ToolResult) {
	success := result.Success
	h.write(traceEvent{Time: time.Now(), SessionID: s.ID, Kind: "tool_result", ToolCall: result.ToolCallID, Success: &success})
}

func (h *JSONLTraceHooks) OnTextDelta(_ context.Context, s *Session, delta string) {
	h.write(traceEvent{Time: time.Now(), SessionID: s.ID, Kind: "text_delta", Text: delta})
}

func (h *JSONLTraceHooks) OnReasoningDelta(_ context.Context, s *Session, delta string) {
	h.write(traceEvent{Time: time.Now(), SessionID: s.ID, Kind: "reasoning_delta", Text: delta})
}

func formatMessageCount(messages []Message) string {
	return "messages=" + strconv.Itoa(len(messages))
}
