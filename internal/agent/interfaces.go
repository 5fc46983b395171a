package agent

import "context"

// ToolSpec is the provider-facing declaration of a callable tool: name,
// human description, and a JSON Schema object describing its parameters.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Provider is implemented by each wire-format adapter (OpenAI-compatible,
// Anthropic-style, Google-style). Complete sends the full message history
// plus the tool catalogue and returns the model's next message, which may
// carry ToolCalls instead of (or alongside) Content.
type Provider interface {
	Complete(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error)
}

// ToolExecutor dispatches a single ToolCall against the tool registry and
// returns its ToolResult. Implementations never return an error here:
// failures are encoded into ToolResult.Success/Output so the model can see
// and react to them.
type ToolExecutor interface {
	Execute(ctx context.Context, session *Session, call ToolCall) ToolResult
}

// LoopDetector inspects the session's recent history for repetition and
// reports whether the loop should stop, with a human-readable reason.
type LoopDetector interface {
	Check(session *Session) (isLoop bool, reason string)
}

// Hooks is the StreamingPromptHook extension surface: six points the loop
// calls into, used for tracing, observability, and UI streaming. Embed
// NoopHooks to implement only the points you need.
type Hooks interface {
	OnCompletionCall(ctx context.Context, session *Session, messages []Message)
	OnStreamCompletionResponseFinish(ctx context.Context, session *Session, msg Message)
	OnToolCall(ctx context.Context, session *Session, call ToolCall)
	OnToolResult(ctx context.Context, session *Session, result ToolResult)
	OnTextDelta(ctx context.Context, session *Session, delta string)
	OnReasoningDelta(ctx context.Context, session *Session, delta string)
}

// NoopHooks is a zero-value Hooks implementation; embed it in hook sets
// that only care about a subset of the extension points.
type NoopHooks struct{}

func (NoopHooks) OnCompletionCall(context.Context, *Session, []Message)                {}
func (NoopHooks) OnStreamCompletionResponseFinish(context.Context, *Session, Message)   {}
func (NoopHooks) OnToolCall(context.Context, *Session, ToolCall)                        {}
func (NoopHooks) OnToolResult(context.Context, *Session, ToolResult)                    {}
func (NoopHooks) OnTextDelta(context.Context, *Session, string)                         {}
func (NoopHooks) OnReasoningDelta(context.Context, *Session, string)                    {}

// MultiHooks fans every call out to all of its members in order.
type MultiHooks []Hooks

func (m MultiHooks) OnCompletionCall(ctx context.Context, s *Session, msgs []Message) {
	for _, h := range m {
		h.OnCompletionCall(ctx, s, msgs)
	}
}
func (m MultiHooks) OnStreamCompletionResponseFinish(ctx context.Context, s *Session, msg Message) {
	for _, h := range m {
		h.OnStreamCompletionResponseFinish(ctx, s, msg)
	}
}
func (m MultiHooks) OnToolCall(ctx context.Context, s *Session, call ToolCall) {
	for _, h := range m {
		h.OnToolCall(ctx, s, call)
	}
}
func (m MultiHooks) OnToolResult(ctx context.Context, s *Session, result ToolResult) {
	for _, h := range m {
		h.OnToolResult(ctx, s, result)
	}
}
func (m MultiHooks) OnTextDelta(ctx context.Context, s *Session, delta string) {
	for _, h := range m {
		h.OnTextDelta(ctx, s, delta)
	}
}
func (m MultiHooks) OnReasoningDelta(ctx context.Context, s *Session, delta string) {
	for _, h := range m {
		h.OnReasoningDelta(ctx, s, delta)
	}
}
