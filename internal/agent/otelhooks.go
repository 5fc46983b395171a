package agent

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OtelHooks emits one span per completion call and one span per tool call
// (started from the context passed to OnToolCall and ended by the matching
// OnToolResult), so a session's turn-by-turn behavior can be inspected in any
// OTLP-compatible backend. It is additive: install alongside
// JSONLTraceHooks via MultiHooks.
type OtelHooks struct {
	NoopHooks

	tracer trace.Tracer

	mu    chan struct{} // binary semaphore guarding spans
	spans map[string]trace.Span
}

// NewOtelHooks builds an OtelHooks using the given tracer, typically
// obtained from an otel TracerProvider wired to otlptracehttp.
func NewOtelHooks(tracer trace.Tracer) *OtelHooks {
	h := &OtelHooks{
		tracer: tracer,
		mu:     make(chan struct{}, 1),
		spans:  make(map[string]trace.Span),
	}
	h.mu <- struct{}{}
	return h
}

func (h *OtelHooks) lock()   { <-h.mu }
func (h *OtelHooks) unlock() { h.mu <- struct{}{} }

func (h *OtelHooks) OnCompletionCall(ctx context.Context, s *Session, messages []Message) {
	_, span := h.tracer.Start(ctx, "agent.completion_call", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("session.provider", s.Provider),
		attribute.String("session.model", s.Model),
		attribute.Int("messages.count", len(messages)),
	))
	span.End()
}

func (h *OtelHooks) OnToolCall(ctx context.Context, s *Session, call ToolCall) {
	_, span := h.tracer.Start(ctx, "agent.tool_call", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("tool.name", call.Name),
		attribute.String("tool.call_id", call.ID),
	))
	h.lock()
	h.spans[call.ID] = span
	h.unlock()
}

func (h *OtelHooks) OnToolResult(_ context.Context, _ *Session, result ToolResult) {
	h.lock()
	span, ok := h.spans[result.ToolCallID]
	delete(h.spans, result.ToolCallID)
	h.unlock()
	if !ok {
		return
	}
	span.SetAttributes(attribute.Bool("tool.success", result.Success))
	if !result.Success {
		span.SetStatus(codes.Error, result.Output)
	}
	span.End()
}
