package agent

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus metrics for agent loop activity
// =============================================================================

var (
	completionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forgecode",
		Subsystem: "agent",
		Name:      "completion_calls_total",
		Help:      "Total provider completion calls, by model",
	}, []string{"model"})

	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forgecode",
		Subsystem: "agent",
		Name:      "tool_calls_total",
		Help:      "Total tool invocations, by tool name",
	}, []string{"tool"})

	toolResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forgecode",
		Subsystem: "agent",
		Name:      "tool_results_total",
		Help:      "Total tool results, by tool name and outcome",
	}, []string{"tool", "outcome"})

	toolLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "forgecode",
		Subsystem: "agent",
		Name:      "tool_latency_seconds",
		Help:      "Time between a tool call and its result, by tool name",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"tool"})
)

// MetricsHooks records Prometheus counters and histograms for the agent
// loop's completion and tool-call traffic. It is additive, the same way
// OtelHooks is: install alongside JSONLTraceHooks/OtelHooks via MultiHooks.
// Unlike OtelHooks (per-session spans for a trace backend), it records
// aggregate counters; cmd/forgecode installs it for run, and the
// --serve-rpc process does not install it.
type MetricsHooks struct {
	NoopHooks

	mu       chan struct{} // binary semaphore guarding inflight
	inflight map[string]inflightCall
}

type inflightCall struct {
	name  string
	start time.Time
}

// NewMetricsHooks builds a MetricsHooks. The counters/histograms it
// increments are process-global (registered once via promauto on package
// init), so every MetricsHooks instance in a process shares the same
// underlying series.
func NewMetricsHooks() *MetricsHooks {
	h := &MetricsHooks{
		mu:       make(chan struct{}, 1),
		inflight: make(map[string]inflightCall),
	}
	h.mu <- struct{}{}
	return h
}

func (h *MetricsHooks) lock()   { <-h.mu }
func (h *MetricsHooks) unlock() { h.mu <- struct{}{} }

func (h *MetricsHooks) OnCompletionCall(_ context.Context, s *Session, _ []Message) {
	completionCalls.WithLabelValues(s.Model).Inc()
}

func (h *MetricsHooks) OnToolCall(_ context.Context, _ *Session, call ToolCall) {
	toolCalls.WithLabelValues(call.Name).Inc()

	h.lock()
	h.inflight[call.ID] = inflightCall{name: call.Name, start: time.Now()}
	h.unlock()
}

func (h *MetricsHooks) OnToolResult(_ context.Context, _ *Session, result ToolResult) {
	h.lock()
	call, ok := h.inflight[result.ToolCallID]
	delete(h.inflight, result.ToolCallID)
	h.unlock()

	name := call.name
	if !ok {
		name = "unknown"
	}

	outcome := "success"
	if !result.Success {
		outcome = "error"
	}

	toolResults.WithLabelValues(name, outcome).Inc()
	if ok {
		toolLatency.WithLabelValues(name).Observe(time.Since(call.start).Seconds())
	}
}
