package agent

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsHooks_RecordsCompletionAndToolTraffic(t *testing.T) {
	h := NewMetricsHooks()
	ctx := context.Background()
	sess := &Session{Model: "test-model-metrics"}

	h.OnCompletionCall(ctx, sess, nil)
	before := testutil.ToFloat64(completionCalls.WithLabelValues("test-model-metrics"))
	assert.Equal(t, 1.0, before)

	h.OnToolCall(ctx, sess, ToolCall{ID: "call-1", Name: "metrics_test_tool"})
	h.OnToolResult(ctx, sess, ToolResult{ToolCallID: "call-1", Success: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(toolCalls.WithLabelValues("metrics_test_tool")))
	assert.Equal(t, 1.0, testutil.ToFloat64(toolResults.WithLabelValues("metrics_test_tool", "success")))
}

func TestMetricsHooks_UnmatchedToolResultStillCounted(t *testing.T) {
	h := NewMetricsHooks()
	ctx := context.Background()
	sess := &Session{Model: "test-model-metrics"}

	h.OnToolResult(ctx, sess, ToolResult{ToolCallID: "never-called", Success: false})

	assert.Equal(t, 1.0, testutil.ToFloat64(toolResults.WithLabelValues("unknown", "error")))
}
