package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	responses []Message
	errs      []error
	calls     int
}

func (p *scriptedProvider) Complete(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return Message{}, p.errs[i]
	}
	if i >= len(p.responses) {
		return Message{Role: RoleAssistant, Content: "done"}, nil
	}
	return p.responses[i], nil
}

type echoExecutor struct{ n int }

// mutatingToolNames mirrors the real toolregistry.Registry's is_mutating
// catalogue entries closely enough to exercise the plan-mode contract:
// Session owns the flag, the ToolExecutor is responsible for enforcing it.
var mutatingToolNames = map[string]bool{"write_file": true}

func (e *echoExecutor) Execute(ctx context.Context, session *Session, call ToolCall) ToolResult {
	if session.PlanMode() && mutatingToolNames[call.Name] {
		return ToolResult{
			ToolCallID: call.ID,
			Success:    false,
			Output:     "Cannot modify files in plan mode: " + call.Name + " is disabled until plan mode is exited.",
		}
	}
	e.n++
	return ToolResult{ToolCallID: call.ID, Success: true, Output: "ok"}
}

func TestLoop_StopsOnFinalMessageWithoutToolCalls(t *testing.T) {
	p := &scriptedProvider{responses: []Message{
		{Role: RoleAssistant, Content: "hello there"},
	}}
	exec := &echoExecutor{}
	l := NewLoop(p, exec, nil)
	session := NewSession("/ws", "mock", "mock-model")

	msg, err := l.Run(context.Background(), session, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Content)
	assert.Equal(t, 0, exec.n)
}

func TestLoop_DispatchesToolCallsAndCorrelatesResults(t *testing.T) {
	p := &scriptedProvider{responses: []Message{
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call-1", Name: "read_file"}}},
		{Role: RoleAssistant, Content: "finished"},
	}}
	exec := &echoExecutor{}
	l := NewLoop(p, exec, nil)
	session := NewSession("/ws", "mock", "mock-model")

	msg, err := l.Run(context.Background(), session, "go")
	require.NoError(t, err)
	assert.Equal(t, "finished", msg.Content)
	assert.Equal(t, 1, exec.n)

	// the tool-result message must immediately follow the assistant
	// message that requested it, and correlate by ToolCallID.
	snapshot := session.Snapshot()
	var found bool
	for i, m := range snapshot {
		if m.Role == RoleAssistant && len(m.ToolCalls) == 1 {
			require.Less(t, i+1, len(snapshot))
			next := snapshot[i+1]
			require.Equal(t, RoleTool, next.Role)
			require.Len(t, next.Results, 1)
			assert.Equal(t, m.ToolCalls[0].ID, next.Results[0].ToolCallID)
			found = true
		}
	}
	assert.True(t, found)
}

func TestLoop_MaxIterationsCeiling(t *testing.T) {
	p := &scriptedProvider{}
	for i := 0; i < 100; i++ {
		p.responses = append(p.responses, Message{
			Role:      RoleAssistant,
			ToolCalls: []ToolCall{{ID: "x", Name: "read_file"}},
		})
	}
	exec := &echoExecutor{}
	l := NewLoop(p, exec, nil, WithMaxIterations(3))
	session := NewSession("/ws", "mock", "mock-model")

	_, err := l.Run(context.Background(), session, "go")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxIterations)
}

func TestLoop_MaxEmptyResponsesCeiling(t *testing.T) {
	p := &scriptedProvider{}
	for i := 0; i < 10; i++ {
		p.responses = append(p.responses, Message{Role: RoleAssistant})
	}
	exec := &echoExecutor{}
	l := NewLoop(p, exec, nil, WithMaxEmptyResponses(2))
	session := NewSession("/ws", "mock", "mock-model")

	_, err := l.Run(context.Background(), session, "go")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxEmptyResponses)
}

func TestLoop_PlanModeRejectsMutatingTool(t *testing.T) {
	p := &scriptedProvider{responses: []Message{
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call-1", Name: "write_file"}}},
		{Role: RoleAssistant, Content: "ok"},
	}}
	exec := &echoExecutor{}
	l := NewLoop(p, exec, nil, WithPlanMode(true))
	session := NewSession("/ws", "mock", "mock-model")

	_, err := l.Run(context.Background(), session, "go")
	require.NoError(t, err)
	assert.Equal(t, 0, exec.n, "mutating tool must never reach the executor in plan mode")

	snapshot := session.Snapshot()
	var rejected bool
	for _, m := range snapshot {
		for _, r := range m.Results {
			if !r.Success {
				assert.Contains(t, r.Output, "Cannot modify files in plan mode")
				rejected = true
			}
		}
	}
	assert.True(t, rejected)
}

func TestLoop_CancelledSessionStopsImmediately(t *testing.T) {
	p := &scriptedProvider{}
	exec := &echoExecutor{}
	l := NewLoop(p, exec, nil)
	session := NewSession("/ws", "mock", "mock-model")
	session.Cancel()

	_, err := l.Run(context.Background(), session, "go")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestLoop_ProviderErrorIsClassified(t *testing.T) {
	p := &scriptedProvider{errs: []error{errors.New("boom")}}
	exec := &echoExecutor{}
	l := NewLoop(p, exec, nil)
	session := NewSession("/ws", "mock", "mock-model")

	_, err := l.Run(context.Background(), session, "go")
	require.Error(t, err)
	var te *TaxonomyError
	require.ErrorAs(t, err, &te)
}

type loopDetectorFunc func(*Session) (bool, string)

func (f loopDetectorFunc) Check(s *Session) (bool, string) { return f(s) }

func TestLoop_DetectorTerminatesRun(t *testing.T) {
	p := &scriptedProvider{responses: []Message{
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "x", Name: "read_file"}}},
	}}
	exec := &echoExecutor{}
	detector := loopDetectorFunc(func(s *Session) (bool, string) {
		if s.Turns() >= 1 {
			return true, "repeating tool calls"
		}
		return false, ""
	})
	l := NewLoop(p, exec, nil, WithLoopDetector(detector))
	session := NewSession("/ws", "mock", "mock-model")

	_, err := l.Run(context.Background(), session, "go")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoopDetected)
}
