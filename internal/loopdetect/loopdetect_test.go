package loopdetect

import (
	"testing"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/stretchr/testify/assert"
)

func sessionWithToolCalls(t *testing.T, n int, args map[string]any) *agent.Session {
	t.Helper()
	s := agent.NewSession("/ws", "mock", "mock-model")
	for i := 0; i < n; i++ {
		s.AppendMessage(agent.Message{
			Role:      agent.RoleAssistant,
			ToolCalls: []agent.ToolCall{{ID: "c", Name: "read_file", Arguments: args}},
		})
	}
	return s
}

func TestDetector_ThreeRepeatsIsNotYetALoop(t *testing.T) {
	s := sessionWithToolCalls(t, 3, map[string]any{"path": "a.go"})
	d := New()
	isLoop, _ := d.Check(s)
	assert.False(t, isLoop, "3 repeats is below the threshold of 4")
}

func TestDetector_FourRepeatsIsALoop(t *testing.T) {
	s := sessionWithToolCalls(t, 4, map[string]any{"path": "a.go"})
	d := New()
	isLoop, reason := d.Check(s)
	assert.True(t, isLoop)
	assert.Contains(t, reason, "read_file")
}

func TestDetector_DifferentArgumentsDoNotCountAsRepeats(t *testing.T) {
	s := agent.NewSession("/ws", "mock", "mock-model")
	for i := 0; i < 6; i++ {
		s.AppendMessage(agent.Message{
			Role: agent.RoleAssistant,
			ToolCalls: []agent.ToolCall{
				{ID: "c", Name: "read_file", Arguments: map[string]any{"path": string(rune('a' + i))}},
			},
		})
	}
	d := New()
	isLoop, _ := d.Check(s)
	assert.False(t, isLoop)
}

func TestDetector_ContentChantDetected(t *testing.T) {
	s := agent.NewSession("/ws", "mock", "mock-model")
	phrase := "I will now try again to fix the failing test by"
	for i := 0; i < 3; i++ {
		s.AppendMessage(agent.Message{Role: agent.RoleAssistant, Content: phrase + " attempt " + string(rune('0'+i))})
	}
	d := New()
	isLoop, reason := d.Check(s)
	assert.True(t, isLoop)
	assert.NotEmpty(t, reason)
}

func TestDetector_DistinctContentIsNotAChant(t *testing.T) {
	s := agent.NewSession("/ws", "mock", "mock-model")
	s.AppendMessage(agent.Message{Role: agent.RoleAssistant, Content: "reading the configuration file now"})
	s.AppendMessage(agent.Message{Role: agent.RoleAssistant, Content: "writing the updated handler function"})
	s.AppendMessage(agent.Message{Role: agent.RoleAssistant, Content: "running the test suite to confirm"})
	d := New()
	isLoop, _ := d.Check(s)
	assert.False(t, isLoop)
}
