package toolregistry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/bridge"
)

func TestExecuteCommandDef_SuccessAndFailure(t *testing.T) {
	b, dir := newTestBridge(t)
	def := executeCommandDef(b)

	ok := def.Handler(context.Background(), map[string]any{"command": "exit 0"}, dir, false)
	assert.True(t, ok.Success)
	assert.Contains(t, ok.Output, "exit code: 0")

	fail := def.Handler(context.Background(), map[string]any{"command": "exit 3"}, dir, false)
	assert.False(t, fail.Success)
	assert.Contains(t, fail.Output, "exit code: 3")
}

// extractProcessID pulls the "id: <id>" line executeBackgroundDef prints
// out of its own output, avoiding a dependency on ProcessSupervisor's
// internal id-allocation scheme.
func extractProcessID(t *testing.T, output string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "id: ") {
			return strings.TrimPrefix(line, "id: ")
		}
	}
	t.Fatalf("no id line found in output: %q", output)
	return ""
}

func TestExecuteBackgroundAndReadProcessOutput(t *testing.T) {
	_, dir := newTestBridge(t)
	procs := bridge.NewProcessSupervisor()

	startDef := executeBackgroundDef(procs)
	res := startDef.Handler(context.Background(), map[string]any{
		"command":      "echo hello",
		"wait_seconds": 1,
	}, dir, false)
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "process started in background")

	id := extractProcessID(t, res.Output)
	time.Sleep(200 * time.Millisecond)

	readDef := readProcessOutputDef(procs)
	readRes := readDef.Handler(context.Background(), map[string]any{"id": id}, dir, false)
	assert.True(t, readRes.Success)
	assert.Contains(t, readRes.Output, "hello")

	statusDef := checkProcessStatusDef(procs)
	statusRes := statusDef.Handler(context.Background(), map[string]any{"id": id}, dir, false)
	assert.True(t, statusRes.Success)
}

func TestReadProcessOutputDef_UnknownID(t *testing.T) {
	procs := bridge.NewProcessSupervisor()
	def := readProcessOutputDef(procs)
	res := def.Handler(context.Background(), map[string]any{"id": "proc-999"}, "", false)
	assert.False(t, res.Success)
}

func TestKillProcessDef_UnknownIDFails(t *testing.T) {
	procs := bridge.NewProcessSupervisor()
	def := killProcessDef(procs)
	res := def.Handler(context.Background(), map[string]any{"id": "proc-999"}, "", false)
	assert.False(t, res.Success)
}

func TestCheckPortDef_ReportsAvailable(t *testing.T) {
	def := checkPortDef()
	res := def.Handler(context.Background(), map[string]any{"port": 59999}, "", false)
	assert.True(t, res.Success)
	assert.Contains(t, res.Output, "AVAILABLE")
}

func TestWaitForPortDef_MissingPortArgument(t *testing.T) {
	def := waitForPortDef()
	res := def.Handler(context.Background(), map[string]any{}, "", false)
	assert.False(t, res.Success)
}
