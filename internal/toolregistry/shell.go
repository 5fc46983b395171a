// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package toolregistry

import (
	"context"
	"fmt"
	"time"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/forge-ide/forge-agent/internal/bridge"
)

// defaultBackgroundWaitSeconds mirrors the 3-second initial-output grace
// period from original_source/forge-agent/src/tools/process.rs's
// execute_background.
const defaultBackgroundWaitSeconds = 3

// ShellDefs returns the catalogue entries for foreground execution,
// background process supervision, and port utilities, grounded on
// original_source/forge-agent/src/tools/execute.rs and tools/process.rs.
func ShellDefs(b bridge.Bridge, procs *bridge.ProcessSupervisor) []Def {
	return []Def{
		executeCommandDef(b),
		executeBackgroundDef(procs),
		readProcessOutputDef(procs),
		checkProcessStatusDef(procs),
		killProcessDef(procs),
		waitForPortDef(),
		checkPortDef(),
		killPortDef(),
	}
}

func executeCommandDef(b bridge.Bridge) Def {
	return Def{
		Name:        "execute_command",
		Description: "Run a shell command in the workspace and wait for it to finish.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{"type": "string"},
				"cwd":     map[string]any{"type": "string"},
			},
			"required": []string{"command"},
		},
		IsMutating: true,
		Category:   CategoryShell,
		OutputKind: KindShell,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			command, err := requireString(args, "command")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			cwd, _ := argString(args, "cwd")

			out, err := b.Execute(ctx, command, cwd)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			output := fmt.Sprintf("exit code: %d\n%s%s", out.ExitCode, out.Stdout, out.Stderr)
			return agent.ToolResult{Success: out.ExitCode == 0, Output: output}
		},
	}
}

func executeBackgroundDef(procs *bridge.ProcessSupervisor) Def {
	return Def{
		Name:        "execute_background",
		Description: "Start a long-running shell command (dev server, watcher) without blocking, returning a process id to poll later.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command":      map[string]any{"type": "string"},
				"wait_seconds": map[string]any{"type": "integer"},
			},
			"required": []string{"command"},
		},
		IsMutating: true,
		Category:   CategoryTerminalControl,
		OutputKind: KindShell,
		Handler: func(_ context.Context, args map[string]any, workspace string, _ bool) agent.ToolResult {
			command, err := requireString(args, "command")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			waitSeconds := argIntOr(args, "wait_seconds", defaultBackgroundWaitSeconds)

			handle, err := procs.Start(command, workspace)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}

			time.Sleep(time.Duration(waitSeconds) * time.Second)
			exited, exitCode := handle.Status()
			running := !exited

			return agent.ToolResult{
				Success: true,
				Output: fmt.Sprintf("process started in background.\nid: %s\nrunning: %t\nexit code: %d\n--- initial output (%ds) ---\n%s",
					handle.ID, running, exitCode, waitSeconds, handle.Output()),
			}
		},
	}
}

func readProcessOutputDef(procs *bridge.ProcessSupervisor) Def {
	return Def{
		Name:        "read_process_output",
		Description: "Read the captured output of a background process started with execute_background.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "string"},
			},
			"required": []string{"id"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindShell,
		Handler: func(_ context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			id, err := requireString(args, "id")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			handle, ok := procs.Get(id)
			if !ok {
				return agent.ToolResult{Success: false, Output: fmt.Sprintf("no background process with id %q", id)}
			}
			exited, exitCode := handle.Status()
			status := "running"
			if exited {
				status = "exited"
			}
			return agent.ToolResult{
				Success: true,
				Output:  fmt.Sprintf("id: %s | status: %s | exit code: %d\n--- output ---\n%s", id, status, exitCode, handle.Output()),
			}
		},
	}
}

func checkProcessStatusDef(procs *bridge.ProcessSupervisor) Def {
	return Def{
		Name:        "check_process_status",
		Description: "Check whether a background process is still running and its exit code if it has finished.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "string"},
			},
			"required": []string{"id"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(_ context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			id, err := requireString(args, "id")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			handle, ok := procs.Get(id)
			if !ok {
				return agent.ToolResult{Success: false, Output: fmt.Sprintf("no background process with id %q", id)}
			}
			exited, exitCode := handle.Status()
			return agent.ToolResult{
				Success: true,
				Output:  fmt.Sprintf("id: %s\ncommand: %s\nrunning: %t\nexit code: %d", id, handle.Command, !exited, exitCode),
			}
		},
	}
}

func killProcessDef(procs *bridge.ProcessSupervisor) Def {
	return Def{
		Name:        "kill_process",
		Description: "Terminate a background process started with execute_background.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "string"},
			},
			"required": []string{"id"},
		},
		IsMutating: true,
		Category:   CategoryTerminalControl,
		OutputKind: KindDefault,
		Handler: func(_ context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			id, err := requireString(args, "id")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			if err := procs.Kill(id); err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: fmt.Sprintf("process %s terminated", id)}
		},
	}
}

func waitForPortDef() Def {
	return Def{
		Name:        "wait_for_port",
		Description: "Block until a TCP port starts accepting connections, or time out.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"port":    map[string]any{"type": "integer"},
				"timeout": map[string]any{"type": "integer"},
			},
			"required": []string{"port"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			port, ok := argInt(args, "port")
			if !ok {
				return agent.ToolResult{Success: false, Output: "missing required argument \"port\""}
			}
			timeoutSeconds := argIntOr(args, "timeout", 30)
			waitCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
			defer cancel()

			if err := bridge.WaitForPort(waitCtx, port); err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: fmt.Sprintf("port %d is now accepting connections", port)}
		},
	}
}

func checkPortDef() Def {
	return Def{
		Name:        "check_port",
		Description: "Check whether a TCP port is currently in use.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"port": map[string]any{"type": "integer"}},
			"required":   []string{"port"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(_ context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			port, ok := argInt(args, "port")
			if !ok {
				return agent.ToolResult{Success: false, Output: "missing required argument \"port\""}
			}
			if bridge.CheckPort(port) {
				return agent.ToolResult{Success: true, Output: fmt.Sprintf("port %d is IN USE", port)}
			}
			return agent.ToolResult{Success: true, Output: fmt.Sprintf("port %d is AVAILABLE", port)}
		},
	}
}

func killPortDef() Def {
	return Def{
		Name:        "kill_port",
		Description: "Terminate whatever process is listening on a TCP port.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"port": map[string]any{"type": "integer"}},
			"required":   []string{"port"},
		},
		IsMutating: true,
		Category:   CategoryTerminalControl,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			port, ok := argInt(args, "port")
			if !ok {
				return agent.ToolResult{Success: false, Output: "missing required argument \"port\""}
			}
			if err := bridge.KillPort(ctx, port); err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: fmt.Sprintf("terminated process(es) on port %d", port)}
		},
	}
}
