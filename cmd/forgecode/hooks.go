// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/forge-ide/forge-agent/internal/agent"
)

// uiHooks prints tool activity to stderr as the loop runs, so the
// transcript on stdout stays limited to the final response (matching the
// original CLI's convention of writing progress to stderr and the answer
// to stdout). It embeds NoopHooks and only overrides the points a
// terminal UI cares about.
type uiHooks struct {
	agent.NoopHooks
}

func (uiHooks) OnToolCall(_ context.Context, _ *agent.Session, call agent.ToolCall) {
	fmt.Fprintln(os.Stderr, styleMuted.Render(fmt.Sprintf("[tool] %s", call.Name)))
}

func (uiHooks) OnToolResult(_ context.Context, _ *agent.Session, result agent.ToolResult) {
	if result.Success {
		return
	}
	fmt.Fprintln(os.Stderr, styleWarning.Render(fmt.Sprintf("[tool] failed: %s", result.Output)))
}
