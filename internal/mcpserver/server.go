// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package mcpserver exposes an internal/toolregistry.Registry's catalogue
// as an MCP server (spec.md's "IDE UI shell" Non-goal excludes the
// panel/editor consumer, not every possible transport): an external MCP
// client — another editor, another agent — can invoke the exact same
// tools (read_file, apply_patch, run_command, ...) the in-process agent
// loop dispatches through internal/agent.Loop, without going through a
// conversational model at all.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/forge-ide/forge-agent/internal/toolregistry"
)

const serverVersion = "0.1.0"

// New builds an MCP server wrapping every tool in reg, scoped to
// workspace. Each MCP tool call runs against a fresh, unpersisted
// agent.Session rooted at workspace and never in plan mode — MCP callers
// are expected to decide for themselves whether a write is wanted, the
// same way any other external tool-caller would.
func New(reg *toolregistry.Registry, workspace string) *server.MCPServer {
	s := server.NewMCPServer("forge-agent", serverVersion)

	for _, name := range reg.Names() {
		def, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		s.AddTool(toolFromDef(def), handlerFromDef(reg, def, workspace))
	}

	return s
}

func toolFromDef(def *toolregistry.Def) mcp.Tool {
	schema, err := json.Marshal(def.Parameters)
	if err != nil {
		// A Def whose Parameters don't marshal is a programmer error in
		// toolregistry, not a runtime condition; fall back to an empty
		// object schema rather than panic on a misbehaving registration.
		schema = []byte(`{"type":"object"}`)
	}
	return mcp.NewToolWithRawSchema(def.Name, def.Description, schema)
}

func handlerFromDef(reg *toolregistry.Registry, def *toolregistry.Def, workspace string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session := agent.NewSession(workspace, "mcp", "external")
		result := reg.Execute(ctx, session, agent.ToolCall{
			ID:        fmt.Sprintf("mcp-%s", def.Name),
			Name:      def.Name,
			Arguments: req.GetArguments(),
		})
		if !result.Success {
			return mcp.NewToolResultError(result.Output), nil
		}
		return mcp.NewToolResultText(result.Output), nil
	}
}

// ServeStdio blocks serving s over stdin/stdout, the transport MCP
// clients (editors, CLI agents) expect by default.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
