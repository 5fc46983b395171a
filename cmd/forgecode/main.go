// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Command forgecode is the standalone CLI harness for the Forge agent
// pipeline (spec.md §6): one invocation assembles the enriched prompt,
// drives the tool-using agent loop to completion against a single
// prompt, interactively resolves any proposed file edits through the
// diff-preview protocol, and exits 0 on success or 1 on error.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagProvider  string
	flagModel     string
	flagAPIKey    string
	flagWorkspace string
	flagMaxTurns  int
	flagInit      bool
	flagBridge    string
	flagRPCAddr   string
	flagServeRPC  string
	flagServeMCP  bool

	rootCmd = &cobra.Command{
		Use:   "forgecode [prompt]",
		Short: "Run the Forge coding agent against a workspace",
		Long: `forgecode drives a provider-agnostic, tool-using coding agent against a
single prompt: it enriches the prompt with repo-map, memory, and git
context, runs the turn-bounded agent loop, and interactively resolves any
proposed file edits before exiting.`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runForgecode,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.Flags().StringVar(&flagProvider, "provider", "g", "LLM provider: g (Google), a (Anthropic), o (OpenAI-compatible)")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "Model identifier (provider-specific; required)")
	rootCmd.Flags().StringVar(&flagAPIKey, "api-key", "", "API key; falls back to GEMINI_API_KEY/ANTHROPIC_API_KEY/OPENAI_API_KEY")
	rootCmd.Flags().StringVar(&flagWorkspace, "workspace", ".", "Workspace directory the agent operates on")
	rootCmd.Flags().IntVar(&flagMaxTurns, "max-turns", 25, "Maximum agent turns (tool-call rounds) before giving up")
	rootCmd.Flags().BoolVar(&flagInit, "init", false, "Generate FORGE.md by having the agent explore the project, then exit")
	rootCmd.Flags().StringVar(&flagBridge, "bridge", "os", "Bridge implementation: os (local) or rpc (connect to --rpc-addr)")
	rootCmd.Flags().StringVar(&flagRPCAddr, "rpc-addr", "http://127.0.0.1:7420", "internal/rpcserver base URL, used when --bridge=rpc")
	rootCmd.Flags().StringVar(&flagServeRPC, "serve-rpc", "", "Instead of running a prompt, host the workspace over internal/rpcserver at this address (e.g. :7420) and block")
	rootCmd.Flags().BoolVar(&flagServeMCP, "serve-mcp", false, "Instead of running a prompt, export the tool catalogue as an MCP server over stdio and block")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %v\n", styleError.Render("[forgecode]"), err)
		os.Exit(1)
	}
}
