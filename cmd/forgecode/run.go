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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forge-ide/forge-agent/internal/agent"
)

// runForgecode is rootCmd.RunE: resolve flags, wire the dependency graph,
// enrich the prompt, drive the agent loop to completion, and print the
// final response to stdout (progress goes to stderr, matching the
// original harness's convention so stdout stays pipeable).
func runForgecode(cmd *cobra.Command, args []string) error {
	if flagServeRPC != "" {
		if len(args) > 0 {
			return fmt.Errorf("--serve-rpc does not take a prompt argument")
		}
		return runServeRPC(flagServeRPC, flagWorkspace)
	}
	if flagServeMCP {
		if len(args) > 0 {
			return fmt.Errorf("--serve-mcp does not take a prompt argument")
		}
		return runServeMCP(flagWorkspace)
	}

	ctx := context.Background()

	fam, err := providerFamily(flagProvider)
	if err != nil {
		return err
	}
	if flagModel == "" {
		return fmt.Errorf("--model is required")
	}

	userPrompt, err := resolvePrompt(args)
	if err != nil {
		return err
	}

	apiKey, err := resolveAPIKey(flagAPIKey, fam)
	if err != nil {
		return err
	}

	s, llmProvider, err := buildStack(ctx, flagWorkspace, fam, apiKey, flagModel, "")
	if err != nil {
		return err
	}
	defer s.close()

	workspace := s.bridge.WorkspaceRoot()
	fmt.Fprintln(os.Stderr, styleContext.Render(fmt.Sprintf(
		"[context] workspace=%s provider=%s model=%s max-turns=%d", workspace, flagProvider, flagModel, flagMaxTurns)))

	if indexed, skipped, err := s.index.IndexWorkspace(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styleWarning.Render(fmt.Sprintf("[warn] codebase_search index incomplete: %v", err)))
	} else {
		fmt.Fprintln(os.Stderr, styleMuted.Render(fmt.Sprintf("[context] indexed %d file(s), skipped %d (unchanged)", indexed, skipped)))
	}

	systemPrompt, contextBlock, err := s.assembler.Build(ctx, userPrompt)
	if err != nil {
		return fmt.Errorf("assemble prompt: %w", err)
	}
	fmt.Fprintln(os.Stderr, styleMuted.Render(fmt.Sprintf("[context] enriched prompt: %d chars", len(contextBlock))))

	sess, err := s.sessions.New(workspace, string(fam), flagModel)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	sess.AppendMessage(agent.Message{Role: agent.RoleSystem, Content: systemPrompt})

	traceFile, err := os.Create(sessionTracePath(s.dataDir, sess.ID))
	if err != nil {
		return fmt.Errorf("open trace file: %w", err)
	}
	defer traceFile.Close()

	tracer, shutdownTracing, err := setupTracing(ctx)
	if err != nil {
		return fmt.Errorf("set up tracing: %w", err)
	}
	defer shutdownTracing(ctx)

	hooks := agent.MultiHooks{
		agent.NewJSONLTraceHooks(traceFile),
		agent.NewOtelHooks(tracer),
		agent.NewMetricsHooks(),
		uiHooks{},
	}

	executor := newDiffExecutor(s.registry, s.bridge, flagInit)
	loop := agent.NewLoop(llmProvider, executor, s.registry.Specs(false),
		agent.WithMaxIterations(flagMaxTurns),
		agent.WithHooks(hooks),
		agent.WithLoopDetector(s.detector),
	)

	finalMsg, runErr := loop.Run(ctx, sess, contextBlock)
	if saveErr := s.sessions.Save(sess); saveErr != nil {
		fmt.Fprintln(os.Stderr, styleWarning.Render(fmt.Sprintf("[warn] failed to persist session: %v", saveErr)))
	}

	if runErr != nil {
		return runErr
	}

	fmt.Fprintln(os.Stderr, styleSuccess.Render(fmt.Sprintf("[done] %d turn(s)", sess.Turns())))
	fmt.Println(finalMsg.Content)
	return nil
}

// resolvePrompt returns the INIT_PROMPT when --init was passed (after
// refusing to overwrite an existing memory file), or the positional
// prompt argument otherwise.
func resolvePrompt(args []string) (string, error) {
	if flagInit {
		if len(args) > 0 {
			return "", fmt.Errorf("--init does not take a prompt argument")
		}
		return checkedInitPrompt(flagWorkspace)
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no prompt provided: use --init or pass a prompt")
	}
	return args[0], nil
}

func sessionTracePath(dataDir, sessionID string) string {
	return filepath.Join(dataDir, "trace-"+sessionID+".jsonl")
}
