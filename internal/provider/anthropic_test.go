// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/agent"
)

func TestAnthropicCompleteParsesTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "hello there"}},
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", "claude-test")
	p.apiURL = srv.URL

	msg, err := p.Complete(context.Background(), []agent.Message{
		{Role: agent.RoleUser, Content: "hi"},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "hello there", msg.Content)
	require.Empty(t, msg.ToolCalls)
}

func TestAnthropicCompleteParsesToolUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "tool_use", "id": "tool_1", "name": "read_file", "input": map[string]any{"path": "main.go"}},
			},
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", "claude-test")
	p.apiURL = srv.URL

	msg, err := p.Complete(context.Background(), []agent.Message{{Role: agent.RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)
	require.Equal(t, "read_file", msg.ToolCalls[0].Name)
	require.Equal(t, "main.go", msg.ToolCalls[0].Arguments["path"])
}

func TestAnthropicCompleteInterceptsAttemptCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "tool_use", "name": "attempt_completion", "input": map[string]any{"result": "done with it"}},
			},
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", "claude-test")
	p.apiURL = srv.URL

	msg, err := p.Complete(context.Background(), []agent.Message{{Role: agent.RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "done with it", msg.Content)
	require.Empty(t, msg.ToolCalls)
}

func TestAnthropicCompleteInterceptsAskFollowupQuestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "tool_use", "name": "ask_followup_question", "input": map[string]any{"question": "which file?"}},
			},
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", "claude-test")
	p.apiURL = srv.URL

	msg, err := p.Complete(context.Background(), []agent.Message{{Role: agent.RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "which file?", msg.Content)
	require.Empty(t, msg.ToolCalls)
}

func TestAnthropicCompleteReturnsFatalOnNonRetryableError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad request"}})
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", "claude-test")
	p.apiURL = srv.URL

	_, err := p.Complete(context.Background(), []agent.Message{{Role: agent.RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	var taxErr *agent.TaxonomyError
	require.ErrorAs(t, err, &taxErr)
}

func TestSplitSystemPrompt(t *testing.T) {
	messages := []agent.Message{
		{Role: agent.RoleSystem, Content: "be helpful"},
		{Role: agent.RoleUser, Content: "hi"},
	}
	sys, rest := splitSystemPrompt(messages)
	require.Equal(t, "be helpful", sys)
	require.Len(t, rest, 1)
	require.Equal(t, agent.RoleUser, rest[0].Role)
}

func TestSplitSystemPromptNoSystemMessage(t *testing.T) {
	messages := []agent.Message{{Role: agent.RoleUser, Content: "hi"}}
	sys, rest := splitSystemPrompt(messages)
	require.Empty(t, sys)
	require.Len(t, rest, 1)
}
