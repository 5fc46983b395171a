// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/forge-ide/forge-agent/internal/agent"
)

const anthropicAPIURL = "https://api.anthropic.com/v1/messages"
const anthropicVersion = "2023-06-01"
const anthropicMaxTokens = 8192

// AnthropicProvider talks to the Anthropic Messages API directly over
// net/http. No corpus .go file exercises the real anthropic-sdk-go
// client (only its go.mod entry appears, in a manifest with no source),
// so this adapter is instead ported wire-shape-for-wire-shape from
// original_source/.../api/anthropic.rs's reqwest client, which is an
// exact, confirmed request/response contract rather than a guessed SDK
// surface.
type AnthropicProvider struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
	limiter    *rate.Limiter
}

// NewAnthropicProvider builds an AnthropicProvider for model using apiKey.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		httpClient: &http.Client{},
		apiURL:     anthropicAPIURL,
		apiKey:     apiKey,
		model:      model,
		limiter:    rate.NewLimiter(rate.Limit(2), 4),
	}
}

type anthropicRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []any           `json:"messages"`
	Tools     []anthropicTool `json:"tools,omitempty"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicResponse struct {
	Content []struct {
		Type  string         `json:"type"`
		Text  string         `json:"text"`
		ID    string         `json:"id"`
		Name  string         `json:"name"`
		Input map[string]any `json:"input"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, messages []agent.Message, tools []agent.ToolSpec) (agent.Message, error) {
	systemPrompt, rest := splitSystemPrompt(messages)

	req := anthropicRequest{
		Model:     p.model,
		MaxTokens: anthropicMaxTokens,
		System:    systemPrompt,
		Messages:  buildAnthropicMessages(rest),
		Tools:     buildAnthropicTools(tools),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return agent.Message{}, agent.NewTaxonomyError(agent.ErrProviderFatal, "anthropic_marshal", false, err)
	}

	var respBody anthropicResponse
	err = withRetry(ctx, p.limiter, func() (bool, error) {
		status, raw, callErr := p.send(ctx, body)
		if callErr != nil {
			return true, callErr
		}
		if status == 429 {
			return true, fmt.Errorf("anthropic rate limited (429)")
		}
		if err := json.Unmarshal(raw, &respBody); err != nil {
			return false, fmt.Errorf("anthropic: decode response: %w", err)
		}
		if status < 200 || status >= 300 {
			msg := "unknown error"
			if respBody.Error != nil {
				msg = respBody.Error.Message
			}
			return status >= 500, fmt.Errorf("anthropic API error (%d): %s", status, msg)
		}
		return false, nil
	})
	if err != nil {
		slog.Error("anthropic completion failed", "model", p.model, "error", err)
		return agent.Message{}, agent.NewTaxonomyError(agent.ErrProviderFatal, "anthropic_error", false, err)
	}

	return parseAnthropicResponse(respBody)
}

func (p *AnthropicProvider) send(ctx context.Context, body []byte) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

func buildAnthropicMessages(messages []agent.Message) []any {
	out := make([]any, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case agent.RoleUser:
			out = append(out, map[string]any{"role": "user", "content": m.Content})
		case agent.RoleAssistant:
			if len(m.ToolCalls) > 0 {
				content := make([]map[string]any, len(m.ToolCalls))
				for i, c := range m.ToolCalls {
					id := c.ID
					if id == "" {
						id = "tool_" + uuid.NewString()
					}
					content[i] = map[string]any{
						"type":  "tool_use",
						"id":    id,
						"name":  c.Name,
						"input": c.Arguments,
					}
				}
				out = append(out, map[string]any{"role": "assistant", "content": content})
			} else {
				out = append(out, map[string]any{"role": "assistant", "content": m.Content})
			}
		case agent.RoleTool:
			content := make([]map[string]any, len(m.Results))
			for i, r := range m.Results {
				content[i] = map[string]any{
					"type":        "tool_result",
					"tool_use_id": r.ToolCallID,
					"content":     r.Output,
				}
			}
			out = append(out, map[string]any{"role": "user", "content": content})
		}
	}
	return out
}

func buildAnthropicTools(tools []agent.ToolSpec) []anthropicTool {
	out := make([]anthropicTool, len(tools))
	for i, t := range tools {
		out[i] = anthropicTool{Name: t.Name, Description: t.Description, InputSchema: t.Parameters}
	}
	return out
}

func parseAnthropicResponse(resp anthropicResponse) (agent.Message, error) {
	var textParts []string
	var calls []agent.ToolCall

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			if block.Text != "" {
				textParts = append(textParts, block.Text)
			}
		case "tool_use":
			switch block.Name {
			case toolAttemptCompletion:
				return agent.Message{Role: agent.RoleAssistant, Content: completionArg(block.Input)}, nil
			case toolAskFollowupQuestion:
				return agent.Message{Role: agent.RoleAssistant, Content: questionArg(block.Input)}, nil
			}
			calls = append(calls, agent.ToolCall{ID: block.ID, Name: block.Name, Arguments: block.Input})
		}
	}

	return agent.Message{Role: agent.RoleAssistant, Content: joinLines(textParts), ToolCalls: calls}, nil
}

func joinLines(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}
