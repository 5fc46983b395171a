// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/forge-ide/forge-agent/internal/agent"
)

// OpenAIProvider talks to any OpenAI-schema /chat/completions endpoint
// (OpenAI itself, or a self-hosted gateway with the same wire shape) via
// sashabaranov/go-openai, grounded on the teacher's own
// services/llm/openai_llm.go client construction and on
// original_source/.../api/openai.rs for the request/response shape this
// port must reproduce for tool calling.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

// NewOpenAIProvider builds an OpenAIProvider. baseURL overrides the
// default OpenAI endpoint for OpenAI-compatible gateways; pass "" to use
// api.openai.com.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, messages []agent.Message, tools []agent.ToolSpec) (agent.Message, error) {
	systemPrompt, rest := splitSystemPrompt(messages)

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    buildOpenAIMessages(systemPrompt, rest),
		Tools:       buildOpenAITools(tools),
		Temperature: 0.7,
		MaxTokens:   8192,
	}

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, p.limiter, func() (bool, error) {
		var callErr error
		resp, callErr = p.client.CreateChatCompletion(ctx, req)
		if callErr == nil {
			return false, nil
		}
		return isRetryableOpenAIError(callErr), callErr
	})
	if err != nil {
		slog.Error("openai completion failed", "model", p.model, "error", err)
		return agent.Message{}, agent.NewTaxonomyError(agent.ErrProviderFatal, "openai_error", false, err)
	}
	if len(resp.Choices) == 0 {
		return agent.Message{}, agent.NewTaxonomyError(agent.ErrProviderFatal, "openai_no_choices", false,
			fmt.Errorf("no choices in response"))
	}

	return parseOpenAIMessage(resp.Choices[0].Message)
}

func buildOpenAIMessages(systemPrompt string, messages []agent.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	for _, m := range messages {
		switch m.Role {
		case agent.RoleUser:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Content})
		case agent.RoleAssistant:
			if len(m.ToolCalls) > 0 {
				calls := make([]openai.ToolCall, len(m.ToolCalls))
				for i, c := range m.ToolCalls {
					args, _ := json.Marshal(c.Arguments)
					calls[i] = openai.ToolCall{
						ID:   c.ID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      c.Name,
							Arguments: string(args),
						},
					}
				}
				out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, ToolCalls: calls})
			} else {
				out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content})
			}
		case agent.RoleTool:
			for _, r := range m.Results {
				out = append(out, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					ToolCallID: r.ToolCallID,
					Content:    r.Output,
				})
			}
		}
	}
	return out
}

func buildOpenAITools(tools []agent.ToolSpec) []openai.Tool {
	out := make([]openai.Tool, len(tools))
	for i, t := range tools {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func parseOpenAIMessage(msg openai.ChatCompletionMessage) (agent.Message, error) {
	if len(msg.ToolCalls) == 0 {
		return agent.Message{Role: agent.RoleAssistant, Content: msg.Content}, nil
	}

	var calls []agent.ToolCall
	for _, tc := range msg.ToolCalls {
		var args map[string]any
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)

		switch tc.Function.Name {
		case toolAttemptCompletion:
			return agent.Message{Role: agent.RoleAssistant, Content: completionArg(args)}, nil
		case toolAskFollowupQuestion:
			return agent.Message{Role: agent.RoleAssistant, Content: questionArg(args)}, nil
		}

		calls = append(calls, agent.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}

	return agent.Message{Role: agent.RoleAssistant, Content: msg.Content, ToolCalls: calls}, nil
}

// isRetryableOpenAIError treats go-openai's typed rate-limit/server errors
// as transient, matching original_source/.../api/openai.rs's "retry only
// on 429" policy but extended to 5xx since those are equally safe to
// retry against an idempotent completion call.
func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if ok := asAPIError(err, &apiErr); ok {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	return false
}

func asAPIError(err error, target **openai.APIError) bool {
	apiErr, ok := err.(*openai.APIError)
	if ok {
		*target = apiErr
	}
	return ok
}
