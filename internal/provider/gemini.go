// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/forge-ide/forge-agent/internal/agent"
)

// GeminiProvider talks to Google's Gemini models via google.golang.org/genai,
// grounded on the teacher corpus's own genai client construction
// (_examples/ternarybob-iter/pkg/index/llm.go's NewClient/BackendGeminiAPI
// pattern) and on original_source/.../api/gemini.rs for the request/response
// shape (system_instruction, functionCall/functionResponse parts,
// thoughtSignature passthrough for function calling continuity).
type GeminiProvider struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewGeminiProvider builds a GeminiProvider from an API key.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini provider: %w", err)
	}
	return &GeminiProvider{client: client, model: model, limiter: rate.NewLimiter(rate.Limit(2), 4)}, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, messages []agent.Message, tools []agent.ToolSpec) (agent.Message, error) {
	systemPrompt, rest := splitSystemPrompt(messages)
	contents := buildGeminiContents(rest)

	config := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if len(tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: buildGeminiFunctionDeclarations(tools)}}
	}
	// Gemini 3 Pro models require an explicit thinking budget for function
	// calling to behave well; Flash models ignore it harmlessly.
	if strings.Contains(p.model, "gemini-3") && strings.Contains(p.model, "pro") {
		budget := int32(8192)
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}

	var resp *genai.GenerateContentResponse
	err := withRetry(ctx, p.limiter, func() (bool, error) {
		var callErr error
		resp, callErr = p.client.Models.GenerateContent(ctx, p.model, contents, config)
		if callErr == nil {
			return false, nil
		}
		return true, callErr
	})
	if err != nil {
		slog.Error("gemini completion failed", "model", p.model, "error", err)
		return agent.Message{}, agent.NewTaxonomyError(agent.ErrProviderFatal, "gemini_error", false, err)
	}

	return parseGeminiResponse(resp)
}

func buildGeminiContents(messages []agent.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case agent.RoleUser:
			if m.Content != "" {
				out = append(out, genai.NewContentFromText(m.Content, genai.RoleUser))
			}
		case agent.RoleAssistant:
			if len(m.ToolCalls) > 0 {
				parts := make([]*genai.Part, len(m.ToolCalls))
				for i, c := range m.ToolCalls {
					parts[i] = &genai.Part{
						FunctionCall:     &genai.FunctionCall{Name: c.Name, Args: c.Arguments},
						ThoughtSignature: []byte(c.ReasoningToken),
					}
				}
				out = append(out, &genai.Content{Role: genai.RoleModel, Parts: parts})
			} else if m.Content != "" {
				out = append(out, genai.NewContentFromText(m.Content, genai.RoleModel))
			}
		case agent.RoleTool:
			for _, r := range m.Results {
				out = append(out, &genai.Content{
					Role: genai.RoleUser,
					Parts: []*genai.Part{{
						FunctionResponse: &genai.FunctionResponse{
							Name:     r.ToolCallID,
							Response: map[string]any{"content": r.Output},
						},
					}},
				})
			}
		}
	}
	return out
}

func buildGeminiFunctionDeclarations(tools []agent.ToolSpec) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		out[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: t.Parameters,
		}
	}
	return out
}

func parseGeminiResponse(resp *genai.GenerateContentResponse) (agent.Message, error) {
	if len(resp.Candidates) == 0 {
		return agent.Message{Role: agent.RoleAssistant}, nil
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return agent.Message{Role: agent.RoleAssistant}, nil
	}

	var textParts []string
	var calls []agent.ToolCall

	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			textParts = append(textParts, part.Text)
		}
		if fc := part.FunctionCall; fc != nil {
			switch fc.Name {
			case toolAttemptCompletion:
				return agent.Message{Role: agent.RoleAssistant, Content: completionArg(fc.Args)}, nil
			case toolAskFollowupQuestion:
				return agent.Message{Role: agent.RoleAssistant, Content: questionArg(fc.Args)}, nil
			}
			calls = append(calls, agent.ToolCall{
				Name:           fc.Name,
				Arguments:      fc.Args,
				ReasoningToken: string(part.ThoughtSignature),
			})
		}
	}

	return agent.Message{Role: agent.RoleAssistant, Content: joinLines(textParts), ToolCalls: calls}, nil
}
