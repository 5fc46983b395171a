// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"context"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/forge-ide/forge-agent/internal/provider"
)

// fixerClient adapts the module's three chat providers to
// editengine.FixerClient's single (model, systemPrompt, userPrompt)
// -> string shape: each Fix call builds a fresh, single-purpose provider
// targeting the fast model editengine.FastModelFor names for the
// session's family, since agent.Provider has no notion of swapping
// models on an existing instance.
type fixerClient struct {
	family  provider.Family
	apiKey  string
	baseURL string
}

func newFixerClient(family provider.Family, apiKey, baseURL string) *fixerClient {
	return &fixerClient{family: family, apiKey: apiKey, baseURL: baseURL}
}

func (f *fixerClient) Complete(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	p, err := provider.New(ctx, provider.Config{Family: f.family, APIKey: f.apiKey, Model: model, BaseURL: f.baseURL})
	if err != nil {
		return "", err
	}
	messages := []agent.Message{
		{Role: agent.RoleSystem, Content: systemPrompt},
		{Role: agent.RoleUser, Content: userPrompt},
	}
	msg, err := p.Complete(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}
