// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package provider

import (
	"context"
	"fmt"

	"github.com/forge-ide/forge-agent/internal/agent"
)

// Family selects which wire-format adapter New builds.
type Family string

const (
	FamilyOpenAI    Family = "openai"
	FamilyAnthropic Family = "anthropic"
	FamilyGoogle    Family = "google"
)

// Config carries everything an adapter needs, regardless of family; unused
// fields for a given family are ignored (e.g. BaseURL only applies to the
// OpenAI-compatible family).
type Config struct {
	Family  Family
	APIKey  string
	Model   string
	BaseURL string
}

// New builds the agent.Provider for cfg.Family, matching the CLI harness's
// --provider flag (spec.md §6: one of g/a/o for Google/Anthropic/OpenAI).
func New(ctx context.Context, cfg Config) (agent.Provider, error) {
	switch cfg.Family {
	case FamilyOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case FamilyAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case FamilyGoogle:
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("provider: unknown family %q", cfg.Family)
	}
}
