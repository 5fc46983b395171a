// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/provider"
)

func TestProviderFamily_AcceptsShortAndLongForms(t *testing.T) {
	cases := map[string]provider.Family{
		"g":         provider.FamilyGoogle,
		"gemini":    provider.FamilyGoogle,
		"a":         provider.FamilyAnthropic,
		"anthropic": provider.FamilyAnthropic,
		"o":         provider.FamilyOpenAI,
		"openai":    provider.FamilyOpenAI,
	}
	for in, want := range cases {
		got, err := providerFamily(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestProviderFamily_RejectsUnknown(t *testing.T) {
	_, err := providerFamily("sideways")
	assert.Error(t, err)
}

func TestResolveAPIKey_PrefersFlag(t *testing.T) {
	key, err := resolveAPIKey("flag-key", provider.FamilyGoogle)
	require.NoError(t, err)
	assert.Equal(t, "flag-key", key)
}

func TestResolveAPIKey_FallsBackToEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	key, err := resolveAPIKey("", provider.FamilyAnthropic)
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)
}

func TestResolveAPIKey_ErrorsWithoutEitherSource(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := resolveAPIKey("", provider.FamilyOpenAI)
	assert.Error(t, err)
}

func TestEnvVarFor(t *testing.T) {
	assert.Equal(t, "GEMINI_API_KEY", envVarFor(provider.FamilyGoogle))
	assert.Equal(t, "ANTHROPIC_API_KEY", envVarFor(provider.FamilyAnthropic))
	assert.Equal(t, "OPENAI_API_KEY", envVarFor(provider.FamilyOpenAI))
}
