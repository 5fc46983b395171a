// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package embedindex

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalEmbedderDeterministic(t *testing.T) {
	e := NewLocalEmbedder(128)
	a, err := e.Embed(context.Background(), []string{"hello world"})
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), []string{"hello world"})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestLocalEmbedderDimensions(t *testing.T) {
	e := NewLocalEmbedder(64)
	vecs, err := e.Embed(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		require.Len(t, v, 64)
	}
}

func TestLocalEmbedderIsNormalized(t *testing.T) {
	e := NewLocalEmbedder(32)
	vecs, err := e.Embed(context.Background(), []string{"func Add(a, b int) int { return a + b }"})
	require.NoError(t, err)

	var sumSquares float64
	for _, f := range vecs[0] {
		sumSquares += float64(f) * float64(f)
	}
	require.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-4)
}

func TestLocalEmbedderEmptyInput(t *testing.T) {
	e := NewLocalEmbedder(8)
	vecs, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, vecs)
}

func TestLocalEmbedderDefaultDims(t *testing.T) {
	e := NewLocalEmbedder(0)
	vecs, err := e.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	require.Len(t, vecs[0], 768)
}
