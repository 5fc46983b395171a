// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package embedindex

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// GeminiEmbedder calls Google's text-embedding-004 model via
// google.golang.org/genai, grounded on
// original_source/.../embeddings.rs's Gemini batchEmbedContents path.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder builds a GeminiEmbedder from an API key.
func NewGeminiEmbedder(ctx context.Context, apiKey string) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: %w", err)
	}
	return &GeminiEmbedder{client: client, model: "text-embedding-004"}, nil
}

func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

// OpenAICompatibleEmbedder calls any OpenAI-schema /embeddings endpoint
// (OpenAI itself, or a gateway with the same shape) via
// sashabaranov/go-openai, matching ProviderAdapter's own reuse of that
// client for completions (spec.md §4.8).
type OpenAICompatibleEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAICompatibleEmbedder builds an embedder against baseURL (pass ""
// for the default OpenAI endpoint).
func NewOpenAICompatibleEmbedder(apiKey, baseURL, model string) *OpenAICompatibleEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAICompatibleEmbedder{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAICompatibleEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// LocalEmbedder is a deterministic hash-projection embedder: not a
// production-quality embedding model, but useful for tests and
// air-gapped-unfriendly environments where no embedding API is reachable
// (spec.md §4.7's "local" path). Each token's SHA-256 hash is projected
// onto a fixed-width vector via its first bytes, summed across tokens and
// L2-normalized, so near-duplicate text lands near itself under cosine
// similarity without calling out to any model.
type LocalEmbedder struct {
	dims int
}

// NewLocalEmbedder builds a LocalEmbedder producing vectors of the given
// width (768 matches the other two embedders' typical output size).
func NewLocalEmbedder(dims int) *LocalEmbedder {
	if dims <= 0 {
		dims = 768
	}
	return &LocalEmbedder{dims: dims}
}

func (l *LocalEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = l.embedOne(t)
	}
	return out, nil
}

func (l *LocalEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, l.dims)
	for _, word := range tokenize(text) {
		sum := sha256.Sum256([]byte(word))
		for j := 0; j < l.dims; j++ {
			vec[j] += float32(sum[j%len(sum)]) / 255.0
		}
	}
	normalize(vec)
	return vec
}

func tokenize(text string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			cur = append(cur, r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

func normalize(v []float32) {
	var sumSquares float64
	for _, f := range v {
		sumSquares += float64(f) * float64(f)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}
