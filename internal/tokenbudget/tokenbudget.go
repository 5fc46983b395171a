// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package tokenbudget gives RepoMap (spec.md §4.2) and PromptAssembler
// (§4.13) a shared notion of "how many tokens is this text", backed by
// pkoukk/tiktoken-go's cl100k_base encoding instead of a char/4 heuristic.
package tokenbudget

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens in text under some encoding.
type Counter interface {
	Count(text string) int
	// Truncate returns the longest prefix of text whose token count is
	// <= limit. It never splits a multi-byte rune.
	Truncate(text string, limit int) string
}

// cl100k wraps a tiktoken-go BPE encoding for cl100k_base (GPT-3.5/4's
// encoding; close enough for budget accounting across provider families,
// since none of them publish a canonical Go tokenizer).
type cl100k struct {
	enc *tiktoken.Tiktoken
}

var (
	shared     Counter
	sharedOnce sync.Once
)

// Default returns the process-wide cl100k_base Counter, falling back to a
// char/4 estimator if the BPE ranks can't be loaded (e.g. no network
// access to fetch them and no bundled cache) so callers always get a
// usable Counter rather than having to handle an error at every call
// site.
func Default() Counter {
	sharedOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			shared = charEstimator{}
			return
		}
		shared = cl100k{enc: enc}
	})
	return shared
}

func (c cl100k) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

func (c cl100k) Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	ids := c.enc.Encode(text, nil, nil)
	if len(ids) <= limit {
		return text
	}
	return c.enc.Decode(ids[:limit])
}

// charEstimator is the degraded fallback: ~4 characters per token, the
// same ratio the teacher's context package uses for its own
// defaultTokenCounter when no real tokenizer is wired in.
type charEstimator struct{}

const charsPerToken = 4.0

func (charEstimator) Count(text string) int {
	return int(float64(len([]rune(text))) / charsPerToken)
}

func (charEstimator) Truncate(text string, limit int) string {
	runes := []rune(text)
	maxChars := int(float64(limit) * charsPerToken)
	if maxChars >= len(runes) {
		return text
	}
	if maxChars < 0 {
		maxChars = 0
	}
	return string(runes[:maxChars])
}
