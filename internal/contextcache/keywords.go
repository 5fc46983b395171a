// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package contextcache caches the two expensive prompt-assembly inputs —
// the repo map and a keyword-driven pre-search of the workspace — behind
// short TTLs, and implements the keyword-extraction heuristic that drives
// the pre-search. Ported from
// original_source/forge-agent/src/context_cache.rs.
package contextcache

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// RepoMapTTLSeconds and PreSearchTTLSeconds are the cache lifetimes for
// the two cached artifacts, matching the moka cache configuration in the
// ported original.
const (
	RepoMapTTLSeconds   = 300
	PreSearchTTLSeconds = 120
)

// MaxKeywords bounds how many keywords extract and survive into the
// pre-search ripgrep invocation.
const MaxKeywords = 5

var quotedSpanRE = regexp.MustCompile(`"([^"]{2,})"|` + "`([^`]{2,})`" + `|'([^']{2,})'`)

// stopWords mirrors the original's STOP_WORDS list: common English
// function words and generic coding nouns too frequent to be useful
// search keywords on their own.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "to": {}, "of": {}, "in": {},
	"on": {}, "at": {}, "by": {}, "for": {}, "with": {}, "about": {}, "as": {}, "into": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "it": {}, "its": {}, "i": {}, "you": {},
	"we": {}, "they": {}, "can": {}, "could": {}, "should": {}, "would": {}, "will": {},
	"please": {}, "use": {}, "using": {}, "file": {}, "files": {}, "code": {}, "function": {},
	"add": {}, "update": {}, "fix": {}, "make": {}, "need": {}, "want": {}, "have": {}, "has": {},
	"from": {}, "also": {}, "not": {}, "just": {}, "like": {}, "here": {}, "there": {},
}

// keywordToken is a candidate keyword and its heuristic score, prior to
// dedup and top-N selection.
type keywordToken struct {
	text  string
	score int
}

// ExtractKeywords scores and ranks candidate search terms out of free-form
// text (typically the user's latest message): quoted spans score highest
// (they are near-certain identifiers or literals named explicitly by the
// user), then tokenized words are scored by shape heuristics that
// correlate with being a code identifier rather than English prose.
func ExtractKeywords(text string) []string {
	var tokens []keywordToken
	seen := map[string]struct{}{}

	for _, m := range quotedSpanRE.FindAllStringSubmatch(text, -1) {
		span := firstNonEmpty(m[1], m[2], m[3])
		key := strings.ToLower(span)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tokens = append(tokens, keywordToken{text: span, score: 100})
	}

	for _, word := range tokenize(text) {
		key := strings.ToLower(word)
		if _, ok := seen[key]; ok {
			continue
		}
		if _, stop := stopWords[key]; stop {
			continue
		}
		score := scoreToken(word)
		if score <= 0 {
			continue
		}
		seen[key] = struct{}{}
		tokens = append(tokens, keywordToken{text: word, score: score})
	}

	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].score > tokens[j].score })

	if len(tokens) > MaxKeywords {
		tokens = tokens[:MaxKeywords]
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.text
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// tokenize splits on anything that isn't a letter, digit, underscore, or
// hyphen, discarding empty tokens.
func tokenize(text string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

// scoreToken scores a single tokenized word by shape heuristics that
// correlate with being a meaningful code-search term: snake_case/kebab-case
// structure, CamelCase/mixedCase, a leading dash (CLI flag), embedded
// digits (version/identifier), and plain length.
func scoreToken(word string) int {
	score := 0

	if strings.Contains(word, "_") || strings.Contains(word, "-") {
		score += 50
	}
	if isMixedCase(word) {
		score += 40
	}
	if strings.HasPrefix(word, "-") {
		score += 30
	}
	if containsDigit(word) {
		score += 20
	}
	if len(word) >= 6 {
		score += 15
	}
	if len(word) >= 10 {
		score += 10
	}
	if score == 0 {
		score = 5
	}

	return score
}

func isMixedCase(word string) bool {
	hasUpper, hasLower := false, false
	letters := 0
	for _, r := range word {
		if unicode.IsUpper(r) {
			hasUpper = true
			letters++
		} else if unicode.IsLower(r) {
			hasLower = true
			letters++
		}
	}
	return hasUpper && hasLower && letters > 2
}

func containsDigit(word string) bool {
	for _, r := range word {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
