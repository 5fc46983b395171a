// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package editengine implements replace-in-file's three-tier match
// ladder and the edit-fixer self-correction fallback (spec.md §4.6,
// §4.6a), grounded on original_source/forge-agent/src/edit_agent.rs and
// edit_fixer.rs.
package editengine

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchTier names which strategy in the ladder produced a match.
type MatchTier int

const (
	TierExact MatchTier = iota
	TierFlexibleWhitespace
	TierRegex
	TierFixer
)

func (t MatchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierFlexibleWhitespace:
		return "flexible_whitespace"
	case TierRegex:
		return "regex"
	default:
		return "fixer"
	}
}

// AmbiguousMatchError is returned when a tier's pattern matches more than
// once: the caller enumerates the line numbers so the model can retry
// with (start_line, end_line) to disambiguate.
type AmbiguousMatchError struct {
	Tier  MatchTier
	Lines []int
}

func (e *AmbiguousMatchError) Error() string {
	strs := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		strs[i] = fmt.Sprintf("%d", l)
	}
	return fmt.Sprintf("ambiguous match (%s tier): old_str occurs on lines [%s]", e.Tier, strings.Join(strs, ", "))
}

// NoMatchError is returned when a tier's pattern matches nowhere.
type NoMatchError struct {
	Tier MatchTier
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no match (%s tier)", e.Tier)
}

// MatchResult is one successful match: the byte span of oldStr within
// content, and which tier found it.
type MatchResult struct {
	Tier       MatchTier
	Start, End int
}

// FindMatch runs the exact -> flexible-whitespace -> regex ladder against
// content, within the optional [startLine, endLine] bound (1-indexed,
// inclusive; endLine == 0 means "to end of file"). It returns the first
// tier that produces exactly one match; AmbiguousMatchError if a tier
// matches more than once; NoMatchError if every tier draws a blank.
func FindMatch(content, oldStr string, startLine, endLine int) (MatchResult, error) {
	searchSpace, offset := boundContent(content, startLine, endLine)

	if r, err := matchExact(searchSpace, oldStr); err == nil {
		r.Start += offset
		r.End += offset
		return r, nil
	} else if _, ok := err.(*AmbiguousMatchError); ok {
		return MatchResult{}, annotateLines(err, content, offset)
	}

	if r, err := matchFlexibleWhitespace(searchSpace, oldStr); err == nil {
		r.Start += offset
		r.End += offset
		return r, nil
	} else if _, ok := err.(*AmbiguousMatchError); ok {
		return MatchResult{}, annotateLines(err, content, offset)
	}

	if r, err := matchRegex(searchSpace, oldStr); err == nil {
		r.Start += offset
		r.End += offset
		return r, nil
	} else if _, ok := err.(*AmbiguousMatchError); ok {
		return MatchResult{}, annotateLines(err, content, offset)
	}

	return MatchResult{}, &NoMatchError{Tier: TierRegex}
}

// boundContent slices content to [startLine, endLine] (1-indexed,
// inclusive) if either is non-zero, returning the slice and its byte
// offset into the original content.
func boundContent(content string, startLine, endLine int) (string, int) {
	if startLine == 0 && endLine == 0 {
		return content, 0
	}
	lines := strings.SplitAfter(content, "\n")
	if startLine < 1 {
		startLine = 1
	}
	if endLine == 0 || endLine > len(lines) {
		endLine = len(lines)
	}
	offset := 0
	for i := 0; i < startLine-1 && i < len(lines); i++ {
		offset += len(lines[i])
	}
	var b strings.Builder
	for i := startLine - 1; i < endLine && i < len(lines); i++ {
		b.WriteString(lines[i])
	}
	return b.String(), offset
}

func matchExact(content, oldStr string) (MatchResult, error) {
	return findAllOccurrences(content, oldStr, TierExact)
}

// matchFlexibleWhitespace tolerates differences in leading indentation and
// internal runs of whitespace: oldStr's lines are joined into a regex
// where each run of whitespace becomes `\s+` and leading indentation is
// made optional.
func matchFlexibleWhitespace(content, oldStr string) (MatchResult, error) {
	pattern := flexibleWhitespacePattern(oldStr)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return MatchResult{}, &NoMatchError{Tier: TierFlexibleWhitespace}
	}
	return findAllRegexOccurrences(content, re, TierFlexibleWhitespace)
}

func flexibleWhitespacePattern(oldStr string) string {
	lines := strings.Split(oldStr, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		fields := strings.Fields(trimmed)
		escaped := make([]string, len(fields))
		for j, f := range fields {
			escaped[j] = regexp.QuoteMeta(f)
		}
		lines[i] = `[ \t]*` + strings.Join(escaped, `\s+`)
	}
	return strings.Join(lines, `\r?\n`)
}

// matchRegex treats oldStr as a literal-escaped regex (so it behaves like
// an exact match) unless it already looks like it contains regex
// metacharacters, in which case it's used as-is; this is the conservative
// escaping the spec calls for: regex is a last resort, not a footgun.
func matchRegex(content, oldStr string) (MatchResult, error) {
	pattern := oldStr
	if !looksLikeRegex(oldStr) {
		pattern = regexp.QuoteMeta(oldStr)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return MatchResult{}, &NoMatchError{Tier: TierRegex}
	}
	return findAllRegexOccurrences(content, re, TierRegex)
}

func looksLikeRegex(s string) bool {
	return strings.ContainsAny(s, `.*+?()[]{}|^$\`)
}

func findAllOccurrences(content, needle string, tier MatchTier) (MatchResult, error) {
	if needle == "" {
		return MatchResult{}, &NoMatchError{Tier: tier}
	}
	var starts []int
	from := 0
	for {
		idx := strings.Index(content[from:], needle)
		if idx < 0 {
			break
		}
		starts = append(starts, from+idx)
		from = from + idx + len(needle)
	}
	switch len(starts) {
	case 0:
		return MatchResult{}, &NoMatchError{Tier: tier}
	case 1:
		return MatchResult{Tier: tier, Start: starts[0], End: starts[0] + len(needle)}, nil
	default:
		return MatchResult{}, &AmbiguousMatchError{Tier: tier, Lines: byteOffsetsToLines(content, starts)}
	}
}

func findAllRegexOccurrences(content string, re *regexp.Regexp, tier MatchTier) (MatchResult, error) {
	locs := re.FindAllStringIndex(content, -1)
	switch len(locs) {
	case 0:
		return MatchResult{}, &NoMatchError{Tier: tier}
	case 1:
		return MatchResult{Tier: tier, Start: locs[0][0], End: locs[0][1]}, nil
	default:
		starts := make([]int, len(locs))
		for i, loc := range locs {
			starts[i] = loc[0]
		}
		return MatchResult{}, &AmbiguousMatchError{Tier: tier, Lines: byteOffsetsToLines(content, starts)}
	}
}

func byteOffsetsToLines(content string, offsets []int) []int {
	lines := make([]int, len(offsets))
	for i, off := range offsets {
		lines[i] = 1 + strings.Count(content[:off], "\n")
	}
	return lines
}

// annotateLines rewrites an AmbiguousMatchError's line numbers (which were
// computed against a bounded slice) to absolute line numbers against the
// full file content.
func annotateLines(err error, fullContent string, offset int) error {
	ambErr, ok := err.(*AmbiguousMatchError)
	if !ok {
		return err
	}
	linesBeforeOffset := strings.Count(fullContent[:offset], "\n")
	absolute := make([]int, len(ambErr.Lines))
	for i, l := range ambErr.Lines {
		absolute[i] = l + linesBeforeOffset
	}
	return &AmbiguousMatchError{Tier: ambErr.Tier, Lines: absolute}
}

// ApplyMatch splices replacement into content at the span identified by
// match.
func ApplyMatch(content string, match MatchResult, replacement string) string {
	return content[:match.Start] + replacement + content[match.End:]
}
