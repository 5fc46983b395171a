// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package toolregistry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/forge-ide/forge-agent/internal/agent"
)

// maxWebContentChars bounds how much rendered page text a web tool
// returns, keeping a single fetch from flooding the context window.
const maxWebContentChars = 8000

// webFetchTimeout bounds how long a headless-browser load is allowed to
// hang before the tool reports failure instead of the call blocking the
// turn indefinitely.
const webFetchTimeout = 20 * time.Second

// pkgGoDevBaseURL is the default fetch_documentation backend: Go's own
// package documentation site, queried as a plain HTTP GET rather than
// rendered, since its content is static server-rendered HTML.
const pkgGoDevBaseURL = "https://pkg.go.dev/"

// searchEngineURL is the default web_search backend. Its results are
// rendered (and some engines require JS), so web_search goes through the
// same headless-browser path as web_fetch rather than a plain HTTP GET.
const searchEngineURL = "https://duckduckgo.com/html/?q="

// WebDefs returns spec.md §4.5's "Web" group. No corpus example wires
// go-rod to an actual call site (its one go.mod appearance is otherwise
// unused), so its page-load API here follows the library's own
// documented shape rather than a worked example — flagged in DESIGN.md
// alongside the Gemini function-calling surface as unconfirmed-by-corpus.
func WebDefs() []Def {
	return []Def{
		webSearchDef(),
		webFetchDef(),
		fetchDocumentationDef(),
	}
}

func webSearchDef() Def {
	return Def{
		Name:        "web_search",
		Description: "Search the web for a query and return the top results' rendered text.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"query": map[string]any{"type": "string"}},
			"required":   []string{"query"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			query, err := requireString(args, "query")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			text, err := renderPage(ctx, searchEngineURL+url.QueryEscape(query))
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: truncateWebContent(text)}
		},
	}
}

func webFetchDef() Def {
	return Def{
		Name:        "web_fetch",
		Description: "Fetch a URL and return its rendered text content.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"url": map[string]any{"type": "string"}},
			"required":   []string{"url"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			target, err := requireString(args, "url")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			text, err := renderPage(ctx, target)
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: truncateWebContent(text)}
		},
	}
}

func fetchDocumentationDef() Def {
	return Def{
		Name:        "fetch_documentation",
		Description: "Fetch reference documentation for a library or package by name (e.g. a Go import path).",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"package": map[string]any{"type": "string"}},
			"required":   []string{"package"},
		},
		IsMutating: false,
		Category:   CategoryReadOnly,
		OutputKind: KindDefault,
		Handler: func(ctx context.Context, args map[string]any, _ string, _ bool) agent.ToolResult {
			pkg, err := requireString(args, "package")
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			body, err := httpGet(ctx, pkgGoDevBaseURL+strings.TrimPrefix(pkg, "/"))
			if err != nil {
				return agent.ToolResult{Success: false, Output: err.Error()}
			}
			return agent.ToolResult{Success: true, Output: truncateWebContent(body)}
		},
	}
}

// renderPage drives a headless Chromium instance (go-rod) to load target
// and returns its visible body text, for pages that need JS execution to
// produce meaningful content.
func renderPage(ctx context.Context, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, webFetchTimeout)
	defer cancel()

	browser := rod.New().Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("web tool: launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return "", fmt.Errorf("web tool: open page: %w", err)
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("web tool: wait load: %w", err)
	}
	body, err := page.Element("body")
	if err != nil {
		return "", fmt.Errorf("web tool: locate body: %w", err)
	}
	text, err := body.Text()
	if err != nil {
		return "", fmt.Errorf("web tool: extract text: %w", err)
	}
	return text, nil
}

// httpGet is a plain, non-rendered GET used for fetch_documentation,
// whose target is static server-rendered HTML and doesn't need a browser.
func httpGet(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("web tool: %s returned %s", target, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func truncateWebContent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxWebContentChars {
		return s[:maxWebContentChars] + "\n...(truncated)"
	}
	return s
}
