// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package contextcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/bridge"
)

type fakeSearcher struct {
	byPattern map[string][]bridge.SearchMatch
	calls     int
}

func (f *fakeSearcher) Search(_ context.Context, opts bridge.SearchOptions) ([]bridge.SearchMatch, error) {
	f.calls++
	return f.byPattern[opts.Pattern], nil
}

func TestPreSearchRendersMatchesPerKeyword(t *testing.T) {
	searcher := &fakeSearcher{byPattern: map[string][]bridge.SearchMatch{
		"validateToken": {{Path: "auth.go", Line: 10, Content: "func validateToken(t string) bool {"}},
	}}

	out, err := PreSearch(context.Background(), nil, searcher, "/ws", `rename the "validateToken" function`)
	require.NoError(t, err)
	require.Contains(t, out, "validateToken")
	require.Contains(t, out, "auth.go:10")
}

func TestPreSearchEmptyQueryYieldsNoKeywords(t *testing.T) {
	searcher := &fakeSearcher{byPattern: map[string][]bridge.SearchMatch{}}
	out, err := PreSearch(context.Background(), nil, searcher, "/ws", "the a an")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestPreSearchUsesCacheOnSecondCall(t *testing.T) {
	cache, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	searcher := &fakeSearcher{byPattern: map[string][]bridge.SearchMatch{
		"refactorPlan": {{Path: "plan.go", Line: 1, Content: "type refactorPlan struct{}"}},
	}}

	out1, err := PreSearch(context.Background(), cache, searcher, "/ws", `"refactorPlan"`)
	require.NoError(t, err)
	require.Equal(t, 1, searcher.calls)

	out2, err := PreSearch(context.Background(), cache, searcher, "/ws", `"refactorPlan"`)
	require.NoError(t, err)
	require.Equal(t, 1, searcher.calls, "second call should be served from cache, not re-search")
	require.Equal(t, out1, out2)
}

func TestPreSearchDegradesGracefullyOnNoMatches(t *testing.T) {
	searcher := &fakeSearcher{byPattern: map[string][]bridge.SearchMatch{}}
	out, err := PreSearch(context.Background(), nil, searcher, "/ws", `"someUnmatchedSymbol"`)
	require.NoError(t, err)
	require.Empty(t, out)
}
