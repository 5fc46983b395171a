// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package rpcserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-ide/forge-agent/internal/bridge"
)

func TestServer_ReadWriteFileRoundTrip(t *testing.T) {
	b := bridge.NewOSBridge(t.TempDir())
	srv := New(b, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	writeReq, _ := json.Marshal(map[string]string{"path": "a.txt", "content": "hello"})
	resp, err := http.Post(ts.URL+"/v1/bridge/write-file", "application/json", bytes.NewReader(writeReq))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	readReq, _ := json.Marshal(map[string]string{"path": "a.txt"})
	resp, err = http.Post(ts.URL+"/v1/bridge/read-file", "application/json", bytes.NewReader(readReq))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "hello", body.Content)
}

func TestServer_WorkspaceRoot(t *testing.T) {
	dir := t.TempDir()
	b := bridge.NewOSBridge(dir)
	srv := New(b, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/bridge/workspace-root")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Root string `json:"root"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, b.WorkspaceRoot(), body.Root)
}

func TestServer_UnknownPathIs404(t *testing.T) {
	srv := New(bridge.NewOSBridge(t.TempDir()), nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/bridge/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventHub_BroadcastReachesSubscriber(t *testing.T) {
	hub := newEventHub()
	sub := hub.subscribe()
	defer hub.unsubscribe(sub)

	hub.broadcast([]byte(`{"kind":"tool_call"}`))

	select {
	case payload := <-sub:
		assert.Contains(t, string(payload), "tool_call")
	default:
		t.Fatal("expected broadcast payload to be buffered for subscriber")
	}
}
