// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package rpcserver

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ignoredDirs lists the directories the watcher never registers; a
// long-running server has no reason to watch VCS internals or dependency
// caches it never reads from anyway.
var ignoredDirs = []string{".git", "node_modules", ".idea", "vendor", "__pycache__"}

// invalidator is the narrow slice of contextcache.Cache the watcher needs,
// kept as an interface so tests can stub it without a real Badger db.
type invalidator interface {
	InvalidateAll() error
}

// workspaceWatcher recursively watches a workspace root with fsnotify and
// invalidates the context cache once a debounce window passes with no
// further changes. This is the rpcserver half of the "IDE-routed" story:
// when an external host keeps a Server running across many prompts, the
// repo map and pre-search results it memoized must not go stale silently.
type workspaceWatcher struct {
	root     string
	cache    invalidator
	debounce time.Duration
	watcher  *fsnotify.Watcher

	stopOnce sync.Once
	done     chan struct{}
}

func newWorkspaceWatcher(root string, cache invalidator) (*workspaceWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &workspaceWatcher{
		root:     root,
		cache:    cache,
		debounce: 300 * time.Millisecond,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// start watches root and every subdirectory, and runs until ctx is
// cancelled or stop is called. It never returns an error after the
// initial watch registration; individual fsnotify errors are swallowed,
// matching the "don't let a watcher failure take down a run" stance the
// rest of this package's hooks also take.
func (w *workspaceWatcher) start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.loop(ctx)
	return nil
}

func (w *workspaceWatcher) stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *workspaceWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *workspaceWatcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, dir := range ignoredDirs {
		if base == dir || strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *workspaceWatcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	invalidate := func() {
		if err := w.cache.InvalidateAll(); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				_ = w.watcher.Add(event.Name) // no-op if not a directory
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			invalidate()
			timer = nil
			timerC = nil
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
