// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package diffproto implements the diff-preview protocol: proposed edits
// are never written to disk by a tool; they are hunked and surfaced as a
// PendingDiff for per-hunk accept/reject by the host layer.
package diffproto

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// HunkStatus is the per-hunk state machine: Pending -> Accepted|Rejected.
type HunkStatus int

const (
	Pending HunkStatus = iota
	Accepted
	Rejected
)

func (s HunkStatus) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Hunk is a contiguous changed region in a line-based diff, with context.
type Hunk struct {
	OldStart int `json:"old_start"`
	OldLines int `json:"old_lines"`
	NewStart int `json:"new_start"`
	NewLines int `json:"new_lines"`
}

// hunkState pairs a Hunk with its resolution status.
type hunkState struct {
	Hunk   Hunk
	Status HunkStatus
}

// PendingDiff is a file-level diff proposed by the agent, awaiting
// per-hunk resolution before anything is written to disk.
type PendingDiff struct {
	mu sync.Mutex

	DiffID     string
	ToolCallID string
	FilePath   string
	OldContent string
	NewContent string
	hunks      []hunkState
}

// NewPendingDiff computes hunks between old and new content and returns a
// PendingDiff with every hunk seeded Pending.
func NewPendingDiff(toolCallID, filePath, oldContent, newContent string) *PendingDiff {
	hunks := ComputeHunks(oldContent, newContent)
	states := make([]hunkState, len(hunks))
	for i, h := range hunks {
		states[i] = hunkState{Hunk: h, Status: Pending}
	}
	return &PendingDiff{
		DiffID:     uuid.NewString(),
		ToolCallID: toolCallID,
		FilePath:   filePath,
		OldContent: oldContent,
		NewContent: newContent,
		hunks:      states,
	}
}

// Hunks returns a snapshot of the hunk/status pairs.
func (d *PendingDiff) Hunks() [](struct {
	Hunk   Hunk
	Status HunkStatus
}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]struct {
		Hunk   Hunk
		Status HunkStatus
	}, len(d.hunks))
	for i, h := range d.hunks {
		out[i] = struct {
			Hunk   Hunk
			Status HunkStatus
		}{h.Hunk, h.Status}
	}
	return out
}

// IsFullyResolved reports whether every hunk is non-Pending.
func (d *PendingDiff) IsFullyResolved() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.hunks {
		if h.Status == Pending {
			return false
		}
	}
	return true
}

// HasAcceptedHunk reports whether at least one hunk is Accepted.
func (d *PendingDiff) HasAcceptedHunk() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.hunks {
		if h.Status == Accepted {
			return true
		}
	}
	return false
}

// AcceptHunk accepts the hunk at index, if present.
func (d *PendingDiff) AcceptHunk(index int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index >= 0 && index < len(d.hunks) {
		d.hunks[index].Status = Accepted
	}
}

// RejectHunk rejects the hunk at index, if present.
func (d *PendingDiff) RejectHunk(index int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index >= 0 && index < len(d.hunks) {
		d.hunks[index].Status = Rejected
	}
}

// AcceptAll accepts every still-pending hunk.
func (d *PendingDiff) AcceptAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.hunks {
		if d.hunks[i].Status == Pending {
			d.hunks[i].Status = Accepted
		}
	}
}

// RejectAll rejects every still-pending hunk.
func (d *PendingDiff) RejectAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.hunks {
		if d.hunks[i].Status == Pending {
			d.hunks[i].Status = Rejected
		}
	}
}

// ReplaceWithEditedContent swaps NewContent for content hand-edited by the
// reviewer (the diff review UI's external-editor escape hatch), rehunks
// against the unchanged OldContent, and accepts every resulting hunk since
// the reviewer has already approved the content by saving it.
func (d *PendingDiff) ReplaceWithEditedContent(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.NewContent = content
	hunks := ComputeHunks(d.OldContent, content)
	states := make([]hunkState, len(hunks))
	for i, h := range hunks {
		states[i] = hunkState{Hunk: h, Status: Accepted}
	}
	d.hunks = states
}

// BuildResolvedContent walks old-content lines, emitting the new-content
// lines for Accepted hunks and re-emitting the old-content lines for
// Rejected or still-Pending hunks. Trailing newline is preserved if either
// side had one. Ported line-for-line from
// original_source/lapce-app/src/ai_diff.rs::build_resolved_content.
func (d *PendingDiff) BuildResolvedContent() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.hunks) == 0 {
		return d.OldContent
	}

	oldLines := splitLines(d.OldContent)
	newLines := splitLines(d.NewContent)

	var result []string
	oldCursor := 0

	for _, hs := range d.hunks {
		h := hs.Hunk
		for oldCursor < h.OldStart && oldCursor < len(oldLines) {
			result = append(result, oldLines[oldCursor])
			oldCursor++
		}

		switch hs.Status {
		case Accepted:
			newEnd := minInt(h.NewStart+h.NewLines, len(newLines))
			for i := h.NewStart; i < newEnd; i++ {
				result = append(result, newLines[i])
			}
			oldCursor = minInt(h.OldStart+h.OldLines, len(oldLines))
		default: // Rejected or Pending
			oldEnd := minInt(h.OldStart+h.OldLines, len(oldLines))
			for i := h.OldStart; i < oldEnd; i++ {
				result = append(result, oldLines[i])
			}
			oldCursor = oldEnd
		}
	}

	for oldCursor < len(oldLines) {
		result = append(result, oldLines[oldCursor])
		oldCursor++
	}

	out := strings.Join(result, "\n")
	if strings.HasSuffix(d.NewContent, "\n") || strings.HasSuffix(d.OldContent, "\n") {
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
