// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/forge-ide/forge-agent/internal/diffproto"
)

// reviewDiff walks every hunk of a PendingDiff through an interactive
// bubbletea TUI, letting the user accept, reject, or hand-edit each one
// before anything reaches disk (spec.md §3: nothing is written until at
// least one hunk is Accepted). autoAccept skips the TUI entirely and
// accepts every hunk; run.go sets it only for --init's unattended
// exploration.
func reviewDiff(pd *diffproto.PendingDiff, autoAccept bool) error {
	if autoAccept {
		pd.AcceptAll()
		return nil
	}

	if len(pd.Hunks()) == 0 {
		return nil
	}

	m := newDiffReviewModel(pd, defaultDiffReviewConfig())
	program := tea.NewProgram(m, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("diff review: %w", err)
	}

	if result, ok := final.(diffReviewModel); ok && result.cancelled {
		return fmt.Errorf("diff review cancelled: %s", pd.FilePath)
	}
	return nil
}

// diffReviewConfig mirrors the knobs the teacher's diff review TUI
// exposes: a safety confirmation before bulk-accepting, and the external
// editor invoked by the "e" escape hatch.
type diffReviewConfig struct {
	editor           string
	confirmAcceptAll bool
}

func defaultDiffReviewConfig() diffReviewConfig {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	return diffReviewConfig{editor: editor, confirmAcceptAll: true}
}

// editorResultMsg carries the outcome of an external-editor invocation
// back into the bubbletea event loop.
type editorResultMsg struct {
	content string
	err     error
}

// diffReviewModel is the bubbletea model driving per-hunk diff review for
// a single PendingDiff. It mutates pd directly as the user accepts,
// rejects, or edits hunks, so the caller reads the outcome straight off
// pd once the program exits.
type diffReviewModel struct {
	pd     *diffproto.PendingDiff
	config diffReviewConfig

	oldLines []string
	newLines []string

	currentHunk int
	viewport    viewport.Model

	width, height int
	ready         bool

	showConfirm  bool
	confirmInput string
	showHelp     bool
	cancelled    bool
	quitting     bool
}

func newDiffReviewModel(pd *diffproto.PendingDiff, config diffReviewConfig) diffReviewModel {
	return diffReviewModel{
		pd:       pd,
		config:   config,
		oldLines: strings.Split(pd.OldContent, "\n"),
		newLines: strings.Split(pd.NewContent, "\n"),
	}
}

func (m diffReviewModel) Init() tea.Cmd {
	return nil
}

func (m diffReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight, footerHeight := 2, 3
		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.updateViewportContent()
		return m, nil

	case tea.KeyMsg:
		if m.showConfirm {
			return m.handleConfirmInput(msg)
		}
		if m.showHelp {
			if msg.String() == "q" || msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		return m.handleKey(msg)

	case editorResultMsg:
		if msg.err == nil {
			m.pd.ReplaceWithEditedContent(msg.content)
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m diffReviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.pd.AcceptHunk(m.currentHunk)
		return m.advance()

	case "n", "N":
		m.pd.RejectHunk(m.currentHunk)
		return m.advance()

	case "e", "E":
		return m, m.openEditor()

	case "?":
		m.showHelp = true

	case "a", "A":
		if m.config.confirmAcceptAll {
			m.showConfirm = true
			m.confirmInput = ""
		} else {
			m.pd.AcceptAll()
			m.quitting = true
			return m, tea.Quit
		}

	case "q", "Q", "ctrl+c":
		m.pd.RejectAll()
		m.cancelled = true
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		m.viewport.LineDown(1)

	case "k", "up":
		m.viewport.LineUp(1)

	case "ctrl+d":
		m.viewport.HalfViewDown()

	case "ctrl+u":
		m.viewport.HalfViewUp()

	case "left", "h":
		if m.currentHunk > 0 {
			m.currentHunk--
			m.updateViewportContent()
		}

	case "right", "l":
		if m.currentHunk < len(m.pd.Hunks())-1 {
			m.currentHunk++
			m.updateViewportContent()
		}
	}
	return m, nil
}

func (m diffReviewModel) advance() (tea.Model, tea.Cmd) {
	if m.currentHunk < len(m.pd.Hunks())-1 {
		m.currentHunk++
		m.updateViewportContent()
		return m, nil
	}
	m.quitting = true
	return m, tea.Quit
}

func (m diffReviewModel) handleConfirmInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.showConfirm = false
		if strings.ToLower(m.confirmInput) == "yes" {
			m.pd.AcceptAll()
			m.quitting = true
			return m, tea.Quit
		}
		m.confirmInput = ""

	case "esc":
		m.showConfirm = false
		m.confirmInput = ""

	case "backspace":
		if len(m.confirmInput) > 0 {
			m.confirmInput = m.confirmInput[:len(m.confirmInput)-1]
		}

	default:
		if len(msg.String()) == 1 {
			m.confirmInput += msg.String()
		}
	}
	return m, nil
}

// openEditor writes the file's proposed content to a temp file, suspends
// the TUI, and hands the terminal to $EDITOR. Saving replaces the whole
// file's proposed content, rehunks it and accepts every resulting hunk; a
// non-zero exit leaves the diff untouched.
func (m diffReviewModel) openEditor() tea.Cmd {
	tmp, err := os.CreateTemp("", "forgecode-diff-*-"+sanitizeBase(m.pd.FilePath))
	if err != nil {
		return func() tea.Msg { return editorResultMsg{err: err} }
	}
	path := tmp.Name()
	if _, err := tmp.WriteString(m.pd.NewContent); err != nil {
		tmp.Close()
		os.Remove(path)
		return func() tea.Msg { return editorResultMsg{err: err} }
	}
	tmp.Close()

	cmd := exec.Command(m.config.editor, path)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer os.Remove(path)
		if err != nil {
			return editorResultMsg{err: err}
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return editorResultMsg{err: readErr}
		}
		return editorResultMsg{content: string(content)}
	})
}

func sanitizeBase(path string) string {
	base := path
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		base = path[i+1:]
	}
	return base
}

func (m *diffReviewModel) updateViewportContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHunk())
}

func (m diffReviewModel) renderHunk() string {
	hunks := m.pd.Hunks()
	if m.currentHunk >= len(hunks) {
		return ""
	}
	return renderHunkPreview(m.oldLines, m.newLines, hunks[m.currentHunk].Hunk)
}

func (m diffReviewModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch {
	case m.showHelp:
		b.WriteString(m.renderHelp())
	case m.showConfirm:
		b.WriteString(m.renderConfirm())
	default:
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m diffReviewModel) renderHeader() string {
	hunks := m.pd.Hunks()
	title := styleContext.Bold(true).Render(fmt.Sprintf("%s — hunk %d/%d", m.pd.FilePath, m.currentHunk+1, len(hunks)))
	status := styleMuted.Render(hunks[m.currentHunk].Status.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", status)
}

func (m diffReviewModel) renderFooter() string {
	return styleMuted.Render("y accept · n reject · e edit · a accept-all · ←/→ hunk · ? help · q quit")
}

func (m diffReviewModel) renderHelp() string {
	lines := []string{
		"y / Y        accept the current hunk",
		"n / N        reject the current hunk",
		"e / E        open $EDITOR on the proposed file content",
		"a / A        accept all remaining hunks",
		"←/h, →/l     move between hunks",
		"j/k, ctrl+d/u  scroll the hunk body",
		"q / ctrl+c   cancel the review, reject everything",
		"?            toggle this help",
	}
	return diffBox.Render(strings.Join(lines, "\n"))
}

func (m diffReviewModel) renderConfirm() string {
	return diffBox.Render(fmt.Sprintf("Accept all remaining hunks in %s? Type \"yes\" and press enter: %s", m.pd.FilePath, m.confirmInput))
}

// renderHunkPreview renders the removed (old) and added (new) lines of a
// single hunk, styled like a unified diff, for display inside diffBox.
func renderHunkPreview(oldLines, newLines []string, h diffproto.Hunk) string {
	var b strings.Builder
	for i := 0; i < h.OldLines; i++ {
		idx := h.OldStart + i
		if idx < len(oldLines) {
			fmt.Fprintln(&b, styleRemoved.Render("- "+oldLines[idx]))
		}
	}
	for i := 0; i < h.NewLines; i++ {
		idx := h.NewStart + i
		if idx < len(newLines) {
			fmt.Fprintln(&b, styleAdded.Render("+ "+newLines[idx]))
		}
	}
	return diffBox.Render(strings.TrimRight(b.String(), "\n"))
}
