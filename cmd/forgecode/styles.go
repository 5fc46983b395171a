// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import "github.com/charmbracelet/lipgloss"

// Color palette for the CLI's context banner and diff review prompts.
var (
	colorAccent  = lipgloss.Color("#2CD7C7")
	colorMuted   = lipgloss.Color("#6C7A80")
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorAdded   = lipgloss.Color("#2CD7C7")
	colorRemoved = lipgloss.Color("#E74C3C")
)

var (
	styleContext = lipgloss.NewStyle().Foreground(colorAccent)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSuccess = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	styleAdded   = lipgloss.NewStyle().Foreground(colorAdded)
	styleRemoved = lipgloss.NewStyle().Foreground(colorRemoved)

	diffBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1)
)
