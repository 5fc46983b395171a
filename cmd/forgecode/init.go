// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forge-ide/forge-agent/internal/memory"
)

// initPrompt is the task handed to the agent for `forgecode --init`: it
// instructs the agent to explore the project and write a FORGE.md that
// future sessions load as project memory (spec.md §6, §4.4).
const initPrompt = `You are exploring an unfamiliar project in order to write its ` + memory.FileName + `.

Exploration:
1. List the top-level files and directories first.
2. Read the README if one exists — it is usually the fastest way in.
3. Read up to ten more files that look central: build manifests, entry
   points, and whatever the README pointed at. Let each file you read
   narrow down what to read next.
4. Decide whether this is a code project (look for go.mod, package.json,
   requirements.txt, pyproject.toml, Cargo.toml, pom.xml, build.gradle,
   or a src directory) or a non-code project (docs, notes, research).

Write the result to ` + memory.FileName + ` with write_to_file:

For a code project, cover:
- Project overview: purpose, main technologies, architecture, in a few sentences.
- Building and running: the commands to build, run, and test, inferred from what you read.
- Development conventions: coding style, testing practices, contribution norms you can infer.
- Architecture notes: the key modules and how they interact.

For a non-code project, cover:
- What the directory is for and what it contains.
- The most important files and what's in them.
- How the contents are meant to be used.

The file must be well-formed Markdown and nothing else.`

// checkedInitPrompt returns initPrompt after refusing to overwrite an
// existing memory file (spec.md §6: "--init pre-checks for an existing
// memory file and refuses to overwrite").
func checkedInitPrompt(workspace string) (string, error) {
	absWorkspace, err := filepath.Abs(workspace)
	if err != nil {
		return "", fmt.Errorf("bad workspace path %q: %w", workspace, err)
	}
	memoryPath := filepath.Join(absWorkspace, memory.FileName)
	if _, err := os.Stat(memoryPath); err == nil {
		return "", fmt.Errorf("%s already exists at %s; delete it first to regenerate", memory.FileName, memoryPath)
	}
	return initPrompt, nil
}
