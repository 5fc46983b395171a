package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TierPath resolves the on-disk FORGE.md path for a tier; dir is only
// consulted for TierSubdirectory.
func (s *Store) TierPath(tier Tier, dir string) string {
	switch tier {
	case TierGlobal:
		return filepath.Join(s.globalDir, FileName)
	case TierWorkspace:
		return filepath.Join(s.workspace, FileName)
	default:
		return filepath.Join(dir, FileName)
	}
}

// SaveMemory appends a learned-memory line to the given tier's FORGE.md,
// creating the file (and SectionHeader) if it doesn't exist yet. The raw
// text is sanitized: CR/LF is stripped (a memory is always a single
// line) and any leading "-" or whitespace the model added is trimmed,
// since the bullet prefix is added here, once.
func (s *Store) SaveMemory(tier Tier, dir, text string) error {
	line := sanitize(text)
	if line == "" {
		return nil
	}

	path := s.TierPath(tier, dir)
	existing := ""
	if fileExists(path) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("memory: read %s: %w", path, err)
		}
		existing = string(raw)
	}

	updated := appendLearnedLine(existing, line)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("memory: create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("memory: write %s: %w", path, err)
	}
	return nil
}

// sanitize strips CR/LF (memories are single lines) and any leading
// "-"/whitespace the model prepended, since SaveMemory owns bullet
// formatting.
func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "- \t")
	return strings.TrimSpace(text)
}

// appendLearnedLine inserts "- line" at the end of the SectionHeader
// section, creating the header if content has none yet.
func appendLearnedLine(content, line string) string {
	bullet := "- " + line
	if !strings.Contains(content, SectionHeader) {
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if content != "" {
			content += "\n"
		}
		return content + SectionHeader + "\n" + bullet + "\n"
	}

	idx := strings.Index(content, SectionHeader)
	head := content[:idx+len(SectionHeader)]
	tail := content[idx+len(SectionHeader):]
	tail = strings.TrimRight(tail, "\n")
	if tail == "" {
		return head + "\n" + bullet + "\n"
	}
	return head + tail + "\n" + bullet + "\n"
}
