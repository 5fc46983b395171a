package bridge

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// OSBridge implements Bridge directly against the local filesystem, a
// shelled-out ripgrep for Search, plain `sh -c` subprocesses for Execute
// (background processes go through ProcessSupervisor's creack/pty), and
// go-git/v5 for every VCS operation. It has no LSP of its
// own, so Definition/References/Hover/Symbols/Diagnostics always return
// empty results — the higher layers treat that identically to "no
// language server attached" (spec.md §4.1).
type OSBridge struct {
	root string
}

// NewOSBridge returns an OSBridge rooted at an absolute workspace path.
func NewOSBridge(root string) *OSBridge {
	return &OSBridge{root: filepath.Clean(root)}
}

func (b *OSBridge) WorkspaceRoot() string { return b.root }

func (b *OSBridge) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.root, path)
}

func (b *OSBridge) ReadFile(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(b.resolve(path))
	if err != nil {
		return "", fmt.Errorf("bridge: read %s: %w", path, err)
	}
	return string(data), nil
}

func (b *OSBridge) WriteFile(_ context.Context, path, content string) error {
	full := b.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("bridge: create parent dirs for %s: %w", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("bridge: write %s: %w", path, err)
	}
	return nil
}

func (b *OSBridge) CreateDir(_ context.Context, path string) error {
	if err := os.MkdirAll(b.resolve(path), 0o755); err != nil {
		return fmt.Errorf("bridge: mkdir %s: %w", path, err)
	}
	return nil
}

func (b *OSBridge) ReadDir(_ context.Context, path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(b.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("bridge: readdir %s: %w", path, err)
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, DirEntry{Name: e.Name(), IsDir: e.IsDir(), Size: info.Size()})
	}
	return out, nil
}

func (b *OSBridge) Delete(_ context.Context, path string) error {
	if err := os.RemoveAll(b.resolve(path)); err != nil {
		return fmt.Errorf("bridge: delete %s: %w", path, err)
	}
	return nil
}

func (b *OSBridge) Rename(_ context.Context, oldPath, newPath string) error {
	if err := os.Rename(b.resolve(oldPath), b.resolve(newPath)); err != nil {
		return fmt.Errorf("bridge: rename %s -> %s: %w", oldPath, newPath, err)
	}
	return nil
}

// Search shells out to ripgrep, matching the pre-search invocation style
// ported from original_source/forge-agent/src/context_cache.rs: plain
// `path:line:content` text output (--line-number --no-heading), split
// into path, line and content by a regular expression.
func (b *OSBridge) Search(ctx context.Context, opts SearchOptions) ([]SearchMatch, error) {
	root := b.root
	if opts.Root != "" {
		root = b.resolve(opts.Root)
	}

	args := []string{"--line-number", "--no-heading", "--color", "never"}
	if !opts.CaseSensitive {
		args = append(args, "--ignore-case")
	}
	if opts.WholeWord {
		args = append(args, "--word-regexp")
	}
	if opts.MaxResults > 0 {
		args = append(args, "--max-count", strconv.Itoa(opts.MaxResults))
	}
	args = append(args, "--", opts.Pattern, root)

	cmd := exec.CommandContext(ctx, "rg", args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil // rg exit code 1 means "no matches", not an error
		}
		return nil, fmt.Errorf("bridge: rg search: %w", err)
	}

	matchLineRE := regexp.MustCompile(`^(.+?):(\d+):(.*)$`)
	var matches []SearchMatch
	scanner := bufio.NewScanner(&stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := matchLineRE.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[2])
		matches = append(matches, SearchMatch{Path: m[1], Line: line, Content: m[3]})
		if opts.MaxResults > 0 && len(matches) >= opts.MaxResults {
			break
		}
	}
	return matches, nil
}

// Definition/References/Hover/Symbols/Diagnostics: OSBridge has no
// language server, so these always report the empty result the interface
// contract reserves for that case.
func (b *OSBridge) Definition(context.Context, string, int, int) ([]CodeLocation, error) { return nil, nil }
func (b *OSBridge) References(context.Context, string, int, int) ([]CodeLocation, error) { return nil, nil }
func (b *OSBridge) Hover(context.Context, string, int, int) (*HoverInfo, error)           { return nil, nil }
func (b *OSBridge) Symbols(context.Context, string) ([]DocSymbol, error)                  { return nil, nil }
func (b *OSBridge) Diagnostics(context.Context, string) ([]LspDiagnostic, error)          { return nil, nil }
func (b *OSBridge) RenameSymbol(context.Context, string, int, int, string) error {
	return fmt.Errorf("bridge: rename_symbol requires an attached language server")
}

func (b *OSBridge) Execute(ctx context.Context, command string, cwd string) (CommandOutput, error) {
	dir := b.root
	if cwd != "" {
		dir = b.resolve(cwd)
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return CommandOutput{}, fmt.Errorf("bridge: execute %q: %w", command, err)
		}
	}
	return CommandOutput{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}, nil
}

func (b *OSBridge) openRepo() (*git.Repository, error) {
	repo, err := git.PlainOpen(b.root)
	if err != nil {
		return nil, fmt.Errorf("bridge: open git repo at %s: %w", b.root, err)
	}
	return repo, nil
}

func (b *OSBridge) GitStatus(context.Context) ([]GitFileStatus, error) {
	repo, err := b.openRepo()
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("bridge: git worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("bridge: git status: %w", err)
	}
	out := make([]GitFileStatus, 0, len(status))
	for path, s := range status {
		out = append(out, GitFileStatus{
			Path:     path,
			Staged:   string(s.Staging),
			Worktree: string(s.Worktree),
		})
	}
	return out, nil
}

func (b *OSBridge) GitLog(_ context.Context, maxEntries int) ([]GitCommit, error) {
	repo, err := b.openRepo()
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("bridge: git HEAD: %w", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("bridge: git log: %w", err)
	}
	defer iter.Close()

	var out []GitCommit
	err = iter.ForEach(func(c *object.Commit) error {
		if maxEntries > 0 && len(out) >= maxEntries {
			return fmt.Errorf("stop")
		}
		out = append(out, GitCommit{
			Hash:    c.Hash.String(),
			Author:  c.Author.Name,
			Date:    c.Author.When.Format("2006-01-02T15:04:05Z07:00"),
			Message: strings.TrimSpace(c.Message),
		})
		return nil
	})
	if err != nil && err.Error() != "stop" {
		return nil, fmt.Errorf("bridge: walk git log: %w", err)
	}
	return out, nil
}

func (b *OSBridge) GitStage(_ context.Context, paths []string) error {
	repo, err := b.openRepo()
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("bridge: git worktree: %w", err)
	}
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			return fmt.Errorf("bridge: git add %s: %w", p, err)
		}
	}
	return nil
}

func (b *OSBridge) GitCommit(_ context.Context, message string) (string, error) {
	repo, err := b.openRepo()
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("bridge: git worktree: %w", err)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "forge-agent", Email: "agent@forge.local", When: time.Now()},
	})
	if err != nil {
		return "", fmt.Errorf("bridge: git commit: %w", err)
	}
	return hash.String(), nil
}

func (b *OSBridge) GitTag(_ context.Context, name, message string) error {
	repo, err := b.openRepo()
	if err != nil {
		return err
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("bridge: git HEAD: %w", err)
	}
	opts := &git.CreateTagOptions{Message: message}
	if message == "" {
		opts = nil
	}
	if _, err := repo.CreateTag(name, head.Hash(), opts); err != nil {
		return fmt.Errorf("bridge: git tag %s: %w", name, err)
	}
	return nil
}

func (b *OSBridge) GitReset(_ context.Context, ref string, hard bool) error {
	repo, err := b.openRepo()
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("bridge: git worktree: %w", err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return fmt.Errorf("bridge: resolve %s: %w", ref, err)
	}
	mode := git.MixedReset
	if hard {
		mode = git.HardReset
	}
	if err := wt.Reset(&git.ResetOptions{Commit: *hash, Mode: mode}); err != nil {
		return fmt.Errorf("bridge: git reset %s: %w", ref, err)
	}
	return nil
}

func (b *OSBridge) GitDiff(_ context.Context, ref string) (string, error) {
	repo, err := b.openRepo()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("bridge: git HEAD: %w", err)
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("bridge: resolve HEAD commit: %w", err)
	}

	target := ref
	if target == "" {
		target = "HEAD~1"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(target))
	if err != nil {
		return "", fmt.Errorf("bridge: resolve %s: %w", target, err)
	}
	otherCommit, err := repo.CommitObject(*hash)
	if err != nil {
		return "", fmt.Errorf("bridge: resolve commit %s: %w", target, err)
	}

	patch, err := otherCommit.Patch(headCommit)
	if err != nil {
		return "", fmt.Errorf("bridge: diff %s..HEAD: %w", target, err)
	}
	return patch.String(), nil
}
