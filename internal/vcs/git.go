package vcs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Git implements Repository by shelling out to the git binary.
type Git struct {
	root string
	cfg  Config
}

// Compile-time contract check.
var _ Repository = (*Git)(nil)

// NewGit creates a git-backed Repository rooted at root.
func NewGit(root string, cfg Config) *Git {
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	return &Git{root: root, cfg: cfg}
}

func (g *Git) run(timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.root
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(errOut.String())
		if msg == "" {
			msg = strings.TrimSpace(out.String())
		}
		return out.String(), fmt.Errorf("git %s: %s: %w", args[0], msg, err)
	}
	return out.String(), nil
}

// IsRepo reports whether root contains a .git directory.
func (g *Git) IsRepo() bool {
	_, err := os.Stat(filepath.Join(g.root, ".git"))
	return err == nil
}

// IsClean reports whether the working tree is clean. Untracked files
// count as dirty; any git failure is treated as dirty.
func (g *Git) IsClean() bool {
	out, err := g.run(10*time.Second, "status", "--porcelain")
	return err == nil && strings.TrimSpace(out) == ""
}

// PrepareForPatch runs the pre-flight checks before a patch application.
func (g *Git) PrepareForPatch() error {
	if !g.IsRepo() {
		return fmt.Errorf("vcs: %s: %w", g.root, ErrNotARepo)
	}
	if !g.IsClean() && !g.cfg.AllowDirty {
		return fmt.Errorf("vcs: commit or stash changes first, or allow a dirty tree: %w", ErrDirtyRepo)
	}
	return nil
}

// StageAndCommit stages paths and commits them, returning the commit id.
func (g *Git) StageAndCommit(paths []string, message string) (string, error) {
	if g.cfg.DryRun {
		slog.Info("vcs: dry run", slog.String("commit_message", message), slog.Int("files", len(paths)))
		return "dry-run", nil
	}

	if _, err := g.run(30*time.Second, append([]string{"add", "--"}, paths...)...); err != nil {
		return "", fmt.Errorf("vcs: stage: %v: %w", err, ErrCommit)
	}
	if _, err := g.run(30*time.Second, "commit", "-m", message); err != nil {
		return "", fmt.Errorf("vcs: %v: %w", err, ErrCommit)
	}

	id, err := g.run(10*time.Second, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("vcs: resolve commit id: %v: %w", err, ErrCommit)
	}
	return strings.TrimSpace(id), nil
}

// PushToRemote pushes to the configured remote.
func (g *Git) PushToRemote(remote, branch string) error {
	if g.cfg.DryRun {
		slog.Info("vcs: dry run push", slog.String("remote", remote), slog.String("branch", branch))
		return nil
	}
	if remote == "" {
		remote = g.cfg.Remote
	}
	args := []string{"push", remote}
	if branch != "" {
		args = append(args, branch)
	}
	if _, err := g.run(60*time.Second, args...); err != nil {
		return fmt.Errorf("vcs: %v: %w", err, ErrPush)
	}
	return nil
}

// CurrentBranch returns the checked-out branch, or ok=false on a
// detached HEAD.
func (g *Git) CurrentBranch() (string, bool) {
	out, err := g.run(10*time.Second, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", false
	}
	branch := strings.TrimSpace(out)
	if branch == "" || branch == "HEAD" {
		return "", false
	}
	return branch, true
}

// RollbackToBackup restores each path from its sibling .bak file.
// Missing backups are skipped; the first restore failure is returned
// after attempting the rest.
func (g *Git) RollbackToBackup(paths []string) error {
	var firstErr error
	for _, p := range paths {
		bak := p + ".bak"
		if _, err := os.Stat(bak); err != nil {
			continue
		}
		if err := os.Rename(bak, p); err != nil {
			slog.Warn("vcs: restore from backup failed",
				slog.String("path", p), slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = fmt.Errorf("vcs: restore %s: %w", p, err)
			}
		}
	}
	return firstErr
}
