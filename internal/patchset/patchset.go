package patchset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apcooley/grafty/internal/textedit"
	"github.com/apcooley/grafty/internal/vcs"
)

// PatchSet holds an ordered sequence of mutations to apply atomically
// across multiple files: all succeed or all roll back.
type PatchSet struct {
	Mutations []FileMutation
}

// New returns an empty patch set.
func New() *PatchSet {
	return &PatchSet{}
}

// Add appends a mutation to the set.
func (ps *PatchSet) Add(m FileMutation) {
	ps.Mutations = append(ps.Mutations, m)
}

// byFile groups mutations by target path, preserving first-seen order so
// validation errors and write order are deterministic.
func (ps *PatchSet) byFile() ([]string, map[string][]FileMutation) {
	grouped := make(map[string][]FileMutation)
	var order []string
	for _, m := range ps.Mutations {
		if _, ok := grouped[m.FilePath]; !ok {
			order = append(order, m.FilePath)
		}
		grouped[m.FilePath] = append(grouped[m.FilePath], m)
	}
	return order, grouped
}

// absPath resolves a mutation path against the patch root. Absolute
// mutation paths are used as-is.
func absPath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// ValidateAll checks every mutation against the current state of its
// target file: the file must exist and be readable, the kind must be
// recognized, lines must satisfy 1 <= start <= end, and start must fall
// within the file (end may exceed it only for inserts). Overlapping
// mutations on the same file are warnings, not failures. No side effects.
func (ps *PatchSet) ValidateAll(root string) Result {
	if len(ps.Mutations) == 0 {
		return failure("no mutations to validate", []string{"empty patch set"}, nil)
	}

	var errs, warnings []string
	order, grouped := ps.byFile()

	for _, path := range order {
		muts := grouped[path]
		abs := absPath(root, path)

		data, err := os.ReadFile(abs)
		if err != nil {
			if os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("file not found: %s", path))
			} else {
				errs = append(errs, fmt.Sprintf("cannot read %s: %v", path, err))
			}
			continue
		}
		lineCount := textedit.LineCount(string(data))

		for i, m := range muts {
			if !textedit.KnownOp(m.OperationKind) {
				errs = append(errs, fmt.Sprintf("%s[%d]: invalid operation kind: %q", path, i, m.OperationKind))
				continue
			}
			if err := m.Validate(); err != nil {
				errs = append(errs, fmt.Sprintf("%s[%d]: %v", path, i, err))
				continue
			}
			if m.StartLine > lineCount {
				errs = append(errs, fmt.Sprintf("%s[%d]: start_line %d > file size %d", path, i, m.StartLine, lineCount))
				continue
			}
			if m.EndLine > lineCount && m.OperationKind != textedit.OpInsert {
				errs = append(errs, fmt.Sprintf("%s[%d]: end_line %d > file size %d", path, i, m.EndLine, lineCount))
			}
		}

		// Overlaps proceed with a warning; outcome is determined by the
		// descending application order.
		sorted := make([]FileMutation, len(muts))
		copy(sorted, muts)
		sort.SliceStable(sorted, func(a, b int) bool {
			if sorted[a].StartLine != sorted[b].StartLine {
				return sorted[a].StartLine < sorted[b].StartLine
			}
			return sorted[a].EndLine < sorted[b].EndLine
		})
		for i := 0; i+1 < len(sorted); i++ {
			cur, next := sorted[i], sorted[i+1]
			if cur.EndLine >= next.StartLine {
				warnings = append(warnings, fmt.Sprintf(
					"%s: mutations overlap (%d-%d vs %d-%d)",
					path, cur.StartLine, cur.EndLine, next.StartLine, next.EndLine))
			}
		}
	}

	if len(errs) > 0 {
		return failure(fmt.Sprintf("validation failed: %d error(s)", len(errs)), errs, warnings)
	}
	return Result{
		Success:  true,
		Message:  fmt.Sprintf("validation passed: %d mutation(s) in %d file(s)", len(ps.Mutations), len(order)),
		Warnings: warnings,
	}
}

// applyFile applies one file's mutations to its original content in
// descending start-line order, which keeps line numbers valid across
// multiple edits without re-indexing. Returns the final content with the
// file's original newline convention restored.
func applyFile(original string, muts []FileMutation) (string, textedit.NewlineMode, error) {
	normalized, mode := textedit.Normalize(original)

	ordered := make([]FileMutation, len(muts))
	copy(ordered, muts)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].StartLine > ordered[b].StartLine
	})

	for _, m := range ordered {
		next, err := textedit.Apply(normalized, m.Span())
		if err != nil {
			return "", mode, err
		}
		normalized = next
	}
	return textedit.Restore(normalized, mode), mode, nil
}

// GenerateDiffs validates and then produces a unified diff per affected
// file showing what ApplyAtomic would do. No disk writes.
func (ps *PatchSet) GenerateDiffs(root string) Result {
	if v := ps.ValidateAll(root); !v.Success {
		return v
	}

	order, grouped := ps.byFile()
	diffs := make(map[string]string, len(order))
	var errs []string

	for _, path := range order {
		data, err := os.ReadFile(absPath(root, path))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		original := string(data)
		modified, _, err := applyFile(original, grouped[path])
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		diff, err := textedit.UnifiedDiff(original, modified, path, textedit.DefaultContext)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		diffs[path] = diff
	}

	if len(errs) > 0 {
		r := failure(fmt.Sprintf("diff generation failed: %d error(s)", len(errs)), errs, nil)
		r.Diffs = diffs
		return r
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("generated diffs for %d file(s)", len(diffs)),
		Diffs:   diffs,
	}
}

// ApplyOptions controls an atomic application.
type ApplyOptions struct {
	// Backup copies each target to <path>.bak before writing.
	Backup bool
	// Force skips the pre-write drift re-check.
	Force bool
	// VCS, when non-nil with AutoCommit set, enables the commit step.
	VCS *vcs.Config
	// Repo overrides the repository implementation; when nil a
	// git-backed one rooted at the patch root is used.
	Repo vcs.Repository
}

type snapshot struct {
	content string
	hash    string
	mtime   time.Time
}

// ApplyAtomic runs validate → snapshot → drift re-check → compute →
// write → optional VCS commit. Any failure after the first write rolls
// every written file back to its snapshot; both the original failure and
// any rollback failures are reported.
func (ps *PatchSet) ApplyAtomic(root string, opts ApplyOptions) Result {
	v := ps.ValidateAll(root)
	if !v.Success {
		return v
	}
	warnings := v.Warnings

	order, grouped := ps.byFile()

	// Snapshot every affected file before touching anything.
	snapshots := make(map[string]snapshot, len(order))
	for _, path := range order {
		content, hash, mtime, err := textedit.ReadFileWithHash(absPath(root, path))
		if err != nil {
			return failure("patch application failed",
				[]string{fmt.Sprintf("snapshot %s: %v", path, err)}, warnings)
		}
		snapshots[path] = snapshot{content: content, hash: hash, mtime: mtime}
	}

	// Optimistic concurrency: abort with nothing written if any file
	// changed between snapshot and now.
	if !opts.Force {
		for _, path := range order {
			if err := textedit.CheckDrift(absPath(root, path), snapshots[path].hash); err != nil {
				return failure("patch application failed: file drifted",
					[]string{fmt.Sprintf("%s: %v", path, err)}, warnings)
			}
		}
	}

	// Compute every final buffer before the first write.
	type final struct {
		content string
		mode    textedit.NewlineMode
	}
	finals := make(map[string]final, len(order))
	for _, path := range order {
		content, mode, err := applyFile(snapshots[path].content, grouped[path])
		if err != nil {
			return failure("patch application failed",
				[]string{fmt.Sprintf("%s: %v", path, err)}, warnings)
		}
		finals[path] = final{content: content, mode: mode}
	}

	// Write phase. From the first write on, any failure rolls back.
	var written []string
	for _, path := range order {
		f := finals[path]
		normalized, _ := textedit.Normalize(f.content)
		if err := textedit.WriteAtomic(absPath(root, path), normalized, opts.Backup, f.mode); err != nil {
			errs := []string{fmt.Sprintf("write %s: %v", path, err)}
			errs = append(errs, ps.rollback(root, written, snapshots)...)
			return failure("patch application failed and rolled back", errs, warnings)
		}
		written = append(written, path)
	}

	message := fmt.Sprintf("applied patch to %d file(s)", len(written))

	// Optional VCS step; its failure participates in the rollback
	// contract like any other.
	if opts.VCS != nil && opts.VCS.AutoCommit {
		commitMsg, err := ps.commit(root, written, opts)
		if err != nil {
			errs := []string{fmt.Sprintf("vcs: %v", err)}
			errs = append(errs, ps.rollback(root, written, snapshots)...)
			return failure("patch applied but VCS step failed; files rolled back", errs, warnings)
		}
		message += commitMsg
	}

	return Result{
		Success:       true,
		Message:       message,
		Warnings:      warnings,
		FilesModified: written,
	}
}

// commit stages and commits the written files, optionally pushing.
func (ps *PatchSet) commit(root string, written []string, opts ApplyOptions) (string, error) {
	repo := opts.Repo
	if repo == nil {
		repo = vcs.NewGit(root, *opts.VCS)
	}
	if err := repo.PrepareForPatch(); err != nil {
		return "", err
	}

	paths := make([]string, len(written))
	for i, p := range written {
		paths[i] = absPath(root, p)
	}

	msg := opts.VCS.CommitMessage
	if msg == "" {
		msg = "Apply grafty patch"
	}
	commitID, err := repo.StageAndCommit(paths, msg)
	if err != nil {
		return "", err
	}
	out := "\ncommitted: " + commitID

	if opts.VCS.AutoPush {
		branch, _ := repo.CurrentBranch()
		if err := repo.PushToRemote(opts.VCS.Remote, branch); err != nil {
			return "", err
		}
		out += "\npushed to remote"
	}
	return out, nil
}

// rollback rewrites every written file with its snapshot content,
// restoring the original newline convention. Rollback failures are
// reported, never swallowed.
func (ps *PatchSet) rollback(root string, written []string, snapshots map[string]snapshot) []string {
	var errs []string
	for _, path := range written {
		snap := snapshots[path]
		normalized, mode := textedit.Normalize(snap.content)
		if err := textedit.WriteAtomic(absPath(root, path), normalized, false, mode); err != nil {
			errs = append(errs, fmt.Sprintf("rollback %s: %v", path, err))
		}
	}
	return errs
}
