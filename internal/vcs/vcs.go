// Package vcs defines the repository-state contract consumed by the
// patch set, and a git implementation of it. The patch engine depends
// only on the Repository interface; any implementation satisfying it is
// interchangeable.
package vcs

import "errors"

var (
	// ErrNotARepo indicates the root is not a version-controlled repository.
	ErrNotARepo = errors.New("not a git repository")
	// ErrDirtyRepo indicates uncommitted changes in the working tree.
	ErrDirtyRepo = errors.New("working tree not clean")
	// ErrCommit indicates a failed stage or commit operation.
	ErrCommit = errors.New("commit failed")
	// ErrPush indicates a failed push to the remote.
	ErrPush = errors.New("push failed")
)

// Config controls the optional VCS step of a patch application.
type Config struct {
	AutoCommit    bool   `yaml:"auto_commit" json:"auto_commit"`
	AutoPush      bool   `yaml:"auto_push" json:"auto_push"`
	AllowDirty    bool   `yaml:"allow_dirty" json:"allow_dirty"`
	CommitMessage string `yaml:"commit_message" json:"commit_message"`
	Remote        string `yaml:"remote" json:"remote"`
	DryRun        bool   `yaml:"dry_run" json:"dry_run"`
}

// Repository is the version-control contract the patch set delegates to.
type Repository interface {
	// IsRepo reports whether the root is a repository.
	IsRepo() bool
	// IsClean reports whether the working tree has no uncommitted
	// changes; untracked files count as dirty.
	IsClean() bool
	// PrepareForPatch fails fast on a non-repo, or on a dirty tree
	// unless the configuration explicitly allows it.
	PrepareForPatch() error
	// StageAndCommit stages the given paths and commits them, returning
	// the commit id.
	StageAndCommit(paths []string, message string) (string, error)
	// PushToRemote pushes to the named remote; branch may be empty to
	// push the current branch.
	PushToRemote(remote, branch string) error
	// CurrentBranch returns the checked-out branch name; ok is false on
	// a detached HEAD.
	CurrentBranch() (branch string, ok bool)
	// RollbackToBackup restores each path from its colocated .bak file.
	RollbackToBackup(paths []string) error
}
