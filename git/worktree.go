// Package git provides a high-level wrapper for go-git operations.
// This file contains worktree operations (add, commit).
package git

import (
	"context"
	"errors"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Add stages the given paths in the worktree for the next commit.
// Paths that don't exist on disk are staged as deletions when tracked and
// silently ignored otherwise, matching git add behavior.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Add(ctx context.Context, paths ...string) error {
	if r.worktree == nil {
		return WrapError(ErrInvalidRef, "cannot add files in bare repository")
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := r.worktree.Add(path); err != nil {
			return WrapErrorf(err, "failed to add path %q", path)
		}
	}
	return nil
}

// Commit creates a commit from the staged changes.
// Returns the commit hash, or ErrEmptyCommit when nothing is staged and
// opts.AllowEmpty is false.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Commit(ctx context.Context, msg string, who Signature, opts CommitOpts) (string, error) {
	if r.worktree == nil {
		return "", WrapError(ErrInvalidRef, "cannot commit in bare repository")
	}
	if msg == "" {
		return "", WrapError(ErrInvalidRef, "commit message cannot be empty")
	}
	if who.Name == "" || who.Email == "" {
		return "", WrapError(ErrInvalidRef, "committer name and email are required")
	}

	status, err := r.worktree.Status()
	if err != nil {
		return "", WrapError(err, "failed to get worktree status")
	}

	stagedCount := 0
	for _, fileStatus := range status {
		if fileStatus.Staging != gogit.Untracked && fileStatus.Staging != gogit.Unmodified {
			stagedCount++
		}
	}
	if stagedCount == 0 && !opts.AllowEmpty {
		return "", ErrEmptyCommit
	}

	when := who.When
	if when.IsZero() {
		when = time.Now()
	}
	sig := &object.Signature{Name: who.Name, Email: who.Email, When: when}

	hash, err := r.worktree.Commit(msg, &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: opts.AllowEmpty,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrEmptyCommit) {
			return "", ErrEmptyCommit
		}
		return "", WrapError(err, "failed to create commit")
	}
	return hash.String(), nil
}
