// Package git provides branch management operations for git repositories.
// This file contains branch creation, checkout, and the remote-tracking
// fallback used when switching to release branches.
package git

import (
	"context"
	"errors"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CheckoutOpts configures CheckoutBranch behavior.
type CheckoutOpts struct {
	// CreateFrom is a revision to create the branch from when it exists
	// neither locally nor on the default remote. Empty means creation is
	// not allowed and a missing branch is an error.
	CreateFrom string

	// Remote is the remote whose tracking refs are consulted before
	// falling back to CreateFrom. Defaults to DefaultRemoteName.
	Remote string

	// Force discards any uncommitted changes in the working tree.
	Force bool
}

// CurrentBranch returns the name of the currently checked out branch.
// It returns an error if HEAD is in a detached state.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", WrapError(err, "failed to get HEAD reference")
	}
	if !head.Name().IsBranch() {
		return "", WrapError(ErrResolveFailed, "HEAD is detached")
	}
	return head.Name().Short(), nil
}

// BranchExists reports whether a local branch with the given name exists.
func (r *Repo) BranchExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, WrapError(ErrInvalidRef, "branch name cannot be empty")
	}
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, WrapError(err, "failed to look up branch reference")
	}
	return true, nil
}

// CreateBranch creates a new branch from the specified revision.
// It supports creating branches from any valid revision (commit hash,
// branch name, tag, etc.). Returns ErrBranchExists if the branch exists.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CreateBranch(ctx context.Context, name, startRev string) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "branch name cannot be empty")
	}
	if startRev == "" {
		return WrapError(ErrInvalidRef, "start revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(startRev))
	if err != nil {
		return WrapErrorf(ErrResolveFailed, "failed to resolve start revision %q", startRev)
	}

	branchRefName := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(branchRefName, true); err == nil {
		return WrapErrorf(ErrBranchExists, "branch %q", name)
	}

	newRef := plumbing.NewHashReference(branchRefName, *hash)
	if err := r.repo.Storer.SetReference(newRef); err != nil {
		return WrapError(err, "failed to create branch reference")
	}
	return nil
}

// CheckoutBranch switches to the named branch, materializing it if needed.
// The lookup order is: existing local branch; local copy of the remote
// tracking branch; new branch created from opts.CreateFrom. When none of
// the three applies, ErrBranchMissing is returned and the repository is
// left untouched.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CheckoutBranch(ctx context.Context, name string, opts CheckoutOpts) error {
	if r.worktree == nil {
		return WrapError(ErrInvalidRef, "cannot checkout in bare repository")
	}
	if name == "" {
		return WrapError(ErrInvalidRef, "branch name cannot be empty")
	}

	remote := opts.Remote
	if remote == "" {
		remote = DefaultRemoteName
	}

	branchRefName := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(branchRefName, true); err != nil {
		start, err := r.branchStartPoint(name, remote, opts.CreateFrom)
		if err != nil {
			return err
		}
		newRef := plumbing.NewHashReference(branchRefName, start)
		if err := r.repo.Storer.SetReference(newRef); err != nil {
			return WrapError(err, "failed to create branch reference")
		}
	}

	checkoutOpts := &gogit.CheckoutOptions{
		Branch: branchRefName,
		Force:  opts.Force,
	}
	if err := r.worktree.Checkout(checkoutOpts); err != nil {
		return WrapErrorf(err, "failed to checkout branch %q", name)
	}
	return nil
}

// branchStartPoint resolves where a missing local branch should start:
// the remote tracking ref when present, otherwise the createFrom revision.
func (r *Repo) branchStartPoint(name, remote, createFrom string) (plumbing.Hash, error) {
	remoteRefName := plumbing.NewRemoteReferenceName(remote, name)
	if remoteRef, err := r.repo.Reference(remoteRefName, true); err == nil {
		return remoteRef.Hash(), nil
	}

	if createFrom == "" {
		return plumbing.ZeroHash, WrapErrorf(ErrBranchMissing, "branch %q", name)
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(createFrom))
	if err != nil {
		return plumbing.ZeroHash, WrapErrorf(ErrResolveFailed, "failed to resolve start revision %q", createFrom)
	}
	return *hash, nil
}

// CheckoutDetached checks out the given revision with a detached HEAD.
// It is used to advance the vendored upstream checkout to an exact tag.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CheckoutDetached(ctx context.Context, rev string) error {
	if r.worktree == nil {
		return WrapError(ErrInvalidRef, "cannot checkout in bare repository")
	}
	if rev == "" {
		return WrapError(ErrInvalidRef, "revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return WrapErrorf(ErrResolveFailed, "failed to resolve revision %q", rev)
	}

	err = r.worktree.Checkout(&gogit.CheckoutOptions{Hash: *hash, Force: true})
	if err != nil {
		return WrapErrorf(err, "failed to checkout revision %q", rev)
	}
	return nil
}
