// Package git provides a high-level wrapper for go-git operations.
// This file contains synchronization operations (fetch, push).
package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
)

// FetchOpts configures Fetch behavior.
type FetchOpts struct {
	// Remote is the remote to fetch from. Defaults to DefaultRemoteName.
	Remote string

	// Tags fetches all tags in addition to the default refspecs.
	Tags bool

	// Prune removes stale remote-tracking references.
	Prune bool
}

// PushOpts configures Push behavior.
type PushOpts struct {
	// Remote is the remote to push to. Defaults to DefaultRemoteName.
	Remote string

	// RefSpecs are explicit refspecs to push. When empty the remote's
	// configured refspecs are used.
	RefSpecs []string

	// Force allows non-fast-forward updates.
	Force bool
}

// BranchRefSpec returns the refspec pushing a local branch to its remote
// counterpart without touching tags.
func BranchRefSpec(branch string) string {
	return fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)
}

// AllTagsRefSpec is the refspec pushing every local tag.
const AllTagsRefSpec = "refs/tags/*:refs/tags/*"

// Fetch fetches changes from the specified remote.
// Returns ErrAlreadyUpToDate if there are no changes to fetch.
//
// Context timeout/cancellation is honored during the fetch operation.
func (r *Repo) Fetch(ctx context.Context, opts FetchOpts) error {
	remote := opts.Remote
	if remote == "" {
		remote = DefaultRemoteName
	}

	fetchOpts := &gogit.FetchOptions{
		RemoteName: remote,
		Prune:      opts.Prune,
	}
	if opts.Tags {
		fetchOpts.Tags = gogit.AllTags
	}

	authMethod, err := r.authForRemote(remote)
	if err != nil {
		return err
	}
	fetchOpts.Auth = authMethod

	if err := r.repo.FetchContext(ctx, fetchOpts); err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return WrapError(ErrResolveFailed, "remote not found")
		}
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return ErrAlreadyUpToDate
		}
		return WrapError(err, "failed to fetch from remote")
	}
	return nil
}

// Push pushes refs to the specified remote.
// Returns ErrAlreadyUpToDate if the remote already has everything, and
// ErrNotFastForward when the update would not be a fast-forward.
//
// Context timeout/cancellation is honored during the push operation.
func (r *Repo) Push(ctx context.Context, opts PushOpts) error {
	remote := opts.Remote
	if remote == "" {
		remote = DefaultRemoteName
	}

	pushOpts := &gogit.PushOptions{
		RemoteName: remote,
		Force:      opts.Force,
	}
	for _, spec := range opts.RefSpecs {
		pushOpts.RefSpecs = append(pushOpts.RefSpecs, gitcfg.RefSpec(spec))
	}

	authMethod, err := r.authForRemote(remote)
	if err != nil {
		return err
	}
	pushOpts.Auth = authMethod

	if err := r.repo.PushContext(ctx, pushOpts); err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return WrapError(ErrResolveFailed, "remote not found")
		}
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return ErrAlreadyUpToDate
		}
		if errors.Is(err, gogit.ErrNonFastForwardUpdate) {
			return ErrNotFastForward
		}
		return WrapError(err, "failed to push to remote")
	}
	return nil
}
