// Package git provides a high-level wrapper for go-git operations.
// This file contains history queries: revision resolution, commit subject
// logs between revisions, path-scoped change detection, and nearest-tag
// lookup.
package git

import (
	"context"
	"errors"
	"io"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// maxNearestTagDepth bounds the first-parent walk of NearestTag.
const maxNearestTagDepth = 2000

// ResolveRevision resolves a revision specifier to a full commit hash.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) ResolveRevision(ctx context.Context, rev string) (string, error) {
	if rev == "" {
		return "", WrapError(ErrInvalidRef, "revision cannot be empty")
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", WrapErrorf(ErrResolveFailed, "failed to resolve revision %q", rev)
	}
	return hash.String(), nil
}

// CommitSubjectsBetween returns the subject lines of commits reachable from
// "to" but not from "from", newest first. Both revisions must resolve; a
// caller that wants to degrade on a missing ancestor checks ErrResolveFailed.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CommitSubjectsBetween(ctx context.Context, from, to string) ([]string, error) {
	fromHash, err := r.repo.ResolveRevision(plumbing.Revision(from))
	if err != nil {
		return nil, WrapErrorf(ErrResolveFailed, "failed to resolve revision %q", from)
	}
	toHash, err := r.repo.ResolveRevision(plumbing.Revision(to))
	if err != nil {
		return nil, WrapErrorf(ErrResolveFailed, "failed to resolve revision %q", to)
	}

	excluded, err := r.reachableFrom(*fromHash)
	if err != nil {
		return nil, err
	}

	iter, err := r.repo.Log(&gogit.LogOptions{From: *toHash})
	if err != nil {
		return nil, WrapError(err, "failed to create commit iterator")
	}
	defer iter.Close()

	var subjects []string
	err = iter.ForEach(func(c *object.Commit) error {
		if _, ok := excluded[c.Hash]; ok {
			return nil
		}
		subjects = append(subjects, subjectLine(c.Message))
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate commits")
	}
	return subjects, nil
}

// reachableFrom collects every commit hash reachable from the given commit.
func (r *Repo) reachableFrom(from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{From: from})
	if err != nil {
		return nil, WrapError(err, "failed to create commit iterator")
	}
	defer iter.Close()

	set := make(map[plumbing.Hash]struct{})
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate commits")
	}
	return set, nil
}

// subjectLine returns the first line of a commit message.
func subjectLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}

// ChangedBetween reports whether any change between revisions a and b
// touches the given path (a file, or a directory prefix).
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) ChangedBetween(ctx context.Context, a, b, path string) (bool, error) {
	if path == "" {
		return false, WrapError(ErrInvalidRef, "path cannot be empty")
	}

	treeA, err := r.treeForRevision(a)
	if err != nil {
		return false, err
	}
	treeB, err := r.treeForRevision(b)
	if err != nil {
		return false, err
	}

	changes, err := treeA.Diff(treeB)
	if err != nil {
		return false, WrapError(err, "failed to compute changes")
	}

	prefix := strings.TrimSuffix(path, "/") + "/"
	for _, change := range changes {
		if matchesPath(change.From.Name, path, prefix) || matchesPath(change.To.Name, path, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func matchesPath(name, path, prefix string) bool {
	return name == path || strings.HasPrefix(name, prefix)
}

// treeForRevision resolves a revision and returns its tree.
func (r *Repo) treeForRevision(rev string) (*object.Tree, error) {
	if rev == "" {
		return nil, WrapError(ErrInvalidRef, "revision cannot be empty")
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, WrapErrorf(ErrResolveFailed, "failed to resolve revision %q", rev)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, WrapError(err, "failed to get commit object")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, WrapError(err, "failed to get tree")
	}
	return tree, nil
}

// NearestTag returns the name of the tag closest to rev along first-parent
// history, considering only tags with the given prefix (empty prefix means
// all tags). When several tags point at the same commit the
// lexicographically greatest wins, which for version tags is the newest.
// Returns ErrTagMissing when no tag is found within the walk limit.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) NearestTag(ctx context.Context, rev, prefix string) (string, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", WrapErrorf(ErrResolveFailed, "failed to resolve revision %q", rev)
	}

	byCommit, err := r.tagsByCommit(prefix)
	if err != nil {
		return "", err
	}

	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return "", WrapError(err, "failed to get commit object")
	}

	for depth := 0; depth < maxNearestTagDepth; depth++ {
		if names, ok := byCommit[commit.Hash]; ok {
			best := names[0]
			for _, name := range names[1:] {
				if name > best {
					best = name
				}
			}
			return best, nil
		}
		if commit.NumParents() == 0 {
			break
		}
		commit, err = commit.Parent(0)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", WrapError(err, "failed to walk first parent")
		}
	}
	return "", WrapErrorf(ErrTagMissing, "no tag with prefix %q reachable from %q", prefix, rev)
}

// tagsByCommit indexes tag names by the commit they point to, peeling
// annotated tags.
func (r *Repo) tagsByCommit(prefix string) (map[plumbing.Hash][]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, WrapError(err, "failed to get references")
	}

	byCommit := make(map[plumbing.Hash][]string)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsTag() {
			return nil
		}
		name := ref.Name().Short()
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			return nil
		}
		target := ref.Hash()
		if tagObj, tagErr := r.repo.TagObject(target); tagErr == nil {
			target = tagObj.Target
		}
		byCommit[target] = append(byCommit[target], name)
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate references")
	}
	return byCommit, nil
}
