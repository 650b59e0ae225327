// Package git provides a high-level wrapper for go-git operations.
// This file contains tag-related operations.
package git

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TagFilter is a predicate function for filtering tags.
// It returns true if the tag should be included in the results.
// Filters are applied progressively - if any filter returns false, the tag is excluded.
type TagFilter func(name string, ref *plumbing.Reference) bool

// TagPrefixFilter returns a filter that matches tags with the given prefix.
// For example: "v" matches "v1.0", "v2.0", etc.
func TagPrefixFilter(prefix string) TagFilter {
	return func(name string, ref *plumbing.Reference) bool {
		return strings.HasPrefix(name, prefix)
	}
}

// Tags returns a list of tags that pass all the provided filters.
// If no filters are provided, all tags are returned.
// Results are sorted alphabetically.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Tags(ctx context.Context, filters ...TagFilter) ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, WrapError(err, "failed to get references")
	}

	var tags []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsTag() {
			return nil
		}
		tagName := ref.Name().Short()
		if shouldIncludeTag(tagName, ref, filters) {
			tags = append(tags, tagName)
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate references")
	}

	sort.Strings(tags)
	return tags, nil
}

// shouldIncludeTag checks if a tag passes all filters.
func shouldIncludeTag(name string, ref *plumbing.Reference, filters []TagFilter) bool {
	for _, filter := range filters {
		if filter != nil && !filter(name, ref) {
			return false
		}
	}
	return true
}

// TagExists reports whether a tag with the given name exists.
func (r *Repo) TagExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, WrapError(ErrInvalidRef, "tag name cannot be empty")
	}
	_, err := r.repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, WrapError(err, "failed to look up tag reference")
	}
	return true, nil
}

// CreateTag creates a new tag at the specified target revision.
// If message is non-empty, an annotated tag is created with the given tagger;
// otherwise a lightweight tag is created. The target can be any valid
// revision specifier (commit hash, branch name, etc.).
// Returns ErrTagExists if the tag already exists.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CreateTag(ctx context.Context, name, target, message string, tagger Signature) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}
	if target == "" {
		return WrapError(ErrInvalidRef, "target revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(target))
	if err != nil {
		return WrapError(ErrResolveFailed, "failed to resolve target revision")
	}

	tagRefName := plumbing.NewTagReferenceName(name)
	_, err = r.repo.Reference(tagRefName, true)
	if err == nil {
		return WrapErrorf(ErrTagExists, "tag %q", name)
	}

	if message != "" {
		when := tagger.When
		if when.IsZero() {
			when = time.Now()
		}
		tagOpts := &gogit.CreateTagOptions{
			Tagger: &object.Signature{
				Name:  tagger.Name,
				Email: tagger.Email,
				When:  when,
			},
			Message: message,
		}
		if _, err := r.repo.CreateTag(name, *hash, tagOpts); err != nil {
			return WrapError(err, "failed to create annotated tag")
		}
		return nil
	}

	tagRef := plumbing.NewHashReference(tagRefName, *hash)
	if err := r.repo.Storer.SetReference(tagRef); err != nil {
		return WrapError(err, "failed to create lightweight tag")
	}
	return nil
}

// EnsureTag creates a tag if it does not already exist. It returns true when
// the tag was created and false when an identically named tag was already
// present. Re-running release tagging against an existing tag is a normal
// condition, not a failure.
func (r *Repo) EnsureTag(ctx context.Context, name, target, message string, tagger Signature) (bool, error) {
	err := r.CreateTag(ctx, name, target, message, tagger)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrTagExists) || errors.Is(err, gogit.ErrTagExists) {
		return false, nil
	}
	return false, err
}

// TagTarget resolves the commit hash a tag ultimately points to, peeling
// annotated tag objects.
func (r *Repo) TagTarget(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", WrapError(ErrInvalidRef, "tag name cannot be empty")
	}
	ref, err := r.repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		return "", WrapErrorf(ErrTagMissing, "tag %q", name)
	}

	if tagObj, err := r.repo.TagObject(ref.Hash()); err == nil {
		return tagObj.Target.String(), nil
	}
	return ref.Hash().String(), nil
}
