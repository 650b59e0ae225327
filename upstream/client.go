// Package upstream talks to the release-hosting service: the upstream tag
// feed that drives the release cycle, and the downstream project's release
// records and notification issues.
package upstream

import "context"

// Tag is a single entry of a repository tag feed.
type Tag struct {
	// Name is the tag name as published, e.g. "v1.44.2".
	Name string

	// SHA is the commit the tag points to.
	SHA string
}

// ReleaseSpec describes a release record to create.
type ReleaseSpec struct {
	// TagName is the git tag the release is cut from.
	TagName string

	// Name is the display name of the release.
	Name string

	// Body is the release notes text.
	Body string
}

// Client is the release-hosting surface the reconciliation engine consumes.
// The production implementation is GitHub; tests substitute a fake.
type Client interface {
	// ListTags returns all tags of the given repository.
	ListTags(ctx context.Context, owner, repo string) ([]Tag, error)

	// CreateRelease creates a release record. Creating a release that
	// already exists for the same tag is not an error.
	CreateRelease(ctx context.Context, owner, repo string, spec ReleaseSpec) error

	// CreateIssue opens an issue. It is the notification channel of the
	// automation and is always called best-effort.
	CreateIssue(ctx context.Context, owner, repo, title, body string, labels []string) error
}
