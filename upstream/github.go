package upstream

import (
	"context"
	"net/http"

	"github.com/google/go-github/v60/github"
)

// GitHub implements Client against the GitHub REST API.
type GitHub struct {
	client *github.Client
	retry  Retry
}

// NewGitHub returns a GitHub client. An empty token produces an
// unauthenticated client, which is sufficient for reading public tag feeds.
func NewGitHub(token string) *GitHub {
	c := github.NewClient(nil)
	if token != "" {
		c = c.WithAuthToken(token)
	}

	return &GitHub{
		client: c,
		retry:  DefaultRetry(),
	}
}

// ListTags returns all tags of the repository, following pagination.
func (g *GitHub) ListTags(ctx context.Context, owner, repo string) ([]Tag, error) {
	var tags []Tag

	opts := &github.ListOptions{PerPage: 100}
	for {
		var (
			page []*github.RepositoryTag
			resp *github.Response
		)
		err := g.retry.Do(ctx, func() error {
			var err error
			page, resp, err = g.client.Repositories.ListTags(ctx, owner, repo, opts)
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, t := range page {
			tag := Tag{Name: t.GetName()}
			if c := t.GetCommit(); c != nil {
				tag.SHA = c.GetSHA()
			}
			tags = append(tags, tag)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return tags, nil
}

// CreateRelease creates the release record. A release that already exists
// for the tag is treated as success so the operation stays idempotent.
func (g *GitHub) CreateRelease(ctx context.Context, owner, repo string, spec ReleaseSpec) error {
	rel := &github.RepositoryRelease{
		TagName: github.String(spec.TagName),
		Name:    github.String(spec.Name),
		Body:    github.String(spec.Body),
	}

	err := g.retry.Do(ctx, func() error {
		_, _, err := g.client.Repositories.CreateRelease(ctx, owner, repo, rel)
		return err
	})
	if err != nil && releaseExists(err) {
		return nil
	}

	return err
}

// CreateIssue opens a notification issue.
func (g *GitHub) CreateIssue(ctx context.Context, owner, repo, title, body string, labels []string) error {
	req := &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	}
	if len(labels) > 0 {
		req.Labels = &labels
	}

	return g.retry.Do(ctx, func() error {
		_, _, err := g.client.Issues.Create(ctx, owner, repo, req)
		return err
	})
}

// releaseExists reports whether err is the validation failure GitHub returns
// when a release already exists for the requested tag.
func releaseExists(err error) bool {
	var gerr *github.ErrorResponse
	if !asGitHubError(err, &gerr) {
		return false
	}
	if gerr.Response == nil || gerr.Response.StatusCode != http.StatusUnprocessableEntity {
		return false
	}

	for _, e := range gerr.Errors {
		if e.Code == "already_exists" {
			return true
		}
	}

	return false
}
