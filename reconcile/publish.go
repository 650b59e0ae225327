package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bmatcuk/libuv-sys/git"
	"github.com/bmatcuk/libuv-sys/manifest"
	"github.com/bmatcuk/libuv-sys/notes"
	"github.com/bmatcuk/libuv-sys/upstream"
	"github.com/bmatcuk/libuv-sys/version"
)

// PublishResult describes a published release.
type PublishResult struct {
	// Release is the downstream version shipped.
	Release version.Tag

	// ReleaseTag and LineageTag are the tags created (or found already in
	// place) on the release commit.
	ReleaseTag string
	LineageTag string

	// Notes is the generated release notes body.
	Notes string
}

// Publish ships the release prepared on the current branch: it tags the
// release commit with the downstream release tag and the upstream lineage
// tag, pushes tags, uploads the crate to the registry, creates the release
// record with generated notes, and files a success notification.
//
// Tag creation is idempotent, so a rerun after a partial failure picks up
// where it left off.
func (e *Engine) Publish(ctx context.Context) (*PublishResult, error) {
	fsys := e.repo.WorktreeFS()

	man, err := manifest.Load(fsys, e.cfg.ManifestPath)
	if err != nil {
		return nil, err
	}
	release := man.Version()
	releaseTag := release.VString()

	marker, err := manifest.LoadMarker(fsys, e.cfg.MarkerPath, e.cfg.MarkerKey)
	if err != nil {
		return nil, err
	}
	upstreamLabel := marker.Upstream()

	log := e.log.With().Str("release", releaseTag).Str("upstream", upstreamLabel).Logger()

	names, err := e.repo.Tags(ctx)
	if err != nil {
		return nil, err
	}
	ancestor, hasAncestor := version.Predecessor(release, version.ParseSet(names))

	lineage, err := e.lineageTag(ctx, upstreamLabel)
	if err != nil {
		return nil, err
	}

	if err := e.ensureReleaseTags(ctx, releaseTag, lineage, upstreamLabel, log); err != nil {
		return nil, err
	}

	err = e.repo.Push(ctx, git.PushOpts{
		Remote:   e.cfg.Remote,
		RefSpecs: []string{git.AllTagsRefSpec},
	})
	if err != nil && !errors.Is(err, git.ErrAlreadyUpToDate) {
		return nil, err
	}

	body := e.releaseNotes(ctx, release, releaseTag, upstreamLabel, ancestor, hasAncestor)

	if e.pub != nil && !e.cfg.SkipRegistry {
		if err := e.pub.Publish(ctx); err != nil {
			return nil, git.WrapError(err, "registry publish failed")
		}
		log.Info().Msg("crate published to registry")
	}

	err = e.feed.CreateRelease(ctx, e.cfg.DownstreamOwner, e.cfg.DownstreamRepo, upstream.ReleaseSpec{
		TagName: releaseTag,
		Name:    releaseTag,
		Body:    body,
	})
	if err != nil {
		return nil, git.WrapError(err, "creating release record")
	}

	e.notify(ctx,
		fmt.Sprintf("released %s (libuv %s)", releaseTag, upstreamLabel),
		body,
	)

	log.Info().Msg("release published")
	return &PublishResult{
		Release:    release,
		ReleaseTag: releaseTag,
		LineageTag: lineage,
		Notes:      body,
	}, nil
}

// lineageTag names the lineage tag for the current vendored checkout. The
// label comes from the checkout's own tagging scheme: the nearest upstream
// tag describing its pinned commit.
func (e *Engine) lineageTag(ctx context.Context, fallback string) (string, error) {
	label, err := e.vendor.NearestTag(ctx, "HEAD", "v")
	if err != nil {
		if !errors.Is(err, git.ErrTagMissing) {
			return "", git.WrapError(err, "describing upstream checkout")
		}
		// An untagged checkout falls back to the marker's version label.
		label = fallback
	}
	return version.LineageTagFor(label), nil
}

// ensureReleaseTags creates the lineage and release tags on HEAD,
// tolerating tags that already exist from an earlier partial run.
func (e *Engine) ensureReleaseTags(
	ctx context.Context,
	releaseTag, lineage, upstreamLabel string,
	log zerolog.Logger,
) error {
	pin, err := manifest.LoadPin(e.repo.WorktreeFS(), e.cfg.PinPath)
	if err != nil {
		return err
	}

	lineageMsg := fmt.Sprintf("libuv %s", upstreamLabel)
	if pin.Commit != "" {
		lineageMsg = fmt.Sprintf("libuv %s (%s)", upstreamLabel, pin.Commit)
	}

	created, err := e.repo.EnsureTag(ctx, lineage, "HEAD", lineageMsg, e.cfg.Author)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("tag", lineage).Msg("lineage tag created")
	}

	releaseMsg := fmt.Sprintf("%s, tracking libuv %s", releaseTag, upstreamLabel)
	created, err = e.repo.EnsureTag(ctx, releaseTag, "HEAD", releaseMsg, e.cfg.Author)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("tag", releaseTag).Msg("release tag created")
	}

	return nil
}

// releaseNotes builds the notes body. Log extraction failures degrade to
// the preamble alone, never to an error.
func (e *Engine) releaseNotes(
	ctx context.Context,
	release version.Tag,
	releaseTag, upstreamLabel string,
	ancestor version.Tag,
	hasAncestor bool,
) string {
	preamble := fmt.Sprintf("Version %s tracks libuv %s.", release.String(), upstreamLabel)

	var subjects []string
	if hasAncestor {
		var err error
		subjects, err = e.repo.CommitSubjectsBetween(ctx, ancestor.VString(), releaseTag)
		if err != nil {
			e.log.Warn().Err(err).Msg("commit log unavailable, notes reduced to preamble")
			subjects = nil
		}
	}

	return notes.Build(preamble, subjects)
}
