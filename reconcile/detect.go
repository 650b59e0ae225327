package reconcile

import (
	"context"

	"github.com/bmatcuk/libuv-sys/git"
	"github.com/bmatcuk/libuv-sys/manifest"
	"github.com/bmatcuk/libuv-sys/version"
)

// Detect finds the next upstream release to track: the smallest upstream
// tag strictly greater than the version the build marker currently records.
// It returns ErrNoNewVersion when the bindings are up to date.
func (e *Engine) Detect(ctx context.Context) (version.Tag, error) {
	marker, err := manifest.LoadMarker(e.repo.WorktreeFS(), e.cfg.MarkerPath, e.cfg.MarkerKey)
	if err != nil {
		return version.Tag{}, git.WrapError(err, "reading build marker")
	}

	current, err := version.Parse(marker.Upstream())
	if err != nil {
		return version.Tag{}, git.WrapErrorf(err, "build marker holds %q", marker.Upstream())
	}

	candidates, err := e.upstreamVersions(ctx)
	if err != nil {
		return version.Tag{}, err
	}

	next, ok := version.NextUpstream(current, candidates)
	if !ok {
		e.log.Info().Str("current", current.VString()).Msg("no new upstream version")
		return version.Tag{}, ErrNoNewVersion
	}

	e.log.Info().
		Str("current", current.VString()).
		Str("next", next.VString()).
		Msg("new upstream version detected")

	return next, nil
}

// upstreamVersions lists the upstream tag feed as parsed versions. Tags
// that are not plain versions are dropped, not errors: the feed is third
// party and carries non-version tags.
func (e *Engine) upstreamVersions(ctx context.Context) ([]version.Tag, error) {
	tags, err := e.feed.ListTags(ctx, e.cfg.UpstreamOwner, e.cfg.UpstreamRepo)
	if err != nil {
		return nil, git.WrapError(err, "listing upstream tags")
	}

	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}

	return version.ParseSet(names), nil
}
