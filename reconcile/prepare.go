package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/libuv-sys/git"
	"github.com/bmatcuk/libuv-sys/manifest"
	"github.com/bmatcuk/libuv-sys/version"
)

// PrepareResult describes a staged downstream release.
type PrepareResult struct {
	// Target is the upstream version being adopted.
	Target version.Tag

	// Predecessor is the upstream version the downstream currently tracks
	// on this lineage.
	Predecessor version.Tag

	// Release is the computed downstream version.
	Release version.Tag

	// Branch is the release branch name.
	Branch string

	// LineageTag is the downstream tag the branch descends from.
	LineageTag string

	// Commit is the created release commit, empty on a dry run.
	Commit string
}

// Prepare stages a downstream release for the upstream version named by
// triggerRef: it checks the release lineage, checks out the release branch,
// rewrites the manifest, marker, and vendor pin, then commits and pushes the
// branch. No tags are created; that happens at publish time.
//
// Every validation runs before the first write, so an abort leaves both
// repositories untouched. Fatal aborts additionally file a notification
// issue.
func (e *Engine) Prepare(ctx context.Context, triggerRef string) (*PrepareResult, error) {
	target, err := parseTriggerRef(triggerRef)
	if err != nil {
		return nil, err
	}

	log := e.log.With().Str("target", target.VString()).Logger()

	candidates, err := e.upstreamVersions(ctx)
	if err != nil {
		return nil, err
	}

	predecessor, ok := version.Predecessor(target, candidates)
	if !ok {
		err := git.WrapErrorf(ErrLineageGap, "%s has no upstream predecessor", target.VString())
		e.reportAbort(ctx, target, err)
		return nil, err
	}

	if err := e.fetchVendor(ctx); err != nil {
		return nil, err
	}

	changed, err := e.vendor.ChangedBetween(
		ctx, predecessor.VString(), target.VString(), e.cfg.BuildConfigPath,
	)
	if err != nil {
		return nil, git.WrapError(err, "inspecting upstream build configuration")
	}
	if changed {
		err := git.WrapErrorf(
			ErrBuildConfigChanged,
			"%s changed between %s and %s",
			e.cfg.BuildConfigPath, predecessor.VString(), target.VString(),
		)
		e.reportAbort(ctx, target, err)
		return nil, err
	}

	branch := target.Line().BranchName()
	lineage := version.LineageTag(predecessor)

	exists, err := e.repo.TagExists(ctx, lineage)
	if err != nil {
		return nil, err
	}
	if !exists {
		err := git.WrapErrorf(ErrLineageGap, "downstream tag %s not found", lineage)
		e.reportAbort(ctx, target, err)
		return nil, err
	}

	release, err := e.nextRelease(ctx, target.Line())
	if err != nil {
		return nil, err
	}

	result := &PrepareResult{
		Target:      target,
		Predecessor: predecessor,
		Release:     release,
		Branch:      branch,
		LineageTag:  lineage,
	}

	log.Info().
		Str("predecessor", predecessor.VString()).
		Str("release", release.String()).
		Str("branch", branch).
		Msg("release staged")

	if e.cfg.DryRun {
		log.Info().Msg("dry run, stopping before checkout")
		return result, nil
	}

	// First write. Everything above must leave both repositories untouched.
	err = e.repo.CheckoutBranch(ctx, branch, git.CheckoutOpts{
		CreateFrom: lineage,
		Remote:     e.cfg.Remote,
	})
	if err != nil {
		return nil, err
	}

	if err := e.rewriteVersionFiles(target, release); err != nil {
		return nil, err
	}
	if err := e.advanceVendor(ctx, target); err != nil {
		return nil, err
	}

	if err := e.repo.Add(ctx, e.cfg.ManifestPath, e.cfg.MarkerPath, e.cfg.PinPath); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf(
		"libuv %s\n\nTracks libuv %s as crate version %s.",
		target.VString(), target.VString(), release.String(),
	)
	commit, err := e.repo.Commit(ctx, msg, e.cfg.Author, git.CommitOpts{})
	if err != nil {
		return nil, err
	}
	result.Commit = commit

	err = e.repo.Push(ctx, git.PushOpts{
		Remote:   e.cfg.Remote,
		RefSpecs: []string{git.BranchRefSpec(branch)},
	})
	if err != nil && !errors.Is(err, git.ErrAlreadyUpToDate) {
		return nil, err
	}

	log.Info().Str("commit", commit).Msg("release branch pushed")
	return result, nil
}

// parseTriggerRef extracts the upstream version from a trigger reference,
// which may be a bare tag name or a full ref path ("refs/tags/v1.44.2").
func parseTriggerRef(ref string) (version.Tag, error) {
	name := ref
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	target, err := version.Parse(name)
	if err != nil {
		return version.Tag{}, git.WrapErrorf(ErrBadTriggerRef, "%q", ref)
	}
	return target, nil
}

// nextRelease computes the downstream version for a release line from the
// existing downstream release tags.
func (e *Engine) nextRelease(ctx context.Context, line version.Line) (version.Tag, error) {
	names, err := e.repo.Tags(ctx)
	if err != nil {
		return version.Tag{}, err
	}
	return version.NextDownstream(line, version.ParseSet(names)), nil
}

// fetchVendor refreshes the nested upstream checkout. A fetch with nothing
// new is not an error.
func (e *Engine) fetchVendor(ctx context.Context) error {
	err := e.vendor.Fetch(ctx, git.FetchOpts{Tags: true})
	if err != nil && !errors.Is(err, git.ErrAlreadyUpToDate) {
		return git.WrapError(err, "fetching upstream checkout")
	}
	return nil
}

// rewriteVersionFiles updates the manifest version and the build marker in
// the downstream worktree.
func (e *Engine) rewriteVersionFiles(target, release version.Tag) error {
	fsys := e.repo.WorktreeFS()

	man, err := manifest.Load(fsys, e.cfg.ManifestPath)
	if err != nil {
		return err
	}
	if err := man.SetVersion(release); err != nil {
		return err
	}
	if err := man.Save(fsys, e.cfg.ManifestPath); err != nil {
		return err
	}

	marker, err := manifest.LoadMarker(fsys, e.cfg.MarkerPath, e.cfg.MarkerKey)
	if err != nil {
		return err
	}
	if err := marker.SetUpstream(target.VString()); err != nil {
		return err
	}
	return marker.Save(fsys, e.cfg.MarkerPath)
}

// advanceVendor checks out the target tag in the nested upstream checkout
// and records the resulting commit in the pin file.
func (e *Engine) advanceVendor(ctx context.Context, target version.Tag) error {
	if err := e.vendor.CheckoutDetached(ctx, target.VString()); err != nil {
		return git.WrapErrorf(err, "checking out libuv %s", target.VString())
	}

	sha, err := e.vendor.ResolveRevision(ctx, target.VString())
	if err != nil {
		return err
	}

	pin := &manifest.Pin{Upstream: target.VString(), Commit: sha}
	return pin.Save(e.repo.WorktreeFS(), e.cfg.PinPath)
}

// reportAbort logs a fatal abort and files the manual-intervention
// notification.
func (e *Engine) reportAbort(ctx context.Context, target version.Tag, err error) {
	e.log.Error().Err(err).Str("target", target.VString()).Msg("release aborted")

	title := fmt.Sprintf("manual intervention required for libuv %s", target.VString())
	body := fmt.Sprintf(
		"Automated release preparation for libuv %s stopped:\n\n    %s\n\nNo changes were pushed.",
		target.VString(), err,
	)
	e.notify(ctx, title, body)
}
