// Package reconcile implements the version reconciliation engine that keeps
// the downstream binding crate in step with upstream libuv releases. It
// exposes three operations: Detect finds the next untracked upstream
// release, Prepare stages a downstream release for a given upstream version,
// and Publish tags, documents, and ships a prepared release.
package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bmatcuk/libuv-sys/git"
	"github.com/bmatcuk/libuv-sys/upstream"
)

// Publisher ships the crate to the package registry.
type Publisher interface {
	Publish(ctx context.Context) error
}

// Config carries the engine's repository coordinates and file paths. Paths
// are relative to the downstream repository root.
type Config struct {
	// Upstream is the repository whose tag feed drives the cycle.
	UpstreamOwner string
	UpstreamRepo  string

	// Downstream is the repository the engine mutates.
	DownstreamOwner string
	DownstreamRepo  string

	// ManifestPath is the crate manifest carrying the downstream version.
	ManifestPath string

	// MarkerPath and MarkerKey locate the build-time assignment recording
	// the upstream version the bindings target.
	MarkerPath string
	MarkerKey  string

	// PinPath is the lock file recording the vendored checkout's upstream
	// label and commit.
	PinPath string

	// BuildConfigPath is the upstream build configuration file whose
	// changes force manual intervention.
	BuildConfigPath string

	// Remote is the downstream remote pushed to.
	Remote string

	// Author signs release commits and tags.
	Author git.Signature

	// NotifyLabels are applied to notification issues.
	NotifyLabels []string

	// DryRun stops Prepare before its first git write.
	DryRun bool

	// SkipRegistry makes Publish skip the registry upload.
	SkipRegistry bool
}

// Engine is the version reconciliation engine. It operates on explicit
// repository handles: repo is the downstream superproject, vendor the nested
// upstream checkout.
type Engine struct {
	cfg    Config
	repo   *git.Repo
	vendor *git.Repo
	feed   upstream.Client
	pub    Publisher
	log    zerolog.Logger
}

// New constructs an Engine. pub may be nil when the registry upload is
// disabled.
func New(
	cfg Config,
	repo, vendor *git.Repo,
	feed upstream.Client,
	pub Publisher,
	log zerolog.Logger,
) *Engine {
	if cfg.Remote == "" {
		cfg.Remote = git.DefaultRemoteName
	}

	return &Engine{
		cfg:    cfg,
		repo:   repo,
		vendor: vendor,
		feed:   feed,
		pub:    pub,
		log:    log,
	}
}

// notify opens a notification issue. Failures are logged and swallowed: the
// notification channel never gates the operation outcome.
func (e *Engine) notify(ctx context.Context, title, body string) {
	if e.feed == nil {
		return
	}

	err := e.feed.CreateIssue(
		ctx,
		e.cfg.DownstreamOwner, e.cfg.DownstreamRepo,
		title, body,
		e.cfg.NotifyLabels,
	)
	if err != nil {
		e.log.Warn().Err(err).Str("title", title).Msg("notification failed")
	}
}
