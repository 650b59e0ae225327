// Package git provides a high-level wrapper for go-git operations.
// It exposes task-oriented operations for the release automation while
// operating exclusively through an injected billy filesystem, so every
// operation works against an explicit repository handle with no ambient
// working-directory state.
package git

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	// DefaultStorerCacheSize is the default size for the LRU object cache.
	DefaultStorerCacheSize = 1000

	// DefaultWorkdir is the default worktree directory name.
	DefaultWorkdir = "."

	// DefaultRemoteName is the default remote name used for operations.
	DefaultRemoteName = "origin"
)

// Options configures repository discovery/creation.
type Options struct {
	// FS is the REQUIRED filesystem root (OS or in-memory).
	// All repository state lives within this filesystem.
	FS billy.Filesystem

	// Workdir is the path within FS for the worktree root.
	// Defaults to "." (current directory in FS).
	Workdir string

	// Bare indicates if this should be a bare repository (.git only, no worktree).
	Bare bool

	// StorerCacheSize sets the LRU objects cache entries.
	// Defaults to DefaultStorerCacheSize.
	StorerCacheSize int

	// Auth is an optional provider that resolves per-URL AuthMethod.
	// If nil, no authentication will be available.
	Auth AuthProvider
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	if o.FS == nil {
		return WrapError(ErrInvalidRef, "FS is required")
	}
	if o.StorerCacheSize < 0 {
		return WrapError(ErrInvalidRef, "StorerCacheSize cannot be negative")
	}
	return nil
}

// applyDefaults sets default values for any unset fields in Options.
func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}
	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}
}

// AuthProvider resolves authentication methods for git operations.
// Implementations should handle different URL schemes and credential sources.
type AuthProvider interface {
	// Method returns the appropriate transport.AuthMethod for the given remote URL.
	// Returns nil if no authentication is needed/available for this URL.
	// Returns an error if authentication cannot be resolved for the URL.
	Method(remoteURL string) (transport.AuthMethod, error)
}

// TokenAuth is an AuthProvider that authenticates HTTPS remotes with a
// bearer token (a GitHub installation or personal access token).
type TokenAuth struct {
	// Token is the access token presented as the password.
	Token string
}

// Method implements AuthProvider.
func (a TokenAuth) Method(remoteURL string) (transport.AuthMethod, error) {
	if a.Token == "" {
		return nil, nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: a.Token}, nil
}

// Signature represents an author/committer signature for commits and tags.
type Signature struct {
	// Name is the author's or committer's name.
	Name string

	// Email is the author's or committer's email address.
	Email string

	// When is the timestamp for the signature. The zero value means "now".
	When time.Time
}

// CommitOpts configures commit creation behavior.
type CommitOpts struct {
	// AllowEmpty allows creating commits with no changes.
	// By default, empty commits are not allowed.
	AllowEmpty bool
}

// Repo represents a git repository and provides high-level operations.
// It wraps a go-git Repository and Worktree bound to the injected filesystem.
type Repo struct {
	repo     *gogit.Repository
	worktree *gogit.Worktree
	fs       billy.Filesystem
	options  Options
}

// WorktreeFS returns the filesystem rooted at the repository worktree.
// Callers use it to read and rewrite tracked files before staging them.
func (r *Repo) WorktreeFS() billy.Filesystem {
	if r.worktree == nil {
		return nil
	}
	return r.worktree.Filesystem
}

// openStorage prepares go-git storage and worktree filesystems within opts.FS.
func openStorage(opts *Options) (*filesystem.Storage, billy.Filesystem, error) {
	scopedFS, err := opts.FS.Chroot(opts.Workdir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to chroot to workdir %q: %w", opts.Workdir, err)
	}

	objCache := cache.NewObjectLRU(cache.FileSize(opts.StorerCacheSize))

	if opts.Bare {
		return filesystem.NewStorage(scopedFS, objCache), nil, nil
	}

	dotGitFS, err := scopedFS.Chroot(gogit.GitDirName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access .git directory: %w", err)
	}
	return filesystem.NewStorage(dotGitFS, objCache), scopedFS, nil
}

// wrap completes a Repo handle around an opened go-git repository.
func wrap(repo *gogit.Repository, opts *Options) (*Repo, error) {
	r := &Repo{
		repo:    repo,
		fs:      opts.FS,
		options: *opts,
	}
	if !opts.Bare {
		worktree, err := repo.Worktree()
		if err != nil {
			return nil, WrapError(err, "failed to get worktree")
		}
		r.worktree = worktree
	}
	return r, nil
}

// Init creates a new git repository at the specified location.
func Init(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	storage, worktreeFS, err := openStorage(opts)
	if err != nil {
		return nil, err
	}

	repo, err := gogit.Init(storage, worktreeFS)
	if err != nil {
		return nil, WrapError(err, "failed to initialize repository")
	}
	return wrap(repo, opts)
}

// Open discovers and opens an existing git repository at the workdir within
// the filesystem.
//
// Context timeout/cancellation is honored during repository validation.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	storage, worktreeFS, err := openStorage(opts)
	if err != nil {
		return nil, err
	}

	repo, err := gogit.Open(storage, worktreeFS)
	if err != nil {
		return nil, WrapError(err, "failed to open repository")
	}
	return wrap(repo, opts)
}

// Clone creates a new repository by cloning from a remote URL.
//
// Context timeout/cancellation is honored during the clone operation.
func Clone(ctx context.Context, remoteURL string, opts *Options) (*Repo, error) {
	if remoteURL == "" {
		return nil, WrapError(ErrInvalidRef, "remote URL cannot be empty")
	}
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	storage, worktreeFS, err := openStorage(opts)
	if err != nil {
		return nil, err
	}

	cloneOpts := &gogit.CloneOptions{URL: remoteURL}
	if opts.Auth != nil {
		authMethod, authErr := opts.Auth.Method(remoteURL)
		if authErr != nil {
			return nil, WrapError(authErr, "failed to get authentication method")
		}
		cloneOpts.Auth = authMethod
	}

	repo, err := gogit.CloneContext(ctx, storage, worktreeFS, cloneOpts)
	if err != nil {
		return nil, WrapError(err, "failed to clone repository")
	}
	return wrap(repo, opts)
}

// AddRemote configures a named remote. Adding a remote that is already
// configured with the same URL is a no-op.
func (r *Repo) AddRemote(ctx context.Context, name, url string) error {
	if existing, err := r.repo.Remote(name); err == nil {
		if len(existing.Config().URLs) > 0 && existing.Config().URLs[0] == url {
			return nil
		}
		return WrapErrorf(gogit.ErrRemoteExists, "remote %s already configured", name)
	}

	_, err := r.repo.CreateRemote(&gitcfg.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if err != nil {
		return WrapErrorf(err, "failed to add remote %s", name)
	}
	return nil
}

// authForRemote resolves the auth method for a named remote, when an
// AuthProvider is configured.
func (r *Repo) authForRemote(remote string) (transport.AuthMethod, error) {
	if r.options.Auth == nil {
		return nil, nil
	}
	remoteConfig, err := r.repo.Remote(remote)
	if err != nil {
		return nil, WrapError(err, "failed to get remote configuration")
	}
	authMethod, err := r.options.Auth.Method(remoteConfig.Config().URLs[0])
	if err != nil {
		return nil, WrapError(ErrAuthRequired, "failed to get authentication method")
	}
	return authMethod, nil
}
