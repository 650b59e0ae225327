// uvrel automates the release cycle of the libuv-sys crate: it detects new
// libuv releases, prepares downstream release branches, and publishes tagged
// releases to the registry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bmatcuk/libuv-sys/config"
	"github.com/bmatcuk/libuv-sys/git"
	"github.com/bmatcuk/libuv-sys/logging"
	"github.com/bmatcuk/libuv-sys/reconcile"
	"github.com/bmatcuk/libuv-sys/upstream"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "uvrel:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "uvrel",
		Short:         "Release automation for the libuv-sys crate",
		Long:          "uvrel keeps the libuv-sys binding crate in step with upstream libuv releases: it detects new upstream versions, prepares release branches, and publishes tagged releases.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to config file (default: XDG search for "+config.DefaultPath+")")
	root.PersistentFlags().String("repo-dir", "", "Path to the libuv-sys checkout (default: current directory)")
	root.PersistentFlags().String("remote", "", "Git remote to push to")
	root.PersistentFlags().String("log-level", "", "Log level: trace | debug | info | warn | error")
	root.PersistentFlags().String("log-format", "", "Log format: json | console | auto")
	root.PersistentFlags().Bool("dry-run", false, "Stop before the first git write")

	root.AddCommand(newCheckCmd(), newPrepareCmd(), newPublishCmd())
	return root
}

// app holds the wired dependencies of a single command invocation.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	engine *reconcile.Engine
}

func setup(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg = config.MergeFlags(cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logging.New(&logging.Config{Level: cfg.LogLevel, Format: cfg.LogFmt})

	repoDir := cfg.RepoDir
	if repoDir == "" {
		repoDir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}

	ctx := cmd.Context()
	auth := git.TokenAuth{Token: cfg.Token}

	repo, err := git.Open(ctx, &git.Options{FS: osfs.New(repoDir), Auth: auth})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", repoDir, err)
	}

	vendorDir := filepath.Join(repoDir, cfg.Paths.Vendor)
	vendor, err := git.Open(ctx, &git.Options{FS: osfs.New(vendorDir), Auth: auth})
	if err != nil {
		return nil, fmt.Errorf("opening vendored checkout %s: %w", vendorDir, err)
	}

	skipRegistry, _ := cmd.Flags().GetBool("skip-registry")

	engine := reconcile.New(
		reconcile.Config{
			UpstreamOwner:   cfg.Upstream.Owner,
			UpstreamRepo:    cfg.Upstream.Name,
			DownstreamOwner: cfg.Downstream.Owner,
			DownstreamRepo:  cfg.Downstream.Name,
			ManifestPath:    cfg.Paths.Manifest,
			MarkerPath:      cfg.Paths.Marker,
			MarkerKey:       cfg.Paths.MarkerKey,
			PinPath:         cfg.Paths.Pin,
			BuildConfigPath: cfg.Paths.BuildConfig,
			Remote:          cfg.Git.Remote,
			Author: git.Signature{
				Name:  cfg.Git.AuthorName,
				Email: cfg.Git.AuthorEmail,
			},
			NotifyLabels: cfg.Notify.Labels,
			DryRun:       cfg.DryRun,
			SkipRegistry: skipRegistry,
		},
		repo, vendor,
		upstream.NewGitHub(cfg.Token),
		reconcile.NewRegistryPublisher(
			cfg.Registry.Command,
			cfg.Registry.Args,
			repoDir,
			cfg.Registry.TokenEnv,
			os.Getenv(cfg.Registry.TokenEnv),
		),
		log,
	)

	return &app{cfg: cfg, log: log, engine: engine}, nil
}
