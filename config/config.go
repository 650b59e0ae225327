// Package config loads the release pipeline configuration from a YAML file,
// command-line flags, and the environment.
package config

import (
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file location searched under the XDG config
// directories when no explicit path is given.
const DefaultPath = "uvrel/config.yml"

// Config holds the full pipeline configuration.
type Config struct {
	Upstream   Repo     `yaml:"upstream"`
	Downstream Repo     `yaml:"downstream"`
	Paths      Paths    `yaml:"paths"`
	Git        Git      `yaml:"git"`
	Registry   Registry `yaml:"registry"`
	Notify     Notify   `yaml:"notify"`

	// Flag/env only.
	RepoDir  string `yaml:"-"`
	DryRun   bool   `yaml:"-"`
	Token    string `yaml:"-"`
	LogLevel string `yaml:"-"`
	LogFmt   string `yaml:"-"`
}

// Repo identifies a hosted repository.
type Repo struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

// Paths locates the files the prepare operation rewrites, relative to the
// repository root.
type Paths struct {
	Manifest    string `yaml:"manifest"`
	Marker      string `yaml:"marker"`
	MarkerKey   string `yaml:"marker_key"`
	Pin         string `yaml:"pin"`
	Vendor      string `yaml:"vendor"`
	BuildConfig string `yaml:"build_config"`
}

// Git holds remote and authorship settings.
type Git struct {
	Remote      string `yaml:"remote"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Registry configures the publish command.
type Registry struct {
	Command  string   `yaml:"command"`
	Args     []string `yaml:"args"`
	TokenEnv string   `yaml:"token_env"`
}

// Notify configures the notification issue.
type Notify struct {
	Labels []string `yaml:"labels"`
}

// Default returns the configuration for the libuv-sys crate layout.
func Default() *Config {
	return &Config{
		Upstream:   Repo{Owner: "libuv", Name: "libuv"},
		Downstream: Repo{Owner: "bmatcuk", Name: "libuv-sys"},
		Paths: Paths{
			Manifest:    "Cargo.toml",
			Marker:      "build.rs",
			MarkerKey:   "LIBUV_VERSION",
			Pin:         "libuv.lock",
			Vendor:      "libuv",
			BuildConfig: "CMakeLists.txt",
		},
		Git: Git{
			Remote:      "origin",
			AuthorName:  "libuv-sys release bot",
			AuthorEmail: "release-bot@users.noreply.github.com",
		},
		Registry: Registry{
			Command:  "cargo",
			Args:     []string{"publish"},
			TokenEnv: "CARGO_REGISTRY_TOKEN",
		},
		Notify: Notify{
			Labels: []string{"release"},
		},
	}
}

// Load reads the config file at path, falling back to the XDG search path
// when path is empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		found, err := xdg.SearchConfigFile(DefaultPath)
		if err != nil {
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// MergeFlags overlays flag values onto cfg. Unset flags leave the file
// values in place.
func MergeFlags(cfg *Config, flags *pflag.FlagSet) *Config {
	if v, err := flags.GetString("repo-dir"); err == nil && v != "" {
		cfg.RepoDir = v
	}
	if v, err := flags.GetBool("dry-run"); err == nil && v {
		cfg.DryRun = v
	}
	if v, err := flags.GetString("remote"); err == nil && v != "" {
		cfg.Git.Remote = v
	}
	if v, err := flags.GetString("log-level"); err == nil && v != "" {
		cfg.LogLevel = v
	}
	if v, err := flags.GetString("log-format"); err == nil && v != "" {
		cfg.LogFmt = v
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv("GITHUB_TOKEN")
	}

	return cfg
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	switch {
	case c.Upstream.Owner == "" || c.Upstream.Name == "":
		return fmt.Errorf("upstream repository is not configured")
	case c.Downstream.Owner == "" || c.Downstream.Name == "":
		return fmt.Errorf("downstream repository is not configured")
	case c.Paths.Manifest == "":
		return fmt.Errorf("manifest path is not configured")
	case c.Paths.Marker == "" || c.Paths.MarkerKey == "":
		return fmt.Errorf("build marker is not configured")
	case c.Paths.Vendor == "":
		return fmt.Errorf("vendored checkout path is not configured")
	case c.Git.Remote == "":
		return fmt.Errorf("git remote is not configured")
	}
	return nil
}
