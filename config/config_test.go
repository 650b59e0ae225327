package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
upstream:
  owner: libuv
  name: libuv
downstream:
  owner: someone
  name: libuv-sys-fork
paths:
  vendor: vendor/libuv
git:
  remote: upstream
notify:
  labels: [release, automation]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "someone", cfg.Downstream.Owner)
	assert.Equal(t, "vendor/libuv", cfg.Paths.Vendor)
	assert.Equal(t, "upstream", cfg.Git.Remote)
	assert.Equal(t, []string{"release", "automation"}, cfg.Notify.Labels)

	// Defaults survive for values the file leaves out.
	assert.Equal(t, "Cargo.toml", cfg.Paths.Manifest)
	assert.Equal(t, "LIBUV_VERSION", cfg.Paths.MarkerKey)
	assert.Equal(t, "cargo", cfg.Registry.Command)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("upstream: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestMergeFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("repo-dir", "", "")
	flags.Bool("dry-run", false, "")
	flags.String("remote", "", "")
	flags.String("log-level", "", "")
	flags.String("log-format", "", "")
	require.NoError(t, flags.Parse([]string{
		"--repo-dir=/work/libuv-sys",
		"--dry-run",
		"--log-level=debug",
	}))

	t.Setenv("GITHUB_TOKEN", "t0ken")

	cfg := MergeFlags(Default(), flags)
	assert.Equal(t, "/work/libuv-sys", cfg.RepoDir)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "origin", cfg.Git.Remote)
	assert.Equal(t, "t0ken", cfg.Token)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.Upstream.Owner = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Paths.MarkerKey = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Paths.Vendor = ""
	assert.Error(t, cfg.Validate())
}
