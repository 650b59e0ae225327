package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRemote(t *testing.T) {
	t.Run("creates remote", func(t *testing.T) {
		r := setupTestRepo(t, false)

		err := r.repo.AddRemote(r.ctx, "origin", "https://example.com/repo.git")
		require.NoError(t, err)
	})

	t.Run("same URL is a no-op", func(t *testing.T) {
		r := setupTestRepo(t, false)

		require.NoError(t, r.repo.AddRemote(r.ctx, "origin", "https://example.com/repo.git"))
		assert.NoError(t, r.repo.AddRemote(r.ctx, "origin", "https://example.com/repo.git"))
	})

	t.Run("conflicting URL fails", func(t *testing.T) {
		r := setupTestRepo(t, false)

		require.NoError(t, r.repo.AddRemote(r.ctx, "origin", "https://example.com/repo.git"))
		err := r.repo.AddRemote(r.ctx, "origin", "https://example.com/other.git")
		require.Error(t, err)
	})
}

func TestOptionsValidate(t *testing.T) {
	var opts Options
	require.Error(t, opts.Validate(), "FS is required")
}
