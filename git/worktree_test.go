package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommit(t *testing.T) {
	tr := setupTestRepo(t, false)
	tr.writeFile(t, "Cargo.toml", "[package]\nversion = \"1.34.0\"\n")

	require.NoError(t, tr.repo.Add(tr.ctx, "Cargo.toml"))

	hash, err := tr.repo.Commit(tr.ctx, "libuv v1.34.0", testSignature(), CommitOpts{})
	require.NoError(t, err)
	assert.Len(t, hash, 40)
}

func TestCommitNothingStaged(t *testing.T) {
	tr := setupTestRepoWithCommit(t)

	_, err := tr.repo.Commit(tr.ctx, "empty", testSignature(), CommitOpts{})
	assert.ErrorIs(t, err, ErrEmptyCommit)
}

func TestCommitValidation(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	tr.writeFile(t, "a.txt", "a")
	require.NoError(t, tr.repo.Add(tr.ctx, "a.txt"))

	_, err := tr.repo.Commit(tr.ctx, "", testSignature(), CommitOpts{})
	assert.ErrorIs(t, err, ErrInvalidRef)

	_, err = tr.repo.Commit(tr.ctx, "msg", Signature{Name: "no email"}, CommitOpts{})
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestAddMultiplePaths(t *testing.T) {
	tr := setupTestRepo(t, false)
	tr.writeFile(t, "Cargo.toml", "[package]\nversion = \"1.34.0\"\n")
	tr.writeFile(t, "build.rs", "static LIBUV_VERSION: &str = \"v1.34.0\";\n")

	require.NoError(t, tr.repo.Add(tr.ctx, "Cargo.toml", "build.rs"))

	hash, err := tr.repo.Commit(tr.ctx, "libuv v1.34.0", testSignature(), CommitOpts{})
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}
