package git

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

// testRepo is a helper struct that contains a test repository and its filesystem.
type testRepo struct {
	repo *Repo
	fs   billy.Filesystem
	ctx  context.Context
}

// testSignature returns a fixed signature for test commits and tags.
func testSignature() Signature {
	return Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// setupTestRepo creates a new test repository with an in-memory filesystem.
func setupTestRepo(t *testing.T, bare bool) *testRepo {
	t.Helper()

	ctx := context.Background()
	memFS := memfs.New()

	repo, err := Init(ctx, &Options{
		FS:      memFS,
		Bare:    bare,
		Workdir: ".",
	})
	require.NoError(t, err, "failed to initialize test repository")
	require.NotNil(t, repo, "repository should not be nil")

	return &testRepo{
		repo: repo,
		fs:   memFS,
		ctx:  ctx,
	}
}

// setupTestRepoWithCommit creates a test repository with an initial commit.
func setupTestRepoWithCommit(t *testing.T) *testRepo {
	t.Helper()

	tr := setupTestRepo(t, false)
	tr.commitFile(t, "test.txt", "initial content", "Initial commit")
	return tr
}

// writeFile writes a file into the test repository worktree.
func (tr *testRepo) writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := util.WriteFile(tr.fs, path, []byte(content), 0o644)
	require.NoError(t, err, "failed to write %s", path)
}

// commitFile writes, stages, and commits a single file, returning the commit hash.
func (tr *testRepo) commitFile(t *testing.T, path, content, msg string) string {
	t.Helper()

	tr.writeFile(t, path, content)

	err := tr.repo.Add(tr.ctx, path)
	require.NoError(t, err, "failed to add %s", path)

	hash, err := tr.repo.Commit(tr.ctx, msg, testSignature(), CommitOpts{})
	require.NoError(t, err, "failed to commit %s", path)
	return hash
}

// tag creates a lightweight tag at HEAD.
func (tr *testRepo) tag(t *testing.T, name string) {
	t.Helper()

	err := tr.repo.CreateTag(tr.ctx, name, "HEAD", "", Signature{})
	require.NoError(t, err, "failed to tag %s", name)
}
