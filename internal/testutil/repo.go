// Package testutil provides in-memory repository fixtures shared by tests.
package testutil

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	"github.com/go-git/go-git/v5/plumbing/transport/server"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/stretchr/testify/require"

	"github.com/bmatcuk/libuv-sys/git"
)

// Signature returns a fixed test signature.
func Signature() git.Signature {
	return git.Signature{
		Name:  "Test Author",
		Email: "test@example.com",
		When:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// NewRepo initializes an empty in-memory repository.
func NewRepo(t *testing.T) *git.Repo {
	t.Helper()

	repo, err := git.Init(context.Background(), &git.Options{FS: memfs.New()})
	require.NoError(t, err)
	return repo
}

// WriteFile writes a file into the repository worktree.
func WriteFile(t *testing.T, repo *git.Repo, path, content string) {
	t.Helper()

	err := util.WriteFile(repo.WorktreeFS(), path, []byte(content), 0o644)
	require.NoError(t, err)
}

// CommitFile writes a file, stages it, and commits. It returns the commit
// hash.
func CommitFile(t *testing.T, repo *git.Repo, path, content, msg string) string {
	t.Helper()

	WriteFile(t, repo, path, content)
	ctx := context.Background()
	require.NoError(t, repo.Add(ctx, path))

	hash, err := repo.Commit(ctx, msg, Signature(), git.CommitOpts{})
	require.NoError(t, err)
	return hash
}

// Tag creates a tag at HEAD, annotated when msg is non-empty.
func Tag(t *testing.T, repo *git.Repo, name, msg string) {
	t.Helper()

	err := repo.CreateTag(context.Background(), name, "HEAD", msg, Signature())
	require.NoError(t, err)
}

// remotesFS backs every remote served over the in-process transport.
var (
	remotesFS   = memfs.New()
	installOnce sync.Once
)

// ServeRemote creates an empty bare repository reachable over an in-process
// transport and returns its URL. Remote paths are namespaced by test name,
// so each test gets isolated remotes.
func ServeRemote(t *testing.T, name string) string {
	t.Helper()

	installOnce.Do(func() {
		loader := server.NewFilesystemLoader(remotesFS)
		client.InstallProtocol("test", server.NewClient(loader))
	})

	path := "/" + sanitize(t.Name()) + "-" + name + ".git"
	dir, err := remotesFS.Chroot(path)
	require.NoError(t, err)

	storage := filesystem.NewStorage(dir, cache.NewObjectLRUDefault())
	_, err = gogit.Init(storage, nil)
	require.NoError(t, err)

	return "test://" + path
}

// OpenRemote opens a repository previously created by ServeRemote for
// direct inspection of the refs a test pushed.
func OpenRemote(t *testing.T, url string) *gogit.Repository {
	t.Helper()

	path := strings.TrimPrefix(url, "test://")
	dir, err := remotesFS.Chroot(path)
	require.NoError(t, err)

	storage := filesystem.NewStorage(dir, cache.NewObjectLRUDefault())
	repo, err := gogit.Open(storage, nil)
	require.NoError(t, err)
	return repo
}

func sanitize(name string) string {
	return strings.NewReplacer("/", "-", " ", "_").Replace(name)
}
