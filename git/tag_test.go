package git

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTag(t *testing.T) {
	tests := []struct {
		name        string
		tagName     string
		target      string
		message     string
		expectError error
		validate    func(t *testing.T, tr *testRepo)
	}{
		{
			name:    "create lightweight tag on HEAD",
			tagName: "v1.0.0",
			target:  "HEAD",
			validate: func(t *testing.T, tr *testRepo) {
				tags, err := tr.repo.Tags(tr.ctx)
				require.NoError(t, err)
				assert.Contains(t, tags, "v1.0.0")

				ref, err := tr.repo.repo.Reference(plumbing.NewTagReferenceName("v1.0.0"), true)
				require.NoError(t, err)
				assert.Equal(t, plumbing.HashReference, ref.Type())
			},
		},
		{
			name:    "create annotated tag with message",
			tagName: "v2.0.0",
			target:  "HEAD",
			message: "release v2.0.0 (libuv v2.0.0)",
			validate: func(t *testing.T, tr *testRepo) {
				ref, err := tr.repo.repo.Reference(plumbing.NewTagReferenceName("v2.0.0"), true)
				require.NoError(t, err)
				tagObj, err := tr.repo.repo.TagObject(ref.Hash())
				require.NoError(t, err)
				assert.Contains(t, tagObj.Message, "libuv v2.0.0")
			},
		},
		{
			name:        "empty tag name rejected",
			tagName:     "",
			target:      "HEAD",
			expectError: ErrInvalidRef,
		},
		{
			name:        "unresolvable target rejected",
			tagName:     "v3.0.0",
			target:      "no-such-branch",
			expectError: ErrResolveFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := setupTestRepoWithCommit(t)

			err := tr.repo.CreateTag(tr.ctx, tt.tagName, tt.target, tt.message, testSignature())
			if tt.expectError != nil {
				require.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			tt.validate(t, tr)
		})
	}
}

func TestCreateTagAlreadyExists(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	tr.tag(t, "v1.0.0")

	err := tr.repo.CreateTag(tr.ctx, "v1.0.0", "HEAD", "", testSignature())
	assert.ErrorIs(t, err, ErrTagExists)
}

func TestEnsureTag(t *testing.T) {
	tr := setupTestRepoWithCommit(t)

	created, err := tr.repo.EnsureTag(tr.ctx, "upstream-v1.34.0", "HEAD", "", testSignature())
	require.NoError(t, err)
	assert.True(t, created)

	// Re-running against an existing tag must not fail the operation.
	created, err = tr.repo.EnsureTag(tr.ctx, "upstream-v1.34.0", "HEAD", "", testSignature())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestTagsWithPrefixFilter(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	tr.tag(t, "v1.34.0")
	tr.tag(t, "v1.34.1")
	tr.tag(t, "upstream-v1.34.0")

	all, err := tr.repo.Tags(tr.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	releases, err := tr.repo.Tags(tr.ctx, TagPrefixFilter("v"))
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.34.0", "v1.34.1"}, releases)

	lineage, err := tr.repo.Tags(tr.ctx, TagPrefixFilter("upstream-"))
	require.NoError(t, err)
	assert.Equal(t, []string{"upstream-v1.34.0"}, lineage)
}

func TestTagExists(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	tr.tag(t, "v1.0.0")

	exists, err := tr.repo.TagExists(tr.ctx, "v1.0.0")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = tr.repo.TagExists(tr.ctx, "v9.9.9")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTagTarget(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	first, err := tr.repo.ResolveRevision(tr.ctx, "HEAD")
	require.NoError(t, err)

	// Annotated tags must peel to the underlying commit.
	err = tr.repo.CreateTag(tr.ctx, "v1.0.0", "HEAD", "annotated", testSignature())
	require.NoError(t, err)

	target, err := tr.repo.TagTarget(tr.ctx, "v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, first, target)

	_, err = tr.repo.TagTarget(tr.ctx, "v9.9.9")
	assert.ErrorIs(t, err, ErrTagMissing)
}
