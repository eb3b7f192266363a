package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func initGitRepo(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello repo"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Tunesmith",
			Email: "tunesmith@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return dir, hash.String()
}

func TestDescribeCleanRepository(t *testing.T) {
	t.Parallel()

	dir, commit := initGitRepo(t)

	info, err := Describe(dir)
	require.NoError(t, err)
	require.Equal(t, commit, info.Commit)
	require.Equal(t, "master", info.Branch)
	require.False(t, info.Dirty)
}

func TestDescribeDirtyWorktree(t *testing.T) {
	t.Parallel()

	dir, _ := initGitRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("uncommitted"), 0o644))

	info, err := Describe(dir)
	require.NoError(t, err)
	require.True(t, info.Dirty)
}

func TestDescribeFromSubdirectory(t *testing.T) {
	t.Parallel()

	dir, commit := initGitRepo(t)
	sub := filepath.Join(dir, "bench", "kernels")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	info, err := Describe(sub)
	require.NoError(t, err)
	require.Equal(t, commit, info.Commit)
	require.Equal(t, "master", info.Branch)
}

func TestDescribeOutsideRepository(t *testing.T) {
	t.Parallel()

	_, err := Describe(t.TempDir())
	require.Error(t, err)
}

func TestShortCommit(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0123abcd", Info{Commit: "0123abcdef0123abcdef0123abcdef0123abcdef"}.ShortCommit())
	require.Equal(t, "abc", Info{Commit: "abc"}.ShortCommit())
	require.Equal(t, "", Info{}.ShortCommit())
}
