package git

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"symbolic-ref", "HEAD", "refs/heads/main"},
		{"-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "--allow-empty", "-m", "init"},
		{"remote", "add", "origin", "git@github.com:acme/api.git"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	return dir
}

func TestRepo_BranchLifecycle(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(ctx, createTestRepo(t))
	require.NoError(t, err)

	current, err := repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", current)

	require.NoError(t, repo.CreateBranch(ctx, "42-fix-login"))
	current, err = repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "42-fix-login", current)
	assert.True(t, repo.HasBranch(ctx, "42-fix-login"))
	assert.False(t, repo.HasBranch(ctx, "nope"))

	branches, err := repo.Branches(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main", "42-fix-login"}, branches)

	require.NoError(t, repo.Checkout(ctx, "main"))
	assert.Error(t, repo.Checkout(ctx, "does-not-exist"))
}

func TestRepo_RootAndRemote(t *testing.T) {
	ctx := context.Background()
	dir := createTestRepo(t)
	repo, err := Open(ctx, dir)
	require.NoError(t, err)

	root, err := repo.Root(ctx)
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, want, got)

	remote, err := repo.RemoteRepo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme/api", remote)
}

func TestOpen_NotRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	_, err := Open(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)
}
