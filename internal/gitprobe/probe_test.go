package gitprobe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveBranchDetached(t *testing.T) {
	exec := newMockExecutor()
	exec.responses["branch --show-current"] = ""
	p := NewWithExecutor("/repo", exec)

	branch, err := p.ActiveBranch()
	require.NoError(t, err)
	assert.Equal(t, DetachedHEAD, branch)
}

func TestActiveBranchNamed(t *testing.T) {
	exec := newMockExecutor()
	exec.responses["branch --show-current"] = "main\n"
	p := NewWithExecutor("/repo", exec)

	branch, err := p.ActiveBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestBranchTip(t *testing.T) {
	exec := newMockExecutor()
	exec.responses["rev-parse main"] = "abc123\n"
	p := NewWithExecutor("/repo", exec)

	sha, err := p.BranchTip("main")
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)
}

func TestRemoteBranchesExcludesSymbolicHead(t *testing.T) {
	exec := newMockExecutor()
	exec.responses["for-each-ref --format=%(refname:short) refs/remotes"] = "origin/HEAD\norigin/main\norigin/feature\n"
	p := NewWithExecutor("/repo", exec)

	branches, err := p.RemoteBranches()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"origin/main", "origin/feature"}, branches)
}

func TestBranchesContainingMergesLocalAndRemote(t *testing.T) {
	exec := newMockExecutor()
	exec.responses["branch --format=%(refname:short) --contains abc"] = "main\nfeature\n"
	exec.responses["branch -r --format=%(refname:short) --contains abc"] = "origin/HEAD\norigin/main\n"
	p := NewWithExecutor("/repo", exec)

	local, remote, err := p.BranchesContaining("abc")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main", "feature"}, local)
	assert.ElementsMatch(t, []string{"origin/main"}, remote)
}

func TestCommitRootCommitUsesRootDiff(t *testing.T) {
	exec := newMockExecutor()
	exec.responses["log -1 --format=%an%x1f%aI%x1f%s abc"] = "Ada Lovelace\x1f2024-01-01T00:00:00Z\x1fInitial commit"
	exec.responses["rev-list --parents -1 abc"] = "abc"
	exec.responses["diff-tree --no-commit-id --name-only -r --root abc"] = "a.txt\nb.txt\n"
	p := NewWithExecutor("/repo", exec)

	info, err := p.Commit("abc")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", info.Author)
	assert.Equal(t, "Initial commit", info.Summary)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, info.Changes)
}

func TestCommitWithParentDiffsAgainstFirstParent(t *testing.T) {
	exec := newMockExecutor()
	exec.responses["log -1 --format=%an%x1f%aI%x1f%s def"] = "Grace Hopper\x1f2024-02-02T00:00:00Z\x1fSecond commit"
	exec.responses["rev-list --parents -1 def"] = "def abc"
	exec.responses["diff-tree --no-commit-id --name-only -r def^ def"] = "changed.bin\n"
	p := NewWithExecutor("/repo", exec)

	info, err := p.Commit("def")
	require.NoError(t, err)
	assert.Equal(t, []string{"changed.bin"}, info.Changes)
}

func TestWorkingChangesUnionsAndDedupsAndFilters(t *testing.T) {
	exec := newMockExecutor()
	exec.responses["diff --name-only HEAD"] = "art/texture.png\nREADME.md\n"
	exec.responses["diff --cached --name-only"] = "art/texture.png\n"
	exec.responses["ls-files --others --exclude-standard"] = "art/new.psd\n"
	p := NewWithExecutor("/repo", exec)

	changes, err := p.WorkingChanges([]string{"png", "psd"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"art/texture.png", "art/new.psd"}, changes)
}

func TestWorkingChangesNoFilterMatchesEverything(t *testing.T) {
	exec := newMockExecutor()
	exec.responses["diff --name-only HEAD"] = "README.md\n"
	p := NewWithExecutor("/repo", exec)

	changes, err := p.WorkingChanges(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md"}, changes)
}

func TestTrackedFilesFiltersByExtension(t *testing.T) {
	exec := newMockExecutor()
	exec.responses["ls-files"] = "a.psd\nb.txt\nc.PSD\n"
	p := NewWithExecutor("/repo", exec)

	files, err := p.TrackedFiles([]string{".psd"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.psd", "c.PSD"}, files)
}

func TestIsWritableMissingFileIsFalse(t *testing.T) {
	p := New(t.TempDir())
	assert.False(t, p.IsWritable("nope.txt"))
}

func TestChmodTogglesWriteBit(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "asset.bin")
	require.NoError(t, os.WriteFile(file, []byte("data"), 0644))

	p := New(dir)
	require.NoError(t, p.Chmod("asset.bin", false))
	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&0222)

	require.NoError(t, p.Chmod("asset.bin", true))
	info, err = os.Stat(file)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0200)
}

func TestChmodMissingFileReturnsPermissionError(t *testing.T) {
	p := New(t.TempDir())
	err := p.Chmod("missing.bin", true)
	require.Error(t, err)
	var target interface{ Unwrap() error }
	require.True(t, errors.As(err, &target))
}

func TestFileExistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644))

	p := New(dir)
	assert.True(t, p.FileExistsOnDisk("a.txt"))
	assert.False(t, p.FileExistsOnDisk("missing.txt"))
}
