package main

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"4d63.com/testcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGit(t *testing.T) {
	dir := testcli.MkdirTemp(t)
	os.Setenv("HOME", dir)
	testcli.Exec(t, "git config --global user.email 'tests@example.com'")
	testcli.Exec(t, "git config --global user.name 'Tests'")
	testcli.Exec(t, "git config --global init.defaultBranch main")
}

// newBareRemote creates and returns the path to a bare Git repository to
// stand in for a gitalong store remote.
func newBareRemote(t *testing.T) string {
	remote := testcli.MkdirTemp(t)
	testcli.Chdir(t, remote)
	testcli.Exec(t, "git init --bare")
	return remote
}

func TestSetupWritesConfigAndInitializesStore(t *testing.T) {
	setupGit(t)
	remote := newBareRemote(t)

	dir := testcli.MkdirTemp(t)
	testcli.Chdir(t, dir)
	testcli.Exec(t, "git init")
	testcli.WriteFile(t, "file1", []byte("content"))
	testcli.Exec(t, "git add .")
	testcli.Exec(t, "git commit -m 'Initial commit'")

	args := []string{"gitalong", "setup", remote, "--tracked-extensions", "psd,png"}
	exitCode, stdout, stderr := testcli.Main(t, args, nil, run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "gitalong is set up at")

	configData, err := os.ReadFile(".gitalong.json")
	require.NoError(t, err)
	assert.Contains(t, string(configData), remote)

	gitignore, err := os.ReadFile(".gitignore")
	require.NoError(t, err)
	assert.Contains(t, string(gitignore), ".gitalong/")

	hook, err := os.ReadFile(".git/hooks/post-commit")
	require.NoError(t, err)
	assert.Contains(t, string(hook), "gitalong")
}

func TestSetupRefusesDoubleSetup(t *testing.T) {
	setupGit(t)
	remote := newBareRemote(t)

	dir := testcli.MkdirTemp(t)
	testcli.Chdir(t, dir)
	testcli.Exec(t, "git init")

	args := []string{"gitalong", "setup", remote}
	exitCode, _, _ := testcli.Main(t, args, nil, run)
	require.Equal(t, 0, exitCode)

	exitCode, _, stderr := testcli.Main(t, args, nil, run)
	assert.NotEqual(t, 0, exitCode)
	assert.Contains(t, stderr, "already set up")
}

func TestUpdateStatusClaimReleaseFlow(t *testing.T) {
	setupGit(t)
	remote := newBareRemote(t)

	dir := testcli.MkdirTemp(t)
	testcli.Chdir(t, dir)
	testcli.Exec(t, "git init")
	testcli.WriteFile(t, "file1", []byte("content"))
	testcli.Exec(t, "git add .")
	testcli.Exec(t, "git commit -m 'Initial commit'")

	setupArgs := []string{"gitalong", "setup", remote, "--tracked-extensions", "psd"}
	exitCode, _, stderr := testcli.Main(t, setupArgs, nil, run)
	require.Equal(t, 0, exitCode, "stderr: %s", stderr)

	testcli.WriteFile(t, "art.psd", []byte("binary"))

	updateArgs := []string{"gitalong", "update"}
	exitCode, stdout, stderr := testcli.Main(t, updateArgs, nil, run)
	require.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Equal(t, "updated\n", stdout)

	statusArgs := []string{"gitalong", "status", "art.psd"}
	exitCode, stdout, stderr = testcli.Main(t, statusArgs, nil, run)
	require.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.True(t, strings.HasPrefix(stdout, "+-------"), "expected MINE_UNCOMMITTED spread, got %q", stdout)

	claimArgs := []string{"gitalong", "claim", "other.psd"}
	exitCode, stdout, stderr = testcli.Main(t, claimArgs, nil, run)
	require.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Equal(t, "claimed other.psd\n", stdout)

	releaseArgs := []string{"gitalong", "release", "other.psd"}
	exitCode, stdout, stderr = testcli.Main(t, releaseArgs, nil, run)
	require.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Equal(t, "released other.psd\n", stdout)
}

func TestVersionFlag(t *testing.T) {
	setupGit(t)
	dir := testcli.MkdirTemp(t)
	testcli.Chdir(t, dir)

	args := []string{"gitalong", "--version"}
	exitCode, stdout, _ := testcli.Main(t, args, nil, run)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, fmt.Sprintf("gitalong %s (%s) built %s\n", version, commit, date), stdout)
}
