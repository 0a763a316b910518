// Package gitprobe implements the read-only Git queries gitalong needs to
// derive a clone's published state: branch topology, per-commit path lists,
// and the working tree's dirty/staged/untracked files. Every query is one
// `git` subprocess invocation; nothing here binds a Git library, since the
// semantics of "branches containing a sha" (including remote-tracking refs)
// are subtle enough that hand-driving the porcelain is the safer bet.
package gitprobe

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gitalong/gitalong/internal/errors"
)

// DetachedHEAD is returned by ActiveBranch when the repository has no
// current branch.
const DetachedHEAD = ""

// CommitInfo is the provenance and path-list data for one real commit.
type CommitInfo struct {
	Author  string
	Date    string
	Summary string
	Changes []string
}

// Probe wraps read-only queries over one Git working tree.
type Probe struct {
	repoPath string
	executor CommandExecutor
}

// New creates a Probe over repoPath using the real `git` binary.
func New(repoPath string) *Probe {
	return NewWithExecutor(repoPath, NewExecExecutor())
}

// NewWithExecutor creates a Probe with an injected CommandExecutor, for testing.
func NewWithExecutor(repoPath string, executor CommandExecutor) *Probe {
	return &Probe{repoPath: repoPath, executor: executor}
}

func (p *Probe) git(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", p.repoPath}, args...)...)
	out, err := p.executor.Run(cmd)
	return strings.TrimSpace(out), err
}

// ActiveBranch returns the current branch's short name, or DetachedHEAD if
// the working tree has no current branch.
func (p *Probe) ActiveBranch() (string, error) {
	out, err := p.git("branch", "--show-current")
	if err != nil {
		return "", err
	}
	return out, nil
}

// RemoteURL returns the fetch URL of the origin remote.
func (p *Probe) RemoteURL() (string, error) {
	out, err := p.git("remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	return out, nil
}

// UserEmail returns the configured `git config user.email`.
func (p *Probe) UserEmail() (string, error) {
	out, err := p.git("config", "user.email")
	if err != nil {
		return "", err
	}
	return out, nil
}

// LocalBranches lists all local branch short names.
func (p *Probe) LocalBranches() ([]string, error) {
	out, err := p.git("for-each-ref", "--format=%(refname:short)", "refs/heads")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// RemoteBranches lists all remote-tracking branch short names (e.g.
// "origin/main"), excluding symbolic refs like "origin/HEAD".
func (p *Probe) RemoteBranches() ([]string, error) {
	out, err := p.git("for-each-ref", "--format=%(refname:short)", "refs/remotes")
	if err != nil {
		return nil, err
	}
	branches := make([]string, 0)
	for _, line := range splitLines(out) {
		if strings.HasSuffix(line, "/HEAD") {
			continue
		}
		branches = append(branches, line)
	}
	return branches, nil
}

// BranchTip returns the commit sha a branch (local or remote-tracking)
// currently points at.
func (p *Probe) BranchTip(branch string) (string, error) {
	return p.git("rev-parse", branch)
}

// BranchesContaining returns the local and remote-tracking branches from
// which sha is reachable.
func (p *Probe) BranchesContaining(sha string) (local []string, remote []string, err error) {
	localOut, err := p.git("branch", "--format=%(refname:short)", "--contains", sha)
	if err != nil {
		// A sha unreachable from any branch is not a probe failure.
		localOut = ""
	}
	remoteOut, err2 := p.git("branch", "-r", "--format=%(refname:short)", "--contains", sha)
	if err2 != nil {
		remoteOut = ""
	}

	local = splitLines(localOut)
	for _, line := range splitLines(remoteOut) {
		if strings.HasSuffix(line, "/HEAD") {
			continue
		}
		remote = append(remote, line)
	}
	return local, remote, nil
}

// Commit returns provenance and the changed-path list for sha, computed
// against its first parent (or against the empty tree for a root commit).
func (p *Probe) Commit(sha string) (CommitInfo, error) {
	fields, err := p.git("log", "-1", "--format=%an%x1f%aI%x1f%s", sha)
	if err != nil {
		return CommitInfo{}, err
	}
	parts := strings.SplitN(fields, "\x1f", 3)
	info := CommitInfo{}
	if len(parts) > 0 {
		info.Author = parts[0]
	}
	if len(parts) > 1 {
		info.Date = parts[1]
	}
	if len(parts) > 2 {
		info.Summary = parts[2]
	}

	parents, err := p.git("rev-list", "--parents", "-1", sha)
	if err != nil {
		return CommitInfo{}, err
	}
	hasParent := len(strings.Fields(parents)) > 1

	var changesOut string
	if hasParent {
		changesOut, err = p.git("diff-tree", "--no-commit-id", "--name-only", "-r", sha+"^", sha)
	} else {
		changesOut, err = p.git("diff-tree", "--no-commit-id", "--name-only", "-r", "--root", sha)
	}
	if err != nil {
		return CommitInfo{}, err
	}
	info.Changes = splitLines(changesOut)

	return info, nil
}

// WorkingChanges returns the union of unstaged, staged, and untracked
// (but tracked-extension) paths, filtered to the given extensions. A nil or
// empty extensions list matches every path.
func (p *Probe) WorkingChanges(extensions []string) ([]string, error) {
	unstaged, err := p.git("diff", "--name-only", "HEAD")
	if err != nil {
		unstaged = ""
	}
	staged, err := p.git("diff", "--cached", "--name-only")
	if err != nil {
		staged = ""
	}
	untracked, err := p.git("ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var result []string
	add := func(lines []string) {
		for _, line := range lines {
			if line == "" || seen[line] {
				continue
			}
			if !matchesExtension(line, extensions) {
				continue
			}
			seen[line] = true
			result = append(result, line)
		}
	}
	add(splitLines(unstaged))
	add(splitLines(staged))
	add(splitLines(untracked))

	return result, nil
}

// TrackedFiles lists every file Git tracks in the working tree, filtered by
// extensions (nil or empty matches every path). Used to enumerate the full
// set of files permission enforcement must consider, not just the ones
// currently dirty.
func (p *Probe) TrackedFiles(extensions []string) ([]string, error) {
	out, err := p.git("ls-files")
	if err != nil {
		return nil, err
	}
	var result []string
	for _, line := range splitLines(out) {
		if matchesExtension(line, extensions) {
			result = append(result, line)
		}
	}
	return result, nil
}

// FileExistsOnDisk reports whether path (repository-relative) exists on disk.
func (p *Probe) FileExistsOnDisk(path string) bool {
	_, err := os.Stat(filepath.Join(p.repoPath, path))
	return err == nil
}

// IsWritable reports whether path (repository-relative) is currently
// writable on disk. A missing file is reported as not writable.
func (p *Probe) IsWritable(path string) bool {
	info, err := os.Stat(filepath.Join(p.repoPath, path))
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0200 != 0
}

// Chmod sets path (repository-relative) writable or read-only for its owner.
func (p *Probe) Chmod(path string, writable bool) error {
	full := filepath.Join(p.repoPath, path)
	info, err := os.Stat(full)
	if err != nil {
		return errors.NewPermissionError(path, err)
	}

	mode := info.Mode().Perm()
	if writable {
		mode |= 0200
	} else {
		mode &^= 0222
	}

	if err := os.Chmod(full, mode); err != nil {
		return errors.NewPermissionError(path, err)
	}
	return nil
}

func matchesExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, candidate := range extensions {
		if strings.EqualFold(strings.TrimPrefix(candidate, "."), ext) {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}

// IsRepository reports whether path is inside a Git working tree.
func IsRepository(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--is-inside-work-tree")
	_, err := NewExecExecutor().Run(cmd)
	return err == nil
}

// RepositoryRoot returns the top-level directory of the repository containing path.
func RepositoryRoot(path string) (string, error) {
	p := New(path)
	out, err := p.git("rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return out, nil
}
