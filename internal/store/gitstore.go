package store

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	cache "github.com/patrickmn/go-cache"

	"github.com/gitalong/gitalong/internal/errors"
	"github.com/gitalong/gitalong/internal/gitprobe"
	"github.com/gitalong/gitalong/internal/identity"
	"github.com/gitalong/gitalong/internal/lock"
	"github.com/gitalong/gitalong/internal/trackedcommit"
)

// storeSubdir is where the store clone lives under a managed repository's
// working directory (and is entered into .gitignore, see
// cmd/gitalong/gitignore.go).
const storeSubdir = ".gitalong"

// storeDocument is the single file a Git-backed store keeps at its root.
const storeDocument = "store.json"

// pullCache debounces Git-backed fetches across Snapshot calls within a
// process, keyed by store locator, so read-heavy workloads don't thrash the
// remote (spec: pulls debounced by pull_threshold seconds).
var pullCache = cache.New(cache.NoExpiration, 10*time.Minute)

// GitBackend is the Git-backed Store variant (4.3.1): the store is a Git
// repository cloned into .gitalong/ under the managed repository's root,
// holding a single store.json document.
type GitBackend struct {
	managedRoot   string
	storeURL      string
	storeDir      string
	id            identity.Identity
	executor      gitprobe.CommandExecutor
	locker        *lock.Locker
	pullThreshold time.Duration
	retryAttempts int
	retryBase     time.Duration
	retryMax      time.Duration
}

// GitBackendOptions configures NewGitBackend.
type GitBackendOptions struct {
	ManagedRoot   string
	StoreURL      string
	Identity      identity.Identity
	PullThreshold time.Duration
	RetryAttempts int
	RetryBase     time.Duration
	RetryMax      time.Duration
	Executor      gitprobe.CommandExecutor
}

// NewGitBackend creates a Git-backed store scoped to managedRoot.
func NewGitBackend(opts GitBackendOptions) (*GitBackend, error) {
	locker, err := lock.New(opts.StoreURL)
	if err != nil {
		return nil, err
	}
	executor := opts.Executor
	if executor == nil {
		executor = gitprobe.NewExecExecutor()
	}
	return &GitBackend{
		managedRoot:   opts.ManagedRoot,
		storeURL:      opts.StoreURL,
		storeDir:      filepath.Join(opts.ManagedRoot, storeSubdir),
		id:            opts.Identity,
		executor:      executor,
		locker:        locker,
		pullThreshold: opts.PullThreshold,
		retryAttempts: opts.RetryAttempts,
		retryBase:     opts.RetryBase,
		retryMax:      opts.RetryMax,
	}, nil
}

// Lock implements Backend.
func (b *GitBackend) Lock() error { return b.locker.Lock() }

// Unlock implements Backend.
func (b *GitBackend) Unlock() error { return b.locker.Unlock() }

func (b *GitBackend) documentPath() string {
	return filepath.Join(b.storeDir, storeDocument)
}

func (b *GitBackend) run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return b.executor.Run(cmd)
}

func (b *GitBackend) ensureClone() error {
	if info, err := os.Stat(filepath.Join(b.storeDir, ".git")); err == nil && info != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(b.storeDir), 0755); err != nil {
		return err
	}
	_, err := b.run(b.managedRoot, "clone", b.storeURL, b.storeDir)
	return err
}

func (b *GitBackend) pullIfStale() error {
	if _, found := pullCache.Get(b.storeURL); found {
		return nil
	}
	// `fetch` then hard-reset to the remote tip: the store document is
	// the only thing that matters here, so force-advancing avoids local
	// merge conflicts on a clone nobody edits by hand.
	if _, err := b.run(b.storeDir, "fetch", "origin", "main"); err != nil {
		// A freshly created store has no main branch yet: it is an empty
		// store, not an unavailable one.
		if out, lsErr := b.run(b.storeDir, "ls-remote", "--heads", "origin", "main"); lsErr == nil && strings.TrimSpace(out) == "" {
			return nil
		}
		return err
	}
	if _, err := b.run(b.storeDir, "reset", "--hard", "origin/main"); err != nil {
		return err
	}
	pullCache.Set(b.storeURL, true, b.pullThreshold)
	return nil
}

func (b *GitBackend) readDocument() ([]trackedcommit.Commit, error) {
	data, err := os.ReadFile(b.documentPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var commits []trackedcommit.Commit
	if err := json.Unmarshal(data, &commits); err != nil {
		return nil, errors.Wrap(err, "store.json is malformed")
	}
	return commits, nil
}

func (b *GitBackend) writeDocument(commits []trackedcommit.Commit) error {
	if commits == nil {
		commits = []trackedcommit.Commit{}
	}
	data, err := json.MarshalIndent(commits, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(b.documentPath(), data, 0644)
}

// Snapshot implements Backend.
func (b *GitBackend) Snapshot(ctx context.Context) ([]trackedcommit.Commit, error) {
	if err := b.ensureClone(); err != nil {
		return nil, errors.NewStoreUnavailableError(b.storeURL, 1, err)
	}
	if err := b.pullIfStale(); err != nil {
		return nil, errors.NewStoreUnavailableError(b.storeURL, 1, err)
	}
	return b.readDocument()
}

// Commit implements Backend. It fetches, recomputes the merge, and pushes,
// retrying on non-fast-forward rejection with bounded exponential backoff
// (spec 4.3.1: N=5 attempts, 100ms base, 2x factor, cap 2s by default,
// overridable via config).
func (b *GitBackend) Commit(ctx context.Context, mine []trackedcommit.Commit) error {
	if err := b.ensureClone(); err != nil {
		return errors.NewStoreUnavailableError(b.storeURL, 1, err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = b.retryBase
	bo.MaxInterval = b.retryMax
	bo.Multiplier = 2

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if _, err := b.run(b.storeDir, "fetch", "origin", "main"); err != nil {
			return struct{}{}, err
		}
		if _, err := b.run(b.storeDir, "reset", "--hard", "origin/main"); err != nil {
			return struct{}{}, err
		}

		remote, err := b.readDocument()
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		merged := MergeRule(remote, b.id, mine)
		if err := b.writeDocument(merged); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		if _, err := b.run(b.storeDir, "add", storeDocument); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if _, err := b.run(b.storeDir, "commit", "-m", "Update "+storeDocument); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if _, err := b.run(b.storeDir, "push", "origin", "main"); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithMaxTries(uint(b.retryAttempts)), backoff.WithBackOff(bo))

	if err != nil {
		return errors.NewStoreConflictError(b.storeURL, attempt, err)
	}

	pullCache.Set(b.storeURL, true, b.pullThreshold)
	return nil
}
