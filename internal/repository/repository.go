// Package repository implements the Repository Core (C5): the orchestrator
// that ties the Git Probe, Tracked Commit model, Store Backend, and Spread
// Classifier together into update/last-commit/status/claim/release, and
// owns the claim state machine and permission enforcement.
package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/gitalong/gitalong/internal/batch"
	"github.com/gitalong/gitalong/internal/common"
	"github.com/gitalong/gitalong/internal/config"
	"github.com/gitalong/gitalong/internal/errors"
	"github.com/gitalong/gitalong/internal/gitprobe"
	"github.com/gitalong/gitalong/internal/identity"
	"github.com/gitalong/gitalong/internal/spread"
	"github.com/gitalong/gitalong/internal/store"
	"github.com/gitalong/gitalong/internal/trackedcommit"
)

// Repository orchestrates one managed repository's coordination state.
type Repository struct {
	root    string
	cfg     *config.Config
	id      identity.Identity
	probe   *gitprobe.Probe
	backend store.Backend
	logger  common.Logger
}

// Open loads .gitalong.json at root, resolves this clone's identity, and
// constructs the Store Backend the config points at.
func Open(root string, logger common.Logger) (*Repository, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	probe := gitprobe.New(root)
	id, err := identity.Resolver{GitUserEmail: probe.UserEmail}.Resolve()
	if err != nil {
		return nil, err
	}

	backend, err := store.NewBackend(root, cfg, id)
	if err != nil {
		return nil, err
	}

	return &Repository{root: root, cfg: cfg, id: id, probe: probe, backend: backend, logger: logger}, nil
}

// Identity returns this clone's resolved (host, user) pair.
func (r *Repository) Identity() identity.Identity { return r.id }

// StatusEntry is one path's answer to Status.
type StatusEntry struct {
	Path           string
	Spread         spread.Bitset
	Sha            string
	LocalBranches  []string
	RemoteBranches []string
	Host           string
	Author         string
}

// ClaimResult is one path's answer to Claim: Blocking is nil on success.
type ClaimResult struct {
	Path     string
	Blocking *trackedcommit.Commit
}

// ReleaseResult is one path's answer to Release.
type ReleaseResult struct {
	Path     string
	Released bool
	Err      error
}

// Update recomputes this clone's published slice from local Git state and
// the latest store snapshot, and republishes it (spec 4.5 `update`).
func (r *Repository) Update(ctx context.Context) error {
	logf := r.cycleLogf()
	logf("update: acquiring store lock")
	if err := r.backend.Lock(); err != nil {
		logf("update: lock failed: %v", err)
		return err
	}
	defer r.backend.Unlock()

	remote, err := r.backend.Snapshot(ctx)
	if err != nil {
		return err
	}

	mine, merged, err := r.computeSlice(remote, nil)
	if err != nil {
		return err
	}

	if err := r.backend.Commit(ctx, mine); err != nil {
		return err
	}
	logf("update: published %d record(s)", len(mine))

	if r.cfg.ModifyPermissions {
		if err := r.enforcePermissions(merged); err != nil {
			return err
		}
	}
	return nil
}

// logf writes to the internal (file-only) log channel if a logger was
// configured; Open's caller may leave it nil for library use.
func (r *Repository) logf(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Info(format, args...)
	}
}

// cycleLogf returns a logf bound to a fresh correlation ID, so every log
// line emitted during one commit cycle (update/claim/release — each one
// lock-acquire-snapshot-commit round trip) can be grepped out of the log
// file as a unit even when several clones interleave their own cycles in
// a shared log.
func (r *Repository) cycleLogf() func(format string, args ...interface{}) {
	cid := uuid.NewString()
	return func(format string, args ...interface{}) {
		r.logf("[%s] "+format, append([]interface{}{cid}, args...)...)
	}
}

// computeSlice builds this clone's new published slice (real-commit records
// for every local/remote branch tip, plus an uncommitted record if
// track_uncommitted is set) and returns it alongside the full merged view
// that would result from publishing it, so callers can make permission
// decisions against the post-publish world without a second store round
// trip. extraClaims are paths to fold into the uncommitted record's claims
// (used by Claim before the decision whether each one sticks is known).
func (r *Repository) computeSlice(remote []trackedcommit.Commit, extraClaims []string) (mine, merged []trackedcommit.Commit, err error) {
	remoteURL, err := r.probe.RemoteURL()
	if err != nil {
		return nil, nil, err
	}

	commitRecords, err := r.walkBranchTips(remoteURL)
	if err != nil {
		return nil, nil, err
	}
	mine = commitRecords

	if r.cfg.TrackUncommitted {
		uncommitted, err := r.buildUncommittedRecord(remote, remoteURL, extraClaims)
		if err != nil {
			return nil, nil, err
		}
		if uncommitted != nil {
			mine = append(mine, *uncommitted)
		}
	}

	merged = store.MergeRule(remote, r.id, mine)
	return mine, merged, nil
}

// walkBranchTips implements update steps 1-2: one real-commit record per
// distinct local/remote-tracking branch tip sha, branch sets filled via
// BranchesContaining so same-sha branches merge naturally.
func (r *Repository) walkBranchTips(remoteURL string) ([]trackedcommit.Commit, error) {
	local, err := r.probe.LocalBranches()
	if err != nil {
		return nil, err
	}
	remoteBranches, err := r.probe.RemoteBranches()
	if err != nil {
		return nil, err
	}

	shas := make(map[string]bool)
	for _, branch := range local {
		tip, err := r.probe.BranchTip(branch)
		if err != nil {
			continue
		}
		shas[tip] = true
	}
	for _, branch := range remoteBranches {
		tip, err := r.probe.BranchTip(branch)
		if err != nil {
			continue
		}
		shas[tip] = true
	}

	ordered := make([]string, 0, len(shas))
	for sha := range shas {
		ordered = append(ordered, sha)
	}
	sort.Strings(ordered)

	records := make([]trackedcommit.Commit, 0, len(ordered))
	for _, sha := range ordered {
		localRefs, remoteRefs, err := r.probe.BranchesContaining(sha)
		if err != nil {
			return nil, err
		}
		info, err := r.probe.Commit(sha)
		if err != nil {
			return nil, err
		}
		records = append(records, trackedcommit.Commit{
			Sha:    sha,
			Remote: remoteURL,
			Branches: trackedcommit.Branches{
				Local:  localRefs,
				Remote: remoteRefs,
			},
			// Host/Author identify the publisher (this clone), per the data
			// model (spec 3) — not the git commit's author, which is purely
			// informational and isn't persisted on the record.
			Host:    r.id.Host,
			Author:  r.id.User,
			Date:    info.Date,
			Summary: info.Summary,
			Changes: info.Changes,
		})
	}
	return records, nil
}

// buildUncommittedRecord implements update step 3: working_changes() union
// preserved claims, where a claim is preserved only if its path is not yet
// in working_changes() and is still writable.
func (r *Repository) buildUncommittedRecord(remote []trackedcommit.Commit, remoteURL string, extraClaims []string) (*trackedcommit.Commit, error) {
	working, err := r.probe.WorkingChanges(r.cfg.TrackedExtensions)
	if err != nil {
		return nil, err
	}

	var oldClaims []string
	for _, rec := range remote {
		if rec.IsUncommitted() && rec.PublishedBy(r.id, remoteURL) {
			oldClaims = rec.Claims
			break
		}
	}

	workingSet := make(map[string]bool, len(working))
	for _, p := range working {
		workingSet[p] = true
	}

	preserved := make([]string, 0, len(oldClaims)+len(extraClaims))
	for _, claim := range append(append([]string{}, oldClaims...), extraClaims...) {
		if workingSet[claim] {
			continue // claimant has begun editing; now covered by the commit record itself
		}
		if r.probe.FileExistsOnDisk(claim) && !r.probe.IsWritable(claim) {
			continue // no longer writable, so the claim can't be honored
		}
		preserved = append(preserved, claim)
	}
	claims := trackedcommit.UnionChanges(preserved)

	changes := trackedcommit.UnionChanges(working, claims)
	if len(changes) == 0 && len(claims) == 0 {
		return nil, nil
	}

	return &trackedcommit.Commit{
		Sha:     "",
		Remote:  remoteURL,
		Host:    r.id.Host,
		Author:  r.id.User,
		Changes: changes,
		Claims:  claims,
	}, nil
}

// enforcePermissions implements update step 4: a tracked-extension file is
// writable iff it belongs to the caller's own changes/claims, or no record
// in the post-publish merged view claims it; otherwise read-only.
func (r *Repository) enforcePermissions(merged []trackedcommit.Commit) error {
	remoteURL, err := r.probe.RemoteURL()
	if err != nil {
		return err
	}

	claimedBySomeoneElse := make(map[string]bool)
	mine := make(map[string]bool)
	for _, rec := range merged {
		owned := ownedBy(rec, r.id, remoteURL)
		for _, path := range rec.Changes {
			if owned {
				mine[path] = true
			} else {
				claimedBySomeoneElse[path] = true
			}
		}
		for _, path := range rec.Claims {
			if owned {
				mine[path] = true
			} else {
				claimedBySomeoneElse[path] = true
			}
		}
	}

	tracked, err := r.probe.TrackedFiles(r.cfg.TrackedExtensions)
	if err != nil {
		return err
	}
	for _, path := range tracked {
		if !r.probe.FileExistsOnDisk(path) {
			continue
		}
		writable := mine[path] || !claimedBySomeoneElse[path]
		if err := r.probe.Chmod(path, writable); err != nil {
			return err
		}
	}
	return nil
}

// LastCommit returns the highest-priority record touching path, or nil if
// no record mentions it (spec 4.5 `last_commit`). Priority: this clone's
// uncommitted record, then another clone's uncommitted record, then any
// real-commit record, tie-broken by newest commit date.
func (r *Repository) LastCommit(ctx context.Context, path string) (*trackedcommit.Commit, error) {
	snapshot, err := r.backend.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return r.lastCommitFromSnapshot(snapshot, path), nil
}

func (r *Repository) lastCommitFromSnapshot(snapshot []trackedcommit.Commit, path string) *trackedcommit.Commit {
	var best *trackedcommit.Commit
	bestRank := -1
	for i := range snapshot {
		rec := snapshot[i]
		if !containsPath(rec.Changes, path) {
			continue
		}
		rank := recordRank(rec, r.id)
		if rank > bestRank {
			bestRank = rank
			best = &snapshot[i]
			continue
		}
		if rank == bestRank && best != nil && rec.Date > best.Date {
			best = &snapshot[i]
		}
	}
	return best
}

// recordRank orders records for LastCommit: MINE_UNCOMMITTED > OTHER_UNCOMMITTED > real commit.
func recordRank(rec trackedcommit.Commit, id identity.Identity) int {
	switch {
	case rec.IsUncommitted() && rec.IsMine(id):
		return 2
	case rec.IsUncommitted():
		return 1
	default:
		return 0
	}
}

// ownedBy reports whether rec is this clone's own contribution to the
// managed repository whose origin remote is remote: host, author, and
// remote must all match (spec 4.3's S_mine), so a record published by this
// same host/author for a different managed repository sharing the store is
// never mistaken for this clone's own.
func ownedBy(rec trackedcommit.Commit, id identity.Identity, remote string) bool {
	return rec.PublishedBy(id, remote)
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}
	return false
}

// Status answers spread/provenance per path off one consistent store
// snapshot, run through the Batch Executor (spec 4.5 `status`, C6).
func (r *Repository) Status(ctx context.Context, paths []string) ([]StatusEntry, error) {
	snapshot, err := r.backend.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	activeBranch, err := r.probe.ActiveBranch()
	if err != nil {
		return nil, err
	}

	results := batch.Run(ctx, paths, func(_ context.Context, path string) (StatusEntry, error) {
		rec := r.lastCommitFromSnapshot(snapshot, path)
		entry := StatusEntry{Path: path}
		if rec == nil {
			return entry, nil
		}
		entry.Spread = spread.Classify(*rec, r.id, activeBranch)
		entry.Sha = rec.Sha
		entry.LocalBranches = rec.Branches.Local
		entry.RemoteBranches = rec.Branches.Remote
		entry.Host = rec.Host
		entry.Author = rec.Author
		return entry, nil
	})

	entries := make([]StatusEntry, len(results))
	for i, res := range results {
		entries[i] = res.Value
	}
	return entries, nil
}

// Claim attempts to reserve exclusive edit rights to each path (spec 4.5
// `claim`, C6): a path succeeds iff no other record's changes already cover
// it and the file can be made writable. Each path's blocking decision is
// computed independently against one consistent snapshot via the Batch
// Executor; partial success is reported per-path. The final publish is
// serialized through the store lock once every per-path decision is known.
func (r *Repository) Claim(ctx context.Context, paths []string) ([]ClaimResult, error) {
	logf := r.cycleLogf()
	logf("claim: requesting %d path(s)", len(paths))
	if err := r.backend.Lock(); err != nil {
		return nil, err
	}
	defer r.backend.Unlock()

	snapshot, err := r.backend.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	remoteURL, err := r.probe.RemoteURL()
	if err != nil {
		return nil, err
	}

	decisions := batch.Run(ctx, paths, func(_ context.Context, path string) (ClaimResult, error) {
		if blocking := r.blockingRecord(snapshot, path, remoteURL); blocking != nil {
			return ClaimResult{Path: path, Blocking: blocking}, nil
		}
		return ClaimResult{Path: path}, nil
	})

	results := make([]ClaimResult, len(decisions))
	granted := make([]string, 0, len(paths))
	for i, d := range decisions {
		results[i] = d.Value
		if d.Value.Blocking == nil {
			granted = append(granted, d.Value.Path)
		}
	}

	mine, merged, err := r.computeSlice(snapshot, granted)
	if err != nil {
		return nil, err
	}

	if r.cfg.ModifyPermissions {
		for i, res := range results {
			if res.Blocking != nil || !r.probe.FileExistsOnDisk(res.Path) {
				continue
			}
			if err := r.probe.Chmod(res.Path, true); err != nil {
				results[i] = ClaimResult{Path: res.Path, Blocking: r.blockingRecord(merged, res.Path, remoteURL)}
			}
		}
	}

	if err := r.backend.Commit(ctx, mine); err != nil {
		return nil, err
	}
	return results, nil
}

// blockingRecord returns the record (if any) whose changes already cover
// path, excluding this clone's own contribution to the managed repository
// whose origin remote is remote.
func (r *Repository) blockingRecord(snapshot []trackedcommit.Commit, path, remote string) *trackedcommit.Commit {
	for i := range snapshot {
		rec := snapshot[i]
		if ownedBy(rec, r.id, remote) {
			continue
		}
		if containsPath(rec.Changes, path) {
			return &snapshot[i]
		}
	}
	return nil
}

// Release removes paths from this clone's claims (spec 4.5 `release`, C6). A
// path fails if it has already been modified locally: modification implies
// an active claim that only Update can clear. Each path's released/failed
// decision is computed independently via the Batch Executor before the
// single serialized store Commit.
func (r *Repository) Release(ctx context.Context, paths []string) ([]ReleaseResult, error) {
	logf := r.cycleLogf()
	logf("release: requesting %d path(s)", len(paths))
	if err := r.backend.Lock(); err != nil {
		return nil, err
	}
	defer r.backend.Unlock()

	remote, err := r.backend.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	remoteURL, err := r.probe.RemoteURL()
	if err != nil {
		return nil, err
	}

	working, err := r.probe.WorkingChanges(r.cfg.TrackedExtensions)
	if err != nil {
		return nil, err
	}
	workingSet := make(map[string]bool, len(working))
	for _, p := range working {
		workingSet[p] = true
	}

	decisions := batch.Run(ctx, paths, func(_ context.Context, path string) (ReleaseResult, error) {
		if workingSet[path] {
			return ReleaseResult{Path: path, Released: false, Err: errors.New("file has local modifications; run update instead")}, nil
		}
		return ReleaseResult{Path: path, Released: true}, nil
	})

	results := make([]ReleaseResult, len(decisions))
	toRelease := make(map[string]bool, len(paths))
	for i, d := range decisions {
		results[i] = d.Value
		if d.Value.Released {
			toRelease[d.Value.Path] = true
		}
	}

	var oldClaims []string
	for _, rec := range remote {
		if rec.IsUncommitted() && rec.PublishedBy(r.id, remoteURL) {
			oldClaims = append([]string{}, rec.Claims...)
			break
		}
	}

	// A claim is dropped iff its release was requested and the file has no
	// local modifications; a modified file keeps its claim since release
	// fails for it (only Update clears a claim on a modified file).
	remaining := make([]string, 0, len(oldClaims))
	for _, claim := range oldClaims {
		if toRelease[claim] {
			continue
		}
		remaining = append(remaining, claim)
	}
	remaining = trackedcommit.UnionChanges(remaining)

	changes := trackedcommit.UnionChanges(working, remaining)

	mine := []trackedcommit.Commit{}
	if len(changes) > 0 || len(remaining) > 0 {
		mine = append(mine, trackedcommit.Commit{
			Sha:     "",
			Remote:  remoteURL,
			Host:    r.id.Host,
			Author:  r.id.User,
			Changes: changes,
			Claims:  remaining,
		})
	}

	commitRecords, err := r.walkBranchTips(remoteURL)
	if err != nil {
		return nil, err
	}
	mine = append(commitRecords, mine...)

	if err := r.backend.Commit(ctx, mine); err != nil {
		return nil, err
	}

	if r.cfg.ModifyPermissions {
		for _, res := range results {
			if !res.Released {
				continue
			}
			_ = r.probe.Chmod(res.Path, false)
		}
	}

	return results, nil
}
