// Package store implements the abstract mutable set of Tracked Commits
// shared across clones (C3): a pluggable Backend with a Git-backed variant
// and an HTTP JSON-document-backed variant, plus the merge rule that keeps
// concurrent commits from different identities commutative.
package store

import (
	"context"

	"github.com/gitalong/gitalong/internal/identity"
	"github.com/gitalong/gitalong/internal/trackedcommit"
)

// Backend is the capability interface every store variant implements. It is
// a tagged-variant shape (selected by URL at construction, see NewBackend),
// not an inheritance hierarchy.
type Backend interface {
	// Snapshot performs an atomic, consistent read of every record
	// currently in the store.
	Snapshot(ctx context.Context) ([]trackedcommit.Commit, error)

	// Commit atomically replaces this clone's contribution, merged with
	// the freshly observed remote state per MergeRule. It returns only
	// after durability is confirmed.
	Commit(ctx context.Context, mine []trackedcommit.Commit) error

	// Lock acquires cross-process mutual exclusion over this store's
	// mutating operations.
	Lock() error

	// Unlock releases a lock acquired with Lock.
	Unlock() error
}

// MergeRule computes the set of records to persist when identity id commits
// mine: (remote \ mine_old) ∪ mine_new, where mine_old is every record in
// remote already attributed to id *for the same managed repository* (spec
// 4.3: S_mine matches on (host, author, remote), not host alone, so one
// store shared by several managed repositories never lets one repository's
// republish delete another's records). The repository being republished is
// taken from mine's own Remote field; if mine is empty there is nothing to
// scope a republish to, so no record is dropped by identity alone. No other
// clone's records are ever touched. Garbage records (see
// trackedcommit.Commit.IsGarbage) contributed by id are omitted, which is
// how a clone retracts a record it no longer has anything to say about.
// Duplicate keys arising from the union are merged via
// trackedcommit.MergeBranches/UnionChanges.
func MergeRule(remote []trackedcommit.Commit, id identity.Identity, mine []trackedcommit.Commit) []trackedcommit.Commit {
	scope := remoteOf(mine)

	kept := make([]trackedcommit.Commit, 0, len(remote)+len(mine))
	for _, r := range remote {
		if scope == "" || !r.PublishedBy(id, scope) {
			kept = append(kept, r)
		}
	}
	for _, m := range mine {
		if !m.IsGarbage() {
			kept = append(kept, m)
		}
	}
	return dedupe(kept)
}

// remoteOf returns the managed repository's origin remote that mine's
// records were published for, or "" if mine carries none.
func remoteOf(mine []trackedcommit.Commit) string {
	for _, m := range mine {
		if m.Remote != "" {
			return m.Remote
		}
	}
	return ""
}

// dedupe merges records sharing the same Key, unioning their branches and
// changes, matching invariants 1 and 2 of the tracked-commit model.
func dedupe(commits []trackedcommit.Commit) []trackedcommit.Commit {
	order := make([]trackedcommit.Key, 0, len(commits))
	byKey := make(map[trackedcommit.Key]trackedcommit.Commit, len(commits))
	for _, c := range commits {
		key := c.KeyOf()
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = c
			order = append(order, key)
			continue
		}
		merged := existing
		merged.Branches = trackedcommit.MergeBranches(existing.Branches, c.Branches)
		merged.Changes = trackedcommit.UnionChanges(existing.Changes, c.Changes)
		merged.Claims = trackedcommit.UnionChanges(existing.Claims, c.Claims)
		byKey[key] = merged
	}
	result := make([]trackedcommit.Commit, 0, len(order))
	for _, key := range order {
		result = append(result, byKey[key])
	}
	return result
}
