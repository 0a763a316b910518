// Package trackedcommit defines the Tracked Commit value object: the record
// one clone publishes to a store, either projected from a real Git commit or
// synthesized to represent uncommitted local work.
package trackedcommit

import (
	"encoding/json"
	"sort"

	"github.com/gitalong/gitalong/internal/identity"
)

// Branches holds the branch names a commit is reachable from, split by
// whether they are local branches or the publisher's remote-tracking refs.
type Branches struct {
	Local  []string `json:"local,omitempty"`
	Remote []string `json:"remote,omitempty"`
}

// Commit is one published record: a real commit projected with extra
// fields, or a synthetic record (Sha == "") representing one clone's
// uncommitted work.
//
// Extra holds any JSON keys present on read that this type doesn't model,
// so round-tripping a document written by a newer client never drops data.
type Commit struct {
	Sha      string   `json:"sha"`
	Remote   string   `json:"remote"`
	Branches Branches `json:"branches"`
	Host     string   `json:"host"`
	Author   string   `json:"author"`
	Date     string   `json:"date,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Changes  []string `json:"changes"`
	Claims   []string `json:"claims,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// IsUncommitted reports whether this record represents uncommitted local
// work rather than a real commit (invariant 4: sha == "" iff uncommitted).
func (c Commit) IsUncommitted() bool {
	return c.Sha == ""
}

// IsMine reports whether id issued this record: host and author must both
// match, for real-commit and uncommitted records alike. Unlike PublishedBy,
// the record's remote is not compared.
func (c Commit) IsMine(id identity.Identity) bool {
	return c.Host == id.Host && c.Author == id.User
}

// PublishedBy reports whether id, managing the repository whose origin
// remote is remote, is the clone that published this record. All three
// fields the data model calls "identity of the publisher" scoped to a
// project (host, author, remote) must match, per the merge rule's S_mine
// (spec 4.3): a store shared by more than one managed repository must
// never let one repository's republish touch another's records.
func (c Commit) PublishedBy(id identity.Identity, remote string) bool {
	return c.Host == id.Host && c.Author == id.User && c.Remote == remote
}

// IsGarbage reports whether the record carries no information worth
// keeping (invariant 3): empty changes and empty claims.
func (c Commit) IsGarbage() bool {
	return len(c.Changes) == 0 && len(c.Claims) == 0
}

// Key identifies a record for the purposes of invariants 1 and 2: real
// commits are keyed by (remote, sha); uncommitted records are keyed by
// (remote, host, author).
type Key struct {
	Remote string
	Sha    string
	Host   string
	Author string
}

// KeyOf returns c's identity key. For uncommitted records Sha is omitted
// from equality per spec (equality for sha=="" records is by
// (remote, host, author) only).
func (c Commit) KeyOf() Key {
	if c.IsUncommitted() {
		return Key{Remote: c.Remote, Host: c.Host, Author: c.Author}
	}
	return Key{Remote: c.Remote, Sha: c.Sha}
}

// Equal implements the equality rule from the spec: (remote, sha, host,
// author) must agree, except that uncommitted records (sha == "") compare
// by (remote, host, author) only.
func (c Commit) Equal(other Commit) bool {
	if c.IsUncommitted() != other.IsUncommitted() {
		return false
	}
	return c.KeyOf() == other.KeyOf() && c.Host == other.Host && c.Author == other.Author
}

// MarshalJSON serializes c, re-emitting any pass-through fields collected
// from the document it was read from.
func (c Commit) MarshalJSON() ([]byte, error) {
	type alias Commit
	base, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return base, nil
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range c.Extra {
		if _, known := merged[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON deserializes a Commit, preserving any unknown keys in Extra.
func (c *Commit) UnmarshalJSON(data []byte) error {
	type alias Commit
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Commit(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known := map[string]bool{
		"sha": true, "remote": true, "branches": true, "host": true,
		"author": true, "date": true, "summary": true, "changes": true,
		"claims": true,
	}
	extra := map[string]json.RawMessage{}
	for k, v := range raw {
		if !known[k] {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		c.Extra = extra
	}
	return nil
}

// MergeBranches unions two branch sets for the case where two observations
// of the same sha (e.g. from a local branch walk and a remote-tracking
// branch walk) must be combined (invariant 2: duplicates merged by union of
// branch sets).
func MergeBranches(a, b Branches) Branches {
	return Branches{
		Local:  unionSorted(a.Local, b.Local),
		Remote: unionSorted(a.Remote, b.Remote),
	}
}

func unionSorted(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		set[v] = true
	}
	if len(set) == 0 {
		return nil
	}
	result := make([]string, 0, len(set))
	for v := range set {
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}

// UnionChanges returns the sorted union of one or more path lists, used to
// assemble an uncommitted record's `changes` field (working-tree dirty
// paths ∪ index paths ∪ untracked-but-tracked-extension paths ∪ claimed
// paths).
func UnionChanges(lists ...[]string) []string {
	set := make(map[string]bool)
	for _, list := range lists {
		for _, path := range list {
			set[path] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	result := make([]string, 0, len(set))
	for path := range set {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}
