// Package spread implements the commit-spread classifier: a pure function
// from a tracked commit, the local clone's identity, and its active branch
// to an 8-bit description of where that commit lives across the fleet.
package spread

import (
	"strings"

	"github.com/gitalong/gitalong/internal/identity"
	"github.com/gitalong/gitalong/internal/trackedcommit"
)

// Bitset is the 8-bit commit-spread classification.
type Bitset uint8

// Bit positions, in the order the status line renders them.
const (
	MineUncommitted Bitset = 1 << iota
	MineActiveBranch
	MineOtherBranch
	RemoteMatchingBranch
	RemoteOtherBranch
	OtherOtherBranch
	OtherMatchingBranch
	OtherUncommitted
)

var orderedBits = [8]Bitset{
	MineUncommitted,
	MineActiveBranch,
	MineOtherBranch,
	RemoteMatchingBranch,
	RemoteOtherBranch,
	OtherOtherBranch,
	OtherMatchingBranch,
	OtherUncommitted,
}

// Has reports whether bit is set.
func (b Bitset) Has(bit Bitset) bool {
	return b&bit != 0
}

// String renders the classification as eight characters, `+` where the bit
// is set and `-` where it is not, in the fixed MINE_UNCOMMITTED ..
// OTHER_UNCOMMITTED order from the spec.
func (b Bitset) String() string {
	var sb strings.Builder
	sb.Grow(8)
	for _, bit := range orderedBits {
		if b.Has(bit) {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// Classify computes the commit-spread bitset for record r as observed by
// the clone identified by id with the given active branch. An empty active
// branch (detached HEAD) never matches any branch name, so the
// active-branch-relative bits (MineActiveBranch, RemoteMatchingBranch) are
// never set in that case.
func Classify(r trackedcommit.Commit, id identity.Identity, activeBranch string) Bitset {
	var bits Bitset

	mine := r.Host == id.Host

	if r.IsUncommitted() {
		if mine && r.Author == id.User {
			bits |= MineUncommitted
		} else {
			bits |= OtherUncommitted
		}
		return bits
	}

	if mine {
		if activeBranch != "" && contains(r.Branches.Local, activeBranch) {
			bits |= MineActiveBranch
		}
		if hasOtherThan(r.Branches.Local, activeBranch) {
			bits |= MineOtherBranch
		}
	} else {
		if activeBranch != "" && contains(r.Branches.Local, activeBranch) {
			bits |= OtherMatchingBranch
		}
		if hasOtherThan(r.Branches.Local, activeBranch) {
			bits |= OtherOtherBranch
		}
	}

	if activeBranch != "" && contains(r.Branches.Remote, activeBranch) {
		bits |= RemoteMatchingBranch
	}
	if hasOtherThan(r.Branches.Remote, activeBranch) {
		bits |= RemoteOtherBranch
	}

	return bits
}

func contains(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

func hasOtherThan(list []string, exclude string) bool {
	for _, v := range list {
		if v != exclude {
			return true
		}
	}
	return false
}
