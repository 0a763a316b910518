package store

import (
	"testing"

	"github.com/gitalong/gitalong/internal/identity"
	"github.com/gitalong/gitalong/internal/trackedcommit"
	"github.com/stretchr/testify/assert"
)

var alice = identity.Identity{Host: "alice-host", User: "alice@example.com"}
var bob = identity.Identity{Host: "bob-host", User: "bob@example.com"}

func TestMergeRuleReplacesOnlyMinersOwnRecords(t *testing.T) {
	remote := []trackedcommit.Commit{
		{Remote: "r", Sha: "bobsha", Host: bob.Host, Author: bob.User, Changes: []string{"b.psd"}},
		{Remote: "r", Sha: "", Host: alice.Host, Author: alice.User, Changes: []string{"stale.psd"}},
	}
	mine := []trackedcommit.Commit{
		{Remote: "r", Sha: "", Host: alice.Host, Author: alice.User, Changes: []string{"fresh.psd"}},
	}

	merged := MergeRule(remote, alice, mine)

	var bobRecord, aliceRecord *trackedcommit.Commit
	for i := range merged {
		switch merged[i].Host {
		case bob.Host:
			bobRecord = &merged[i]
		case alice.Host:
			aliceRecord = &merged[i]
		}
	}
	if assert.NotNil(t, bobRecord) {
		assert.Equal(t, []string{"b.psd"}, bobRecord.Changes)
	}
	if assert.NotNil(t, aliceRecord) {
		assert.Equal(t, []string{"fresh.psd"}, aliceRecord.Changes)
	}
}

func TestMergeRuleDropsGarbageMineRecords(t *testing.T) {
	remote := []trackedcommit.Commit{
		{Remote: "r", Sha: "", Host: alice.Host, Author: alice.User, Changes: []string{"old.psd"}},
	}
	mine := []trackedcommit.Commit{
		{Remote: "r", Sha: "", Host: alice.Host, Author: alice.User},
	}

	merged := MergeRule(remote, alice, mine)
	for _, c := range merged {
		assert.NotEqual(t, alice.Host, c.Host, "garbage record should have been dropped, not carried forward")
	}
}

func TestMergeRuleNeverTouchesOtherClonesRecords(t *testing.T) {
	remote := []trackedcommit.Commit{
		{Remote: "r", Sha: "bobsha", Host: bob.Host, Author: bob.User, Changes: []string{"b.psd"}},
	}

	merged := MergeRule(remote, alice, nil)
	assert.Len(t, merged, 1)
	assert.Equal(t, bob.Host, merged[0].Host)
}

func TestMergeRuleScopesReplacementToRemote(t *testing.T) {
	remote := []trackedcommit.Commit{
		{Remote: "repoB", Sha: "", Host: alice.Host, Author: alice.User, Changes: []string{"repoB-stale.psd"}},
	}
	mine := []trackedcommit.Commit{
		{Remote: "repoA", Sha: "", Host: alice.Host, Author: alice.User, Changes: []string{"repoA-fresh.psd"}},
	}

	merged := MergeRule(remote, alice, mine)

	var repoARecord, repoBRecord *trackedcommit.Commit
	for i := range merged {
		switch merged[i].Remote {
		case "repoA":
			repoARecord = &merged[i]
		case "repoB":
			repoBRecord = &merged[i]
		}
	}
	if assert.NotNil(t, repoBRecord, "a record belonging to a different managed repository sharing the same store must survive untouched") {
		assert.Equal(t, []string{"repoB-stale.psd"}, repoBRecord.Changes)
	}
	if assert.NotNil(t, repoARecord) {
		assert.Equal(t, []string{"repoA-fresh.psd"}, repoARecord.Changes)
	}
}

func TestDedupeMergesSameKeyBranches(t *testing.T) {
	commits := []trackedcommit.Commit{
		{Remote: "r", Sha: "abc", Branches: trackedcommit.Branches{Local: []string{"main"}}},
		{Remote: "r", Sha: "abc", Branches: trackedcommit.Branches{Local: []string{"dev"}}},
	}
	merged := dedupe(commits)
	assert.Len(t, merged, 1)
	assert.ElementsMatch(t, []string{"main", "dev"}, merged[0].Branches.Local)
}

func TestIsJSONDocumentURL(t *testing.T) {
	assert.True(t, isJSONDocumentURL("https://api.jsonbin.io/v3/b/abc123"))
	assert.False(t, isJSONDocumentURL("https://github.com/team/store.git"))
	assert.False(t, isJSONDocumentURL("git@github.com:team/store.git"))
	assert.False(t, isJSONDocumentURL("not a url"))
}
