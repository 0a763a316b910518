package trackedcommit

import (
	"encoding/json"
	"testing"

	"github.com/gitalong/gitalong/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualityRealCommitIgnoresBranches(t *testing.T) {
	a := Commit{Remote: "r", Sha: "abc", Host: "h1", Author: "u1", Branches: Branches{Local: []string{"main"}}}
	b := Commit{Remote: "r", Sha: "abc", Host: "h1", Author: "u1", Branches: Branches{Local: []string{"dev"}}}
	assert.True(t, a.Equal(b))
}

func TestEqualityUncommittedIgnoresSha(t *testing.T) {
	a := Commit{Remote: "r", Sha: "", Host: "h1", Author: "u1"}
	b := Commit{Remote: "r", Sha: "", Host: "h1", Author: "u1"}
	assert.True(t, a.Equal(b))
}

func TestEqualityDifferentIdentityNotEqual(t *testing.T) {
	a := Commit{Remote: "r", Sha: "", Host: "h1", Author: "u1"}
	b := Commit{Remote: "r", Sha: "", Host: "h2", Author: "u1"}
	assert.False(t, a.Equal(b))
}

func TestIsUncommitted(t *testing.T) {
	assert.True(t, Commit{Sha: ""}.IsUncommitted())
	assert.False(t, Commit{Sha: "abc"}.IsUncommitted())
}

func TestIsMine(t *testing.T) {
	id := identity.Identity{Host: "h", User: "u"}
	assert.True(t, Commit{Host: "h", Author: "u"}.IsMine(id))
	assert.False(t, Commit{Host: "h", Author: "other"}.IsMine(id))
}

func TestPublishedByRequiresHostAuthorAndRemote(t *testing.T) {
	id := identity.Identity{Host: "h1", User: "alice@example.com"}
	c := Commit{Remote: "repoA", Host: "h1", Author: "alice@example.com"}

	assert.True(t, c.PublishedBy(id, "repoA"))
	assert.False(t, c.PublishedBy(id, "repoB"), "same host/author but a different managed repository must not match")
	assert.False(t, c.PublishedBy(identity.Identity{Host: "h2", User: "alice@example.com"}, "repoA"))
	assert.False(t, c.PublishedBy(identity.Identity{Host: "h1", User: "bob@example.com"}, "repoA"))
}

func TestIsGarbage(t *testing.T) {
	assert.True(t, Commit{}.IsGarbage())
	assert.False(t, Commit{Changes: []string{"a.txt"}}.IsGarbage())
	assert.False(t, Commit{Claims: []string{"a.txt"}}.IsGarbage())
}

func TestRoundTripPreservesUnknownFields(t *testing.T) {
	raw := []byte(`{
		"sha": "abc123",
		"remote": "git@example.com:repo.git",
		"branches": {"local": ["main"], "remote": ["origin/main"]},
		"host": "host1",
		"author": "author1",
		"date": "2024-01-01",
		"summary": "msg",
		"changes": ["a.txt"],
		"claims": [],
		"future_field": "value"
	}`)

	var c Commit
	require.NoError(t, json.Unmarshal(raw, &c))
	assert.Equal(t, "abc123", c.Sha)

	out, err := json.Marshal(c)
	require.NoError(t, err)

	var roundtripped map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &roundtripped))
	assert.Equal(t, "value", roundtripped["future_field"])

	var c2 Commit
	require.NoError(t, json.Unmarshal(out, &c2))
	assert.True(t, c.Equal(c2))
}

func TestMergeBranchesUnions(t *testing.T) {
	merged := MergeBranches(
		Branches{Local: []string{"main"}, Remote: []string{"origin/main"}},
		Branches{Local: []string{"main", "dev"}},
	)
	assert.ElementsMatch(t, []string{"main", "dev"}, merged.Local)
	assert.ElementsMatch(t, []string{"origin/main"}, merged.Remote)
}

func TestUnionChangesDedupsAndSorts(t *testing.T) {
	result := UnionChanges([]string{"b.txt", "a.txt"}, []string{"a.txt", "c.txt"})
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, result)
}
