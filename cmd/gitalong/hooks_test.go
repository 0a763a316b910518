package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallHooksWritesAllFour(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, installHooks(root))

	for _, name := range hookNames {
		data, err := os.ReadFile(filepath.Join(root, ".git", "hooks", name))
		require.NoError(t, err)
		assert.Contains(t, string(data), "gitalong")
		assert.Contains(t, string(data), "update")
	}
}

func TestInstallHooksPreservesExistingScript(t *testing.T) {
	root := t.TempDir()
	hooksDir := filepath.Join(root, ".git", "hooks")
	require.NoError(t, os.MkdirAll(hooksDir, 0755))
	existing := "#!/bin/sh\necho custom-hook\n"
	require.NoError(t, os.WriteFile(filepath.Join(hooksDir, "post-commit"), []byte(existing), 0755))

	require.NoError(t, installHooks(root))

	data, err := os.ReadFile(filepath.Join(hooksDir, "post-commit"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), existing))
	assert.Contains(t, string(data), "gitalong")
}

func TestInstallHooksIsIdempotent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, installHooks(root))
	first, err := os.ReadFile(filepath.Join(root, ".git", "hooks", "post-commit"))
	require.NoError(t, err)

	require.NoError(t, installHooks(root))
	second, err := os.ReadFile(filepath.Join(root, ".git", "hooks", "post-commit"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
