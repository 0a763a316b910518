package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// hookNames are the Git hooks gitalong installs; each one triggers `update`
// so every clone republishes its state at the points Git itself already
// synchronizes on.
var hookNames = []string{"applypatch-msg", "post-checkout", "post-commit", "post-rewrite"}

const hookMarkerBegin = "# >>> gitalong >>>"
const hookMarkerEnd = "# <<< gitalong <<<"

func hookBlock() string {
	return fmt.Sprintf("%s\ngitalong -C \"$(git rev-parse --show-toplevel)\" update >/dev/null 2>&1 || true\n%s\n", hookMarkerBegin, hookMarkerEnd)
}

// installHooks writes the gitalong block into each of hookNames under
// root/.git/hooks, appending to any existing hook script rather than
// replacing it, and skipping files where the block is already present so
// repeated `setup --update-hooks` calls never duplicate content.
func installHooks(root string) error {
	hooksDir := filepath.Join(root, ".git", "hooks")
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return err
	}

	for _, name := range hookNames {
		path := filepath.Join(hooksDir, name)
		existing, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		content := string(existing)
		if strings.Contains(content, hookMarkerBegin) {
			continue
		}

		if content == "" {
			content = "#!/bin/sh\n"
		} else if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += hookBlock()

		if err := os.WriteFile(path, []byte(content), 0755); err != nil {
			return err
		}
	}
	return nil
}
