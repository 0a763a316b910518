package main

import (
	"os"
	"path/filepath"
	"strings"
)

const gitignoreBlock = "# >>> gitalong >>>\n.gitalong/\n# <<< gitalong <<<\n"

// appendGitignore adds the gitalong-managed ignore block to root's
// .gitignore, without touching any pre-existing content. Re-running it is a
// no-op once the block is already present.
func appendGitignore(root string) error {
	path := filepath.Join(root, ".gitignore")
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	content := string(existing)
	if strings.Contains(content, gitignoreBlock) {
		return nil
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += gitignoreBlock

	return os.WriteFile(path, []byte(content), 0644)
}
