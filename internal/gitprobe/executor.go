package gitprobe

import (
	"bytes"
	"os/exec"

	"github.com/gitalong/gitalong/internal/errors"
)

// CommandExecutor runs a prepared *exec.Cmd and reports its outcome. It
// exists so the probe never shells out directly, keeping every query
// mockable in tests.
type CommandExecutor interface {
	// Run executes cmd and returns its trimmed stdout, or a *errors.GitError
	// wrapping errors.ErrGitOperationFailed on non-zero exit.
	Run(cmd *exec.Cmd) (string, error)
}

// ExecExecutor is the default CommandExecutor, delegating to os/exec.
type ExecExecutor struct{}

// NewExecExecutor creates an ExecExecutor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Run implements CommandExecutor.
func (e *ExecExecutor) Run(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		operation := ""
		var args []string
		if len(cmd.Args) > 0 {
			operation = cmd.Args[0]
		}
		if len(cmd.Args) > 1 {
			args = cmd.Args[1:]
		}
		return "", errors.NewGitError(operation, args, stderr.String())
	}

	return stdout.String(), nil
}
