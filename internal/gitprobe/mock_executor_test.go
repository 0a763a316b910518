package gitprobe

import (
	"os/exec"
	"strings"
)

// mockExecutor is a CommandExecutor that returns scripted output keyed by a
// substring match against the invoked git subcommand, rather than actually
// shelling out to git.
type mockExecutor struct {
	// responses maps a substring of the joined command args to the output
	// that should be returned. The first match wins.
	responses map[string]string
	// errs maps the same substring to an error to return instead of output.
	errs     map[string]error
	commands []string
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

func (m *mockExecutor) Run(cmd *exec.Cmd) (string, error) {
	joined := strings.Join(cmd.Args, " ")
	m.commands = append(m.commands, joined)

	for substr, err := range m.errs {
		if strings.Contains(joined, substr) {
			return "", err
		}
	}
	for substr, out := range m.responses {
		if strings.Contains(joined, substr) {
			return out, nil
		}
	}
	return "", nil
}
