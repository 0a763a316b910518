package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := &App{Stdout: stdout, Stderr: stderr}
	defer func() { _ = app.Close() }()

	root, _ := newRootCmd(app)
	root.SetArgs(args[1:])
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if err != errPartialFailure {
			fmt.Fprintf(stderr, "gitalong: %v\n", err)
		}
		return exitCodeFor(err)
	}
	return 0
}
