package main

import (
	"github.com/spf13/cobra"
)

// Version information, injected at build time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// newRootCmd builds the gitalong command tree. app carries the shared
// streams/logger; repoPath receives the resolved `-C` flag so subcommand
// RunE closures can read it after cobra parses flags.
func newRootCmd(app *App) (*cobra.Command, *string) {
	var repoPath string

	root := &cobra.Command{
		Use:           "gitalong",
		Short:         "Prevents concurrent edits to non-mergeable files",
		Long:          "gitalong layers a shared change-tracking store on top of Git so clones can coordinate edits to files Git cannot merge.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.SetVersionTemplate("gitalong {{.Version}} (" + commit + ") built " + date + "\n")
	root.PersistentFlags().StringVarP(&repoPath, "repo", "C", ".", "path to the managed repository")
	root.PersistentFlags().BoolVar(&app.Debug, "debug", false, "enable debug logging (no log file path is set, so it goes to stderr)")

	root.AddCommand(
		newSetupCmd(app, &repoPath),
		newUpdateCmd(app, &repoPath),
		newStatusCmd(app, &repoPath),
		newClaimCmd(app, &repoPath),
		newReleaseCmd(app, &repoPath),
	)

	return root, &repoPath
}
