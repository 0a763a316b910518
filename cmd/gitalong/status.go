package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitalong/gitalong/internal/gitprobe"
	"github.com/gitalong/gitalong/internal/repository"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App, repoPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status <path>...",
		Short: "Report where each path's latest record lives across the fleet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(app, *repoPath, args)
		},
	}
}

func runStatus(app *App, repoPath string, paths []string) error {
	root, err := gitprobe.RepositoryRoot(repoPath)
	if err != nil {
		return err
	}
	repo, err := repository.Open(root, app.Logger())
	if err != nil {
		return err
	}

	entries, err := repo.Status(context.Background(), paths)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Fprintf(app.Stdout, "%s %s %s %s %s %s %s\n",
			entry.Spread.String(),
			entry.Path,
			fallback(entry.Sha),
			fallback(strings.Join(entry.LocalBranches, ",")),
			fallback(strings.Join(entry.RemoteBranches, ",")),
			fallback(entry.Host),
			fallback(entry.Author),
		)
	}
	return nil
}

func fallback(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
