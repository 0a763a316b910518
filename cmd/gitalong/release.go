package main

import (
	"context"
	"fmt"

	"github.com/gitalong/gitalong/internal/gitprobe"
	"github.com/gitalong/gitalong/internal/repository"
	"github.com/spf13/cobra"
)

func newReleaseCmd(app *App, repoPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "release <path>...",
		Short: "Release this clone's claim on each path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(app, *repoPath, args)
		},
	}
}

func runRelease(app *App, repoPath string, paths []string) error {
	root, err := gitprobe.RepositoryRoot(repoPath)
	if err != nil {
		return err
	}
	repo, err := repository.Open(root, app.Logger())
	if err != nil {
		return err
	}

	results, err := repo.Release(context.Background(), paths)
	if err != nil {
		return err
	}

	allReleased := true
	for _, res := range results {
		if res.Released {
			fmt.Fprintf(app.Stdout, "released %s\n", res.Path)
			continue
		}
		allReleased = false
		fmt.Fprintf(app.Stdout, "failed %s: %v\n", res.Path, res.Err)
	}

	if !allReleased {
		return errPartialFailure
	}
	return nil
}
