package main

import (
	"context"
	"fmt"

	"github.com/gitalong/gitalong/internal/gitprobe"
	"github.com/gitalong/gitalong/internal/repository"
	"github.com/spf13/cobra"
)

func newClaimCmd(app *App, repoPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <path>...",
		Short: "Reserve exclusive edit rights to each path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClaim(app, *repoPath, args)
		},
	}
}

func runClaim(app *App, repoPath string, paths []string) error {
	root, err := gitprobe.RepositoryRoot(repoPath)
	if err != nil {
		return err
	}
	repo, err := repository.Open(root, app.Logger())
	if err != nil {
		return err
	}

	results, err := repo.Claim(context.Background(), paths)
	if err != nil {
		return err
	}

	allClaimed := true
	for _, res := range results {
		if res.Blocking == nil {
			fmt.Fprintf(app.Stdout, "claimed %s\n", res.Path)
			continue
		}
		allClaimed = false
		fmt.Fprintf(app.Stdout, "blocked %s by %s\n", res.Path, res.Blocking.Host)
	}

	if !allClaimed {
		return errPartialFailure
	}
	return nil
}
