package main

import (
	"context"
	"fmt"

	"github.com/gitalong/gitalong/internal/gitprobe"
	"github.com/gitalong/gitalong/internal/repository"
	"github.com/spf13/cobra"
)

func newUpdateCmd(app *App, repoPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Recompute and republish this clone's contribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(app, *repoPath)
		},
	}
}

func runUpdate(app *App, repoPath string) error {
	root, err := gitprobe.RepositoryRoot(repoPath)
	if err != nil {
		return err
	}
	repo, err := repository.Open(root, app.Logger())
	if err != nil {
		return err
	}
	if err := repo.Update(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(app.Stdout, "updated")
	return nil
}
