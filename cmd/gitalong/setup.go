package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitalong/gitalong/internal/config"
	"github.com/gitalong/gitalong/internal/errors"
	"github.com/gitalong/gitalong/internal/gitprobe"
	"github.com/gitalong/gitalong/internal/identity"
	"github.com/gitalong/gitalong/internal/store"
	"github.com/spf13/cobra"
)

type setupFlags struct {
	modifyPermissions bool
	trackedExtensions string
	trackUncommitted  bool
	updateGitignore   bool
	updateHooks       bool
	storeHeaders      []string
	pullThreshold     float64
}

func newSetupCmd(app *App, repoPath *string) *cobra.Command {
	flags := &setupFlags{}

	cmd := &cobra.Command{
		Use:   "setup <store-url>",
		Short: "Write .gitalong.json and initialize the store for this repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(app, *repoPath, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.modifyPermissions, "modify-permissions", false, "enforce claims via filesystem read-only permissions")
	cmd.Flags().StringVar(&flags.trackedExtensions, "tracked-extensions", "", "comma-separated file extensions to track (empty tracks every path)")
	cmd.Flags().BoolVar(&flags.trackUncommitted, "track-uncommitted", true, "publish an uncommitted record for working-tree changes and claims")
	cmd.Flags().BoolVar(&flags.updateGitignore, "update-gitignore", true, "append the gitalong block to .gitignore")
	cmd.Flags().BoolVar(&flags.updateHooks, "update-hooks", true, "install hooks that invoke gitalong update")
	cmd.Flags().StringArrayVar(&flags.storeHeaders, "store-header", nil, "HTTP header K=V for a JSON-document store (repeatable)")
	cmd.Flags().Float64Var(&flags.pullThreshold, "pull-threshold", config.DefaultPullThreshold, "seconds to debounce store pulls")

	return cmd
}

func runSetup(app *App, repoPath, storeURL string, flags *setupFlags) error {
	root, err := gitprobe.RepositoryRoot(repoPath)
	if err != nil {
		return errors.Wrap(err, "not a git repository")
	}

	headers, err := parseHeaders(flags.storeHeaders)
	if err != nil {
		return err
	}

	cfg := config.New()
	cfg.StoreURL = storeURL
	cfg.StoreHeaders = headers
	cfg.ModifyPermissions = flags.modifyPermissions
	cfg.TrackedExtensions = splitCSV(flags.trackedExtensions)
	cfg.TrackUncommitted = flags.trackUncommitted
	cfg.PullThreshold = flags.pullThreshold

	if err := config.Save(root, cfg, false); err != nil {
		return err
	}

	probe := gitprobe.New(root)
	id, err := identity.Resolver{GitUserEmail: probe.UserEmail}.Resolve()
	if err != nil {
		return err
	}
	backend, err := store.NewBackend(root, cfg, id)
	if err != nil {
		return err
	}
	if _, err := backend.Snapshot(context.Background()); err != nil {
		return err
	}
	app.Logger().Info("setup: initialized store %s for %s", storeURL, root)

	if flags.updateGitignore {
		if err := appendGitignore(root); err != nil {
			return err
		}
	}
	if flags.updateHooks {
		if err := installHooks(root); err != nil {
			return err
		}
	}

	fmt.Fprintf(app.Stdout, "gitalong is set up at %s\n", root)
	return nil
}

func parseHeaders(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.Errorf("--store-header %q must be in K=V form", pair)
		}
		headers[k] = v
	}
	return headers, nil
}

func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
