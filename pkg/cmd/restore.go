package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/backup"
	"github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/pseudomuto/starkeeper/pkg/executor"
	"github.com/pseudomuto/starkeeper/pkg/term"
	"github.com/urfave/cli/v3"
)

// restore creates the restore command, which replays a snapshot additively:
// missing stars are restarred, missing lists recreated, and missing list
// memberships re-added. Nothing is ever unstarred or deleted by a restore.
//
// Example usage:
//
//	# Restore the most recent snapshot
//	starkeeper restore --latest
//
//	# Restore a specific snapshot
//	starkeeper restore 20260815093000
//
//	# Preview without applying
//	starkeeper restore --latest --dry-run
func restore(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Additively restore a snapshot to the forge",
		ArgsUsage: "[version]",
		Before:    requireConfig(cfg),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "latest",
				Usage: "Restore the most recent snapshot",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show the restore plan without applying it",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Apply without confirmation",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runRestore(ctx, cmd, cfg)
		},
	}
}

func runRestore(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	w := cmd.Writer
	store := backupStore(cfg)

	snapshot, err := loadRestoreTarget(store, cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Restoring %s (%q, %d stars, %d lists)\n",
		snapshot.Version, snapshot.Description, len(snapshot.Stars), len(snapshot.Lists))

	prompter := term.NewPrompter(os.Stdin, w)
	spin := term.NewSpinner(w)
	fmtr := newFormatter()

	token, err := resolveToken(prompter)
	if err != nil {
		return err
	}
	client := forgeClient(cfg, token)

	state, err := fetchAccount(ctx, client, spin, 0)
	if err != nil {
		return err
	}

	ops := backup.PlanRestore(snapshot, state.stars, state.lists)
	if len(ops) == 0 {
		fmt.Fprintln(w, "Nothing to restore - the account already covers this snapshot.")
		return nil
	}

	fmt.Fprint(w, "\n"+fmtr.Operations(ops))

	if cmd.Bool("dry-run") {
		fmt.Fprintln(w, "\nDry run - no changes applied.")
		return nil
	}

	if !cmd.Bool("yes") {
		ok, err := prompter.Confirm("Apply these operations?", false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Aborted.")
			return nil
		}
	}

	exec := executor.New(executor.Config{
		Forge:       client,
		Existing:    state.lists,
		Concurrency: cfg.Executor.Concurrency,
	})

	results := exec.Execute(ctx, ops)
	report := executor.Summarize(results)
	fmt.Fprint(w, "\n"+fmtr.Report(report))

	if report.Failed > 0 {
		return errors.Errorf("%d of %d operations failed", report.Failed, report.Total)
	}

	return nil
}

func loadRestoreTarget(store *backup.Store, cmd *cli.Command) (*backup.Snapshot, error) {
	version := cmd.Args().First()

	switch {
	case cmd.Bool("latest"):
		if version != "" {
			return nil, errors.New("pass either a version or --latest, not both")
		}

		return store.Latest()

	case version != "":
		return store.Load(version)

	default:
		return nil, errors.New("a snapshot version (or --latest) is required")
	}
}
