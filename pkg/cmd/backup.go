package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pseudomuto/starkeeper/pkg/backup"
	"github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/pseudomuto/starkeeper/pkg/term"
	"github.com/urfave/cli/v3"
)

// backupCmd creates the backup command group for managing local snapshots of
// the starred set and lists.
//
// Example usage:
//
//	# Snapshot the current account state
//	starkeeper backup create --description "before spring cleaning"
//
//	# Show all local snapshots
//	starkeeper backup list
//
//	# Check snapshots against the sum file
//	starkeeper backup verify
//
//	# Keep only the five newest snapshots
//	starkeeper backup prune --keep 5
func backupCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:   "backup",
		Usage:  "Manage local snapshots of your starred repositories",
		Before: requireConfig(cfg),
		Commands: []*cli.Command{
			backupCreate(cfg),
			backupList(cfg),
			backupVerify(cfg),
			backupPrune(cfg),
		},
	}
}

func backupCreate(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Snapshot the current starred repositories and lists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"m"},
				Usage:   "Description to record with the snapshot",
				Value:   "manual backup",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			prompter := term.NewPrompter(os.Stdin, cmd.Writer)
			spin := term.NewSpinner(cmd.Writer)

			token, err := resolveToken(prompter)
			if err != nil {
				return err
			}

			state, err := fetchAccount(ctx, forgeClient(cfg, token), spin, 0)
			if err != nil {
				return err
			}

			store := backupStore(cfg)
			snapshot := backup.NewSnapshot(state.login, cmd.String("description"), state.stars, state.lists)
			if err := store.Create(snapshot); err != nil {
				return err
			}

			fmtr := newFormatter()
			fmt.Fprintln(cmd.Writer, fmtr.Success(fmt.Sprintf(
				"Backup %s created (%d stars, %d lists)",
				snapshot.Version, len(snapshot.Stars), len(snapshot.Lists),
			)))

			return nil
		},
	}
}

func backupList(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Show local snapshots",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			snapshots, err := backupStore(cfg).List()
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.Writer, newFormatter().Snapshots(snapshots))
			return nil
		},
	}
}

func backupVerify(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify snapshots against the sum file",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store := backupStore(cfg)
			if err := store.Verify(); err != nil {
				return err
			}

			versions, err := store.Versions()
			if err != nil {
				return err
			}

			fmtr := newFormatter()
			fmt.Fprintln(cmd.Writer, fmtr.Success(fmt.Sprintf(
				"%d backup(s) verified", len(versions),
			)))

			return nil
		},
	}
}

func backupPrune(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Remove the oldest snapshots beyond the retention limit",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "keep",
				Usage: "Number of snapshots to keep",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			keep := int(cmd.Int("keep"))
			if keep <= 0 {
				keep = cfg.Backups.Keep
			}

			removed, err := backupStore(cfg).Prune(keep)
			if err != nil {
				return err
			}

			if len(removed) == 0 {
				fmt.Fprintln(cmd.Writer, "Nothing to prune.")
				return nil
			}

			fmt.Fprintf(cmd.Writer, "Removed %d backup(s): %s\n", len(removed), strings.Join(removed, ", "))
			return nil
		},
	}
}
