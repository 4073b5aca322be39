package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/pseudomuto/starkeeper/pkg/consts"
	"github.com/pseudomuto/starkeeper/pkg/project"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

var currentProject *project.Project

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run creates and executes the starkeeper CLI application. It registers the
// global --dir flag, detects a starkeeper project by the presence of
// starkeeper.yaml in that directory, and routes to the contributed commands.
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := &cli.Command{
		Name:  "starkeeper",
		Usage: "Organize your starred repositories with LLM assistance",
		Description: `starkeeper fetches your starred repositories from the forge, asks a
language model to propose categories and cleanup candidates, walks you
through reviewing the plan, and applies the approved changes (creating
lists, filing repositories, unstarring). Local JSON backups cover every
mutation and can be restored additively.`,
		Version: p.Version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "the project directory",
				Value:       ".",
				DefaultText: "Current directory",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			projectDir := cmd.String("dir")

			if err := os.Chdir(projectDir); err != nil {
				return ctx, err
			}

			_, err := os.Stat(consts.ConfigFile)
			if os.IsNotExist(err) {
				return ctx, nil
			}
			if err != nil {
				return ctx, err
			}

			pwd, err := os.Getwd()
			if err != nil {
				return ctx, errors.Wrap(err, "failed to get current working directory")
			}

			currentProject = project.New(pwd)
			return ctx, nil
		},
		Commands: p.Commands,
	}

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

func requireConfig(cfg *config.Config) func(context.Context, *cli.Command) (context.Context, error) {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if cfg == nil {
			return ctx, errors.New("starkeeper.yaml not found - run 'starkeeper init' first")
		}

		return ctx, nil
	}
}
