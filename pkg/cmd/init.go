package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/project"
	"github.com/urfave/cli/v3"
)

// initCmd creates the init command, which scaffolds a starkeeper workspace
// in the current (or --dir) directory: starkeeper.yaml with defaults and
// the backup directory. Initialization is idempotent.
//
// Example usage:
//
//	# Initialize with defaults
//	starkeeper init
//
//	# Initialize preconfigured for OpenAI
//	starkeeper init --provider openai --model gpt-4o-mini
func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a starkeeper project in the current directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "provider",
				Usage: "LLM provider to preconfigure (anthropic, openai)",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "LLM model to preconfigure",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pwd, err := os.Getwd()
			if err != nil {
				return errors.Wrap(err, "failed to get current working directory")
			}

			proj := project.New(pwd)
			if err := proj.Initialize(project.InitOptions{
				Provider: cmd.String("provider"),
				Model:    cmd.String("model"),
			}); err != nil {
				return err
			}

			currentProject = proj

			fmt.Fprintln(cmd.Writer, "Project initialized!")
			fmt.Fprintln(cmd.Writer, "- starkeeper.yaml written (edit to taste)")
			fmt.Fprintln(cmd.Writer, "- backups/ created for snapshots")
			fmt.Fprintf(cmd.Writer, "\nNext: export %s and run 'starkeeper organize'\n", envToken)

			return nil
		},
	}
}
