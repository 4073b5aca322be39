package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/urfave/cli/v3"
)

// status creates the status command for showing the local project state.
//
// The status command is entirely local: it reports whether the project is
// initialized, the configured provider and model, how many backups exist,
// and whether a forge token is available in the environment. It never
// contacts the forge or the LLM provider.
//
// Example usage:
//
//	# Show project status
//	starkeeper status
func status(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show project status",
		Description: `Display the local state of the starkeeper project.

The status command shows:
- Whether starkeeper.yaml exists and which provider/model it configures
- The number of local backups and the most recent snapshot version
- Whether a forge token is available in the environment

This command never contacts the forge or the LLM provider.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStatus(cmd, cfg)
		},
	}
}

func runStatus(cmd *cli.Command, cfg *config.Config) error {
	w := cmd.Writer

	fmt.Fprintln(w, "Project Status")
	fmt.Fprintln(w)

	if cfg == nil {
		showUninitializedStatus(w)
		return nil
	}

	showConfigStatus(w, cfg)

	store := backupStore(cfg)
	versions, err := store.Versions()
	if err != nil {
		return err
	}
	showBackupStatus(w, versions, store.Verify())

	tokenSet := os.Getenv(envToken) != "" || os.Getenv(envTokenFallback) != ""
	showTokenStatus(w, tokenSet)

	showRecommendations(w, versions, tokenSet)
	return nil
}

func showUninitializedStatus(w io.Writer) {
	fmt.Fprintln(w, "❗ No starkeeper project found")
	fmt.Fprintln(w, "   Run 'starkeeper init' to create starkeeper.yaml in this directory")
}

func showConfigStatus(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "✅ starkeeper.yaml found")
	fmt.Fprintf(w, "   Provider: %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "   Model: %s\n", cfg.LLM.Model)
	fmt.Fprintf(w, "   Forge API: %s\n", cfg.Forge.APIURL)
	fmt.Fprintln(w)
}

func showBackupStatus(w io.Writer, versions []string, verifyErr error) {
	switch {
	case len(versions) == 0:
		fmt.Fprintln(w, "⏳ No backups yet")
	case verifyErr != nil:
		fmt.Fprintf(w, "❌ Backups: %d, integrity check failed: %s\n", len(versions), verifyErr)
	default:
		fmt.Fprintf(w, "✅ Backups: %d verified (latest %s)\n", len(versions), versions[len(versions)-1])
	}
	fmt.Fprintln(w)
}

func showTokenStatus(w io.Writer, tokenSet bool) {
	if tokenSet {
		fmt.Fprintln(w, "✅ Forge token found in environment")
	} else {
		fmt.Fprintf(w, "❌ No forge token set (%s or %s)\n", envToken, envTokenFallback)
	}
	fmt.Fprintln(w)
}

func showRecommendations(w io.Writer, versions []string, tokenSet bool) {
	switch {
	case !tokenSet:
		fmt.Fprintf(w, "💡 Export %s before running 'starkeeper organize'\n", envToken)
	case len(versions) == 0:
		fmt.Fprintln(w, "💡 Run 'starkeeper backup create' to snapshot your stars before organizing")
	default:
		fmt.Fprintln(w, "💡 Run 'starkeeper organize' to categorize your starred repositories")
	}
}
