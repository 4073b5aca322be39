// Package testutil provides helpers for exercising starkeeper CLI commands
// in tests without an fx container.
package testutil

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/pseudomuto/starkeeper/pkg/project"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// ProjectFixture is a throwaway initialized starkeeper project in a temp
// directory.
type ProjectFixture struct {
	Dir     string
	Project *project.Project
}

// TestProject initializes a starkeeper project in a fresh temp directory.
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	dir := t.TempDir()
	proj := project.New(dir)
	require.NoError(t, proj.Initialize(project.InitOptions{}))

	return &ProjectFixture{Dir: dir, Project: proj}
}

// RunCommand executes a command under a throwaway parent app, capturing its
// output. The command name is prepended to args automatically.
func RunCommand(t *testing.T, command *cli.Command, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	app := &cli.Command{
		Name:     "test",
		Writer:   &buf,
		Commands: []*cli.Command{command},
	}
	// cli/v3 does not propagate the parent's Writer to subcommands, so set it
	// on the whole tree to capture their output.
	setWriter(command, &buf)

	fullArgs := append([]string{"test", command.Name}, args...)
	err := app.Run(context.Background(), fullArgs)

	return buf.String(), err
}

func setWriter(command *cli.Command, w io.Writer) {
	command.Writer = w
	for _, sub := range command.Commands {
		setWriter(sub, w)
	}
}
