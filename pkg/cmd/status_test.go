package cmd

import (
	"testing"

	"github.com/pseudomuto/starkeeper/pkg/backup"
	"github.com/pseudomuto/starkeeper/pkg/cmd/testutil"
	"github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/pseudomuto/starkeeper/pkg/forge"
	"github.com/stretchr/testify/require"
)

func TestStatusCommand_Uninitialized(t *testing.T) {
	out, err := testutil.RunCommand(t, status(nil))
	require.NoError(t, err)
	require.Contains(t, out, "No starkeeper project found")
	require.Contains(t, out, "starkeeper init")
}

func TestStatusCommand_Initialized(t *testing.T) {
	t.Setenv(envToken, "")
	t.Setenv(envTokenFallback, "")

	cfg := config.Default()
	cfg.Backups.Dir = t.TempDir()

	out, err := testutil.RunCommand(t, status(cfg))
	require.NoError(t, err)
	require.Contains(t, out, "starkeeper.yaml found")
	require.Contains(t, out, "Provider: "+cfg.LLM.Provider)
	require.Contains(t, out, "No backups yet")
	require.Contains(t, out, "No forge token set")
	require.Contains(t, out, "Export "+envToken)
}

func TestStatusCommand_WithBackupsAndToken(t *testing.T) {
	t.Setenv(envToken, "tok")

	cfg := config.Default()
	cfg.Backups.Dir = t.TempDir()

	store := backup.NewStore(cfg.Backups.Dir)
	snapshot := backup.NewSnapshot("octo", "test", []forge.Repo{{FullName: "octo/alpha"}}, nil)
	require.NoError(t, store.Create(snapshot))

	out, err := testutil.RunCommand(t, status(cfg))
	require.NoError(t, err)
	require.Contains(t, out, "Backups: 1 verified (latest "+snapshot.Version+")")
	require.Contains(t, out, "Forge token found")
	require.Contains(t, out, "starkeeper organize")
}
