package cmd

import (
	"testing"

	"github.com/pseudomuto/starkeeper/pkg/cmd/testutil"
	"github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestRestoreRequiresConfig(t *testing.T) {
	_, err := testutil.RunCommand(t, restore(nil), "--latest")
	require.Error(t, err)
	require.Contains(t, err.Error(), "starkeeper init")
}

func TestRestoreRequiresVersion(t *testing.T) {
	cfg := config.Default()
	cfg.Backups.Dir = t.TempDir()

	_, err := testutil.RunCommand(t, restore(cfg))
	require.Error(t, err)
	require.Contains(t, err.Error(), "a snapshot version (or --latest) is required")
}

func TestRestoreRejectsVersionWithLatest(t *testing.T) {
	cfg := config.Default()
	cfg.Backups.Dir = t.TempDir()

	_, err := testutil.RunCommand(t, restore(cfg), "--latest", "20260101000000")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not both")
}

func TestRestoreLatestWithoutBackups(t *testing.T) {
	cfg := config.Default()
	cfg.Backups.Dir = t.TempDir()

	_, err := testutil.RunCommand(t, restore(cfg), "--latest")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no backups found")
}
