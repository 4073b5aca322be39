package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/starkeeper/pkg/backup"
	"github.com/pseudomuto/starkeeper/pkg/cmd/testutil"
	"github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/pseudomuto/starkeeper/pkg/consts"
	"github.com/pseudomuto/starkeeper/pkg/forge"
	"github.com/stretchr/testify/require"
)

func seedBackups(t *testing.T, dir string, descriptions ...string) []*backup.Snapshot {
	t.Helper()

	store := backup.NewStore(dir)
	snapshots := make([]*backup.Snapshot, 0, len(descriptions))
	for i, desc := range descriptions {
		snapshot := backup.NewSnapshot("octo", desc, []forge.Repo{{FullName: "octo/alpha"}}, nil)
		// Versions are second-resolution timestamps; make them distinct.
		snapshot.Version = snapshot.CreatedAt.AddDate(0, 0, i).Format("20060102150405")
		require.NoError(t, store.Create(snapshot))
		snapshots = append(snapshots, snapshot)
	}

	return snapshots
}

func TestBackupList(t *testing.T) {
	cfg := config.Default()
	cfg.Backups.Dir = t.TempDir()

	out, err := testutil.RunCommand(t, backupCmd(cfg), "list")
	require.NoError(t, err)
	require.Contains(t, out, "No backups found.")

	snapshots := seedBackups(t, cfg.Backups.Dir, "first", "second")

	out, err = testutil.RunCommand(t, backupCmd(cfg), "list")
	require.NoError(t, err)
	require.Contains(t, out, snapshots[0].Version)
	require.Contains(t, out, snapshots[1].Version)
	require.Contains(t, out, "second")
}

func TestBackupVerify(t *testing.T) {
	cfg := config.Default()
	cfg.Backups.Dir = t.TempDir()

	snapshots := seedBackups(t, cfg.Backups.Dir, "first", "second")

	out, err := testutil.RunCommand(t, backupCmd(cfg), "verify")
	require.NoError(t, err)
	require.Contains(t, out, "2 backup(s) verified")

	// Tamper with a snapshot and verify again.
	path := filepath.Join(cfg.Backups.Dir, snapshots[0].Filename())
	require.NoError(t, os.WriteFile(path, []byte("{}"), consts.ModeFile))

	_, err = testutil.RunCommand(t, backupCmd(cfg), "verify")
	require.Error(t, err)
	require.Contains(t, err.Error(), "checksum mismatch")
}

func TestBackupPrune(t *testing.T) {
	cfg := config.Default()
	cfg.Backups.Dir = t.TempDir()
	cfg.Backups.Keep = 10

	snapshots := seedBackups(t, cfg.Backups.Dir, "first", "second", "third")

	out, err := testutil.RunCommand(t, backupCmd(cfg), "prune", "--keep", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Removed 1 backup(s)")
	require.Contains(t, out, snapshots[0].Version)

	versions, err := backup.NewStore(cfg.Backups.Dir).Versions()
	require.NoError(t, err)
	require.Equal(t, []string{snapshots[1].Version, snapshots[2].Version}, versions)
}

func TestBackupPrune_NothingToDo(t *testing.T) {
	cfg := config.Default()
	cfg.Backups.Dir = t.TempDir()

	seedBackups(t, cfg.Backups.Dir, "only")

	out, err := testutil.RunCommand(t, backupCmd(cfg), "prune", "--keep", "5")
	require.NoError(t, err)
	require.Contains(t, out, "Nothing to prune.")
}

func TestBackupRequiresConfig(t *testing.T) {
	_, err := testutil.RunCommand(t, backupCmd(nil), "list")
	require.Error(t, err)
	require.Contains(t, err.Error(), "starkeeper init")
}
