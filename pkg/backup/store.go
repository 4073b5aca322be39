package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/consts"
)

// Store manages the snapshots in a backup directory along with the
// starkeeper.sum integrity manifest. Every write path rewrites the sum
// file so Verify can detect out-of-band changes.
type Store struct {
	dir string
}

// NewStore creates a store over the given backup directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the backup directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Create writes the snapshot into the backup directory and rewrites the
// sum file.
func (s *Store) Create(snapshot *Snapshot) error {
	if err := os.MkdirAll(s.dir, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create backup directory %s", s.dir)
	}

	var buf bytes.Buffer
	if err := snapshot.Encode(&buf); err != nil {
		return err
	}

	path := filepath.Join(s.dir, snapshot.Filename())
	if err := os.WriteFile(path, buf.Bytes(), consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to write backup %s", path)
	}

	return s.rewriteSum()
}

// Versions returns the snapshot versions present in the backup directory,
// sorted ascending (oldest first).
func (s *Store) Versions() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read backup directory %s", s.dir)
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), snapshotSuffix) {
			continue
		}
		versions = append(versions, strings.TrimSuffix(entry.Name(), snapshotSuffix))
	}

	sort.Strings(versions)
	return versions, nil
}

// List loads every snapshot, sorted by version ascending.
func (s *Store) List() ([]*Snapshot, error) {
	versions, err := s.Versions()
	if err != nil {
		return nil, err
	}

	snapshots := make([]*Snapshot, 0, len(versions))
	for _, version := range versions {
		snapshot, err := s.Load(version)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// Load reads the snapshot with the given version.
func (s *Store) Load(version string) (*Snapshot, error) {
	path := filepath.Join(s.dir, version+snapshotSuffix)

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open backup %s", path)
	}
	defer f.Close()

	return LoadSnapshot(f)
}

// Latest returns the most recent snapshot, or an error when the store is
// empty.
func (s *Store) Latest() (*Snapshot, error) {
	versions, err := s.Versions()
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, errors.Errorf("no backups found in %s", s.dir)
	}

	return s.Load(versions[len(versions)-1])
}

// Verify checks every backup against the sum file, failing when a file was
// modified, removed, or added out-of-band.
func (s *Store) Verify() error {
	sumFile, err := s.loadSum()
	if err != nil {
		return err
	}

	recorded := make(map[string]bool)
	for _, name := range sumFile.Names() {
		recorded[name] = true
	}

	versions, err := s.Versions()
	if err != nil {
		return err
	}
	for _, version := range versions {
		if name := version + snapshotSuffix; !recorded[name] {
			return errors.Errorf("%s is not recorded in %s", name, consts.SumFile)
		}
	}

	return sumFile.Verify(func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(s.dir, name))
	})
}

// Prune removes the oldest snapshots until at most keep remain, rewriting
// the sum file. It returns the removed versions.
func (s *Store) Prune(keep int) ([]string, error) {
	if keep < 0 {
		keep = 0
	}

	versions, err := s.Versions()
	if err != nil {
		return nil, err
	}
	if len(versions) <= keep {
		return nil, nil
	}

	removed := versions[:len(versions)-keep]
	for _, version := range removed {
		path := filepath.Join(s.dir, version+snapshotSuffix)
		if err := os.Remove(path); err != nil {
			return nil, errors.Wrapf(err, "failed to remove backup %s", path)
		}
	}

	if err := s.rewriteSum(); err != nil {
		return nil, err
	}

	return removed, nil
}

// rewriteSum recomputes starkeeper.sum from the backups currently on disk,
// in version order.
func (s *Store) rewriteSum() error {
	versions, err := s.Versions()
	if err != nil {
		return err
	}

	sumFile := NewSumFile()
	for _, version := range versions {
		name := version + snapshotSuffix
		content, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return errors.Wrapf(err, "failed to read backup %s", name)
		}
		sumFile.AddFile(name, content)
	}

	var buf bytes.Buffer
	if _, err := sumFile.WriteTo(&buf); err != nil {
		return errors.Wrap(err, "failed to serialize sum file")
	}

	path := filepath.Join(s.dir, consts.SumFile)
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), consts.ModeFile), "failed to write %s", path)
}

func (s *Store) loadSum() (*SumFile, error) {
	path := filepath.Join(s.dir, consts.SumFile)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewSumFile(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	return LoadSumFile(f)
}
