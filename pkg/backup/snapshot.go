package backup

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/forge"
)

// versionFormat is the UTC timestamp layout used for snapshot versions.
const versionFormat = "20060102150405"

// snapshotSuffix is appended to the version to form the backup file name.
const snapshotSuffix = "_backup.json"

type (
	// Snapshot is a point-in-time capture of the user's stars and lists.
	Snapshot struct {
		// Version is the UTC timestamp identifying this snapshot
		Version string `json:"version"`

		// ID uniquely identifies the snapshot across renames
		ID string `json:"id"`

		// Description is an optional human note (e.g. "before organize")
		Description string `json:"description,omitempty"`

		// CreatedAt is when the snapshot was taken
		CreatedAt time.Time `json:"created_at"`

		// Login is the forge account the snapshot belongs to
		Login string `json:"login"`

		// Stars are the starred repositories at snapshot time
		Stars []forge.Repo `json:"stars"`

		// Lists are the user's lists and their memberships at snapshot time
		Lists []forge.List `json:"lists"`
	}
)

// NewSnapshot captures the given stars and lists under a fresh version.
func NewSnapshot(login, description string, stars []forge.Repo, lists []forge.List) *Snapshot {
	now := time.Now().UTC()

	return &Snapshot{
		Version:     now.Format(versionFormat),
		ID:          uuid.NewString(),
		Description: description,
		CreatedAt:   now,
		Login:       login,
		Stars:       stars,
		Lists:       lists,
	}
}

// LoadSnapshot reads a snapshot from r.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to decode snapshot")
	}

	if snapshot.Version == "" {
		return nil, errors.New("snapshot has no version")
	}

	return &snapshot, nil
}

// Filename returns the file name the snapshot is stored under.
func (s *Snapshot) Filename() string {
	return s.Version + snapshotSuffix
}

// Encode writes the snapshot to w as indented JSON.
func (s *Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(s), "failed to encode snapshot")
}

// HasStar reports whether fullName was starred at snapshot time.
func (s *Snapshot) HasStar(fullName string) bool {
	for _, repo := range s.Stars {
		if strings.EqualFold(repo.FullName, fullName) {
			return true
		}
	}
	return false
}

// FindRepo returns the snapshot's record of fullName, or nil.
func (s *Snapshot) FindRepo(fullName string) *forge.Repo {
	for i := range s.Stars {
		if strings.EqualFold(s.Stars[i].FullName, fullName) {
			return &s.Stars[i]
		}
	}
	return nil
}
