package backup

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type (
	// SumFile is the integrity manifest covering every backup in the
	// store. Individual file hashes are chained: each file's hash
	// incorporates the previous file's hash, so reordering or removing a
	// backup changes every subsequent hash. The first line of the
	// serialized form carries a total hash over all file hashes.
	SumFile struct {
		files     []fileEntry
		TotalHash string
	}

	fileEntry struct {
		Name string
		Hash []byte
	}
)

// NewSumFile creates a new empty SumFile ready to accept files.
func NewSumFile() *SumFile {
	return &SumFile{files: make([]fileEntry, 0)}
}

// LoadSumFile reads a SumFile in the format produced by WriteTo:
//   - First line: total hash (h1:base64-encoded-hash)
//   - Following lines: <filename> <h1:base64-encoded-hash>
func LoadSumFile(r io.Reader) (*SumFile, error) {
	scanner := bufio.NewScanner(r)
	sumFile := NewSumFile()

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "failed to read total hash line")
		}
		return sumFile, nil
	}

	totalHashLine := strings.TrimSpace(scanner.Text())
	if totalHashLine == "" {
		return sumFile, nil
	}

	if !strings.HasPrefix(totalHashLine, "h1:") {
		return nil, errors.Errorf("invalid total hash format: %s", totalHashLine)
	}
	sumFile.TotalHash = totalHashLine

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid file entry format: %s", line)
		}

		name, h1Hash := parts[0], parts[1]
		if !strings.HasPrefix(h1Hash, "h1:") {
			return nil, errors.Errorf("invalid hash format for file %s: %s", name, h1Hash)
		}

		hashBytes, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(h1Hash, "h1:"))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode hash for file %s", name)
		}

		sumFile.files = append(sumFile.files, fileEntry{Name: name, Hash: hashBytes})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading sum file")
	}

	return sumFile, nil
}

// AddFile appends a file, computing its chained hash from the content and
// the previous file's hash:
//   - First file: hash = SHA256(content)
//   - Subsequent files: hash = SHA256(content + previousHash)
//
// The total hash is computed lazily by WriteTo.
func (s *SumFile) AddFile(name string, content []byte) {
	hasher := sha256.New()
	hasher.Write(content)

	if len(s.files) > 0 {
		hasher.Write(s.files[len(s.files)-1].Hash)
	}

	s.files = append(s.files, fileEntry{Name: name, Hash: hasher.Sum(nil)})
}

// Files returns the count of files in the sum file.
func (s *SumFile) Files() int {
	return len(s.files)
}

// Names returns the file names in manifest order.
func (s *SumFile) Names() []string {
	names := make([]string, 0, len(s.files))
	for _, file := range s.files {
		names = append(names, file.Name)
	}
	return names
}

// WriteTo writes the sum file to w, computing the total hash first. The
// first line is the total hash followed by one "<file> h1:<hash>" line per
// file.
func (s *SumFile) WriteTo(w io.Writer) (int64, error) {
	var total int64

	s.computeTotalHash()

	n, err := fmt.Fprintf(w, "%s\n", s.TotalHash)
	if err != nil {
		return total, err
	}
	total += int64(n)

	for _, file := range s.files {
		n, err := fmt.Fprintf(w, "%s h1:%s\n", file.Name, base64.StdEncoding.EncodeToString(file.Hash))
		if err != nil {
			return total, err
		}
		total += int64(n)
	}

	return total, nil
}

// Verify recomputes the chained hashes using read to fetch file contents
// and returns an error on the first mismatch or unreadable file.
func (s *SumFile) Verify(read func(name string) ([]byte, error)) error {
	recomputed := NewSumFile()

	for _, file := range s.files {
		content, err := read(file.Name)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", file.Name)
		}
		recomputed.AddFile(file.Name, content)
	}

	for i, file := range s.files {
		if !bytes.Equal(file.Hash, recomputed.files[i].Hash) {
			return errors.Errorf("checksum mismatch for %s", file.Name)
		}
	}

	recomputed.computeTotalHash()
	if s.TotalHash != recomputed.TotalHash {
		return errors.New("total checksum mismatch")
	}

	return nil
}

func (s *SumFile) computeTotalHash() {
	if len(s.files) == 0 {
		s.TotalHash = ""
		return
	}

	hasher := sha256.New()
	for _, file := range s.files {
		hasher.Write(file.Hash)
	}

	s.TotalHash = "h1:" + base64.StdEncoding.EncodeToString(hasher.Sum(nil))
}
