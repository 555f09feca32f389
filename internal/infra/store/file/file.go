// Package file persists the request snapshot as a CSV document on local disk.
package file

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"relieftrack/pkg/domain"
)

// Store reads and writes the whole snapshot as one CSV file. The version
// token is the SHA-256 digest of the file bytes, so any out-of-band edit to
// the file shows up as a version conflict on the next save.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore persists snapshots at path. A missing file reads as an empty
// snapshot.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// LoadAll decodes the CSV file into records.
func (s *Store) LoadAll(_ context.Context) ([]domain.RequestRecord, domain.VersionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, version, err := s.read()
	if err != nil {
		return nil, domain.NoVersion, err
	}
	if data == nil {
		return nil, domain.NoVersion, nil
	}
	records, err := domain.DecodeRequests(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NoVersion, domain.StoreUnavailableError{Op: "decode requests file", Err: err}
	}
	return records, version, nil
}

// Save encodes records and writes them atomically via a temp file rename,
// but only when the file on disk still hashes to expected.
func (s *Store) Save(_ context.Context, records []domain.RequestRecord, expected domain.VersionToken) (domain.VersionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, current, err := s.read()
	if err != nil {
		return domain.NoVersion, err
	}
	if current != expected {
		return domain.NoVersion, domain.VersionConflictError{Expected: expected, Current: current}
	}

	var buf bytes.Buffer
	if err := domain.EncodeRequests(&buf, records); err != nil {
		return domain.NoVersion, domain.StoreUnavailableError{Op: "encode requests file", Err: err}
	}
	if err := s.writeAtomic(buf.Bytes()); err != nil {
		return domain.NoVersion, domain.StoreUnavailableError{Op: "write requests file", Err: err}
	}
	return digest(buf.Bytes()), nil
}

func (s *Store) read() ([]byte, domain.VersionToken, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NoVersion, nil
	}
	if err != nil {
		return nil, domain.NoVersion, domain.StoreUnavailableError{Op: "read requests file", Err: err}
	}
	return data, digest(data), nil
}

func (s *Store) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func digest(data []byte) domain.VersionToken {
	sum := sha256.Sum256(data)
	return domain.VersionToken(hex.EncodeToString(sum[:]))
}
