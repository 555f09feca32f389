// Package sqlite persists the request snapshot in a single SQLite row as a
// JSON blob alongside a monotonically increasing version counter.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"relieftrack/pkg/domain"
)

// Store keeps the whole snapshot in one row of the state table. The version
// token is the row's integer counter; a save is a conditional UPDATE guarded
// on that counter, so two concurrent sessions cannot both land the same
// version.
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "relieftrack.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload BLOB NOT NULL,
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// LoadAll reads the snapshot row. A missing row is an empty snapshot.
func (s *Store) LoadAll(ctx context.Context) ([]domain.RequestRecord, domain.VersionToken, error) {
	var payload []byte
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT payload, version FROM state WHERE id = 1`).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NoVersion, nil
	}
	if err != nil {
		return nil, domain.NoVersion, domain.StoreUnavailableError{Op: "select state", Err: err}
	}
	var records []domain.RequestRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, domain.NoVersion, domain.StoreUnavailableError{Op: "decode state", Err: err}
	}
	return records, token(version), nil
}

// Save writes the snapshot conditionally on the stored version counter.
func (s *Store) Save(ctx context.Context, records []domain.RequestRecord, expected domain.VersionToken) (domain.VersionToken, error) {
	payload, err := json.Marshal(records)
	if err != nil {
		return domain.NoVersion, domain.StoreUnavailableError{Op: "encode state", Err: err}
	}

	if expected == domain.NoVersion {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO state (id, payload, version) VALUES (1, ?, 1)`, payload)
		if err != nil {
			current, readErr := s.currentVersion(ctx)
			if readErr == nil && current != domain.NoVersion {
				return domain.NoVersion, domain.VersionConflictError{Expected: expected, Current: current}
			}
			return domain.NoVersion, domain.StoreUnavailableError{Op: "insert state", Err: err}
		}
		return token(1), nil
	}

	want, err := strconv.ParseInt(string(expected), 10, 64)
	if err != nil {
		return domain.NoVersion, domain.StoreUnavailableError{Op: "parse version", Err: err}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE state SET payload = ?, version = ? WHERE id = 1 AND version = ?`,
		payload, want+1, want)
	if err != nil {
		return domain.NoVersion, domain.StoreUnavailableError{Op: "update state", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NoVersion, domain.StoreUnavailableError{Op: "update state", Err: err}
	}
	if n == 0 {
		current, readErr := s.currentVersion(ctx)
		if readErr != nil {
			return domain.NoVersion, readErr
		}
		return domain.NoVersion, domain.VersionConflictError{Expected: expected, Current: current}
	}
	return token(want + 1), nil
}

func (s *Store) currentVersion(ctx context.Context) (domain.VersionToken, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM state WHERE id = 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NoVersion, nil
	}
	if err != nil {
		return domain.NoVersion, domain.StoreUnavailableError{Op: "select version", Err: err}
	}
	return token(version), nil
}

func token(version int64) domain.VersionToken {
	return domain.VersionToken(strconv.FormatInt(version, 10))
}
