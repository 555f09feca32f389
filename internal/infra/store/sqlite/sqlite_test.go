package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"relieftrack/pkg/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "relieftrack.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEmptyDatabase(t *testing.T) {
	store := openTestStore(t)
	records, version, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records != nil || version != domain.NoVersion {
		t.Fatalf("fresh database must read empty, got %v %q", records, version)
	}
}

func TestSaveLoadAndVersionAdvance(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	v1, err := store.Save(ctx, []domain.RequestRecord{{
		ID:            "r1",
		Timestamp:     "2026-01-02 10:00:00",
		EmployeeID:    "E1",
		Supplies:      []domain.SupplyKind{domain.SupplyMedical},
		RequestStatus: domain.StatusPending,
	}}, domain.NoVersion)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if v1 != domain.VersionToken("1") {
		t.Fatalf("first save should land version 1, got %q", v1)
	}

	records, version, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if version != v1 || len(records) != 1 || records[0].ID != "r1" {
		t.Fatalf("round trip lost data: %v %q", records, version)
	}

	v2, err := store.Save(ctx, records, v1)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if v2 != domain.VersionToken("2") {
		t.Fatalf("expected version 2, got %q", v2)
	}
}

func TestStaleTokenConflict(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	v1, err := store.Save(ctx, nil, domain.NoVersion)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Save(ctx, nil, v1); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, err = store.Save(ctx, nil, v1)
	if !domain.IsVersionConflict(err) {
		t.Fatalf("stale token must conflict, got %v", err)
	}

	_, err = store.Save(ctx, nil, domain.NoVersion)
	if !domain.IsVersionConflict(err) {
		t.Fatalf("inserting over an existing row must conflict, got %v", err)
	}
}
