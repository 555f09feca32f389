package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"relieftrack/pkg/domain"
)

func testRecord(id string) domain.RequestRecord {
	return domain.RequestRecord{
		ID:            id,
		Timestamp:     "2026-01-02 10:00:00",
		EmployeeID:    "E1",
		Name:          "Ada Lovelace",
		Location:      "Sector 7, near the river",
		SafetyStatus:  domain.SafetySafe,
		Supplies:      []domain.SupplyKind{domain.SupplyFood, domain.SupplyWater},
		RequestStatus: domain.StatusPending,
	}
}

func TestMissingFileIsEmptySnapshot(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "requests.csv"))
	records, version, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records != nil || version != domain.NoVersion {
		t.Fatalf("missing file must read empty, got %v %q", records, version)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "requests.csv"))
	ctx := context.Background()

	v1, err := store.Save(ctx, []domain.RequestRecord{testRecord("r1")}, domain.NoVersion)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	records, version, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if version != v1 {
		t.Fatalf("load must see the token the save returned")
	}
	if len(records) != 1 || records[0].Location != "Sector 7, near the river" {
		t.Fatalf("round trip lost data: %+v", records)
	}
	if len(records[0].Supplies) != 2 {
		t.Fatalf("supplies lost: %v", records[0].Supplies)
	}
}

func TestStaleTokenConflicts(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "requests.csv"))
	ctx := context.Background()

	v1, err := store.Save(ctx, []domain.RequestRecord{testRecord("r1")}, domain.NoVersion)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Save(ctx, []domain.RequestRecord{testRecord("r1"), testRecord("r2")}, v1); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if _, err := store.Save(ctx, nil, v1); !domain.IsVersionConflict(err) {
		t.Fatalf("stale token must conflict, got %v", err)
	}
}

func TestOutOfBandEditDetected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.csv")
	store := NewStore(path)
	ctx := context.Background()

	v1, err := store.Save(ctx, []domain.RequestRecord{testRecord("r1")}, domain.NoVersion)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := store.Save(ctx, nil, v1); !domain.IsVersionConflict(err) {
		t.Fatalf("an edited file must conflict against the old token, got %v", err)
	}
}

func TestCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "requests.csv")
	store := NewStore(path)
	if _, err := store.Save(context.Background(), []domain.RequestRecord{testRecord("r1")}, domain.NoVersion); err != nil {
		t.Fatalf("save into missing directory: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not created: %v", err)
	}
}
