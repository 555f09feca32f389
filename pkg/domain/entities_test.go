package domain

import (
	"testing"
	"time"
)

func TestJoinSplitSupplies(t *testing.T) {
	kinds := []SupplyKind{SupplyFood, SupplyBaby, SupplyHygiene}
	joined := JoinSupplies(kinds)
	if joined != "Food, Baby Supplies, Hygiene Kit" {
		t.Fatalf("unexpected serialisation: %q", joined)
	}
	back := SplitSupplies(joined)
	if len(back) != 3 {
		t.Fatalf("expected 3 kinds, got %v", back)
	}
	for i, k := range kinds {
		if back[i] != k {
			t.Fatalf("kind %d: expected %q got %q", i, k, back[i])
		}
	}
}

func TestSplitSuppliesEdgeCases(t *testing.T) {
	if got := SplitSupplies(""); got != nil {
		t.Fatalf("empty input should yield nil, got %v", got)
	}
	if got := SplitSupplies("  "); got != nil {
		t.Fatalf("blank input should yield nil, got %v", got)
	}
	got := SplitSupplies("Food,Water, ,Tarpaulin")
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %v", got)
	}
	if got[2] != SupplyKind("Tarpaulin") {
		t.Fatalf("unknown names must be preserved, got %q", got[2])
	}
}

func TestDedupeSupplies(t *testing.T) {
	got := DedupeSupplies([]SupplyKind{SupplyWater, SupplyFood, SupplyWater, SupplyFood})
	if len(got) != 2 || got[0] != SupplyWater || got[1] != SupplyFood {
		t.Fatalf("expected first-seen order without repeats, got %v", got)
	}
}

func TestSubmittedAt(t *testing.T) {
	r := RequestRecord{Timestamp: "2026-03-14 09:30:00"}
	at, ok := r.SubmittedAt()
	if !ok {
		t.Fatalf("expected timestamp to parse")
	}
	want := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("expected %v got %v", want, at)
	}

	r.Timestamp = "not a time"
	if _, ok := r.SubmittedAt(); ok {
		t.Fatalf("malformed timestamp must not parse")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := RequestRecord{ID: "r1", Supplies: []SupplyKind{SupplyFood}}
	cp := orig.Clone()
	cp.Supplies[0] = SupplyWater
	if orig.Supplies[0] != SupplyFood {
		t.Fatalf("clone shares the supplies slice with the original")
	}
}

func TestCloneRecordsIndependence(t *testing.T) {
	snapshot := []RequestRecord{{ID: "r1", Supplies: []SupplyKind{SupplyFood}}}
	cp := CloneRecords(snapshot)
	cp[0].RequestStatus = StatusDelivered
	cp[0].Supplies[0] = SupplyWater
	if snapshot[0].RequestStatus != "" || snapshot[0].Supplies[0] != SupplyFood {
		t.Fatalf("mutating the copy leaked into the source snapshot")
	}
	if CloneRecords(nil) != nil {
		t.Fatalf("nil snapshot should clone to nil")
	}
}

func TestValidStatuses(t *testing.T) {
	for _, s := range SafetyStatuses() {
		if !ValidSafetyStatus(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	if ValidSafetyStatus("Fine") {
		t.Fatalf("unknown safety status accepted")
	}
	for _, s := range RequestStatuses() {
		if !ValidRequestStatus(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	if ValidRequestStatus("Done") {
		t.Fatalf("unknown request status accepted")
	}
}

func TestResultSeverities(t *testing.T) {
	var res Result
	res.Merge(Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}})
	if res.HasBlocking() {
		t.Fatalf("warn-only result reported as blocking")
	}
	res.Merge(Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock}}})
	if !res.HasBlocking() {
		t.Fatalf("blocking violation not detected")
	}
	if got := res.Warnings(); len(got) != 1 || got[0].Rule != "a" {
		t.Fatalf("unexpected warnings: %v", got)
	}
}
