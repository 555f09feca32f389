package core

import (
	"context"
	"testing"

	"relieftrack/pkg/domain"
)

func evaluate(t *testing.T, changes []domain.Change, snapshot ...domain.RequestRecord) domain.Result {
	t.Helper()
	res, err := NewDefaultEngine().Evaluate(context.Background(), domain.SnapshotView(snapshot), changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	return res
}

func TestRequestStatusValueRuleBlocksUnknownStatus(t *testing.T) {
	r := pendingRecord("r1", "E1")
	r.RequestStatus = "Completed"
	res := evaluate(t, []domain.Change{{Action: domain.ActionCreate, After: &r}}, r)
	if !res.HasBlocking() {
		t.Fatalf("unknown fulfillment state must block")
	}
}

func TestRequestStatusValueRuleBlocksUnknownSafetyOnCreate(t *testing.T) {
	r := pendingRecord("r1", "E1")
	r.SafetyStatus = "Fine"
	res := evaluate(t, []domain.Change{{Action: domain.ActionCreate, After: &r}}, r)
	if !res.HasBlocking() {
		t.Fatalf("unknown safety state must block creation")
	}
}

func TestImmutableFieldsRule(t *testing.T) {
	before := pendingRecord("r1", "E1")

	after := before.Clone()
	after.RequestStatus = domain.StatusApproved
	res := evaluate(t, []domain.Change{{Action: domain.ActionUpdate, Before: &before, After: &after}}, after)
	if res.HasBlocking() {
		t.Fatalf("fulfillment state changes must be allowed: %+v", res.Violations)
	}

	tampered := before.Clone()
	tampered.Location = "elsewhere"
	res = evaluate(t, []domain.Change{{Action: domain.ActionUpdate, Before: &before, After: &tampered}}, tampered)
	if !res.HasBlocking() {
		t.Fatalf("location change must block")
	}

	tampered = before.Clone()
	tampered.Supplies = append(tampered.Supplies, domain.SupplyWater)
	res = evaluate(t, []domain.Change{{Action: domain.ActionUpdate, Before: &before, After: &tampered}}, tampered)
	if !res.HasBlocking() {
		t.Fatalf("supply set change must block")
	}
}

func TestTerminalRevertRuleWarns(t *testing.T) {
	before := pendingRecord("r1", "E1")
	before.RequestStatus = domain.StatusDelivered
	after := before.Clone()
	after.RequestStatus = domain.StatusPending

	res := evaluate(t, []domain.Change{{Action: domain.ActionUpdate, Before: &before, After: &after}}, after)
	if res.HasBlocking() {
		t.Fatalf("a Delivered reversal must not block: %+v", res.Violations)
	}
	warns := res.Warnings()
	if len(warns) != 1 || warns[0].Rule != "terminal_revert" {
		t.Fatalf("expected one terminal_revert warning, got %+v", warns)
	}
}
