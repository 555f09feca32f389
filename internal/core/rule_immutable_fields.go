package core

import (
	"context"
	"fmt"

	"relieftrack/pkg/domain"
)

// ImmutableFieldsRule blocks updates that touch anything other than the
// fulfillment state. Timestamp, the employee snapshot, location, the reported
// safety state, and the supply set are all write-once at creation.
func ImmutableFieldsRule() domain.Rule {
	return immutableFieldsRule{}
}

type immutableFieldsRule struct{}

func (immutableFieldsRule) Name() string { return "immutable_fields" }

func (immutableFieldsRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action != domain.ActionUpdate || change.Before == nil || change.After == nil {
			continue
		}
		before, after := *change.Before, *change.After
		if field, ok := changedImmutableField(before, after); ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "immutable_fields",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("request %s: %s is write-once and cannot change after creation", after.ID, field),
				RecordID: after.ID,
			})
		}
	}
	return res, nil
}

func changedImmutableField(before, after domain.RequestRecord) (string, bool) {
	switch {
	case before.ID != after.ID:
		return "request id", true
	case before.Timestamp != after.Timestamp:
		return "timestamp", true
	case before.EmployeeID != after.EmployeeID:
		return "employee id", true
	case before.Name != after.Name || before.Department != after.Department ||
		before.Phone != after.Phone || before.Email != after.Email:
		return "employee snapshot", true
	case before.Location != after.Location:
		return "location", true
	case before.SafetyStatus != after.SafetyStatus:
		return "safety status", true
	case domain.JoinSupplies(before.Supplies) != domain.JoinSupplies(after.Supplies):
		return "supplies", true
	case before.Notes != after.Notes:
		return "notes", true
	}
	return "", false
}
