package core

import (
	"context"
	"fmt"

	"relieftrack/pkg/domain"
)

// RequestStatusValueRule blocks mutations that set an unrecognised fulfillment
// state or an unrecognised safety state on a new record.
func RequestStatusValueRule() domain.Rule {
	return requestStatusValueRule{}
}

type requestStatusValueRule struct{}

func (requestStatusValueRule) Name() string { return "request_status_value" }

func (requestStatusValueRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.After == nil {
			continue
		}
		after := *change.After
		if !domain.ValidRequestStatus(after.RequestStatus) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "request_status_value",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("request %s has unknown fulfillment state %q", after.ID, after.RequestStatus),
				RecordID: after.ID,
			})
		}
		if change.Action == domain.ActionCreate && !domain.ValidSafetyStatus(after.SafetyStatus) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "request_status_value",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("request %s has unknown safety state %q", after.ID, after.SafetyStatus),
				RecordID: after.ID,
			})
		}
	}
	return res, nil
}
