package core

import (
	"context"
	"fmt"

	"relieftrack/pkg/domain"
)

// TerminalRevertRule flags, without blocking, a Delivered request being moved
// back to an earlier state. Arbitrary reassignment is the observed intake
// policy; the warning keeps such reversals visible to operators until the
// policy is confirmed or tightened.
func TerminalRevertRule() domain.Rule {
	return terminalRevertRule{}
}

type terminalRevertRule struct{}

func (terminalRevertRule) Name() string { return "terminal_revert" }

func (terminalRevertRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action != domain.ActionUpdate || change.Before == nil || change.After == nil {
			continue
		}
		before, after := *change.Before, *change.After
		if before.RequestStatus == domain.StatusDelivered && after.RequestStatus != domain.StatusDelivered {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "terminal_revert",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("request %s reverted from Delivered to %s", after.ID, after.RequestStatus),
				RecordID: after.ID,
			})
		}
	}
	return res, nil
}
