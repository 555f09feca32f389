// Package notify delivers best-effort alerts after a request has been
// committed to the store. Delivery failures never roll back or block the
// write that triggered them.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"relieftrack/pkg/domain"
)

// Alert is the structured message sent for a newly committed request.
type Alert struct {
	Name         string
	Department   string
	Location     string
	SafetyStatus domain.SafetyStatus
	Supplies     []domain.SupplyKind
	Notes        string
}

// FromRecord builds an alert from a committed request record.
func FromRecord(r domain.RequestRecord) Alert {
	return Alert{
		Name:         r.Name,
		Department:   r.Department,
		Location:     r.Location,
		SafetyStatus: r.SafetyStatus,
		Supplies:     append([]domain.SupplyKind(nil), r.Supplies...),
		Notes:        r.Notes,
	}
}

// Text renders the alert as a human-readable message body.
func (a Alert) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Emergency request from %s (%s)\n", a.Name, a.Department)
	fmt.Fprintf(&b, "Location: %s\n", a.Location)
	fmt.Fprintf(&b, "Situation: %s\n", a.SafetyStatus)
	supplies := domain.JoinSupplies(a.Supplies)
	if supplies == "" {
		supplies = "none"
	}
	fmt.Fprintf(&b, "Supplies needed: %s\n", supplies)
	if a.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", a.Notes)
	}
	return b.String()
}

// Notifier delivers an alert to a list of recipients. Delivery is per
// recipient best-effort: implementations attempt every recipient and return
// the joined failures, if any.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, alert Alert) error
}

// Multi fans an alert out to several notifiers, attempting all of them and
// joining their failures.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, recipients []string, alert Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, recipients, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
