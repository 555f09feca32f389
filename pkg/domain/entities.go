// Package domain defines the persistent request entities, value types, wire
// formats, and rule evaluation primitives used by relieftrack.
package domain

import (
	"strings"
	"time"
)

// SafetyStatus is the employee-reported safety state captured at submission.
// It is distinct from RequestStatus and write-once for the record's lifetime.
type SafetyStatus string

// Safety states an employee can report.
const (
	SafetySafe      SafetyStatus = "Safe"
	SafetyEvacuated SafetyStatus = "Evacuated"
	SafetyInNeed    SafetyStatus = "In Need of Help"
)

// RequestStatus is the admin-controlled fulfillment state of a request.
type RequestStatus string

// Fulfillment states. Pending is the initial state; any state is reachable
// from any other via direct admin selection.
const (
	StatusPending   RequestStatus = "Pending"
	StatusApproved  RequestStatus = "Approved"
	StatusDelivered RequestStatus = "Delivered"
	StatusRejected  RequestStatus = "Rejected"
)

// SupplyKind identifies one kind of relief supply.
type SupplyKind string

// Supply kinds carried by the intake form and the budget table.
const (
	SupplyFood    SupplyKind = "Food"
	SupplyWater   SupplyKind = "Water"
	SupplyBaby    SupplyKind = "Baby Supplies"
	SupplyHygiene SupplyKind = "Hygiene Kit"
	SupplyMedical SupplyKind = "Medical Kit"
	SupplyBlanket SupplyKind = "Blanket"
)

// TimestampLayout is the second-precision layout used for record timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// SafetyStatuses returns the recognised safety states in display order.
func SafetyStatuses() []SafetyStatus {
	return []SafetyStatus{SafetySafe, SafetyEvacuated, SafetyInNeed}
}

// RequestStatuses returns the recognised fulfillment states in display order.
func RequestStatuses() []RequestStatus {
	return []RequestStatus{StatusPending, StatusApproved, StatusDelivered, StatusRejected}
}

// SupplyKinds returns the recognised supply kinds in display order.
func SupplyKinds() []SupplyKind {
	return []SupplyKind{SupplyFood, SupplyWater, SupplyBaby, SupplyHygiene, SupplyMedical, SupplyBlanket}
}

// ValidSafetyStatus reports whether s is a recognised safety state.
func ValidSafetyStatus(s SafetyStatus) bool {
	switch s {
	case SafetySafe, SafetyEvacuated, SafetyInNeed:
		return true
	}
	return false
}

// ValidRequestStatus reports whether s is a recognised fulfillment state.
func ValidRequestStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusDelivered, StatusRejected:
		return true
	}
	return false
}

// RequestRecord is one employee-submitted emergency request. The directory
// fields are a snapshot taken at creation, not a live reference. Timestamp is
// kept as text so that stored rows with a malformed value still round-trip and
// are excluded only from time-based views.
type RequestRecord struct {
	ID           string         `json:"id"`
	Timestamp    string         `json:"timestamp"`
	EmployeeID   string         `json:"employee_id"`
	Name         string         `json:"name"`
	Department   string         `json:"department"`
	Phone        string         `json:"phone"`
	Email        string         `json:"email"`
	Location     string         `json:"location"`
	SafetyStatus SafetyStatus   `json:"safety_status"`
	Supplies     []SupplyKind   `json:"supplies"`
	Notes        string         `json:"notes"`
	RequestStatus RequestStatus `json:"request_status"`
}

// SubmittedAt parses the record timestamp. ok is false when the stored value
// does not match TimestampLayout.
func (r RequestRecord) SubmittedAt() (time.Time, bool) {
	t, err := time.Parse(TimestampLayout, r.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Needs reports whether the record requests the given supply kind.
func (r RequestRecord) Needs(kind SupplyKind) bool {
	for _, k := range r.Supplies {
		if k == kind {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record.
func (r RequestRecord) Clone() RequestRecord {
	cp := r
	if len(r.Supplies) != 0 {
		cp.Supplies = append([]SupplyKind(nil), r.Supplies...)
	}
	return cp
}

// CloneRecords deep-copies a snapshot so callers can mutate freely.
func CloneRecords(records []RequestRecord) []RequestRecord {
	if records == nil {
		return nil
	}
	out := make([]RequestRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// JoinSupplies serialises a supply set as its member names joined with ", ".
func JoinSupplies(kinds []SupplyKind) string {
	if len(kinds) == 0 {
		return ""
	}
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

// SplitSupplies parses the ", "-joined serialisation back into a supply set.
// Unknown names are preserved as-is; budget computation prices them at zero.
func SplitSupplies(s string) []SupplyKind {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]SupplyKind, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, SupplyKind(p))
	}
	return out
}

// DedupeSupplies drops repeated kinds while keeping first-seen order.
func DedupeSupplies(kinds []SupplyKind) []SupplyKind {
	if len(kinds) <= 1 {
		return append([]SupplyKind(nil), kinds...)
	}
	seen := make(map[SupplyKind]struct{}, len(kinds))
	out := make([]SupplyKind, 0, len(kinds))
	for _, k := range kinds {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Employee is one entry of the read-only employee directory.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// Action indicates the type of modification captured in a Change.
type Action string

// Change actions recorded during snapshot mutation.
const (
	// ActionCreate indicates a record was appended.
	ActionCreate Action = "create"
	// ActionUpdate indicates a record's fulfillment state was reassigned.
	ActionUpdate Action = "update"
)

// Change describes one mutation applied to a snapshot. Before is nil for
// appends.
type Change struct {
	Action Action
	Before *RequestRecord
	After  *RequestRecord
}

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	RecordID string
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks the mutation before it reaches the store.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows the save.
	SeverityWarn Severity = "warn"
)

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Warnings returns the non-blocking violations.
func (r Result) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityWarn {
			out = append(out, v)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "mutation blocked by validation rules"
}
