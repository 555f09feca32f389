package domain

import "context"

// RuleView provides read-only access to the candidate snapshot for rule
// evaluation.
type RuleView interface {
	ListRequests() []RequestRecord
	FindRequest(id string) (RequestRecord, bool)
}

// Rule defines an evaluation executed against a candidate snapshot before it
// is written to the store.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine(rules ...Rule) *RulesEngine {
	e := &RulesEngine{}
	for _, r := range rules {
		e.Register(r)
	}
	return e
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}

// SnapshotView adapts an in-memory snapshot to the RuleView interface.
type SnapshotView []RequestRecord

// ListRequests returns a deep copy of the snapshot.
func (v SnapshotView) ListRequests() []RequestRecord {
	return CloneRecords(v)
}

// FindRequest retrieves a record by identifier.
func (v SnapshotView) FindRequest(id string) (RequestRecord, bool) {
	if id == "" {
		return RequestRecord{}, false
	}
	for _, r := range v {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return RequestRecord{}, false
}
