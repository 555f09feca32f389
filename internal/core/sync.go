package core

import (
	"context"
	"fmt"
	"time"

	"relieftrack/internal/logging"
	"relieftrack/pkg/domain"
)

// DefaultRetryBudget bounds how many load-apply-save cycles a single mutation
// may run before contention is surfaced to the caller.
const DefaultRetryBudget = 3

// Mutation is one logical change applied to a snapshot copy. Apply must be
// re-runnable: on a version conflict the coordinator re-applies it against the
// freshest snapshot.
type Mutation interface {
	// Operation names the mutation for logs, errors, and metrics.
	Operation() string
	// Apply returns the updated snapshot and the changes it performed. It
	// must not mutate records in place.
	Apply(records []domain.RequestRecord) ([]domain.RequestRecord, []domain.Change, error)
}

// AppendRequest appends one new record to the snapshot.
type AppendRequest struct {
	Record domain.RequestRecord
}

// Operation implements Mutation.
func (AppendRequest) Operation() string { return "submit request" }

// Apply implements Mutation.
func (m AppendRequest) Apply(records []domain.RequestRecord) ([]domain.RequestRecord, []domain.Change, error) {
	if m.Record.ID == "" {
		return nil, nil, fmt.Errorf("append requires a record id")
	}
	for _, r := range records {
		if r.ID == m.Record.ID {
			return nil, nil, fmt.Errorf("request %q already exists", m.Record.ID)
		}
	}
	created := m.Record.Clone()
	updated := append(domain.CloneRecords(records), created)
	change := domain.Change{Action: domain.ActionCreate, After: &created}
	return updated, []domain.Change{change}, nil
}

// SetRequestStatus reassigns the fulfillment state of one identified record.
// Records are addressed by their stable identifier, never by position, so the
// mutation stays valid when concurrent appends shift the snapshot.
type SetRequestStatus struct {
	ID     string
	Status domain.RequestStatus
}

// Operation implements Mutation.
func (SetRequestStatus) Operation() string { return "status update" }

// Apply implements Mutation.
func (m SetRequestStatus) Apply(records []domain.RequestRecord) ([]domain.RequestRecord, []domain.Change, error) {
	// Legacy tables decode rows without an identifier as empty IDs; an empty
	// mutation ID must never match them, or the update degrades to
	// first-position-wins.
	if m.ID == "" {
		return nil, nil, domain.NotFoundError{ID: m.ID}
	}
	updated := domain.CloneRecords(records)
	for i := range updated {
		if updated[i].ID != m.ID {
			continue
		}
		before := updated[i].Clone()
		updated[i].RequestStatus = m.Status
		after := updated[i].Clone()
		change := domain.Change{Action: domain.ActionUpdate, Before: &before, After: &after}
		return updated, []domain.Change{change}, nil
	}
	return nil, nil, domain.NotFoundError{ID: m.ID}
}

// Coordinator wraps store access with the optimistic-concurrency protocol:
// load the current snapshot, apply exactly one logical mutation to a copy,
// validate it, and write the full sequence back conditionally on the version
// token. Version conflicts are retried from a fresh snapshot within a bounded
// budget; transport failures are never retried. Either the full mutation
// lands or none of it does.
type Coordinator struct {
	store   domain.SnapshotStore
	engine  *domain.RulesEngine
	retries int
	metrics MetricsRecorder
	log     *logging.Logger
	nowFn   func() time.Time
}

// CoordinatorOption customises a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithRetryBudget overrides the conflict retry budget.
func WithRetryBudget(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) CoordinatorOption {
	return func(c *Coordinator) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log *logging.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCoordinator constructs a coordinator over the given store. A nil engine
// skips rule evaluation.
func NewCoordinator(store domain.SnapshotStore, engine *domain.RulesEngine, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:   store,
		engine:  engine,
		retries: DefaultRetryBudget,
		metrics: NopMetrics{},
		log:     logging.Nop(),
		nowFn:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply runs one mutation through the load-apply-save cycle and returns the
// committed snapshot along with any rule warnings. The returned error is a
// SyncFailedError when the mutation was not applied due to store
// unavailability or retry exhaustion; validation and rule errors pass through
// unchanged.
func (c *Coordinator) Apply(ctx context.Context, m Mutation) ([]domain.RequestRecord, domain.Result, error) {
	op := m.Operation()
	started := c.nowFn()
	records, res, err := c.apply(ctx, m)
	c.metrics.Observe(ctx, op, err == nil, c.nowFn().Sub(started))
	return records, res, err
}

func (c *Coordinator) apply(ctx context.Context, m Mutation) ([]domain.RequestRecord, domain.Result, error) {
	op := m.Operation()
	var lastConflict error
	for attempt := 1; attempt <= c.retries; attempt++ {
		records, token, err := c.store.LoadAll(ctx)
		if err != nil {
			// Connectivity, not contention: surface immediately.
			return nil, domain.Result{}, domain.SyncFailedError{Op: op, Attempts: attempt, Err: err}
		}

		updated, changes, err := m.Apply(records)
		if err != nil {
			return nil, domain.Result{}, err
		}

		var res domain.Result
		if c.engine != nil {
			res, err = c.engine.Evaluate(ctx, domain.SnapshotView(updated), changes)
			if err != nil {
				return nil, domain.Result{}, err
			}
			if res.HasBlocking() {
				return nil, res, domain.RuleViolationError{Result: res}
			}
		}

		if _, err := c.store.Save(ctx, updated, token); err != nil {
			if domain.IsVersionConflict(err) {
				lastConflict = err
				c.metrics.ObserveConflict(ctx, op)
				c.log.Warnf("%s hit a version conflict on attempt %d/%d, reloading", op, attempt, c.retries)
				continue
			}
			return nil, domain.Result{}, domain.SyncFailedError{Op: op, Attempts: attempt, Err: err}
		}
		return updated, res, nil
	}
	return nil, domain.Result{}, domain.SyncFailedError{Op: op, Attempts: c.retries, Err: lastConflict}
}
