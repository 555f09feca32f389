package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"relieftrack/internal/auth"
	"relieftrack/internal/directory"
	"relieftrack/internal/logging"
	"relieftrack/internal/notify"
	"relieftrack/internal/report"
	"relieftrack/pkg/domain"
)

// ErrAdminRequired is returned when a non-admin session attempts a status
// update.
var ErrAdminRequired = errors.New("request status updates require the Admin role")

// Service exposes the intake and triage operations over the request store.
// Each call is one logical actor processed to completion; cross-session
// contention is resolved by the coordinator's conditional writes, never by
// locks held across an interaction.
type Service struct {
	coord      *Coordinator
	store      domain.SnapshotStore
	directory  *directory.Directory
	notifier   notify.Notifier
	recipients []string
	log        *logging.Logger
	nowFn      func() time.Time
	newID      func() string
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithNotifier wires the post-commit notifier and its recipient list.
func WithNotifier(n notify.Notifier, recipients []string) ServiceOption {
	return func(s *Service) {
		s.notifier = n
		s.recipients = recipients
	}
}

// WithServiceLogger attaches a logger.
func WithServiceLogger(log *logging.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithIDGenerator overrides record identifier generation, used by tests.
func WithIDGenerator(gen func() string) ServiceOption {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService constructs the service over a store and employee directory.
func NewService(coord *Coordinator, store domain.SnapshotStore, dir *directory.Directory, opts ...ServiceOption) *Service {
	s := &Service{
		coord:     coord,
		store:     store,
		directory: dir,
		log:       logging.Nop(),
		nowFn:     time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput is one employee submission before validation.
type SubmitInput struct {
	EmployeeID   string
	Location     string
	SafetyStatus domain.SafetyStatus
	Supplies     []domain.SupplyKind
	Notes        string
}

// SubmitRequest validates the submission, snapshots the employee's directory
// entry into a new Pending record, commits it through the coordinator, and
// then fires the notifier. Notification is strictly post-commit and
// best-effort: a delivery failure is logged as a warning and the submission
// still reports success.
func (s *Service) SubmitRequest(ctx context.Context, _ auth.Session, in SubmitInput) (domain.RequestRecord, error) {
	empID := strings.TrimSpace(in.EmployeeID)
	if empID == "" {
		return domain.RequestRecord{}, domain.ValidationError{Field: "Employee ID", Reason: "must not be empty"}
	}
	emp, ok := s.directory.Lookup(empID)
	if !ok {
		return domain.RequestRecord{}, domain.ValidationError{Field: "Employee ID", Reason: "not found in the employee directory"}
	}
	if strings.TrimSpace(in.Location) == "" {
		return domain.RequestRecord{}, domain.ValidationError{Field: "Location", Reason: "must not be empty"}
	}
	if !domain.ValidSafetyStatus(in.SafetyStatus) {
		return domain.RequestRecord{}, domain.ValidationError{Field: "Status", Reason: "must be one of Safe, Evacuated, In Need of Help"}
	}

	record := domain.RequestRecord{
		ID:            s.newID(),
		Timestamp:     s.nowFn().Format(domain.TimestampLayout),
		EmployeeID:    emp.ID,
		Name:          emp.Name,
		Department:    emp.Department,
		Phone:         emp.Phone,
		Email:         emp.Email,
		Location:      strings.TrimSpace(in.Location),
		SafetyStatus:  in.SafetyStatus,
		Supplies:      domain.DedupeSupplies(in.Supplies),
		Notes:         in.Notes,
		RequestStatus: domain.StatusPending,
	}

	if _, _, err := s.coord.Apply(ctx, AppendRequest{Record: record}); err != nil {
		return domain.RequestRecord{}, err
	}
	s.log.Infof("request %s submitted by %s (%s)", record.ID, emp.Name, emp.ID)

	s.notifyCommitted(ctx, record)
	return record, nil
}

// notifyCommitted fires the post-commit alert. Runs only after a confirmed
// store write; failures are warnings, never errors.
func (s *Service) notifyCommitted(ctx context.Context, record domain.RequestRecord) {
	if s.notifier == nil || len(s.recipients) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, s.recipients, notify.FromRecord(record)); err != nil {
		s.log.Warnf("request %s saved, but notification failed: %v", record.ID, err)
	}
}

// SetRequestStatus reassigns the fulfillment state of one record, addressed
// by its stable identifier. Only Admin sessions may call it. Any recognised
// state may be assigned regardless of the current one; a Delivered reversal
// is logged as a warning by the terminal_revert rule.
func (s *Service) SetRequestStatus(ctx context.Context, sess auth.Session, id string, status domain.RequestStatus) (domain.RequestRecord, error) {
	if !sess.IsAdmin() {
		return domain.RequestRecord{}, ErrAdminRequired
	}
	if !domain.ValidRequestStatus(status) {
		return domain.RequestRecord{}, domain.ValidationError{Field: "Request Status", Reason: "must be one of Pending, Approved, Delivered, Rejected"}
	}

	records, res, err := s.coord.Apply(ctx, SetRequestStatus{ID: id, Status: status})
	if err != nil {
		return domain.RequestRecord{}, err
	}
	for _, w := range res.Warnings() {
		s.log.Warnf("%s: %s", w.Rule, w.Message)
	}
	updated, ok := domain.SnapshotView(records).FindRequest(id)
	if !ok {
		return domain.RequestRecord{}, domain.NotFoundError{ID: id}
	}
	s.log.Infof("request %s set to %s by %s", id, status, sess.Username)
	return updated, nil
}

// ListRequests returns the current snapshot. When the store is unreachable it
// returns an empty sequence alongside the error: a failed read loses nothing,
// and callers may render the empty view while surfacing the failure.
func (s *Service) ListRequests(ctx context.Context) ([]domain.RequestRecord, error) {
	records, _, err := s.store.LoadAll(ctx)
	if err != nil {
		return []domain.RequestRecord{}, err
	}
	return records, nil
}

// Report derives the aggregate views from the current snapshot. The same
// empty-on-unavailable fallback as ListRequests applies.
func (s *Service) Report(ctx context.Context) (report.Report, error) {
	records, err := s.ListRequests(ctx)
	rpt := report.Build(records, s.nowFn())
	return rpt, err
}

// PendingCount reports how many requests currently await triage.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	records, err := s.ListRequests(ctx)
	if err != nil {
		return 0, err
	}
	return report.StatusCounts(records)[domain.StatusPending], nil
}
