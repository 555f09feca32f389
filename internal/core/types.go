package core

import "relieftrack/pkg/domain"

type (
	RequestRecord = domain.RequestRecord
	RequestStatus = domain.RequestStatus
	SafetyStatus  = domain.SafetyStatus
	SupplyKind    = domain.SupplyKind
	Employee      = domain.Employee
	Change        = domain.Change
	Action        = domain.Action
	Violation     = domain.Violation
	Result        = domain.Result
	Severity      = domain.Severity
	RulesEngine   = domain.RulesEngine
	SnapshotStore = domain.SnapshotStore
	VersionToken  = domain.VersionToken
)

const (
	StatusPending   = domain.StatusPending
	StatusApproved  = domain.StatusApproved
	StatusDelivered = domain.StatusDelivered
	StatusRejected  = domain.StatusRejected
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
)
