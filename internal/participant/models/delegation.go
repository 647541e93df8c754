package models

import (
	"time"

	"github.com/google/uuid"

	"markpart/pkg/domain"
)

// DelegatedProcess names a business process an actor can delegate.
type DelegatedProcess string

const (
	ProcessRequestEnergyResults DelegatedProcess = "RequestEnergyResults"
	ProcessReceiveEnergyResults DelegatedProcess = "ReceiveEnergyResults"
	ProcessRequestWholesale     DelegatedProcess = "RequestWholesaleResults"
	ProcessReceiveMeteringData  DelegatedProcess = "ReceiveMeteringPointData"
)

// DelegationPeriod is one row version of a delegation period. Periods are
// audited per period id: starting a period is the group's creation, stopping
// it is a later row version with StopsAt set.
type DelegationPeriod struct {
	PeriodID     uuid.UUID
	DelegationID domain.DelegationID
	ActorID      domain.ActorID
	DelegatedTo  domain.ActorID
	GridAreaID   domain.GridAreaID
	Process      DelegatedProcess
	StartsAt     time.Time
	StopsAt      *time.Time
}

// DelegationAuditedChange names one tracked delegation property.
type DelegationAuditedChange string

const (
	DelegationChangeStart DelegationAuditedChange = "delegationStart"
	DelegationChangeStop  DelegationAuditedChange = "delegationStop"
)
