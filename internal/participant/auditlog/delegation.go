package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"markpart/internal/audit"
	"markpart/internal/history"
	"markpart/internal/participant/models"
	"markpart/pkg/domain"
)

// DelegationRepository reconstructs the audit trail of process delegations.
// Each delegation period is its own group: starting it is the group's
// creation, stopping it is a field transition on the same period.
type DelegationRepository struct {
	periods *history.TableSource[models.DelegationPeriod]
}

func NewDelegationRepository(ctx context.Context, db *sql.DB) (*DelegationRepository, error) {
	periods, err := history.NewTableSource(ctx, db, "delegation_periods",
		"id, delegation_id, actor_id, delegated_to, grid_area_id, process, starts_at, stops_at",
		scanDelegationPeriod)
	if err != nil {
		return nil, fmt.Errorf("delegation audit source: %w", err)
	}
	return &DelegationRepository{periods: periods}, nil
}

func (r *DelegationRepository) GetAuditLogs(ctx context.Context, actorID domain.ActorID) ([]audit.Entry[models.DelegationAuditedChange], error) {
	source := r.periods.Where("actor_id = $1", uuid.UUID(actorID))
	return audit.NewBuilder(source, delegationComparers()...).
		WithGroupKey(func(snap audit.Snapshot[models.DelegationPeriod]) any {
			return snap.Entity.PeriodID
		}).
		Build(ctx)
}

// renderPeriod renders the composite audited value "(start;gridArea;process)"
// the reporting layer expects for delegation events.
func renderPeriod(at time.Time, p models.DelegationPeriod) *string {
	return ptr(fmt.Sprintf("(%s;%s;%s)", at.UTC().Format(time.RFC3339), p.GridAreaID, p.Process))
}

func delegationComparers() []audit.Comparer[models.DelegationAuditedChange, models.DelegationPeriod] {
	return []audit.Comparer[models.DelegationAuditedChange, models.DelegationPeriod]{
		{
			Change: models.DelegationChangeStart,
			Policy: audit.EmitOnCreation,
			Compare: func(p models.DelegationPeriod) any {
				return p.StartsAt.UTC().Format(time.RFC3339Nano)
			},
			Render: func(p models.DelegationPeriod) *string {
				return renderPeriod(p.StartsAt, p)
			},
		},
		{
			// A stop is a later row version of the same period with StopsAt
			// set, surfacing as a transition on the stop field. A period row
			// closed out with deleted_by set instead surfaces through the
			// deletion policy, attributed to the stopping identity.
			Change:  models.DelegationChangeStop,
			Policy:  audit.EmitOnDeletion,
			Compare: func(p models.DelegationPeriod) any { return timeKey(p.StopsAt) },
			Render: func(p models.DelegationPeriod) *string {
				if p.StopsAt == nil {
					return nil
				}
				return renderPeriod(*p.StopsAt, p)
			},
		},
	}
}

func scanDelegationPeriod(rows *sql.Rows) (audit.Snapshot[models.DelegationPeriod], error) {
	var (
		period                             models.DelegationPeriod
		delegationID, actorID, delegatedTo uuid.UUID
		gridAreaID                         uuid.UUID
		process                            string
		stopsAt                            sql.NullTime
		b                                  bookkeeping
	)
	err := rows.Scan(&period.PeriodID, &delegationID, &actorID, &delegatedTo,
		&gridAreaID, &process, &period.StartsAt, &stopsAt,
		&b.periodStart, &b.version, &b.changedBy, &b.deletedBy)
	if err != nil {
		return audit.Snapshot[models.DelegationPeriod]{}, err
	}
	period.DelegationID = domain.DelegationID(delegationID)
	period.ActorID = domain.ActorID(actorID)
	period.DelegatedTo = domain.ActorID(delegatedTo)
	period.GridAreaID = domain.GridAreaID(gridAreaID)
	period.Process = models.DelegatedProcess(process)
	period.StartsAt = period.StartsAt.UTC()
	if stopsAt.Valid {
		stop := stopsAt.Time.UTC()
		period.StopsAt = &stop
	}
	return newSnapshot(period, b), nil
}
