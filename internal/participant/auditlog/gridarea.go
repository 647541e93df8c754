package auditlog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"markpart/internal/audit"
	"markpart/internal/history"
	"markpart/internal/participant/models"
	"markpart/pkg/domain"
)

// GridAreaRepository reconstructs the audit trail of a grid area.
type GridAreaRepository struct {
	gridAreas *history.TableSource[models.GridArea]
}

func NewGridAreaRepository(ctx context.Context, db *sql.DB) (*GridAreaRepository, error) {
	gridAreas, err := history.NewTableSource(ctx, db, "grid_areas", "id, code, name", scanGridArea)
	if err != nil {
		return nil, fmt.Errorf("grid area audit source: %w", err)
	}
	return &GridAreaRepository{gridAreas: gridAreas}, nil
}

func (r *GridAreaRepository) GetAuditLogs(ctx context.Context, gridAreaID domain.GridAreaID) ([]audit.Entry[models.GridAreaAuditedChange], error) {
	source := r.gridAreas.Where("id = $1", uuid.UUID(gridAreaID))
	return audit.NewBuilder(source,
		audit.Comparer[models.GridAreaAuditedChange, models.GridArea]{
			Change:  models.GridAreaChangeName,
			Policy:  audit.EmitOnCreation,
			Compare: func(g models.GridArea) any { return g.Name },
			Render:  func(g models.GridArea) *string { return ptr(g.Name) },
		},
	).Build(ctx)
}

func scanGridArea(rows *sql.Rows) (audit.Snapshot[models.GridArea], error) {
	var (
		gridArea models.GridArea
		id       uuid.UUID
		b        bookkeeping
	)
	err := rows.Scan(&id, &gridArea.Code, &gridArea.Name,
		&b.periodStart, &b.version, &b.changedBy, &b.deletedBy)
	if err != nil {
		return audit.Snapshot[models.GridArea]{}, err
	}
	gridArea.ID = domain.GridAreaID(id)
	return newSnapshot(gridArea, b), nil
}
