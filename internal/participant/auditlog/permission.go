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

// permissionsSeededAt is the instant the permission lookup rows were seeded.
// The seed migration predates history tracking, so the logical creation of
// every permission is prepended as a synthetic snapshot attributed to the
// migration identity.
var permissionsSeededAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// PermissionRepository reconstructs audit trails for the permission lookup
// table: per-permission description changes, and the registry-wide claim
// catalog where every seeded row is its own creation entry.
type PermissionRepository struct {
	permissions *history.TableSource[models.Permission]
}

func NewPermissionRepository(ctx context.Context, db *sql.DB) (*PermissionRepository, error) {
	permissions, err := history.NewTableSource(ctx, db, "permissions",
		"id, claim, description", scanPermission)
	if err != nil {
		return nil, fmt.Errorf("permission audit source: %w", err)
	}
	return &PermissionRepository{permissions: permissions}, nil
}

// GetAuditLogs derives one permission's audit entries. The claim comparer
// uses a constant projection: it fires once at the (synthetic) creation and
// can never report a change, by construction.
func (r *PermissionRepository) GetAuditLogs(ctx context.Context, permissionID models.PermissionID) ([]audit.Entry[models.PermissionAuditedChange], error) {
	source := r.permissions.Where("id = $1", int(permissionID))
	initial := audit.Snapshot[models.Permission]{
		Entity: models.Permission{
			ID:    permissionID,
			Claim: permissionID.Claim(),
		},
		PeriodStart: permissionsSeededAt,
		ChangedBy:   domain.MigrationIdentity,
	}
	return audit.NewBuilder(source,
		audit.Comparer[models.PermissionAuditedChange, models.Permission]{
			Change:  models.PermissionChangeClaim,
			Policy:  audit.EmitOnCreation,
			Compare: func(models.Permission) any { return permissionID },
			Render:  func(p models.Permission) *string { return ptr(p.Claim) },
		},
		audit.Comparer[models.PermissionAuditedChange, models.Permission]{
			Change:  models.PermissionChangeDescription,
			Policy:  audit.EmitOnChange,
			Compare: func(p models.Permission) any { return p.Description },
			Render:  func(p models.Permission) *string { return ptr(p.Description) },
		},
	).WithInitial(initial).Build(ctx)
}

// ListClaimEntries derives the registry-wide claim catalog: one creation
// entry per seeded row version. Grouping every row under a fresh unique key
// makes each row a singleton group, so diffing is bypassed entirely.
func (r *PermissionRepository) ListClaimEntries(ctx context.Context) ([]audit.Entry[models.PermissionAuditedChange], error) {
	source := r.permissions.Where("deleted_by IS NULL")
	return audit.NewBuilder(source,
		audit.Comparer[models.PermissionAuditedChange, models.Permission]{
			Change:  models.PermissionChangeClaim,
			Policy:  audit.EmitOnCreation,
			Compare: func(p models.Permission) any { return p.Claim },
			Render:  func(p models.Permission) *string { return ptr(p.Claim) },
		},
	).WithGroupKey(func(audit.Snapshot[models.Permission]) any {
		return uuid.New()
	}).Build(ctx)
}

func scanPermission(rows *sql.Rows) (audit.Snapshot[models.Permission], error) {
	var (
		permission models.Permission
		id         int
		b          bookkeeping
	)
	err := rows.Scan(&id, &permission.Claim, &permission.Description,
		&b.periodStart, &b.version, &b.changedBy, &b.deletedBy)
	if err != nil {
		return audit.Snapshot[models.Permission]{}, err
	}
	permission.ID = models.PermissionID(id)
	return newSnapshot(permission, b), nil
}
