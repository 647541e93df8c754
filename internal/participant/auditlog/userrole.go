package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"markpart/internal/audit"
	"markpart/internal/history"
	"markpart/internal/participant/models"
	"markpart/pkg/domain"
	pkgstrings "markpart/pkg/platform/strings"
)

// UserRoleRepository reconstructs the audit trail of a user role: tracked
// field changes through the generic builder, and the permission-set timeline
// by merging the live role-to-permission link table with the append-only
// permission history table.
type UserRoleRepository struct {
	db    *sql.DB
	roles *history.TableSource[models.UserRole]
}

func NewUserRoleRepository(ctx context.Context, db *sql.DB) (*UserRoleRepository, error) {
	roles, err := history.NewTableSource(ctx, db, "user_roles",
		"id, name, description, status, created_at", scanUserRole)
	if err != nil {
		return nil, fmt.Errorf("user role audit source: %w", err)
	}
	return &UserRoleRepository{db: db, roles: roles}, nil
}

// GetAuditLogs derives the role's field-level audit entries.
func (r *UserRoleRepository) GetAuditLogs(ctx context.Context, roleID domain.UserRoleID) ([]audit.Entry[models.UserRoleAuditedChange], error) {
	source := r.roles.Where("id = $1", uuid.UUID(roleID))
	return audit.NewBuilder(source, userRoleComparers()...).Build(ctx)
}

// GetPermissionAuditLogs reconstructs the role's permission-set timeline.
//
// Every entry carries the complete permission set valid from its instant on,
// never a delta: the consuming report always wants "what were the
// permissions at time T" without replaying. The synthetic Created entry is
// appended at the END of the returned slice; the caller assembling the full
// role audit log re-merges it into first position by change kind. That
// re-merge is an explicit caller step, not an ordering guarantee here.
func (r *UserRoleRepository) GetPermissionAuditLogs(ctx context.Context, roleID domain.UserRoleID) ([]models.UserRoleAuditLogEntry, error) {
	role, ok, err := r.earliestRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	assignments, err := r.readAssignments(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return derivePermissionEntries(role, assignments), nil
}

func derivePermissionEntries(role audit.Snapshot[models.UserRole], assignments []models.PermissionAssignment) []models.UserRoleAuditLogEntry {
	// Links whose period starts exactly at the role's creation instant are
	// the "created with permissions" state, not later transitions.
	var createdWith, rest []models.PermissionAssignment
	for _, a := range assignments {
		if a.PeriodStart.Equal(role.Entity.CreatedAt) {
			createdWith = append(createdWith, a)
		} else {
			rest = append(rest, a)
		}
	}
	sort.Slice(createdWith, func(i, j int) bool { return createdWith[i].Permission < createdWith[j].Permission })

	createdIdentity := role.ChangedBy
	if len(createdWith) > 0 {
		createdIdentity = createdWith[0].ChangedBy
	}
	currentSet := permissionSet(nil, nil, createdWith)

	// Rows sharing a period start are one atomic permission-set
	// transaction; fold them group by group, oldest first.
	groupKeys := make([]time.Time, 0)
	groups := make(map[int64][]models.PermissionAssignment)
	for _, a := range rest {
		key := a.PeriodStart.UnixNano()
		if _, seen := groups[key]; !seen {
			groupKeys = append(groupKeys, a.PeriodStart)
		}
		groups[key] = append(groups[key], a)
	}
	sort.Slice(groupKeys, func(i, j int) bool { return groupKeys[i].Before(groupKeys[j]) })

	var entries []models.UserRoleAuditLogEntry
	for _, at := range groupKeys {
		group := groups[at.UnixNano()]

		var added, removed []models.PermissionAssignment
		for _, a := range group {
			if a.DeletedBy != nil {
				removed = append(removed, a)
			} else {
				added = append(added, a)
			}
		}
		previousSet := currentSet
		currentSet = permissionSet(currentSet, removed, added)

		identity := group[0].ChangedBy
		if group[0].DeletedBy != nil {
			identity = *group[0].DeletedBy
		}
		entries = append(entries, models.UserRoleAuditLogEntry{
			Change:        models.UserRoleChangePermissions,
			Timestamp:     at,
			AuditIdentity: identity,
			CurrentValue:  ptr(renderPermissions(currentSet)),
			PreviousValue: ptr(renderPermissions(previousSet)),
			Permissions:   currentSet,
		})
	}

	entries = append(entries, models.UserRoleAuditLogEntry{
		Change:              models.UserRoleChangeCreated,
		Timestamp:           role.Entity.CreatedAt,
		AuditIdentity:       createdIdentity,
		IsInitialAssignment: true,
		CurrentValue:        ptr(renderPermissions(permissionSet(nil, nil, createdWith))),
		Permissions:         permissionSet(nil, nil, createdWith),
	})
	return entries
}

// permissionSet folds one transaction: previous minus removed, plus added.
// Additions are idempotent because the same logical link can surface from
// both source tables. The previous order is preserved; new ids append in
// ascending order so repeated reconstructions are identical.
func permissionSet(previous []models.PermissionID, removed, added []models.PermissionAssignment) []models.PermissionID {
	dropped := make(map[models.PermissionID]struct{}, len(removed))
	for _, a := range removed {
		dropped[a.Permission] = struct{}{}
	}
	next := make([]models.PermissionID, 0, len(previous)+len(added))
	present := make(map[models.PermissionID]struct{})
	for _, p := range previous {
		if _, gone := dropped[p]; gone {
			continue
		}
		next = append(next, p)
		present[p] = struct{}{}
	}
	toAdd := make([]models.PermissionID, 0, len(added))
	for _, a := range added {
		if _, ok := present[a.Permission]; ok {
			continue
		}
		present[a.Permission] = struct{}{}
		toAdd = append(toAdd, a.Permission)
	}
	sort.Slice(toAdd, func(i, j int) bool { return toAdd[i] < toAdd[j] })
	return append(next, toAdd...)
}

func renderPermissions(set []models.PermissionID) string {
	claims := make([]string, 0, len(set))
	for _, p := range set {
		claims = append(claims, p.Claim())
	}
	return strings.Join(pkgstrings.DedupeAndTrim(claims), ", ")
}

// earliestRole returns the role's oldest snapshot; ok is false when the role
// has no history at all (an empty audit log, not an error).
func (r *UserRoleRepository) earliestRole(ctx context.Context, roleID domain.UserRoleID) (audit.Snapshot[models.UserRole], bool, error) {
	snapshots, err := r.roles.Where("id = $1", uuid.UUID(roleID)).ReadChanges(ctx)
	if err != nil {
		return audit.Snapshot[models.UserRole]{}, false, fmt.Errorf("read role history: %w", err)
	}
	if len(snapshots) == 0 {
		return audit.Snapshot[models.UserRole]{}, false, nil
	}
	earliest := snapshots[0]
	for _, s := range snapshots[1:] {
		if s.PeriodStart.Before(earliest.PeriodStart) ||
			(s.PeriodStart.Equal(earliest.PeriodStart) && s.Version < earliest.Version) {
			earliest = s
		}
	}
	return earliest, true, nil
}

// readAssignments fetches both link tables in parallel and concatenates
// them. Rows with a null deleted_by are additions at their period start;
// rows with it set are removals at theirs.
func (r *UserRoleRepository) readAssignments(ctx context.Context, roleID domain.UserRoleID) ([]models.PermissionAssignment, error) {
	read := func(ctx context.Context, table string) ([]models.PermissionAssignment, error) {
		query := fmt.Sprintf(
			`SELECT user_role_id, permission_id, period_start, period_end, changed_by, deleted_by FROM %s WHERE user_role_id = $1`,
			table,
		)
		rows, err := r.db.QueryContext(ctx, query, uuid.UUID(roleID))
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", table, err)
		}
		defer rows.Close()

		var assignments []models.PermissionAssignment
		for rows.Next() {
			a, err := scanAssignmentRow(rows)
			if err != nil {
				return nil, fmt.Errorf("scan %s row: %w", table, err)
			}
			assignments = append(assignments, a)
		}
		return assignments, rows.Err()
	}

	var active, historical []models.PermissionAssignment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		active, err = read(gctx, "user_role_permissions")
		return err
	})
	g.Go(func() (err error) {
		historical, err = read(gctx, "user_role_permission_history")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(active, historical...), nil
}

func userRoleComparers() []audit.Comparer[models.UserRoleAuditedChange, models.UserRole] {
	return []audit.Comparer[models.UserRoleAuditedChange, models.UserRole]{
		{
			Change:  models.UserRoleChangeName,
			Policy:  audit.EmitOnCreation,
			Compare: func(u models.UserRole) any { return u.Name },
			Render:  func(u models.UserRole) *string { return ptr(u.Name) },
		},
		{
			Change:  models.UserRoleChangeDescription,
			Policy:  audit.EmitOnCreation,
			Compare: func(u models.UserRole) any { return u.Description },
			Render:  func(u models.UserRole) *string { return ptr(u.Description) },
		},
		{
			Change:  models.UserRoleChangeStatus,
			Policy:  audit.EmitOnCreation,
			Compare: func(u models.UserRole) any { return u.Status },
			Render:  func(u models.UserRole) *string { return ptr(string(u.Status)) },
		},
	}
}

func scanUserRole(rows *sql.Rows) (audit.Snapshot[models.UserRole], error) {
	var (
		role   models.UserRole
		id     uuid.UUID
		status string
		b      bookkeeping
	)
	err := rows.Scan(&id, &role.Name, &role.Description, &status, &role.CreatedAt,
		&b.periodStart, &b.version, &b.changedBy, &b.deletedBy)
	if err != nil {
		return audit.Snapshot[models.UserRole]{}, err
	}
	role.ID = domain.UserRoleID(id)
	role.Status = models.UserRoleStatus(status)
	role.CreatedAt = role.CreatedAt.UTC()
	return newSnapshot(role, b), nil
}

func scanAssignmentRow(rows *sql.Rows) (models.PermissionAssignment, error) {
	var (
		a          models.PermissionAssignment
		roleID     uuid.UUID
		permission int
		periodEnd  sql.NullTime
		changedBy  uuid.UUID
		deletedBy  uuid.NullUUID
	)
	err := rows.Scan(&roleID, &permission, &a.PeriodStart, &periodEnd, &changedBy, &deletedBy)
	if err != nil {
		return models.PermissionAssignment{}, err
	}
	a.UserRoleID = domain.UserRoleID(roleID)
	a.Permission = models.PermissionID(permission)
	a.PeriodStart = a.PeriodStart.UTC()
	if periodEnd.Valid {
		end := periodEnd.Time.UTC()
		a.PeriodEnd = &end
	}
	a.ChangedBy = domain.AuditIdentity(changedBy)
	if deletedBy.Valid {
		identity := domain.AuditIdentity(deletedBy.UUID)
		a.DeletedBy = &identity
	}
	return a, nil
}
