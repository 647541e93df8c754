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

// UserRepository reconstructs a user's audit trail from the users temporal
// table and the role-assignment link table. Each assignment link is its own
// group: the link's first row is the assignment, a terminal deletion marker
// is the removal.
type UserRepository struct {
	users       *history.TableSource[models.User]
	assignments *history.TableSource[models.UserRoleAssignment]
}

func NewUserRepository(ctx context.Context, db *sql.DB) (*UserRepository, error) {
	users, err := history.NewTableSource(ctx, db, "users",
		"id, email, status, invitation_expires_at", scanUser)
	if err != nil {
		return nil, fmt.Errorf("user audit source: %w", err)
	}
	assignments, err := history.NewTableSource(ctx, db, "user_role_assignments",
		"link_id, user_id, actor_id, user_role_id", scanAssignment)
	if err != nil {
		return nil, fmt.Errorf("user assignment audit source: %w", err)
	}
	return &UserRepository{users: users, assignments: assignments}, nil
}

// GetAuditLogs concatenates the user's field entries with the assignment
// lifecycles. The combined slice is not re-sorted here; the service layer
// orders merged outputs by (timestamp, sequence).
func (r *UserRepository) GetAuditLogs(ctx context.Context, userID domain.UserID) ([]audit.Entry[models.UserAuditedChange], error) {
	fields, err := audit.NewBuilder(
		r.users.Where("id = $1", uuid.UUID(userID)), userComparers()...,
	).Build(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := audit.NewBuilder(
		r.assignments.Where("user_id = $1", uuid.UUID(userID)), assignmentComparer(),
	).WithGroupKey(func(snap audit.Snapshot[models.UserRoleAssignment]) any {
		return snap.Entity.LinkID
	}).Build(ctx)
	if err != nil {
		return nil, err
	}
	return append(fields, assignments...), nil
}

func userComparers() []audit.Comparer[models.UserAuditedChange, models.User] {
	return []audit.Comparer[models.UserAuditedChange, models.User]{
		{
			Change:  models.UserChangeStatus,
			Policy:  audit.EmitOnCreation,
			Compare: func(u models.User) any { return u.Status },
			Render:  func(u models.User) *string { return ptr(string(u.Status)) },
		},
		{
			// The initial invitation deadline is part of the creation row;
			// extending or clearing it surfaces as a transition.
			Change:  models.UserChangeInvitation,
			Policy:  audit.EmitOnCreation,
			Compare: func(u models.User) any { return timeKey(u.InvitationExpiresAt) },
			Render:  func(u models.User) *string { return timePtr(u.InvitationExpiresAt) },
		},
	}
}

func assignmentComparer() audit.Comparer[models.UserAuditedChange, models.UserRoleAssignment] {
	return audit.Comparer[models.UserAuditedChange, models.UserRoleAssignment]{
		Change: models.UserChangeRoleAssignment,
		Policy: audit.EmitOnCreationAndDeletion,
		// Assignment rows are immutable; the projection only disambiguates
		// links, it never reports interior changes.
		Compare: func(a models.UserRoleAssignment) any { return a.LinkID },
		Render: func(a models.UserRoleAssignment) *string {
			return ptr(fmt.Sprintf("(%s;%s)", a.ActorID, a.UserRoleID))
		},
	}
}

func scanUser(rows *sql.Rows) (audit.Snapshot[models.User], error) {
	var (
		user      models.User
		id        uuid.UUID
		status    string
		invitedTo sql.NullTime
		b         bookkeeping
	)
	err := rows.Scan(&id, &user.Email, &status, &invitedTo,
		&b.periodStart, &b.version, &b.changedBy, &b.deletedBy)
	if err != nil {
		return audit.Snapshot[models.User]{}, err
	}
	user.ID = domain.UserID(id)
	user.Status = models.UserStatus(status)
	if invitedTo.Valid {
		expires := invitedTo.Time.UTC()
		user.InvitationExpiresAt = &expires
	}
	return newSnapshot(user, b), nil
}

func scanAssignment(rows *sql.Rows) (audit.Snapshot[models.UserRoleAssignment], error) {
	var (
		assignment              models.UserRoleAssignment
		userID, actorID, roleID uuid.UUID
		b                       bookkeeping
	)
	err := rows.Scan(&assignment.LinkID, &userID, &actorID, &roleID,
		&b.periodStart, &b.version, &b.changedBy, &b.deletedBy)
	if err != nil {
		return audit.Snapshot[models.UserRoleAssignment]{}, err
	}
	assignment.UserID = domain.UserID(userID)
	assignment.ActorID = domain.ActorID(actorID)
	assignment.UserRoleID = domain.UserRoleID(roleID)
	return newSnapshot(assignment, b), nil
}
