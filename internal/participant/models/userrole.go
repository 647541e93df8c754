package models

import (
	"time"

	"markpart/pkg/domain"
)

// UserRoleStatus is the lifecycle state of a user role.
type UserRoleStatus string

const (
	UserRoleStatusActive   UserRoleStatus = "Active"
	UserRoleStatusInactive UserRoleStatus = "Inactive"
)

// UserRole is one row version of a user role as stored in the temporal
// user_roles table. CreatedAt is the role's own creation instant; permission
// links whose period starts exactly there constitute the role's
// created-with permission set.
type UserRole struct {
	ID          domain.UserRoleID
	Name        string
	Description string
	Status      UserRoleStatus
	CreatedAt   time.Time
}

// PermissionAssignment is one row of a role-to-permission link, drawn from
// either the live user_role_permissions table or the append-only
// user_role_permission_history table.
type PermissionAssignment struct {
	UserRoleID  domain.UserRoleID
	Permission  PermissionID
	PeriodStart time.Time
	PeriodEnd   *time.Time
	ChangedBy   domain.AuditIdentity
	DeletedBy   *domain.AuditIdentity
}

// UserRoleAuditedChange names one tracked user-role property.
type UserRoleAuditedChange string

const (
	UserRoleChangeName        UserRoleAuditedChange = "name"
	UserRoleChangeDescription UserRoleAuditedChange = "description"
	UserRoleChangeStatus      UserRoleAuditedChange = "status"
	// UserRoleChangeCreated is the synthetic created-with-permissions entry.
	UserRoleChangeCreated UserRoleAuditedChange = "created"
	// UserRoleChangePermissions is one atomic permission-set transition.
	UserRoleChangePermissions UserRoleAuditedChange = "permissionsChange"
)

// UserRoleAuditLogEntry is an audit entry for a user role. For Created and
// PermissionsChange entries, Permissions carries the complete permission set
// valid from Timestamp on: full resulting sets, never deltas, so consumers
// can answer "what were the permissions at time T" without replaying.
type UserRoleAuditLogEntry struct {
	Change              UserRoleAuditedChange
	Timestamp           time.Time
	AuditIdentity       domain.AuditIdentity
	IsInitialAssignment bool
	CurrentValue        *string
	PreviousValue       *string
	Permissions         []PermissionID
}
