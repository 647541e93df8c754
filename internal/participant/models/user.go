package models

import (
	"time"

	"github.com/google/uuid"

	"markpart/pkg/domain"
)

// UserStatus is the lifecycle state of a user.
type UserStatus string

const (
	UserStatusInvited           UserStatus = "Invited"
	UserStatusInvitationExpired UserStatus = "InvitationExpired"
	UserStatusActive            UserStatus = "Active"
	UserStatusInactive          UserStatus = "Inactive"
)

// User is one row version of a user as stored in the temporal users table.
type User struct {
	ID     domain.UserID
	Email  string
	Status UserStatus
	// InvitationExpiresAt is the deadline of the pending invitation, nil
	// once the user has accepted or the invitation was never extended.
	InvitationExpiresAt *time.Time
}

// UserRoleAssignment is one row version of the link assigning a user role to
// a user within an actor. Assignments are created and removed as whole rows;
// the audit trail for a user is therefore a stream of assignment lifecycles,
// one group per link.
type UserRoleAssignment struct {
	LinkID     uuid.UUID
	UserID     domain.UserID
	ActorID    domain.ActorID
	UserRoleID domain.UserRoleID
}

// UserAuditedChange names one tracked user property.
type UserAuditedChange string

const (
	UserChangeStatus         UserAuditedChange = "status"
	UserChangeInvitation     UserAuditedChange = "invitationExpiresAt"
	UserChangeRoleAssignment UserAuditedChange = "userRoleAssignment"
)
