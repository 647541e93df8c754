package domain

import (
	"fmt"

	"github.com/google/uuid"

	dErrors "markpart/pkg/domain-errors"
)

// Typed UUID identifiers for registry entities. Distinct types prevent
// cross-entity assignment at compile time; parsing enforces validity at
// trust boundaries (IDs must be valid, non-nil UUIDs).
type (
	ActorID        uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	UserRoleID     uuid.UUID
	GridAreaID     uuid.UUID
	DelegationID   uuid.UUID
)

func (id ActorID) String() string        { return uuid.UUID(id).String() }
func (id OrganizationID) String() string { return uuid.UUID(id).String() }
func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id UserRoleID) String() string     { return uuid.UUID(id).String() }
func (id GridAreaID) String() string     { return uuid.UUID(id).String() }
func (id DelegationID) String() string   { return uuid.UUID(id).String() }

func (id ActorID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id OrganizationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id UserRoleID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id GridAreaID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid %s id", kind))
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be nil")
	}
	return parsed, nil
}

func ParseActorID(raw string) (ActorID, error) {
	id, err := parseUUID(raw, "actor")
	return ActorID(id), err
}

func ParseOrganizationID(raw string) (OrganizationID, error) {
	id, err := parseUUID(raw, "organization")
	return OrganizationID(id), err
}

func ParseUserID(raw string) (UserID, error) {
	id, err := parseUUID(raw, "user")
	return UserID(id), err
}

func ParseUserRoleID(raw string) (UserRoleID, error) {
	id, err := parseUUID(raw, "user role")
	return UserRoleID(id), err
}

func ParseGridAreaID(raw string) (GridAreaID, error) {
	id, err := parseUUID(raw, "grid area")
	return GridAreaID(id), err
}

func ParseDelegationID(raw string) (DelegationID, error) {
	id, err := parseUUID(raw, "delegation")
	return DelegationID(id), err
}
