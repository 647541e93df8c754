package models

import "strconv"

// PermissionID identifies a permission. Identifiers are stable integers;
// claims are the human-readable rendition used in audited values.
type PermissionID int

const (
	PermissionActorsManage        PermissionID = 1
	PermissionOrganizationsView   PermissionID = 2
	PermissionOrganizationsManage PermissionID = 3
	PermissionGridAreasManage     PermissionID = 4
	PermissionUsersView           PermissionID = 5
	PermissionUsersManage         PermissionID = 6
	PermissionUserRolesManage     PermissionID = 7
	PermissionDelegationsManage   PermissionID = 8
	PermissionAuditLogView        PermissionID = 9
)

var permissionClaims = map[PermissionID]string{
	PermissionActorsManage:        "actors:manage",
	PermissionOrganizationsView:   "organizations:view",
	PermissionOrganizationsManage: "organizations:manage",
	PermissionGridAreasManage:     "grid-areas:manage",
	PermissionUsersView:           "users:view",
	PermissionUsersManage:         "users:manage",
	PermissionUserRolesManage:     "user-roles:manage",
	PermissionDelegationsManage:   "delegations:manage",
	PermissionAuditLogView:        "audit-log:view",
}

// Claim returns the claim string for the permission, falling back to the
// numeric id for permissions introduced after this build.
func (p PermissionID) Claim() string {
	if claim, ok := permissionClaims[p]; ok {
		return claim
	}
	return strconv.Itoa(int(p))
}

// Permission is one row version of a permission lookup entry. The claim is
// fixed at seed time; only the description is mutable.
type Permission struct {
	ID          PermissionID
	Claim       string
	Description string
}

// PermissionAuditedChange names one tracked permission property.
type PermissionAuditedChange string

const (
	PermissionChangeClaim       PermissionAuditedChange = "claim"
	PermissionChangeDescription PermissionAuditedChange = "description"
)
