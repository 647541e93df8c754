// Package models holds the market-participant registry entities tracked by
// the audit subsystem, their audited-change kinds, and the flattened entry
// shape served to consumers.
package models

import (
	"time"

	"markpart/pkg/domain"
)

// ActorStatus is the lifecycle state of a market actor.
type ActorStatus string

const (
	ActorStatusNew      ActorStatus = "New"
	ActorStatusActive   ActorStatus = "Active"
	ActorStatusInactive ActorStatus = "Inactive"
	ActorStatusPassive  ActorStatus = "Passive"
)

// Actor is one row version of a market actor as stored in the temporal
// actors table.
type Actor struct {
	ID             domain.ActorID
	OrganizationID domain.OrganizationID
	Name           string
	Status         ActorStatus
	// CredentialsExpiresAt is the expiry of the actor's client secret
	// credentials, nil when no credentials are assigned.
	CredentialsExpiresAt *time.Time
}

// ActorAuditedChange names one tracked actor property.
type ActorAuditedChange string

const (
	ActorChangeName              ActorAuditedChange = "name"
	ActorChangeStatus            ActorAuditedChange = "status"
	ActorChangeSecretCredentials ActorAuditedChange = "secretCredentials"
)
