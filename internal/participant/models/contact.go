package models

import (
	"time"

	"github.com/google/uuid"

	"markpart/pkg/domain"
)

// ContactCategory scopes an actor contact. Categories live independent
// lifecycles: a contact can be removed in one category and later recreated
// there while another category's history is untouched.
type ContactCategory string

const (
	ContactCategoryDefault           ContactCategory = "Default"
	ContactCategoryCharges           ContactCategory = "Charges"
	ContactCategoryElectricalHeating ContactCategory = "ElectricalHeating"
	ContactCategoryEndOfSupply       ContactCategory = "EndOfSupply"
	ContactCategoryReminder          ContactCategory = "Reminder"
	ContactCategoryMeasurementData   ContactCategory = "MeasurementData"
	ContactCategoryRecon             ContactCategory = "Reconciliation"
	ContactCategoryNotification      ContactCategory = "Notification"
)

// ActorContact is one row version of a communications contact. All
// categories of one actor share a single flat temporal stream. Removing a
// contact and recreating it in the same category produces a fresh ContactID,
// so the id tells contact incarnations apart where the category cannot.
type ActorContact struct {
	ContactID uuid.UUID
	ActorID   domain.ActorID
	Category  ContactCategory
	Name      string
	Email     string
	Phone     string
}

// ActorContactAuditLogEntry is a contact audit entry tagged with the
// category it belongs to.
type ActorContactAuditLogEntry struct {
	Change              ActorContactAuditedChange
	Timestamp           time.Time
	AuditIdentity       domain.AuditIdentity
	IsInitialAssignment bool
	CurrentValue        *string
	PreviousValue       *string
	Category            ContactCategory
	Sequence            int
}

// ActorContactAuditedChange names one tracked contact property or lifecycle
// event.
type ActorContactAuditedChange string

const (
	ContactChangeCreated ActorContactAuditedChange = "contactCreated"
	ContactChangeDeleted ActorContactAuditedChange = "contactDeleted"
	ContactChangeName    ActorContactAuditedChange = "contactName"
	ContactChangeEmail   ActorContactAuditedChange = "contactEmail"
	ContactChangePhone   ActorContactAuditedChange = "contactPhone"
)
