package models

import "markpart/pkg/domain"

// OrganizationStatus is the lifecycle state of an organization.
type OrganizationStatus string

const (
	OrganizationStatusNew     OrganizationStatus = "New"
	OrganizationStatusActive  OrganizationStatus = "Active"
	OrganizationStatusBlocked OrganizationStatus = "Blocked"
	OrganizationStatusDeleted OrganizationStatus = "Deleted"
)

// Address is the registered business address embedded in an organization row.
type Address struct {
	StreetName string
	Number     string
	ZipCode    string
	City       string
	Country    string
}

// Organization is one row version of an organization as stored in the
// temporal organizations table.
type Organization struct {
	ID      domain.OrganizationID
	Name    string
	Domain  string
	Status  OrganizationStatus
	Address Address
}

// OrganizationAuditedChange names one tracked organization property.
type OrganizationAuditedChange string

const (
	OrganizationChangeName       OrganizationAuditedChange = "name"
	OrganizationChangeDomain     OrganizationAuditedChange = "domain"
	OrganizationChangeStatus     OrganizationAuditedChange = "status"
	OrganizationChangeStreetName OrganizationAuditedChange = "addressStreetName"
	OrganizationChangeNumber     OrganizationAuditedChange = "addressNumber"
	OrganizationChangeZipCode    OrganizationAuditedChange = "addressZipCode"
	OrganizationChangeCity       OrganizationAuditedChange = "addressCity"
	OrganizationChangeCountry    OrganizationAuditedChange = "addressCountry"
)
