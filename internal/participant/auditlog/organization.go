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

// OrganizationRepository reconstructs the audit trail of an organization,
// including the embedded business address fields.
type OrganizationRepository struct {
	organizations *history.TableSource[models.Organization]
}

func NewOrganizationRepository(ctx context.Context, db *sql.DB) (*OrganizationRepository, error) {
	organizations, err := history.NewTableSource(ctx, db, "organizations",
		"id, name, domain, status, address_street_name, address_number, address_zip_code, address_city, address_country",
		scanOrganization)
	if err != nil {
		return nil, fmt.Errorf("organization audit source: %w", err)
	}
	return &OrganizationRepository{organizations: organizations}, nil
}

func (r *OrganizationRepository) GetAuditLogs(ctx context.Context, organizationID domain.OrganizationID) ([]audit.Entry[models.OrganizationAuditedChange], error) {
	source := r.organizations.Where("id = $1", uuid.UUID(organizationID))
	return audit.NewBuilder(source, organizationComparers()...).Build(ctx)
}

func organizationComparers() []audit.Comparer[models.OrganizationAuditedChange, models.Organization] {
	field := func(change models.OrganizationAuditedChange, value func(models.Organization) string) audit.Comparer[models.OrganizationAuditedChange, models.Organization] {
		return audit.Comparer[models.OrganizationAuditedChange, models.Organization]{
			Change:  change,
			Policy:  audit.EmitOnCreation,
			Compare: func(o models.Organization) any { return value(o) },
			Render:  func(o models.Organization) *string { return ptr(value(o)) },
		}
	}
	return []audit.Comparer[models.OrganizationAuditedChange, models.Organization]{
		field(models.OrganizationChangeName, func(o models.Organization) string { return o.Name }),
		field(models.OrganizationChangeDomain, func(o models.Organization) string { return o.Domain }),
		field(models.OrganizationChangeStatus, func(o models.Organization) string { return string(o.Status) }),
		field(models.OrganizationChangeStreetName, func(o models.Organization) string { return o.Address.StreetName }),
		field(models.OrganizationChangeNumber, func(o models.Organization) string { return o.Address.Number }),
		field(models.OrganizationChangeZipCode, func(o models.Organization) string { return o.Address.ZipCode }),
		field(models.OrganizationChangeCity, func(o models.Organization) string { return o.Address.City }),
		field(models.OrganizationChangeCountry, func(o models.Organization) string { return o.Address.Country }),
	}
}

func scanOrganization(rows *sql.Rows) (audit.Snapshot[models.Organization], error) {
	var (
		org    models.Organization
		id     uuid.UUID
		status string
		b      bookkeeping
	)
	err := rows.Scan(&id, &org.Name, &org.Domain, &status,
		&org.Address.StreetName, &org.Address.Number, &org.Address.ZipCode,
		&org.Address.City, &org.Address.Country,
		&b.periodStart, &b.version, &b.changedBy, &b.deletedBy)
	if err != nil {
		return audit.Snapshot[models.Organization]{}, err
	}
	org.ID = domain.OrganizationID(id)
	org.Status = models.OrganizationStatus(status)
	return newSnapshot(org, b), nil
}
