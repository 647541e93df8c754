package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"markpart/internal/audit"
	"markpart/internal/history"
	"markpart/internal/participant/models"
	"markpart/pkg/domain"
)

// ContactRepository reconstructs Created / field-changed / Deleted events
// for actor contacts.
//
// Contacts cannot use the generic builder: one actor's contacts across all
// categories share a single flat temporal stream, and each category lives an
// independent lifecycle (a category can be closed out and later recreated
// while another category's history continues untouched). A global prev/curr
// walk would pair rows across categories, so this repository performs
// explicit category-scoped backward and forward scans instead.
type ContactRepository struct {
	contacts *history.TableSource[models.ActorContact]
}

func NewContactRepository(ctx context.Context, db *sql.DB) (*ContactRepository, error) {
	contacts, err := history.NewTableSource(ctx, db, "actor_contacts",
		"id, actor_id, category, name, email, phone", scanContact)
	if err != nil {
		return nil, fmt.Errorf("contact audit source: %w", err)
	}
	return &ContactRepository{contacts: contacts}, nil
}

// contactField is one tracked contact field. The declaration order fixes the
// emission order of simultaneous initial-value events.
type contactField struct {
	change models.ActorContactAuditedChange
	value  func(models.ActorContact) string
}

func contactFields() []contactField {
	return []contactField{
		{models.ContactChangeName, func(c models.ActorContact) string { return c.Name }},
		{models.ContactChangeEmail, func(c models.ActorContact) string { return c.Email }},
		{models.ContactChangePhone, func(c models.ActorContact) string { return c.Phone }},
	}
}

// GetAuditLogs derives the contact audit trail for one actor, sorted
// ascending by (timestamp, emission sequence).
func (r *ContactRepository) GetAuditLogs(ctx context.Context, actorID domain.ActorID) ([]models.ActorContactAuditLogEntry, error) {
	rows, err := r.contacts.Where("actor_id = $1", uuid.UUID(actorID)).ReadChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("read contact history: %w", err)
	}
	return deriveContactEntries(rows), nil
}

func deriveContactEntries(rows []audit.Snapshot[models.ActorContact]) []models.ActorContactAuditLogEntry {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PeriodStart.Equal(rows[j].PeriodStart) {
			return rows[i].Version < rows[j].Version
		}
		return rows[i].PeriodStart.Before(rows[j].PeriodStart)
	})

	var entries []models.ActorContactAuditLogEntry
	seq := 0
	emit := func(e models.ActorContactAuditLogEntry) {
		e.Sequence = seq
		seq++
		entries = append(entries, e)
	}

	seen := make(map[models.ContactCategory]struct{})
	for i, row := range rows {
		contact := row.Entity

		previous := contact
		for j := i - 1; j >= 0; j-- {
			if rows[j].Entity.Category == contact.Category {
				previous = rows[j].Entity
				break
			}
		}

		if _, ok := seen[contact.Category]; !ok {
			seen[contact.Category] = struct{}{}
			emit(models.ActorContactAuditLogEntry{
				Change:              models.ContactChangeCreated,
				Timestamp:           row.PeriodStart,
				AuditIdentity:       row.ChangedBy,
				IsInitialAssignment: true,
				CurrentValue:        ptr(fmt.Sprintf("(%s;%s;%s)", contact.Name, contact.Email, contact.Phone)),
				Category:            contact.Category,
			})
			// The initial value of every tracked field is emitted alongside
			// the creation. All share the row's timestamp; the emission
			// sequence keeps their total order deterministic.
			for _, field := range contactFields() {
				emit(models.ActorContactAuditLogEntry{
					Change:              field.change,
					Timestamp:           row.PeriodStart,
					AuditIdentity:       row.ChangedBy,
					IsInitialAssignment: true,
					CurrentValue:        ptr(field.value(contact)),
					Category:            contact.Category,
				})
			}
			continue
		}

		// A deletion marker closes out a contact incarnation: the category
		// leaves the seen set so a later row there is a fresh creation, not
		// a diff partner of rows from before the closure.
		if row.DeletedBy != nil && lastForContact(rows, i) {
			emit(models.ActorContactAuditLogEntry{
				Change:        models.ContactChangeDeleted,
				Timestamp:     row.PeriodStart,
				AuditIdentity: *row.DeletedBy,
				Category:      contact.Category,
			})
			delete(seen, contact.Category)
			continue
		}

		for _, field := range contactFields() {
			if field.value(previous) == field.value(contact) {
				continue
			}
			emit(models.ActorContactAuditLogEntry{
				Change:        field.change,
				Timestamp:     row.PeriodStart,
				AuditIdentity: row.ChangedBy,
				CurrentValue:  ptr(field.value(contact)),
				PreviousValue: ptr(field.value(previous)),
				Category:      contact.Category,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Sequence < entries[j].Sequence
		}
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries
}

// lastForContact reports whether no later row belongs to the same contact
// incarnation. A deletion marker on a non-terminal row (possible only after
// a data repair) is intentionally not surfaced.
func lastForContact(rows []audit.Snapshot[models.ActorContact], i int) bool {
	for j := i + 1; j < len(rows); j++ {
		if rows[j].Entity.ContactID == rows[i].Entity.ContactID {
			return false
		}
	}
	return true
}

func scanContact(rows *sql.Rows) (audit.Snapshot[models.ActorContact], error) {
	var (
		contact  models.ActorContact
		actorID  uuid.UUID
		category string
		b        bookkeeping
	)
	err := rows.Scan(&contact.ContactID, &actorID, &category,
		&contact.Name, &contact.Email, &contact.Phone,
		&b.periodStart, &b.version, &b.changedBy, &b.deletedBy)
	if err != nil {
		return audit.Snapshot[models.ActorContact]{}, err
	}
	contact.ActorID = domain.ActorID(actorID)
	contact.Category = models.ContactCategory(category)
	return newSnapshot(contact, b), nil
}
