// Package auditlog contains the per-entity audit repositories. Each one
// feeds the generic derivation engine with a temporal table source and the
// comparer set for the entity's tracked fields; the contact and user-role
// repositories carry their own specialized reconstruction walks.
package auditlog

import (
	"time"

	"github.com/google/uuid"

	"markpart/internal/audit"
	"markpart/pkg/domain"
)

// bookkeeping are the temporal columns shared by every tracked table,
// scanned after the entity columns.
type bookkeeping struct {
	periodStart time.Time
	version     int64
	changedBy   uuid.UUID
	deletedBy   uuid.NullUUID
}

func newSnapshot[T any](entity T, b bookkeeping) audit.Snapshot[T] {
	snapshot := audit.Snapshot[T]{
		Entity:      entity,
		PeriodStart: b.periodStart.UTC(),
		Version:     b.version,
		ChangedBy:   domain.AuditIdentity(b.changedBy),
	}
	if b.deletedBy.Valid {
		identity := domain.AuditIdentity(b.deletedBy.UUID)
		snapshot.DeletedBy = &identity
	}
	return snapshot
}

func ptr(s string) *string { return &s }

func timePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return ptr(t.UTC().Format(time.RFC3339))
}

// timeKey projects a nullable instant to a comparable value for diffing.
func timeKey(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
