// Package audit derives discrete, human-readable change events from streams
// of historical row versions. Feature repositories declare which fields they
// track (see Comparer) and the Builder replays the snapshot sequence into
// creation, change and deletion entries.
package audit

import (
	"time"

	"markpart/pkg/domain"
)

// Snapshot is one full-field capture of an entity at a point in time.
//
// PeriodStart is the instant from which this row version was valid. Version
// is a monotonically assigned discriminator maintained by the write path; it
// breaks ties when rapid sequential writes land on the same instant.
type Snapshot[T any] struct {
	Entity      T
	PeriodStart time.Time
	Version     int64
	ChangedBy   domain.AuditIdentity
	// DeletedBy is set when this row version closed the entity out. Only the
	// terminal row of a group can surface it as a deletion event.
	DeletedBy *domain.AuditIdentity
}

// Entry is a single derived audit event. Produced, never mutated.
type Entry[C comparable] struct {
	Change              C
	Timestamp           time.Time
	AuditIdentity       domain.AuditIdentity
	IsInitialAssignment bool
	CurrentValue        *string
	PreviousValue       *string
	// Sequence is the emission order within one reconstruction. Consumers that
	// sort merged outputs by timestamp must use it as the tie-break key
	// (stable sort on (Timestamp, Sequence)) so simultaneous events keep a
	// deterministic total order.
	Sequence int
}
