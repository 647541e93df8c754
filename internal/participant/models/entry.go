package models

import (
	"sort"
	"time"

	"markpart/pkg/domain"
)

// AuditLogEntry is the flattened, entity-agnostic entry shape served to API
// and reporting consumers. Repositories produce typed entries; the service
// layer flattens and merges them here.
type AuditLogEntry struct {
	Change              string               `json:"change"`
	Timestamp           time.Time            `json:"timestamp"`
	AuditIdentity       domain.AuditIdentity `json:"auditIdentityId"`
	IsInitialAssignment bool                 `json:"isInitialAssignment"`
	CurrentValue        *string              `json:"currentValue"`
	PreviousValue       *string              `json:"previousValue"`
	// Category is set on actor-contact entries only.
	Category ContactCategory `json:"category,omitempty"`
	// Sequence preserves emission order among same-timestamp entries of one
	// reconstruction; SortEntries uses it as the stable tie-break key.
	Sequence int `json:"-"`
}

// SortEntries orders merged entries chronologically. Builders do not re-sort
// across groups or repositories, so any caller combining outputs must apply
// this before serving the result. The sort key is (Timestamp, Sequence);
// entries from different sources with identical timestamps keep their
// concatenation order because the sort is stable.
func SortEntries(entries []AuditLogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Sequence < entries[j].Sequence
		}
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}
