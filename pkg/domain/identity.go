package domain

import (
	"github.com/google/uuid"

	dErrors "markpart/pkg/domain-errors"
)

// AuditIdentity identifies who caused a change. It is opaque to the audit
// engine: snapshots carry it and entries pass it through verbatim. It usually
// refers to a user, but well-known identities exist for system actions.
type AuditIdentity uuid.UUID

// Well-known identities for changes not caused by a user.
var (
	// MigrationIdentity marks rows seeded by schema or data migrations.
	MigrationIdentity = AuditIdentity(uuid.MustParse("610de2dd-bb27-4a8a-a6db-7ef49d6a8bc1"))
	// SystemIdentity marks changes performed by background processes.
	SystemIdentity = AuditIdentity(uuid.MustParse("d4edf368-0c5e-41c2-9268-b8e214e15e5f"))
)

func (a AuditIdentity) String() string { return uuid.UUID(a).String() }
func (a AuditIdentity) IsNil() bool    { return uuid.UUID(a) == uuid.Nil }

// MarshalText renders the identity as its canonical UUID string so JSON
// payloads carry "d4edf368-..." rather than a byte array.
func (a AuditIdentity) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AuditIdentity) UnmarshalText(text []byte) error {
	parsed, err := ParseAuditIdentity(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func ParseAuditIdentity(raw string) (AuditIdentity, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return AuditIdentity{}, dErrors.New(dErrors.CodeInvalidInput, "invalid audit identity")
	}
	return AuditIdentity(parsed), nil
}
