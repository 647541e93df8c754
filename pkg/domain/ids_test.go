package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "markpart/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseActorID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseActorID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseActorID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseActorID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, ActorID(validUUID), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	actorID := ActorID(uuid.New())
	userID := UserID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ ActorID = userID   // compile error
	// var _ UserID = actorID   // compile error

	// Verify they're distinct at runtime too
	assert.NotEqual(t, uuid.UUID(actorID), uuid.UUID(userID))
}

// TestParseID_SecurityInvariants validates security-critical parsing rules.
//
// Parsing must reject attack vectors at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Attack vectors
		{"SQL injection attempt", "'; DROP TABLE actors;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400​-e29b-41d4-a716-446655440000", true},

		// Edge cases
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},

		// Valid
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseActorID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures all ID types have identical parsing behavior.
//
// Inconsistent validation across ID types could create security holes.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errActor := ParseActorID(validUUID)
		_, errOrganization := ParseOrganizationID(validUUID)
		_, errUser := ParseUserID(validUUID)
		_, errUserRole := ParseUserRoleID(validUUID)
		_, errGridArea := ParseGridAreaID(validUUID)
		_, errDelegation := ParseDelegationID(validUUID)

		require.NoError(t, errActor)
		require.NoError(t, errOrganization)
		require.NoError(t, errUser)
		require.NoError(t, errUserRole)
		require.NoError(t, errGridArea)
		require.NoError(t, errDelegation)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errActor := ParseActorID(input)
			_, errOrganization := ParseOrganizationID(input)
			_, errUser := ParseUserID(input)
			_, errUserRole := ParseUserRoleID(input)
			_, errGridArea := ParseGridAreaID(input)
			_, errDelegation := ParseDelegationID(input)

			require.Error(t, errActor)
			require.Error(t, errOrganization)
			require.Error(t, errUser)
			require.Error(t, errUserRole)
			require.Error(t, errGridArea)
			require.Error(t, errDelegation)
		})
	}
}

func TestAuditIdentity_TextRoundTrip(t *testing.T) {
	identity := AuditIdentity(uuid.New())

	text, err := identity.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, identity.String(), string(text))

	var parsed AuditIdentity
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, identity, parsed)
}
