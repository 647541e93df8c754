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

// ActorRepository reconstructs the audit trail of a market actor's tracked
// fields from the actors temporal table pair.
type ActorRepository struct {
	actors *history.TableSource[models.Actor]
}

func NewActorRepository(ctx context.Context, db *sql.DB) (*ActorRepository, error) {
	actors, err := history.NewTableSource(ctx, db, "actors",
		"id, organization_id, name, status, credentials_expires_at", scanActor)
	if err != nil {
		return nil, fmt.Errorf("actor audit source: %w", err)
	}
	return &ActorRepository{actors: actors}, nil
}

// GetAuditLogs derives the actor's field-level audit entries, oldest first
// within each tracked field's lifecycle.
func (r *ActorRepository) GetAuditLogs(ctx context.Context, actorID domain.ActorID) ([]audit.Entry[models.ActorAuditedChange], error) {
	source := r.actors.Where("id = $1", uuid.UUID(actorID))
	return audit.NewBuilder(source, actorComparers()...).Build(ctx)
}

func actorComparers() []audit.Comparer[models.ActorAuditedChange, models.Actor] {
	return []audit.Comparer[models.ActorAuditedChange, models.Actor]{
		{
			Change:  models.ActorChangeName,
			Policy:  audit.EmitOnCreation,
			Compare: func(a models.Actor) any { return a.Name },
			Render:  func(a models.Actor) *string { return ptr(a.Name) },
		},
		{
			Change:  models.ActorChangeStatus,
			Policy:  audit.EmitOnCreation,
			Compare: func(a models.Actor) any { return a.Status },
			Render:  func(a models.Actor) *string { return ptr(string(a.Status)) },
		},
		{
			// Credentials are audited by their expiry; nil means none
			// assigned. Rotation surfaces as a value transition; the
			// lifecycle policy additionally surfaces credentials present
			// at actor creation and credentials lost when the actor is
			// closed out, the latter attributed to the deleting identity.
			Change:  models.ActorChangeSecretCredentials,
			Policy:  audit.EmitOnCreationAndDeletion,
			Compare: func(a models.Actor) any { return timeKey(a.CredentialsExpiresAt) },
			Render:  func(a models.Actor) *string { return timePtr(a.CredentialsExpiresAt) },
		},
	}
}

func scanActor(rows *sql.Rows) (audit.Snapshot[models.Actor], error) {
	var (
		actor       models.Actor
		id, orgID   uuid.UUID
		status      string
		credExpires sql.NullTime
		b           bookkeeping
	)
	err := rows.Scan(&id, &orgID, &actor.Name, &status, &credExpires,
		&b.periodStart, &b.version, &b.changedBy, &b.deletedBy)
	if err != nil {
		return audit.Snapshot[models.Actor]{}, err
	}
	actor.ID = domain.ActorID(id)
	actor.OrganizationID = domain.OrganizationID(orgID)
	actor.Status = models.ActorStatus(status)
	if credExpires.Valid {
		expires := credExpires.Time.UTC()
		actor.CredentialsExpiresAt = &expires
	}
	return newSnapshot(actor, b), nil
}
