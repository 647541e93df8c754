// Package service assembles entity audit logs from the typed repositories:
// it merges per-source entries, flattens them to the serving shape, and
// caches the result.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"markpart/internal/audit"
	"markpart/internal/participant/cache"
	"markpart/internal/participant/metrics"
	"markpart/internal/participant/models"
	"markpart/pkg/domain"
)

// Per-entity repository contracts. The auditlog package provides the SQL
// implementations; tests substitute in-memory ones.
type (
	ActorAuditSource interface {
		GetAuditLogs(ctx context.Context, actorID domain.ActorID) ([]audit.Entry[models.ActorAuditedChange], error)
	}
	ContactAuditSource interface {
		GetAuditLogs(ctx context.Context, actorID domain.ActorID) ([]models.ActorContactAuditLogEntry, error)
	}
	OrganizationAuditSource interface {
		GetAuditLogs(ctx context.Context, organizationID domain.OrganizationID) ([]audit.Entry[models.OrganizationAuditedChange], error)
	}
	GridAreaAuditSource interface {
		GetAuditLogs(ctx context.Context, gridAreaID domain.GridAreaID) ([]audit.Entry[models.GridAreaAuditedChange], error)
	}
	DelegationAuditSource interface {
		GetAuditLogs(ctx context.Context, actorID domain.ActorID) ([]audit.Entry[models.DelegationAuditedChange], error)
	}
	UserAuditSource interface {
		GetAuditLogs(ctx context.Context, userID domain.UserID) ([]audit.Entry[models.UserAuditedChange], error)
	}
	PermissionAuditSource interface {
		GetAuditLogs(ctx context.Context, permissionID models.PermissionID) ([]audit.Entry[models.PermissionAuditedChange], error)
		ListClaimEntries(ctx context.Context) ([]audit.Entry[models.PermissionAuditedChange], error)
	}
	UserRoleAuditSource interface {
		GetAuditLogs(ctx context.Context, roleID domain.UserRoleID) ([]audit.Entry[models.UserRoleAuditedChange], error)
		GetPermissionAuditLogs(ctx context.Context, roleID domain.UserRoleID) ([]models.UserRoleAuditLogEntry, error)
	}
)

// Repositories bundles the per-entity audit log repositories.
type Repositories struct {
	Actors        ActorAuditSource
	Contacts      ContactAuditSource
	Organizations OrganizationAuditSource
	GridAreas     GridAreaAuditSource
	Delegations   DelegationAuditSource
	Users         UserAuditSource
	Permissions   PermissionAuditSource
	UserRoles     UserRoleAuditSource
}

// Service serves reconstructed audit logs. The cache is optional: when nil,
// every request replays history. Cache failures degrade to a rebuild and are
// logged, never surfaced.
type Service struct {
	repos   Repositories
	cache   *cache.AuditLogCache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(repos Repositories, auditCache *cache.AuditLogCache, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{repos: repos, cache: auditCache, metrics: m, logger: logger}
}

// GetActorAuditLog merges the actor's own field changes with its contact
// events and its delegation events into one chronological log.
func (s *Service) GetActorAuditLog(ctx context.Context, actorID domain.ActorID) ([]models.AuditLogEntry, error) {
	return s.cached(ctx, "actor", actorID.String(), func(ctx context.Context) ([]models.AuditLogEntry, error) {
		actorEntries, err := s.repos.Actors.GetAuditLogs(ctx, actorID)
		if err != nil {
			return nil, err
		}
		contactEntries, err := s.repos.Contacts.GetAuditLogs(ctx, actorID)
		if err != nil {
			return nil, err
		}
		delegationEntries, err := s.repos.Delegations.GetAuditLogs(ctx, actorID)
		if err != nil {
			return nil, err
		}

		entries := flatten(actorEntries)
		entries = append(entries, flattenContacts(contactEntries)...)
		entries = append(entries, flatten(delegationEntries)...)
		models.SortEntries(entries)
		return entries, nil
	})
}

func (s *Service) GetOrganizationAuditLog(ctx context.Context, organizationID domain.OrganizationID) ([]models.AuditLogEntry, error) {
	return s.cached(ctx, "organization", organizationID.String(), func(ctx context.Context) ([]models.AuditLogEntry, error) {
		typed, err := s.repos.Organizations.GetAuditLogs(ctx, organizationID)
		if err != nil {
			return nil, err
		}
		entries := flatten(typed)
		models.SortEntries(entries)
		return entries, nil
	})
}

func (s *Service) GetGridAreaAuditLog(ctx context.Context, gridAreaID domain.GridAreaID) ([]models.AuditLogEntry, error) {
	return s.cached(ctx, "grid_area", gridAreaID.String(), func(ctx context.Context) ([]models.AuditLogEntry, error) {
		typed, err := s.repos.GridAreas.GetAuditLogs(ctx, gridAreaID)
		if err != nil {
			return nil, err
		}
		entries := flatten(typed)
		models.SortEntries(entries)
		return entries, nil
	})
}

func (s *Service) GetUserAuditLog(ctx context.Context, userID domain.UserID) ([]models.AuditLogEntry, error) {
	return s.cached(ctx, "user", userID.String(), func(ctx context.Context) ([]models.AuditLogEntry, error) {
		typed, err := s.repos.Users.GetAuditLogs(ctx, userID)
		if err != nil {
			return nil, err
		}
		entries := flatten(typed)
		models.SortEntries(entries)
		return entries, nil
	})
}

// GetUserRoleAuditLog merges the role's field changes with its permission-set
// timeline. The repository appends the synthetic Created entry last; here it
// is moved to the front of the final log, ahead of everything else.
func (s *Service) GetUserRoleAuditLog(ctx context.Context, roleID domain.UserRoleID) ([]models.AuditLogEntry, error) {
	return s.cached(ctx, "user_role", roleID.String(), func(ctx context.Context) ([]models.AuditLogEntry, error) {
		fieldEntries, err := s.repos.UserRoles.GetAuditLogs(ctx, roleID)
		if err != nil {
			return nil, err
		}
		permissionEntries, err := s.repos.UserRoles.GetPermissionAuditLogs(ctx, roleID)
		if err != nil {
			return nil, err
		}

		var created *models.AuditLogEntry
		entries := flatten(fieldEntries)
		for _, e := range permissionEntries {
			flat := models.AuditLogEntry{
				Change:              string(e.Change),
				Timestamp:           e.Timestamp,
				AuditIdentity:       e.AuditIdentity,
				IsInitialAssignment: e.IsInitialAssignment,
				CurrentValue:        e.CurrentValue,
				PreviousValue:       e.PreviousValue,
			}
			if e.Change == models.UserRoleChangeCreated {
				created = &flat
				continue
			}
			entries = append(entries, flat)
		}
		models.SortEntries(entries)
		if created != nil {
			entries = append([]models.AuditLogEntry{*created}, entries...)
		}
		return entries, nil
	})
}

func (s *Service) GetPermissionAuditLog(ctx context.Context, permissionID models.PermissionID) ([]models.AuditLogEntry, error) {
	return s.cached(ctx, "permission", permissionID.Claim(), func(ctx context.Context) ([]models.AuditLogEntry, error) {
		typed, err := s.repos.Permissions.GetAuditLogs(ctx, permissionID)
		if err != nil {
			return nil, err
		}
		entries := flatten(typed)
		models.SortEntries(entries)
		return entries, nil
	})
}

// ListPermissionClaims returns one claim entry per live permission, for the
// permissions overview report. Not cached: the underlying query is a plain
// lookup-table scan.
func (s *Service) ListPermissionClaims(ctx context.Context) ([]models.AuditLogEntry, error) {
	typed, err := s.repos.Permissions.ListClaimEntries(ctx)
	if err != nil {
		return nil, err
	}
	entries := flatten(typed)
	models.SortEntries(entries)
	return entries, nil
}

func (s *Service) cached(ctx context.Context, entity, id string, build func(context.Context) ([]models.AuditLogEntry, error)) ([]models.AuditLogEntry, error) {
	if s.cache != nil {
		entries, err := s.cache.Get(ctx, entity, id)
		if err == nil {
			s.metrics.IncrementCache(entity, "hit")
			return entries, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.WarnContext(ctx, "audit log cache read failed", "entity", entity, "error", err)
		}
		s.metrics.IncrementCache(entity, "miss")
	}

	start := time.Now()
	entries, err := build(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveBuild(entity, time.Since(start), len(entries))

	if s.cache != nil {
		if err := s.cache.Set(ctx, entity, id, entries); err != nil {
			s.logger.WarnContext(ctx, "audit log cache write failed", "entity", entity, "error", err)
		}
	}
	return entries, nil
}

func flatten[C ~string](typed []audit.Entry[C]) []models.AuditLogEntry {
	entries := make([]models.AuditLogEntry, 0, len(typed))
	for _, e := range typed {
		entries = append(entries, models.AuditLogEntry{
			Change:              string(e.Change),
			Timestamp:           e.Timestamp,
			AuditIdentity:       e.AuditIdentity,
			IsInitialAssignment: e.IsInitialAssignment,
			CurrentValue:        e.CurrentValue,
			PreviousValue:       e.PreviousValue,
			Sequence:            e.Sequence,
		})
	}
	return entries
}

func flattenContacts(typed []models.ActorContactAuditLogEntry) []models.AuditLogEntry {
	entries := make([]models.AuditLogEntry, 0, len(typed))
	for _, e := range typed {
		entries = append(entries, models.AuditLogEntry{
			Change:              string(e.Change),
			Timestamp:           e.Timestamp,
			AuditIdentity:       e.AuditIdentity,
			IsInitialAssignment: e.IsInitialAssignment,
			CurrentValue:        e.CurrentValue,
			PreviousValue:       e.PreviousValue,
			Category:            e.Category,
			Sequence:            e.Sequence,
		})
	}
	return entries
}
