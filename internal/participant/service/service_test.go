package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"markpart/internal/audit"
	"markpart/internal/participant/models"
	"markpart/pkg/domain"
)

// In-memory sources covering the merge paths. entryStub carries pre-derived
// entries; the derivation itself is covered by the audit and auditlog tests.
type entryStub[C comparable] struct {
	entries []audit.Entry[C]
}

func (s entryStub[C]) GetAuditLogs(context.Context, domain.ActorID) ([]audit.Entry[C], error) {
	return s.entries, nil
}

type contactStub struct {
	entries []models.ActorContactAuditLogEntry
}

func (s contactStub) GetAuditLogs(context.Context, domain.ActorID) ([]models.ActorContactAuditLogEntry, error) {
	return s.entries, nil
}

type userRoleStub struct {
	fields      []audit.Entry[models.UserRoleAuditedChange]
	permissions []models.UserRoleAuditLogEntry
}

func (s userRoleStub) GetAuditLogs(context.Context, domain.UserRoleID) ([]audit.Entry[models.UserRoleAuditedChange], error) {
	return s.fields, nil
}

func (s userRoleStub) GetPermissionAuditLogs(context.Context, domain.UserRoleID) ([]models.UserRoleAuditLogEntry, error) {
	return s.permissions, nil
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	t0       time.Time
	identity domain.AuditIdentity
	logger   *slog.Logger
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	s.identity = domain.AuditIdentity(uuid.New())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *ServiceSuite) entry(change string, at time.Time, value string) audit.Entry[models.ActorAuditedChange] {
	v := value
	return audit.Entry[models.ActorAuditedChange]{
		Change:        models.ActorAuditedChange(change),
		Timestamp:     at,
		AuditIdentity: s.identity,
		CurrentValue:  &v,
	}
}

// The actor log interleaves actor field changes, contact events and
// delegation events chronologically.
func (s *ServiceSuite) TestActorLogMergesSources() {
	t1 := s.t0.Add(time.Hour)
	t2 := s.t0.Add(2 * time.Hour)

	svc := New(Repositories{
		Actors: entryStub[models.ActorAuditedChange]{entries: []audit.Entry[models.ActorAuditedChange]{
			s.entry("name", s.t0, "Energy Trading A/S"),
			s.entry("name", t2, "Energy Trading 2 A/S"),
		}},
		Contacts: contactStub{entries: []models.ActorContactAuditLogEntry{{
			Change:        models.ContactChangeCreated,
			Timestamp:     t1,
			AuditIdentity: s.identity,
			Category:      models.ContactCategoryDefault,
		}}},
		Delegations: entryStub[models.DelegationAuditedChange]{},
	}, nil, nil, s.logger)

	entries, err := svc.GetActorAuditLog(s.ctx, domain.ActorID(uuid.New()))
	s.Require().NoError(err)

	s.Require().Len(entries, 3)
	s.Equal("name", entries[0].Change)
	s.Equal(string(models.ContactChangeCreated), entries[1].Change)
	s.Equal(models.ContactCategoryDefault, entries[1].Category)
	s.Equal("Energy Trading 2 A/S", *entries[2].CurrentValue)
}

// The user role repository hands back the synthetic Created entry at the end
// of the permission timeline; the assembled log must lead with it.
func (s *ServiceSuite) TestUserRoleLogLeadsWithCreated() {
	t1 := s.t0.Add(time.Hour)
	name := "Balance Responsible"
	claims := "users:view"

	svc := New(Repositories{
		UserRoles: userRoleStub{
			fields: []audit.Entry[models.UserRoleAuditedChange]{{
				Change:              models.UserRoleChangeName,
				Timestamp:           s.t0,
				AuditIdentity:       s.identity,
				IsInitialAssignment: true,
				CurrentValue:        &name,
			}},
			permissions: []models.UserRoleAuditLogEntry{
				{
					Change:        models.UserRoleChangePermissions,
					Timestamp:     t1,
					AuditIdentity: s.identity,
					CurrentValue:  &claims,
				},
				{
					Change:              models.UserRoleChangeCreated,
					Timestamp:           s.t0,
					AuditIdentity:       s.identity,
					IsInitialAssignment: true,
					CurrentValue:        &claims,
				},
			},
		},
	}, nil, nil, s.logger)

	entries, err := svc.GetUserRoleAuditLog(s.ctx, domain.UserRoleID(uuid.New()))
	s.Require().NoError(err)

	s.Require().Len(entries, 3)
	s.Equal(string(models.UserRoleChangeCreated), entries[0].Change)
	s.Equal(string(models.UserRoleChangeName), entries[1].Change)
	s.Equal(string(models.UserRoleChangePermissions), entries[2].Change)
}

func (s *ServiceSuite) TestEmptyLogIsNotAnError() {
	svc := New(Repositories{
		Actors:      entryStub[models.ActorAuditedChange]{},
		Contacts:    contactStub{},
		Delegations: entryStub[models.DelegationAuditedChange]{},
	}, nil, nil, s.logger)

	entries, err := svc.GetActorAuditLog(s.ctx, domain.ActorID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(entries)
}
