package auditlog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"markpart/internal/audit"
	"markpart/internal/participant/models"
	"markpart/pkg/domain"
)

type PermissionReconcilerSuite struct {
	suite.Suite
	createdAt time.Time
	roleID    domain.UserRoleID
	author    domain.AuditIdentity
	role      audit.Snapshot[models.UserRole]
}

func TestPermissionReconcilerSuite(t *testing.T) {
	suite.Run(t, new(PermissionReconcilerSuite))
}

func (s *PermissionReconcilerSuite) SetupTest() {
	s.createdAt = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	s.roleID = domain.UserRoleID(uuid.New())
	s.author = domain.AuditIdentity(uuid.New())
	s.role = audit.Snapshot[models.UserRole]{
		Entity: models.UserRole{
			ID:        s.roleID,
			Name:      "Balance Responsible",
			Status:    models.UserRoleStatusActive,
			CreatedAt: s.createdAt,
		},
		PeriodStart: s.createdAt,
		Version:     1,
		ChangedBy:   s.author,
	}
}

func (s *PermissionReconcilerSuite) added(p models.PermissionID, at time.Time) models.PermissionAssignment {
	return models.PermissionAssignment{
		UserRoleID:  s.roleID,
		Permission:  p,
		PeriodStart: at,
		ChangedBy:   s.author,
	}
}

func (s *PermissionReconcilerSuite) removed(p models.PermissionID, at time.Time, by domain.AuditIdentity) models.PermissionAssignment {
	a := s.added(p, at)
	a.DeletedBy = &by
	return a
}

// The synthetic Created entry is appended last; the caller assembling the
// full role audit log moves it to the front.
func (s *PermissionReconcilerSuite) TestCreatedWithPermissions() {
	entries := derivePermissionEntries(s.role, []models.PermissionAssignment{
		s.added(models.PermissionUsersManage, s.createdAt),
		s.added(models.PermissionActorsManage, s.createdAt),
	})

	s.Require().Len(entries, 1)
	created := entries[0]
	s.Equal(models.UserRoleChangeCreated, created.Change)
	s.True(created.IsInitialAssignment)
	s.True(created.Timestamp.Equal(s.createdAt))
	s.Equal([]models.PermissionID{models.PermissionActorsManage, models.PermissionUsersManage}, created.Permissions)
	s.Equal("actors:manage, users:manage", *created.CurrentValue)
}

func (s *PermissionReconcilerSuite) TestCreatedWithoutPermissions() {
	entries := derivePermissionEntries(s.role, nil)

	s.Require().Len(entries, 1)
	s.Equal(models.UserRoleChangeCreated, entries[0].Change)
	s.Equal(s.author, entries[0].AuditIdentity)
	s.Empty(entries[0].Permissions)
}

// An addition and a removal sharing one instant are a single transaction
// producing one entry with the complete resulting set.
func (s *PermissionReconcilerSuite) TestAtomicAddAndRemove() {
	t1 := s.createdAt.Add(time.Hour)
	editor := domain.AuditIdentity(uuid.New())

	remove := s.removed(models.PermissionActorsManage, t1, editor)
	entries := derivePermissionEntries(s.role, []models.PermissionAssignment{
		s.added(models.PermissionActorsManage, s.createdAt),
		s.added(models.PermissionOrganizationsView, s.createdAt),
		remove,
		s.added(models.PermissionGridAreasManage, t1),
	})

	s.Require().Len(entries, 2)
	change := entries[0]
	s.Equal(models.UserRoleChangePermissions, change.Change)
	s.True(change.Timestamp.Equal(t1))
	s.Equal([]models.PermissionID{models.PermissionOrganizationsView, models.PermissionGridAreasManage}, change.Permissions)
	s.Equal("organizations:view, grid-areas:manage", *change.CurrentValue)
	s.Equal("actors:manage, organizations:view", *change.PreviousValue)

	s.Equal(models.UserRoleChangeCreated, entries[1].Change)
	s.Equal([]models.PermissionID{models.PermissionActorsManage, models.PermissionOrganizationsView}, entries[1].Permissions)
}

// Every transition entry carries the full set valid from its instant, never
// a delta, and transitions fold in chronological order.
func (s *PermissionReconcilerSuite) TestFullSetsAcrossTransitions() {
	t1 := s.createdAt.Add(time.Hour)
	t2 := s.createdAt.Add(2 * time.Hour)
	editor := domain.AuditIdentity(uuid.New())

	entries := derivePermissionEntries(s.role, []models.PermissionAssignment{
		s.added(models.PermissionUsersView, s.createdAt),
		s.added(models.PermissionUsersManage, t1),
		s.removed(models.PermissionUsersView, t2, editor),
	})

	s.Require().Len(entries, 3)
	s.Equal([]models.PermissionID{models.PermissionUsersView, models.PermissionUsersManage}, entries[0].Permissions)
	s.Equal([]models.PermissionID{models.PermissionUsersManage}, entries[1].Permissions)
	s.Equal(editor, entries[1].AuditIdentity)
	s.Equal("users:view, users:manage", *entries[1].PreviousValue)
	s.Equal(models.UserRoleChangeCreated, entries[2].Change)
}

// The same logical link can surface from both the live and the history
// table; folding the duplicate must not double-add.
func (s *PermissionReconcilerSuite) TestDuplicateRowsFoldIdempotently() {
	t1 := s.createdAt.Add(time.Hour)
	duplicate := s.added(models.PermissionAuditLogView, t1)

	entries := derivePermissionEntries(s.role, []models.PermissionAssignment{
		s.added(models.PermissionUsersView, s.createdAt),
		duplicate,
		duplicate,
	})

	s.Require().Len(entries, 2)
	s.Equal([]models.PermissionID{models.PermissionUsersView, models.PermissionAuditLogView}, entries[0].Permissions)
}

func (s *PermissionReconcilerSuite) TestIdempotentDerivation() {
	t1 := s.createdAt.Add(time.Hour)
	assignments := []models.PermissionAssignment{
		s.added(models.PermissionUsersView, s.createdAt),
		s.added(models.PermissionUsersManage, t1),
	}

	s.Equal(
		derivePermissionEntries(s.role, assignments),
		derivePermissionEntries(s.role, assignments),
	)
}
