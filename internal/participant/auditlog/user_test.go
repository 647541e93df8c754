package auditlog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"markpart/internal/audit"
	"markpart/internal/participant/models"
	"markpart/pkg/domain"
)

type UserComparerSuite struct {
	suite.Suite
	ctx    context.Context
	t0     time.Time
	author domain.AuditIdentity
}

func TestUserComparerSuite(t *testing.T) {
	suite.Run(t, new(UserComparerSuite))
}

func (s *UserComparerSuite) SetupTest() {
	s.ctx = context.Background()
	s.t0 = time.Date(2024, 8, 20, 8, 0, 0, 0, time.UTC)
	s.author = domain.AuditIdentity(uuid.New())
}

func (s *UserComparerSuite) userRow(status models.UserStatus, invitedTo *time.Time, at time.Time, version int64) audit.Snapshot[models.User] {
	return audit.Snapshot[models.User]{
		Entity: models.User{
			Email:               "trader@example.com",
			Status:              status,
			InvitationExpiresAt: invitedTo,
		},
		PeriodStart: at,
		Version:     version,
		ChangedBy:   s.author,
	}
}

func (s *UserComparerSuite) assignmentRow(linkID uuid.UUID, actorID domain.ActorID, roleID domain.UserRoleID, at time.Time, version int64) audit.Snapshot[models.UserRoleAssignment] {
	return audit.Snapshot[models.UserRoleAssignment]{
		Entity: models.UserRoleAssignment{
			LinkID:     linkID,
			ActorID:    actorID,
			UserRoleID: roleID,
		},
		PeriodStart: at,
		Version:     version,
		ChangedBy:   s.author,
	}
}

func (s *UserComparerSuite) TestCreationEmitsStatusAndInvitation() {
	deadline := s.t0.AddDate(0, 0, 14)
	source := audit.SliceSource[models.User]{
		s.userRow(models.UserStatusInvited, &deadline, s.t0, 1),
	}

	entries, err := audit.NewBuilder(source, userComparers()...).Build(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	s.Equal(models.UserChangeStatus, entries[0].Change)
	s.Equal("Invited", *entries[0].CurrentValue)
	s.Equal(models.UserChangeInvitation, entries[1].Change)
	s.Equal(deadline.Format(time.RFC3339), *entries[1].CurrentValue)
	for _, e := range entries {
		s.True(e.IsInitialAssignment)
		s.True(e.Timestamp.Equal(s.t0))
	}
}

func (s *UserComparerSuite) TestStatusTransition() {
	deadline := s.t0.AddDate(0, 0, 14)
	source := audit.SliceSource[models.User]{
		s.userRow(models.UserStatusInvited, &deadline, s.t0, 1),
		s.userRow(models.UserStatusActive, nil, s.t0.Add(time.Hour), 2),
	}

	entries, err := audit.NewBuilder(source, userComparers()...).Build(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 4)

	s.Equal(models.UserChangeStatus, entries[2].Change)
	s.Equal("Active", *entries[2].CurrentValue)
	s.Equal("Invited", *entries[2].PreviousValue)
	s.Equal(models.UserChangeInvitation, entries[3].Change)
	s.Nil(entries[3].CurrentValue)
}

// Each assignment link is a singleton lifecycle: the first row is the
// assignment, a terminal deletion marker is the removal attributed to the
// removing identity.
func (s *UserComparerSuite) TestAssignmentLifecycle() {
	linkID := uuid.New()
	actorID := domain.ActorID(uuid.New())
	roleID := domain.UserRoleID(uuid.New())
	remover := domain.AuditIdentity(uuid.New())
	t1 := s.t0.AddDate(0, 2, 0)

	closing := s.assignmentRow(linkID, actorID, roleID, t1, 2)
	closing.DeletedBy = &remover
	source := audit.SliceSource[models.UserRoleAssignment]{
		s.assignmentRow(linkID, actorID, roleID, s.t0, 1),
		closing,
	}

	entries, err := audit.NewBuilder(source, assignmentComparer()).
		WithGroupKey(func(snap audit.Snapshot[models.UserRoleAssignment]) any {
			return snap.Entity.LinkID
		}).Build(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	composite := fmt.Sprintf("(%s;%s)", actorID, roleID)
	s.True(entries[0].IsInitialAssignment)
	s.Equal(composite, *entries[0].CurrentValue)
	s.Equal(remover, entries[1].AuditIdentity)
	s.True(entries[1].Timestamp.Equal(t1))
	s.Equal(composite, *entries[1].PreviousValue)
}
