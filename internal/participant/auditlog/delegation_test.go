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

type DelegationComparerSuite struct {
	suite.Suite
	ctx      context.Context
	t0       time.Time
	author   domain.AuditIdentity
	gridArea domain.GridAreaID
}

func TestDelegationComparerSuite(t *testing.T) {
	suite.Run(t, new(DelegationComparerSuite))
}

func (s *DelegationComparerSuite) SetupTest() {
	s.ctx = context.Background()
	s.t0 = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.author = domain.AuditIdentity(uuid.New())
	s.gridArea = domain.GridAreaID(uuid.New())
}

func (s *DelegationComparerSuite) row(periodID uuid.UUID, startsAt time.Time, stopsAt *time.Time, at time.Time, version int64) audit.Snapshot[models.DelegationPeriod] {
	return audit.Snapshot[models.DelegationPeriod]{
		Entity: models.DelegationPeriod{
			PeriodID:   periodID,
			GridAreaID: s.gridArea,
			Process:    models.ProcessRequestEnergyResults,
			StartsAt:   startsAt,
			StopsAt:    stopsAt,
		},
		PeriodStart: at,
		Version:     version,
		ChangedBy:   s.author,
	}
}

func (s *DelegationComparerSuite) composite(at time.Time) string {
	return fmt.Sprintf("(%s;%s;%s)", at.Format(time.RFC3339), s.gridArea, models.ProcessRequestEnergyResults)
}

func (s *DelegationComparerSuite) TestStartEmitsComposite() {
	source := audit.SliceSource[models.DelegationPeriod]{
		s.row(uuid.New(), s.t0, nil, s.t0, 1),
	}

	entries, err := audit.NewBuilder(source, delegationComparers()...).Build(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(models.DelegationChangeStart, entries[0].Change)
	s.True(entries[0].IsInitialAssignment)
	s.Equal(s.composite(s.t0), *entries[0].CurrentValue)
}

func (s *DelegationComparerSuite) TestStopTransition() {
	periodID := uuid.New()
	stop := s.t0.AddDate(0, 3, 0)
	source := audit.SliceSource[models.DelegationPeriod]{
		s.row(periodID, s.t0, nil, s.t0, 1),
		s.row(periodID, s.t0, &stop, s.t0.Add(time.Hour), 2),
	}

	entries, err := audit.NewBuilder(source, delegationComparers()...).Build(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(models.DelegationChangeStop, entries[1].Change)
	s.Equal(s.composite(stop), *entries[1].CurrentValue)
	s.Nil(entries[1].PreviousValue)
}

// A period row closed out with a deletion marker surfaces as a stop event
// attributed to the stopping identity.
func (s *DelegationComparerSuite) TestDeletedPeriodEmitsStop() {
	periodID := uuid.New()
	stopper := domain.AuditIdentity(uuid.New())
	t1 := s.t0.AddDate(0, 1, 0)

	stop := t1
	closing := s.row(periodID, s.t0, &stop, t1, 2)
	closing.DeletedBy = &stopper
	source := audit.SliceSource[models.DelegationPeriod]{
		s.row(periodID, s.t0, nil, s.t0, 1),
		closing,
	}

	entries, err := audit.NewBuilder(source, delegationComparers()...).Build(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	stopped := entries[1]
	s.Equal(models.DelegationChangeStop, stopped.Change)
	s.Equal(stopper, stopped.AuditIdentity)
	s.True(stopped.Timestamp.Equal(t1))
	s.Equal(s.composite(stop), *stopped.PreviousValue)
}
