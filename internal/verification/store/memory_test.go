package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"digipraman/internal/verification/models"
	"digipraman/internal/verification/service"
	id "digipraman/pkg/domain"
	"digipraman/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store       *InMemory
	now         time.Time
	loanID      id.LoanID
	beneficiary id.UserID
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.loanID = id.LoanID(uuid.New())
	s.beneficiary = id.NewUserID()
	s.store.AddLoan(Loan{
		ID:               s.loanID,
		LoanRefNo:        "LN-001",
		BeneficiaryID:    s.beneficiary,
		SanctionedAmount: decimal.RequireFromString("250000.50"),
	})
}

func (s *InMemoryStoreSuite) insert(createdAt time.Time, requirements ...models.Requirement) id.VerificationID {
	vid := id.NewVerificationID()
	err := s.store.RunInTx(context.Background(), func(ctx context.Context, st service.Store) error {
		if err := st.InsertRequest(ctx, &models.Request{
			ID:        vid,
			LoanID:    s.loanID,
			Status:    models.StatusPending,
			CreatedAt: createdAt,
		}); err != nil {
			return err
		}
		for i := range requirements {
			requirements[i].VerificationID = vid
			if err := st.InsertRequirement(ctx, &requirements[i]); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)
	return vid
}

func (s *InMemoryStoreSuite) TestRunInTx() {
	ctx := context.Background()

	s.Run("failed unit of work leaves nothing behind", func() {
		vid := id.NewVerificationID()
		boom := errors.New("boom")
		err := s.store.RunInTx(ctx, func(ctx context.Context, st service.Store) error {
			s.Require().NoError(st.InsertRequest(ctx, &models.Request{ID: vid, LoanID: s.loanID, Status: models.StatusPending}))
			s.Require().NoError(st.InsertRequirement(ctx, &models.Requirement{ID: id.NewRequirementID(), VerificationID: vid}))
			return boom
		})
		s.Require().ErrorIs(err, boom)

		requests, requirements := s.store.Counts(vid)
		s.Equal(0, requests)
		s.Equal(0, requirements)
	})

	s.Run("staged rows are visible inside the transaction", func() {
		vid := id.NewVerificationID()
		err := s.store.RunInTx(ctx, func(ctx context.Context, st service.Store) error {
			s.Require().NoError(st.InsertRequest(ctx, &models.Request{ID: vid, LoanID: s.loanID, Status: models.StatusPending}))
			got, err := st.GetRequestForUpdate(ctx, vid)
			s.Require().NoError(err)
			s.Equal(models.StatusPending, got.Status)
			return nil
		})
		s.Require().NoError(err)
	})

	s.Run("requirement without request is rejected", func() {
		err := s.store.RunInTx(ctx, func(ctx context.Context, st service.Store) error {
			return st.InsertRequirement(ctx, &models.Requirement{ID: id.NewRequirementID(), VerificationID: id.NewVerificationID()})
		})
		s.Require().Error(err)
	})

	s.Run("cancelled context never runs fn", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := s.store.RunInTx(cctx, func(context.Context, service.Store) error {
			called = true
			return nil
		})
		s.Require().Error(err)
		s.False(called)
	})
}

func (s *InMemoryStoreSuite) TestStatusUpdate() {
	ctx := context.Background()
	vid := s.insert(s.now)

	err := s.store.RunInTx(ctx, func(ctx context.Context, st service.Store) error {
		return st.UpdateStatus(ctx, vid, models.StatusSubmitted)
	})
	s.Require().NoError(err)

	detail, err := s.store.GetHeader(ctx, vid)
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, detail.Status)

	err = s.store.RunInTx(ctx, func(ctx context.Context, st service.Store) error {
		_, err := st.GetRequestForUpdate(ctx, id.NewVerificationID())
		return err
	})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReads() {
	ctx := context.Background()

	s.Run("list is newest first with latest risk", func() {
		older := s.insert(s.now)
		newer := s.insert(s.now.Add(time.Hour))
		s.store.AddRisk(older, models.RiskSnapshot{Score: decimal.RequireFromString("10.5"), Tier: "low"}, s.now)
		s.store.AddRisk(older, models.RiskSnapshot{Score: decimal.RequireFromString("72.25"), Tier: "high"}, s.now.Add(time.Minute))

		list, err := s.store.ListForBeneficiary(ctx, s.beneficiary)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(newer, list[0].ID)
		s.Nil(list[0].Risk)
		s.Require().NotNil(list[1].Risk)
		s.Equal("high", list[1].Risk.Tier)
		s.True(decimal.RequireFromString("72.25").Equal(list[1].Risk.Score))
		s.Equal("LN-001", list[1].LoanRefNo)

		other, err := s.store.ListForBeneficiary(ctx, id.NewUserID())
		s.Require().NoError(err)
		s.Empty(other)
	})

	s.Run("requirements come back by sort order", func() {
		vid := s.insert(s.now,
			models.Requirement{ID: id.NewRequirementID(), Label: "C", SortOrder: 2},
			models.Requirement{ID: id.NewRequirementID(), Label: "A", SortOrder: 0},
			models.Requirement{ID: id.NewRequirementID(), Label: "B", SortOrder: 1},
		)
		reqs, err := s.store.ListRequirements(ctx, vid)
		s.Require().NoError(err)
		s.Require().Len(reqs, 3)
		s.Equal([]string{"A", "B", "C"}, []string{reqs[0].Label, reqs[1].Label, reqs[2].Label})
	})

	s.Run("evidence newest capture first with missing captures last", func() {
		vid := s.insert(s.now)
		early, late := s.now, s.now.Add(time.Hour)
		first := models.EvidenceItem{ID: id.EvidenceID(uuid.New()), CapturedAt: &early}
		none := models.EvidenceItem{ID: id.EvidenceID(uuid.New())}
		last := models.EvidenceItem{ID: id.EvidenceID(uuid.New()), CapturedAt: &late}
		s.store.AddEvidence(vid, none)
		s.store.AddEvidence(vid, first)
		s.store.AddEvidence(vid, last)

		items, err := s.store.ListEvidence(ctx, vid)
		s.Require().NoError(err)
		s.Require().Len(items, 3)
		s.Equal(last.ID, items[0].ID)
		s.Equal(first.ID, items[1].ID)
		s.Equal(none.ID, items[2].ID)
	})

	s.Run("decisions newest first with empty attachments", func() {
		vid := s.insert(s.now)
		s.store.AddDecision(vid, models.Decision{ID: id.DecisionID(uuid.New()), Decision: models.DecisionRequestMore, DecidedAt: s.now})
		s.store.AddDecision(vid, models.Decision{ID: id.DecisionID(uuid.New()), Decision: models.DecisionApprove, DecidedAt: s.now.Add(time.Hour)})

		decisions, err := s.store.ListDecisions(ctx, vid)
		s.Require().NoError(err)
		s.Require().Len(decisions, 2)
		s.Equal(models.DecisionApprove, decisions[0].Decision)
		s.JSONEq(`[]`, string(decisions[1].Attachments))
	})

	s.Run("missing risk is nil and unknown header is not found", func() {
		vid := s.insert(s.now)
		risk, err := s.store.GetLatestRisk(ctx, vid)
		s.Require().NoError(err)
		s.Nil(risk)

		_, err = s.store.GetHeader(ctx, id.NewVerificationID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
