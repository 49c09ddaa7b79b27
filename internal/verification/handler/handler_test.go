package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"digipraman/internal/verification/handler/mocks"
	"digipraman/internal/verification/models"
	id "digipraman/pkg/domain"
	dErrors "digipraman/pkg/domain-errors"
	"digipraman/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	r := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	s.router = r
}

func (s *HandlerSuite) TestListMine() {
	beneficiary := id.NewUserID()

	s.Run("query parameter selects the beneficiary", func() {
		s.service.EXPECT().ListForBeneficiary(gomock.Any(), beneficiary).Return([]models.Summary{{
			Header: models.Header{
				ID:               id.NewVerificationID(),
				LoanRefNo:        "LN-1",
				Status:           models.StatusPending,
				SanctionedAmount: decimal.RequireFromString("1500.25"),
			},
		}}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/verifications/my?beneficiaryId="+beneficiary.String()))
		testutil.AssertStatusOK(s.T(), rr)
		body := testutil.UnmarshalResponse[[]map[string]any](s.T(), rr)
		s.Require().Len(*body, 1)
		s.Equal("1500.25", (*body)[0]["sanctionedAmount"])
		s.Nil((*body)[0]["schemeId"])
		s.NotContains((*body)[0], "risk")
	})

	s.Run("header is accepted", func() {
		s.service.EXPECT().ListForBeneficiary(gomock.Any(), beneficiary).Return([]models.Summary{}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/verifications/my", testutil.WithHeader(BeneficiaryHeader, beneficiary.String()))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`[]`, string(testutil.ReadBody(s.T(), rr)))
	})

	s.Run("missing beneficiary is 400", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/verifications/my"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("malformed beneficiary is 400", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/verifications/my?beneficiaryId=abc"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestGetDetail() {
	vid := id.NewVerificationID()

	s.Run("returns the assembled view", func() {
		s.service.EXPECT().GetDetail(gomock.Any(), vid).Return(&models.Detail{
			Header:       models.Header{ID: vid, Status: models.StatusRouted},
			Requirements: []models.Requirement{},
			Evidence:     []models.EvidenceItem{},
			Decisions:    []models.Decision{},
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/verifications/"+vid.String()))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "id", vid.String())
		testutil.AssertJSONContains(s.T(), rr, "status", "routed")
		body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.NotContains(*body, "risk")
		s.Equal([]any{}, (*body)["evidence"])
	})

	s.Run("unknown id is 404", func() {
		s.service.EXPECT().GetDetail(gomock.Any(), vid).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "verification not found"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/verifications/"+vid.String()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("internal failure hides details", func() {
		s.service.EXPECT().GetDetail(gomock.Any(), vid).
			Return(nil, dErrors.New(dErrors.CodeInternal, "pq: connection reset"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/verifications/"+vid.String()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
		s.NotContains(string(testutil.ReadBody(s.T(), rr)), "pq:")
	})
}

func (s *HandlerSuite) TestCreate() {
	loanID := uuid.New()
	caller := id.NewUserID()

	s.Run("returns 201 with the created checklist", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.CreateRequest) (*models.Created, error) {
				s.Equal(id.LoanID(loanID), req.LoanID)
				s.Require().NotNil(req.InitiatedBy)
				s.Equal(caller, *req.InitiatedBy)
				s.Require().NotNil(req.DueDate)
				s.Equal(time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), *req.DueDate)
				s.Require().Len(req.Requirements, 2)
				s.Equal("Shop front", req.Requirements[0].Label)
				s.Equal(models.RequirementType("video"), req.Requirements[1].Type)
				return &models.Created{
					Request:      models.Request{ID: id.NewVerificationID(), LoanID: req.LoanID, Status: models.StatusPending},
					Requirements: []models.Requirement{},
				}, nil
			})

		body := map[string]any{
			"loanId":  loanID.String(),
			"dueDate": "2026-04-30",
			"requirements": []map[string]any{
				{"label": "Shop front", "type": "photo"},
				{"label": "Walkthrough", "type": "video", "required": false},
			},
		}
		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body), caller.String(), "officer")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "status", "pending")
		testutil.AssertJSONHasKey(s.T(), rr, "requirements")
	})

	s.Run("uppercase loanId is accepted", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.CreateRequest) (*models.Created, error) {
				s.Equal(id.LoanID(loanID), req.LoanID)
				return &models.Created{Request: models.Request{ID: id.NewVerificationID(), LoanID: req.LoanID, Status: models.StatusPending}}, nil
			})

		body := map[string]any{"loanId": strings.ToUpper(loanID.String())}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	})

	s.Run("malformed loanId is 400", func() {
		body := map[string]any{"loanId": "loan-42"}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("missing loanId is 400", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", map[string]any{})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("requirement without label is 400", func() {
		body := map[string]any{
			"loanId":       loanID.String(),
			"requirements": []map[string]any{{"type": "photo"}},
		}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
		s.Contains(testutil.UnmarshalErrorResponse(s.T(), rr)["error_description"], "requirements[0].label")
	})

	s.Run("bad due date is 400", func() {
		body := map[string]any{"loanId": loanID.String(), "dueDate": "next week"}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown loan is 404", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "loan not found"))

		body := map[string]any{"loanId": loanID.String()}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *HandlerSuite) TestUpdateStatus() {
	vid := id.NewVerificationID()
	path := "/verifications/" + vid.String() + "/status"

	s.Run("applies the transition", func() {
		s.service.EXPECT().UpdateStatus(gomock.Any(), vid, "submitted").
			Return(&models.Request{ID: vid, Status: models.StatusSubmitted}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPatch, path, map[string]string{"status": "submitted"}))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "status", "submitted")
	})

	s.Run("forbidden transition is 409", func() {
		s.service.EXPECT().UpdateStatus(gomock.Any(), vid, "approved").
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "cannot transition from pending to approved"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPatch, path, map[string]string{"status": "approved"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "invalid_state")
	})

	s.Run("missing status is 400", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPatch, path, map[string]string{}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}
