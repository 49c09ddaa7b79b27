package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"digipraman/internal/verification/models"
	id "digipraman/pkg/domain"
	dErrors "digipraman/pkg/domain-errors"
	"digipraman/pkg/platform/httputil"
	"digipraman/pkg/requestcontext"
)

// Service defines the verification operations the handler needs.
type Service interface {
	Create(ctx context.Context, req models.CreateRequest) (*models.Created, error)
	UpdateStatus(ctx context.Context, verificationID id.VerificationID, next string) (*models.Request, error)
	ListForBeneficiary(ctx context.Context, beneficiaryID id.UserID) ([]models.Summary, error)
	GetDetail(ctx context.Context, verificationID id.VerificationID) (*models.Detail, error)
}

// BeneficiaryHeader carries the beneficiary id when the query string does not.
const BeneficiaryHeader = "X-Beneficiary-Id"

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification endpoints. Authentication is applied by the
// caller's router group.
func (h *Handler) Register(r chi.Router) {
	r.Get("/verifications/my", h.HandleListMine)
	r.Post("/verifications", h.HandleCreate)
	r.Get("/verifications/{id}", h.HandleGetDetail)
	r.Patch("/verifications/{id}/status", h.HandleUpdateStatus)
}

// HandleListMine handles GET /verifications/my.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := strings.TrimSpace(r.URL.Query().Get("beneficiaryId"))
	if raw == "" {
		raw = strings.TrimSpace(r.Header.Get(BeneficiaryHeader))
	}
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "beneficiaryId is required"))
		return
	}
	beneficiaryID, err := id.ParseUserID(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summaries, err := h.service.ListForBeneficiary(ctx, beneficiaryID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list verifications failed",
			"request_id", requestcontext.RequestID(ctx),
			"beneficiary_id", beneficiaryID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summaries)
}

// HandleGetDetail handles GET /verifications/{id}.
func (h *Handler) HandleGetDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.service.GetDetail(ctx, verificationID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "get verification failed",
				"request_id", requestcontext.RequestID(ctx),
				"verification_id", verificationID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

// HandleCreate handles POST /verifications. A missing initiatedBy defaults to
// the authenticated caller.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	body, ok := httputil.DecodeAndPrepare[CreateVerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	req, err := body.ToModel()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.InitiatedBy == nil {
		if caller, err := id.ParseUserID(requestcontext.UserID(ctx)); err == nil {
			req.InitiatedBy = &caller
		}
	}

	created, err := h.service.Create(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleUpdateStatus handles PATCH /verifications/{id}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	body, ok := httputil.DecodeAndPrepare[UpdateStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.service.UpdateStatus(ctx, verificationID, body.Status)
	if err != nil {
		h.logger.WarnContext(ctx, "status update rejected",
			"request_id", requestID,
			"verification_id", verificationID,
			"status", body.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}
