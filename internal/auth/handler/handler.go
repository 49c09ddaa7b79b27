package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"digipraman/internal/auth/models"
	otpmodels "digipraman/internal/otp/models"
	id "digipraman/pkg/domain"
	dErrors "digipraman/pkg/domain-errors"
	"digipraman/pkg/platform/httputil"
	"digipraman/pkg/requestcontext"
)

// Service defines the login operations the handler needs.
type Service interface {
	RequestOTP(ctx context.Context, mobile string) (*otpmodels.Issued, error)
	VerifyOTP(ctx context.Context, txnID, code string) (*models.LoginResult, error)
	Me(ctx context.Context, userID id.UserID) (*models.User, error)
}

// Handler wires OTP login endpoints to the auth service.
type Handler struct {
	service     Service
	requireAuth func(http.Handler) http.Handler
	logger      *slog.Logger
}

// New constructs an auth handler. requireAuth guards /auth/me.
func New(service Service, requireAuth func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{
		service:     service,
		requireAuth: requireAuth,
		logger:      logger,
	}
}

// Register mounts auth endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/otp/request", h.HandleRequestOTP)
	r.Post("/auth/otp/verify", h.HandleVerifyOTP)
	r.With(h.requireAuth).Get("/auth/me", h.HandleMe)
}

// HandleRequestOTP handles POST /auth/otp/request.
func (h *Handler) HandleRequestOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RequestOTPRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	issued, err := h.service.RequestOTP(ctx, req.Mobile)
	if err != nil {
		h.logger.ErrorContext(ctx, "otp request failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, issued)
}

// HandleVerifyOTP handles POST /auth/otp/verify.
func (h *Handler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyOTPRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.VerifyOTP(ctx, req.TxnID, req.OTP)
	if err != nil {
		h.logger.WarnContext(ctx, "otp verification failed",
			"request_id", requestID,
			"txn_id", req.TxnID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "otp login succeeded",
		"request_id", requestID,
		"user_id", result.User.ID,
		"user_created", result.Created,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleMe handles GET /auth/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	user, err := h.service.Me(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}
