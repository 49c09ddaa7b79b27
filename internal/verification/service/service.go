package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Reader,Tx,Presigner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"digipraman/internal/verification/metrics"
	"digipraman/internal/verification/models"
	id "digipraman/pkg/domain"
	dErrors "digipraman/pkg/domain-errors"
	"digipraman/pkg/platform/audit"
	"digipraman/pkg/platform/sentinel"
	"digipraman/pkg/requestcontext"
)

// Store is the write side, always used inside a transaction.
type Store interface {
	LoanExists(ctx context.Context, loanID id.LoanID) (bool, error)
	InsertRequest(ctx context.Context, req *models.Request) error
	InsertRequirement(ctx context.Context, req *models.Requirement) error
	// GetRequestForUpdate locks the row until the transaction ends.
	GetRequestForUpdate(ctx context.Context, verificationID id.VerificationID) (*models.Request, error)
	UpdateStatus(ctx context.Context, verificationID id.VerificationID, status models.Status) error
}

// Reader is the read side. Each method is an independent query.
type Reader interface {
	ListForBeneficiary(ctx context.Context, beneficiaryID id.UserID) ([]models.Summary, error)
	GetHeader(ctx context.Context, verificationID id.VerificationID) (*models.Detail, error)
	GetLatestRisk(ctx context.Context, verificationID id.VerificationID) (*models.RiskSnapshot, error)
	ListRequirements(ctx context.Context, verificationID id.VerificationID) ([]models.Requirement, error)
	ListEvidence(ctx context.Context, verificationID id.VerificationID) ([]models.EvidenceItem, error)
	ListDecisions(ctx context.Context, verificationID id.VerificationID) ([]models.Decision, error)
}

// Tx scopes a unit of work. The ctx handed to fn carries the transaction so
// the audit outbox joins it.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

// Presigner turns an evidence file key into a short-lived download link.
type Presigner interface {
	SignEvidence(ctx context.Context, fileKey string) (string, error)
}

// Service owns verification creation, status transitions and view assembly.
type Service struct {
	tx        Tx
	reader    Reader
	auditor   audit.Store
	presigner Presigner
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Service)

func WithAuditor(a audit.Store) Option {
	return func(s *Service) { s.auditor = a }
}

func WithPresigner(p Presigner) Option {
	return func(s *Service) { s.presigner = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(tx Tx, reader Reader, opts ...Option) *Service {
	s := &Service{
		tx:     tx,
		reader: reader,
		logger: slog.Default(),
		tracer: otel.Tracer("digipraman/verification"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts the request and its checklist as one unit. Requirements are
// written one at a time in input order; sortOrder defaults to the position.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.Created, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Create",
		trace.WithAttributes(attribute.String("loan_id", req.LoanID.String())))
	defer span.End()

	if err := validateCreate(req); err != nil {
		s.metrics.IncrementCreateFailure(string(dErrors.CodeOf(err)))
		return nil, err
	}

	now := s.now()
	request := &models.Request{
		ID:          id.NewVerificationID(),
		LoanID:      req.LoanID,
		InitiatedBy: req.InitiatedBy,
		Status:      models.StatusPending,
		DueDate:     req.DueDate,
		CreatedAt:   now,
	}
	requirements := buildRequirements(request.ID, req.Requirements, now)

	err := s.tx.RunInTx(ctx, func(ctx context.Context, store Store) error {
		exists, err := store.LoanExists(ctx, req.LoanID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check loan")
		}
		if !exists {
			return dErrors.New(dErrors.CodeNotFound, "loan not found")
		}
		if err := store.InsertRequest(ctx, request); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create verification")
		}
		for i := range requirements {
			if err := store.InsertRequirement(ctx, &requirements[i]); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create requirement")
			}
		}
		return s.appendAudit(ctx, audit.Event{
			Subject:  request.ID.String(),
			Action:   string(audit.EventVerificationCreated),
			Decision: string(models.StatusPending),
		})
	})
	if err != nil {
		s.metrics.IncrementCreateFailure(string(dErrors.CodeOf(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			s.logger.ErrorContext(ctx, "verification create failed",
				"loan_id", req.LoanID,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil, wrapTxError(err)
	}

	s.metrics.IncrementCreated(len(requirements))
	span.SetAttributes(attribute.String("verification_id", request.ID.String()))
	s.logger.InfoContext(ctx, "verification created",
		"verification_id", request.ID,
		"loan_id", req.LoanID,
		"requirements", len(requirements),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.Created{Request: *request, Requirements: requirements}, nil
}

func validateCreate(req models.CreateRequest) error {
	if req.LoanID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "loanId is required")
	}
	for i, r := range req.Requirements {
		if strings.TrimSpace(r.Label) == "" {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("requirements[%d].label is required", i))
		}
		if _, err := models.ParseRequirementType(string(r.Type)); err != nil {
			return err
		}
	}
	return nil
}

func buildRequirements(verificationID id.VerificationID, inputs []models.RequirementInput, now time.Time) []models.Requirement {
	out := make([]models.Requirement, 0, len(inputs))
	for i, in := range inputs {
		typ, _ := models.ParseRequirementType(string(in.Type))
		required := true
		if in.Required != nil {
			required = *in.Required
		}
		sortOrder := i
		if in.SortOrder != nil {
			sortOrder = *in.SortOrder
		}
		out = append(out, models.Requirement{
			ID:             id.NewRequirementID(),
			VerificationID: verificationID,
			Label:          strings.TrimSpace(in.Label),
			Type:           typ,
			Required:       required,
			Instructions:   in.Instructions,
			Status:         models.RequirementNotStarted,
			SortOrder:      sortOrder,
			CreatedAt:      now,
		})
	}
	return out
}

// UpdateStatus moves a verification along the lifecycle graph. Unknown
// statuses and forbidden transitions fail with InvalidState.
func (s *Service) UpdateStatus(ctx context.Context, verificationID id.VerificationID, next string) (*models.Request, error) {
	ctx, span := s.tracer.Start(ctx, "verification.UpdateStatus",
		trace.WithAttributes(
			attribute.String("verification_id", verificationID.String()),
			attribute.String("status", next),
		))
	defer span.End()

	status, err := models.ParseStatus(next)
	if err != nil {
		return nil, err
	}

	var updated *models.Request
	err = s.tx.RunInTx(ctx, func(ctx context.Context, store Store) error {
		current, err := store.GetRequestForUpdate(ctx, verificationID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "verification not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
		}
		if !current.Status.CanTransitionTo(status) {
			return dErrors.New(dErrors.CodeInvalidState,
				"cannot transition from "+current.Status.String()+" to "+status.String())
		}
		if err := store.UpdateStatus(ctx, verificationID, status); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update status")
		}
		if err := s.appendAudit(ctx, audit.Event{
			Subject:  verificationID.String(),
			Action:   string(audit.EventVerificationStatusChanged),
			Decision: status.String(),
			Reason:   current.Status.String(),
		}); err != nil {
			return err
		}
		current.Status = status
		updated = current
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update status failed")
		return nil, wrapTxError(err)
	}

	s.metrics.IncrementStatusChange(status.String())
	return updated, nil
}

// appendAudit writes into the outbox inside the caller's transaction; a
// failure aborts the unit of work.
func (s *Service) appendAudit(ctx context.Context, event audit.Event) error {
	if s.auditor == nil {
		return nil
	}
	event.Timestamp = s.now()
	event.RequestID = requestcontext.RequestID(ctx)
	event.ActorID = requestcontext.UserID(ctx)
	if err := s.auditor.Append(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

// wrapTxError keeps coded errors and classifies bare ones from the tx runner.
func wrapTxError(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "transaction failed")
}
