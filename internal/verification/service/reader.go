package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"digipraman/internal/verification/models"
	id "digipraman/pkg/domain"
	dErrors "digipraman/pkg/domain-errors"
	"digipraman/pkg/platform/sentinel"
	"digipraman/pkg/requestcontext"
)

// ListForBeneficiary returns the beneficiary's verifications, newest first.
func (s *Service) ListForBeneficiary(ctx context.Context, beneficiaryID id.UserID) ([]models.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "verification.ListForBeneficiary")
	defer span.End()

	summaries, err := s.reader.ListForBeneficiary(ctx, beneficiaryID)
	if err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	if summaries == nil {
		summaries = []models.Summary{}
	}
	return summaries, nil
}

// GetDetail assembles the full view. The header read decides existence; the
// four child reads then run concurrently and any failure fails the whole call.
func (s *Service) GetDetail(ctx context.Context, verificationID id.VerificationID) (*models.Detail, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "verification.GetDetail",
		trace.WithAttributes(attribute.String("verification_id", verificationID.String())))
	defer span.End()

	detail, err := s.reader.GetHeader(ctx, verificationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
		}
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
	}

	var (
		risk         *models.RiskSnapshot
		requirements []models.Requirement
		evidence     []models.EvidenceItem
		decisions    []models.Decision
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		risk, err = s.reader.GetLatestRisk(gctx, verificationID)
		return err
	})
	g.Go(func() error {
		var err error
		requirements, err = s.reader.ListRequirements(gctx, verificationID)
		return err
	})
	g.Go(func() error {
		var err error
		evidence, err = s.reader.ListEvidence(gctx, verificationID)
		if err != nil {
			return err
		}
		return s.signEvidence(gctx, evidence)
	})
	g.Go(func() error {
		var err error
		decisions, err = s.reader.ListDecisions(gctx, verificationID)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "detail assembly failed")
		s.logger.ErrorContext(ctx, "verification detail assembly failed",
			"verification_id", verificationID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification detail")
	}

	detail.Risk = risk
	detail.Requirements = nonNil(requirements)
	detail.Evidence = nonNil(evidence)
	detail.Decisions = nonNil(decisions)

	s.metrics.ObserveDetail(time.Since(start))
	return detail, nil
}

// signEvidence attaches download links in place. Without a presigner, or
// while object storage is reported unavailable, the links are left empty.
func (s *Service) signEvidence(ctx context.Context, items []models.EvidenceItem) error {
	if s.presigner == nil {
		return nil
	}
	for i := range items {
		if items[i].FileKey == "" {
			continue
		}
		url, err := s.presigner.SignEvidence(ctx, items[i].FileKey)
		if errors.Is(err, sentinel.ErrUnavailable) {
			s.logger.WarnContext(ctx, "evidence links omitted, object storage unavailable",
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil
		}
		if err != nil {
			return err
		}
		items[i].DownloadURL = url
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
