package objectstore

import (
	"context"
	"fmt"
	"log/slog"

	"digipraman/pkg/platform/circuit"
	"digipraman/pkg/platform/sentinel"
)

// Signer is anything that can presign an evidence object.
type Signer interface {
	SignEvidence(ctx context.Context, fileKey string) (string, error)
}

// GuardedSigner trips a circuit breaker on repeated signing failures. While
// open, failures are reported as sentinel.ErrUnavailable so readers can
// degrade to links-less evidence instead of failing.
type GuardedSigner struct {
	inner   Signer
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedSigner(inner Signer, breaker *circuit.Breaker, logger *slog.Logger) *GuardedSigner {
	return &GuardedSigner{inner: inner, breaker: breaker, logger: logger}
}

func (g *GuardedSigner) SignEvidence(ctx context.Context, fileKey string) (string, error) {
	url, err := g.inner.SignEvidence(ctx, fileKey)
	if err != nil {
		useFallback, change := g.breaker.RecordFailure()
		if change.Opened {
			g.logger.WarnContext(ctx, "object storage circuit opened",
				"breaker", g.breaker.Name(),
				"error", err,
			)
		}
		if useFallback {
			return "", fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
		}
		return "", err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "object storage circuit closed", "breaker", g.breaker.Name())
	}
	return url, nil
}
