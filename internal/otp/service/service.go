package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Notifier

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"digipraman/internal/otp/metrics"
	"digipraman/internal/otp/models"
	dErrors "digipraman/pkg/domain-errors"
	"digipraman/pkg/platform/sentinel"
	"digipraman/pkg/requestcontext"
)

const (
	defaultTTL = 5 * time.Minute
	codeMin    = 100000
	codeSpan   = 900000 // codes are uniform over [100000, 999999]
)

var mobilePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// Store holds outstanding OTP transactions. Redeem must be atomic per txnID.
type Store interface {
	Save(ctx context.Context, txn *models.Transaction) error
	Redeem(ctx context.Context, txnID, code string, now time.Time) (string, error)
	Delete(ctx context.Context, txnID string) error
}

// Notifier delivers the code out of band.
type Notifier interface {
	DeliverCode(ctx context.Context, mobile, code string, expiresAt time.Time) error
}

// Service issues and verifies one-time passcodes.
type Service struct {
	store    Store
	notifier Notifier
	ttl      time.Duration
	now      func() time.Time
	newCode  func() (string, error)
	newTxnID func() string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newCode = gen }
}

func WithTxnIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newTxnID = gen }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		ttl:      defaultTTL,
		now:      time.Now,
		newCode:  GenerateCode,
		newTxnID: uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateCode returns a six digit code from a cryptographically secure source.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// NormalizeMobile strips spaces and dashes and validates the result.
func NormalizeMobile(mobile string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(mobile))
	if cleaned == "" {
		return "", dErrors.New(dErrors.CodeValidation, "mobile is required")
	}
	if !mobilePattern.MatchString(cleaned) {
		return "", dErrors.New(dErrors.CodeValidation, "mobile must be 8 to 15 digits")
	}
	return cleaned, nil
}

// RequestCode creates a transaction for mobile and delivers the code. Only the
// transaction id and expiry are returned to the caller.
func (s *Service) RequestCode(ctx context.Context, mobile string) (*models.Issued, error) {
	normalized, err := NormalizeMobile(mobile)
	if err != nil {
		return nil, err
	}
	code, err := s.newCode()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate code")
	}
	txn := &models.Transaction{
		TxnID:     s.newTxnID(),
		Code:      code,
		Mobile:    normalized,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.store.Save(ctx, txn); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store otp transaction")
	}
	if err := s.notifier.DeliverCode(ctx, txn.Mobile, txn.Code, txn.ExpiresAt); err != nil {
		s.logger.ErrorContext(ctx, "otp delivery failed",
			"txn_id", txn.TxnID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		// The caller never learns the txn id, so nobody can redeem it.
		if derr := s.store.Delete(context.WithoutCancel(ctx), txn.TxnID); derr != nil {
			s.logger.WarnContext(ctx, "failed to discard undelivered otp transaction",
				"txn_id", txn.TxnID,
				"error", derr,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deliver code")
	}
	s.metrics.IncrementIssued()
	return &models.Issued{TxnID: txn.TxnID, ExpiresAt: txn.ExpiresAt}, nil
}

// VerifyCode redeems the transaction and returns the mobile it was issued for.
// A successful verification consumes the transaction.
func (s *Service) VerifyCode(ctx context.Context, txnID, code string) (string, error) {
	txnID = strings.TrimSpace(txnID)
	code = strings.TrimSpace(code)
	if txnID == "" || code == "" {
		return "", dErrors.New(dErrors.CodeValidation, "txnId and code are required")
	}

	mobile, err := s.store.Redeem(ctx, txnID, code, s.now())
	switch {
	case err == nil:
		s.metrics.IncrementVerification(metrics.OutcomeVerified)
		return mobile, nil
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.IncrementVerification(metrics.OutcomeUnknownTransaction)
		return "", dErrors.New(dErrors.CodeInvalidTransaction, "invalid transaction")
	case errors.Is(err, sentinel.ErrExpired):
		s.metrics.IncrementVerification(metrics.OutcomeExpired)
		return "", dErrors.New(dErrors.CodeExpired, "otp expired")
	case errors.Is(err, sentinel.ErrInvalidCode):
		s.metrics.IncrementVerification(metrics.OutcomeInvalidCode)
		return "", dErrors.New(dErrors.CodeInvalidCode, "invalid code")
	default:
		s.metrics.IncrementVerification(metrics.OutcomeError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify code")
	}
}
