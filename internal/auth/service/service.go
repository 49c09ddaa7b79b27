package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks OTPService,UserStore,TokenIssuer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"digipraman/internal/auth/models"
	otpmodels "digipraman/internal/otp/models"
	id "digipraman/pkg/domain"
	dErrors "digipraman/pkg/domain-errors"
	"digipraman/pkg/platform/audit"
	"digipraman/pkg/platform/middleware/metadata"
	"digipraman/pkg/platform/sentinel"
	"digipraman/pkg/requestcontext"
)

type OTPService interface {
	RequestCode(ctx context.Context, mobile string) (*otpmodels.Issued, error)
	VerifyCode(ctx context.Context, txnID, code string) (string, error)
}

type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindOrCreate(ctx context.Context, candidate *models.User) (*models.User, bool, error)
}

type TokenIssuer interface {
	GenerateToken(userID string, role string, expiresIn time.Duration) (string, error)
}

type Config struct {
	TokenTTL     time.Duration
	DefaultOrgID *id.OrgID
}

// Service turns a verified mobile number into a session token, registering
// first-time beneficiaries on the way.
type Service struct {
	otp     OTPService
	users   UserStore
	tokens  TokenIssuer
	cfg     Config
	auditor audit.Store
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithAuditor(a audit.Store) Option {
	return func(s *Service) { s.auditor = a }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(otp OTPService, users UserStore, tokens TokenIssuer, cfg Config, opts ...Option) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	s := &Service{
		otp:    otp,
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) RequestOTP(ctx context.Context, mobile string) (*otpmodels.Issued, error) {
	issued, err := s.otp.RequestCode(ctx, mobile)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{Action: string(audit.EventOTPRequested), Reason: issued.TxnID})
	return issued, nil
}

// VerifyOTP redeems the code, finds or creates the beneficiary for the
// verified mobile, and mints a token carrying the user's id and role.
func (s *Service) VerifyOTP(ctx context.Context, txnID, code string) (*models.LoginResult, error) {
	mobile, err := s.otp.VerifyCode(ctx, txnID, code)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidCode) || dErrors.HasCode(err, dErrors.CodeExpired) {
			s.emit(ctx, audit.Event{
				Action: string(audit.EventOTPFailed),
				Reason: string(dErrors.CodeOf(err)),
			})
		}
		return nil, err
	}

	candidate := models.NewBeneficiary(id.NewUserID(), s.cfg.DefaultOrgID, mobile, "", s.now())
	user, created, err := s.users.FindOrCreate(ctx, candidate)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user")
	}
	if created {
		s.emit(ctx, audit.Event{UserID: user.ID, Action: string(audit.EventUserCreated)})
	}

	token, err := s.tokens.GenerateToken(user.ID.String(), user.Role, s.cfg.TokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	s.emit(ctx, audit.Event{UserID: user.ID, Action: string(audit.EventOTPVerified)})

	return &models.LoginResult{Token: token, User: user, Created: created}, nil
}

// Me resolves the authenticated user.
func (s *Service) Me(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// emit is best effort: a failed audit append is logged and never fails login.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Timestamp = s.now()
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = metadata.GetClientIP(ctx)
	event.Device = metadata.DeviceFromUserAgent(metadata.GetUserAgent(ctx))
	if err := s.auditor.Append(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to append audit event",
			"action", event.Action,
			"error", err,
			"request_id", event.RequestID,
		)
	}
}
