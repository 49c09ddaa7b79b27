package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"digipraman/internal/auth/service/mocks"
	userstore "digipraman/internal/auth/store/user"
	otpmodels "digipraman/internal/otp/models"
	id "digipraman/pkg/domain"
	dErrors "digipraman/pkg/domain-errors"
	"digipraman/pkg/platform/audit"
	auditmemory "digipraman/pkg/platform/audit/store/memory"
	"digipraman/pkg/platform/middleware/metadata"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	otp     *mocks.MockOTPService
	tokens  *mocks.MockTokenIssuer
	users   *userstore.InMemoryUserStore
	auditor *auditmemory.InMemoryStore
	orgID   id.OrgID
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.otp = mocks.NewMockOTPService(s.ctrl)
	s.tokens = mocks.NewMockTokenIssuer(s.ctrl)
	s.users = userstore.New()
	s.auditor = auditmemory.NewInMemoryStore()
	s.orgID = id.OrgID(id.NewUserID())
	s.service = New(s.otp, s.users, s.tokens,
		Config{TokenTTL: time.Hour, DefaultOrgID: &s.orgID},
		WithAuditor(s.auditor),
	)
}

func (s *ServiceSuite) actions() []string {
	var out []string
	for _, e := range s.auditor.Events() {
		out = append(out, e.Action)
	}
	return out
}

func (s *ServiceSuite) TestRequestOTP() {
	expiresAt := time.Now().Add(5 * time.Minute)
	s.otp.EXPECT().RequestCode(gomock.Any(), "+919800000001").
		Return(&otpmodels.Issued{TxnID: "txn-1", ExpiresAt: expiresAt}, nil)

	const androidUA = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	ctx := metadata.WithClientMetadata(context.Background(), "203.0.113.9", androidUA)
	issued, err := s.service.RequestOTP(ctx, "+919800000001")
	s.Require().NoError(err)
	s.Equal("txn-1", issued.TxnID)
	s.Equal([]string{"otp_requested"}, s.actions())
	s.Equal("203.0.113.9", s.auditor.Events()[0].ClientIP)
	s.Contains(s.auditor.Events()[0].Device, "Android")
	s.Contains(s.auditor.Events()[0].Device, "(mobile)")
}

func (s *ServiceSuite) TestVerifyOTP() {
	ctx := context.Background()

	s.Run("first login creates beneficiary in default org", func() {
		s.otp.EXPECT().VerifyCode(gomock.Any(), "txn-1", "123456").Return("+919800001234", nil)
		s.tokens.EXPECT().GenerateToken(gomock.Any(), "beneficiary", time.Hour).Return("signed.jwt", nil)

		result, err := s.service.VerifyOTP(ctx, "txn-1", "123456")
		s.Require().NoError(err)
		s.Equal("signed.jwt", result.Token)
		s.True(result.Created)
		s.Equal("Beneficiary 1234", result.User.Name)
		s.Equal("en", result.User.Locale)
		s.Equal("active", result.User.Status)
		s.Require().NotNil(result.User.OrgID)
		s.Equal(s.orgID, *result.User.OrgID)
	})

	s.Run("second login reuses existing user", func() {
		existing, err := s.users.FindByMobile(ctx, "+919800001234")
		s.Require().NoError(err)

		s.otp.EXPECT().VerifyCode(gomock.Any(), "txn-2", "654321").Return("+919800001234", nil)
		s.tokens.EXPECT().GenerateToken(existing.ID.String(), "beneficiary", time.Hour).Return("signed.jwt.2", nil)

		result, err := s.service.VerifyOTP(ctx, "txn-2", "654321")
		s.Require().NoError(err)
		s.False(result.Created)
		s.Equal(existing.ID, result.User.ID)
	})

	s.Equal([]string{"user_created", "otp_verified", "otp_verified"}, s.actions())
}

func (s *ServiceSuite) TestVerifyOTPFailures() {
	ctx := context.Background()

	s.Run("wrong code propagates and is audited", func() {
		s.otp.EXPECT().VerifyCode(gomock.Any(), "txn", "000000").
			Return("", dErrors.New(dErrors.CodeInvalidCode, "invalid code"))

		_, err := s.service.VerifyOTP(ctx, "txn", "000000")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCode))
		s.Equal([]string{"otp_failed"}, s.actions())
	})

	s.Run("unknown transaction is not audited as failure", func() {
		s.auditor.Clear()
		s.otp.EXPECT().VerifyCode(gomock.Any(), "gone", "000000").
			Return("", dErrors.New(dErrors.CodeInvalidTransaction, "invalid transaction"))

		_, err := s.service.VerifyOTP(ctx, "gone", "000000")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransaction))
		s.Empty(s.actions())
	})

	s.Run("token signing failure is internal", func() {
		s.otp.EXPECT().VerifyCode(gomock.Any(), "txn-3", "111111").Return("+919800009999", nil)
		s.tokens.EXPECT().GenerateToken(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("boom"))

		_, err := s.service.VerifyOTP(ctx, "txn-3", "111111")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestUserStoreFailureIsInternal() {
	users := mocks.NewMockUserStore(s.ctrl)
	svc := New(s.otp, users, s.tokens, Config{})
	s.otp.EXPECT().VerifyCode(gomock.Any(), gomock.Any(), gomock.Any()).Return("+919800000001", nil)
	users.EXPECT().FindOrCreate(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("db down"))

	_, err := svc.VerifyOTP(context.Background(), "txn", "123456")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestMe() {
	ctx := context.Background()

	s.Run("unknown user is not found", func() {
		_, err := s.service.Me(ctx, id.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("returns stored user", func() {
		s.otp.EXPECT().VerifyCode(gomock.Any(), gomock.Any(), gomock.Any()).Return("+919800005555", nil)
		s.tokens.EXPECT().GenerateToken(gomock.Any(), gomock.Any(), gomock.Any()).Return("t", nil)
		login, err := s.service.VerifyOTP(ctx, "txn", "123456")
		s.Require().NoError(err)

		user, err := s.service.Me(ctx, login.User.ID)
		s.Require().NoError(err)
		s.Equal("+919800005555", user.Mobile)
	})
}

var _ audit.Store = (*auditmemory.InMemoryStore)(nil)
