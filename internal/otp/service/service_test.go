package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"digipraman/internal/otp/metrics"
	"digipraman/internal/otp/service/mocks"
	"digipraman/internal/otp/store"
	dErrors "digipraman/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	notifier *mocks.MockNotifier
	store    *store.InMemory
	metrics  *metrics.Metrics
	now      time.Time
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.store = store.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.service = New(s.store, s.notifier,
		WithClock(func() time.Time { return s.now }),
		WithCodeGenerator(func() (string, error) { return "482913", nil }),
		WithTxnIDGenerator(func() string { return "txn-fixed" }),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestRequestCode() {
	ctx := context.Background()

	s.Run("issues transaction and delivers code out of band", func() {
		s.notifier.EXPECT().
			DeliverCode(gomock.Any(), "+919800000001", "482913", s.now.Add(5*time.Minute)).
			Return(nil)

		issued, err := s.service.RequestCode(ctx, " +91 98000-00001 ")
		s.Require().NoError(err)
		s.Equal("txn-fixed", issued.TxnID)
		s.Equal(s.now.Add(5*time.Minute), issued.ExpiresAt)
		s.Equal(1, s.store.Len())
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.CodesIssued))
	})

	s.Run("missing mobile is a validation error", func() {
		_, err := s.service.RequestCode(ctx, "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("malformed mobile is a validation error", func() {
		_, err := s.service.RequestCode(ctx, "call-me")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("delivery failure is internal", func() {
		s.notifier.EXPECT().DeliverCode(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("sms gateway down"))

		_, err := s.service.RequestCode(ctx, "+919800000002")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Zero(s.store.Len(), "undelivered transaction is discarded")
	})
}

func (s *ServiceSuite) TestVerifyCode() {
	ctx := context.Background()
	issue := func() {
		s.notifier.EXPECT().DeliverCode(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		_, err := s.service.RequestCode(ctx, "+919800000001")
		s.Require().NoError(err)
	}

	s.Run("correct code returns mobile and consumes transaction", func() {
		issue()
		mobile, err := s.service.VerifyCode(ctx, "txn-fixed", "482913")
		s.Require().NoError(err)
		s.Equal("+919800000001", mobile)

		_, err = s.service.VerifyCode(ctx, "txn-fixed", "482913")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransaction))
	})

	s.Run("wrong code allows retry", func() {
		issue()
		_, err := s.service.VerifyCode(ctx, "txn-fixed", "000000")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCode))

		mobile, err := s.service.VerifyCode(ctx, "txn-fixed", "482913")
		s.Require().NoError(err)
		s.Equal("+919800000001", mobile)
	})

	s.Run("expired code reports expiry then unknown", func() {
		issue()
		s.now = s.now.Add(6 * time.Minute)
		defer func() { s.now = s.now.Add(-6 * time.Minute) }()

		_, err := s.service.VerifyCode(ctx, "txn-fixed", "482913")
		s.True(dErrors.HasCode(err, dErrors.CodeExpired))

		_, err = s.service.VerifyCode(ctx, "txn-fixed", "482913")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransaction))
	})

	s.Run("expiry survives a sweep inside the grace window", func() {
		issue()
		late := s.now.Add(5*time.Minute + 90*time.Second)
		_, err := s.store.DeleteExpired(ctx, late)
		s.Require().NoError(err)

		s.now = late
		defer func() { s.now = late.Add(-5*time.Minute - 90*time.Second) }()
		_, err = s.service.VerifyCode(ctx, "txn-fixed", "482913")
		s.True(dErrors.HasCode(err, dErrors.CodeExpired), "got %v", err)
	})

	s.Run("blank input is a validation error", func() {
		_, err := s.service.VerifyCode(ctx, "", "482913")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Equal(float64(2), testutil.ToFloat64(s.metrics.Verifications.WithLabelValues(metrics.OutcomeVerified)))
}

func (s *ServiceSuite) TestStoreFailureIsInternal() {
	failing := mocks.NewMockStore(s.ctrl)
	svc := New(failing, s.notifier)
	failing.EXPECT().Redeem(gomock.Any(), "txn", "123456", gomock.Any()).Return("", errors.New("redis timeout"))

	_, err := svc.VerifyCode(context.Background(), "txn", "123456")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestDeliveryFailureDiscardsTransaction() {
	st := mocks.NewMockStore(s.ctrl)
	svc := New(st, s.notifier, WithTxnIDGenerator(func() string { return "txn-x" }))
	st.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.notifier.EXPECT().DeliverCode(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("sms gateway down"))
	st.EXPECT().Delete(gomock.Any(), "txn-x").Return(nil)

	_, err := svc.RequestCode(context.Background(), "+919800000003")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestGenerateCodeRange(t *testing.T) {
	for range 1000 {
		code, err := GenerateCode()
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not six digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil || n < 100000 || n > 999999 {
			t.Fatalf("code %q out of range", code)
		}
	}
}
